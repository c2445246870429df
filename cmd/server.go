package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/lead-agent/internal/audit"
	"github.com/ziadkadry99/lead-agent/internal/chat"
	"github.com/ziadkadry99/lead-agent/internal/config"
	"github.com/ziadkadry99/lead-agent/internal/conversation"
	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/intake"
	"github.com/ziadkadry99/lead-agent/internal/llm"
	"github.com/ziadkadry99/lead-agent/internal/notifications"
	"github.com/ziadkadry99/lead-agent/internal/records"
	"github.com/ziadkadry99/lead-agent/internal/server"
)

const shutdownTimeout = 15 * time.Second

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the lead qualification HTTP server",
	Long:  `Starts the chat (HTTP and WebSocket), lead intake, attendance and notification APIs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = serverPort
		}

		llmProvider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		database, err := db.OpenInDir(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.CORSAllowAll,
		}, database, logger)

		engine := registerAllRoutes(srv, cfg, database, llmProvider)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("server shutdown")
			}
		}()

		logger.WithFields(logrus.Fields{
			"version":  Version,
			"provider": cfg.Provider,
			"model":    cfg.ResolvedModel(),
			"state":    cfg.StateBackend,
			"database": database.Path(),
		}).Info("leadagent server starting")

		err = srv.Start()
		engine.Wait()
		return err
	},
}

// registerAllRoutes wires the feature packages onto the server router and
// returns the conversation engine so the caller can drain it on shutdown.
func registerAllRoutes(srv *server.Server, cfg *config.Config, database *db.DB, llmProvider llm.Provider) *conversation.Engine {
	r := srv.Router()

	gen := conversation.NewLLMGenerator(llmProvider, cfg.ResolvedModel(), logger)
	persona := personaFromConfig(cfg)
	handoff := handoffFromConfig(cfg)

	// Audit trail
	auditStore := audit.NewStore(database)
	audit.RegisterRoutes(r, auditStore)

	// Attendance records
	recordStore := records.NewStore(database)
	recordStore.SetAuditor(auditStore)
	records.RegisterRoutes(r, recordStore)

	// Hot-lead notifications
	notifStore := notifications.NewStore(database)
	dispatcher := notifications.NewDispatcher(notifStore, cfg.Notify.WebhookURL, cfg.MinPriority(), logger)
	notifications.RegisterRoutes(r, notifStore)

	// Conversation engine behind the chat endpoints
	engine := conversation.NewEngine(conversation.Options{
		Generator: gen,
		States:    createStateStore(cfg, database),
		Recorder:  recordStore,
		Notifier:  dispatcher,
		Handoff:   handoff,
		Persona:   persona,
		Logger:    logger,
	})
	chat.RegisterRoutes(r, chat.NewHandler(engine, logger))

	// Lead intake
	intakeSvc := intake.NewService(intake.NewStore(database), gen, persona, handoff, logger)
	intake.RegisterRoutes(r, intakeSvc)

	return engine
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
