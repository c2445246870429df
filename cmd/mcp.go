package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/lead-agent/internal/db"
	mcpserver "github.com/ziadkadry99/lead-agent/internal/mcp"
	"github.com/ziadkadry99/lead-agent/internal/notifications"
	"github.com/ziadkadry99/lead-agent/internal/records"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing attendance lookup and transcript scoring tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.OpenInDir(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "leadagent MCP server started on stdio (database=%s)\n", database.Path())

		srv := mcpserver.NewServer(records.NewStore(database), notifications.NewStore(database))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
