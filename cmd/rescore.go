package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/lead-agent/internal/audit"
	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/progress"
	"github.com/ziadkadry99/lead-agent/internal/records"
)

var rescoreDryRun bool

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute the classification of every stored attendance",
	Long:  `Re-runs lead scoring over the stored transcripts and facts of every attendance and updates the ones whose score or priority changed.`,
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

		store := records.NewStore(database)
		store.SetAuditor(audit.NewStore(database))
		ctx := audit.WithActor(cmd.Context(), audit.ActorSystem, "rescore")

		changes, err := rescoreAll(ctx, store, progress.NewReporter("Rescoring"), rescoreDryRun)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, c := range changes {
			fmt.Fprintf(out, "%s  %s (%s) -> %s (%s)\n", c.id,
				leads.FormatScore(c.before.Score), c.before.Priority,
				leads.FormatScore(c.after.Score), c.after.Priority)
		}
		verb := "updated"
		if rescoreDryRun {
			verb = "would change"
		}
		fmt.Fprintf(out, "%d attendance(s) %s\n", len(changes), verb)
		return nil
	},
}

type rescoreChange struct {
	id     string
	before leads.Classification
	after  leads.Classification
}

func rescoreAll(ctx context.Context, store *records.Store, reporter progress.Reporter, dryRun bool) ([]rescoreChange, error) {
	list, err := store.List(ctx, records.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing attendances: %w", err)
	}

	var changes []rescoreChange
	reporter.Start(len(list))
	for i := range list {
		a := &list[i]
		after := a.Rescore()
		if after != a.Classification {
			if !dryRun {
				if err := store.UpdateClassification(ctx, a.ID, after); err != nil {
					reporter.Finish()
					return changes, fmt.Errorf("updating %s: %w", a.ID, err)
				}
			}
			changes = append(changes, rescoreChange{id: a.ID, before: a.Classification, after: after})
		}
		reporter.Update(i+1, a.ID)
	}
	reporter.Finish()
	return changes, nil
}

func init() {
	rescoreCmd.Flags().BoolVar(&rescoreDryRun, "dry-run", false, "report changes without writing them")
	rootCmd.AddCommand(rescoreCmd)
}
