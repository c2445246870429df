package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/lead-agent/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize leadagent configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the LLM provider, persona and handoff number, and generates a .leadagent.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
