package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/lead-agent/internal/leads"
)

var scoreJSON bool

// transcriptFile is the YAML or JSON document read by `leadagent score`.
type transcriptFile struct {
	Lead     leads.Lead   `yaml:"lead" json:"lead"`
	Messages []leads.Turn `yaml:"messages" json:"messages"`
}

// scoreResult is the machine-readable output of `leadagent score --json`.
type scoreResult struct {
	leads.Assessment
	HandoffLink string `json:"handoff_link"`
}

var scoreCmd = &cobra.Command{
	Use:   "score <file>",
	Short: "Score a conversation transcript offline",
	Long: `Reads a YAML or JSON transcript (lead details and messages) and prints the
extracted facts, the termination decision, the classification and the
WhatsApp handoff link, without calling an LLM or recording anything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tf, err := readTranscript(args[0])
		if err != nil {
			return err
		}

		assessment := leads.Assess(tf.Lead.Category, tf.Messages)
		link := handoffFromConfig(cfg).Build(tf.Lead, assessment.Facts, assessment.Classification)

		if scoreJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(scoreResult{Assessment: assessment, HandoffLink: link})
		}
		printAssessment(cmd.OutOrStdout(), len(tf.Messages), assessment, link)
		return nil
	},
}

// readTranscript parses a transcript file. YAML is a superset of JSON, so
// one decoder handles both.
func readTranscript(path string) (*transcriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	var tf transcriptFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing transcript %s: %w", path, err)
	}

	category, err := leads.ParseCategory(string(tf.Lead.Category))
	if err != nil {
		return nil, fmt.Errorf("transcript %s: lead.category %q: %w", path, tf.Lead.Category, err)
	}
	tf.Lead.Category = category

	if len(tf.Messages) == 0 {
		return nil, fmt.Errorf("transcript %s has no messages", path)
	}
	for i, t := range tf.Messages {
		if t.Role != leads.RoleLead && t.Role != leads.RoleAgent {
			return nil, fmt.Errorf("transcript %s: messages[%d].role %q: %w", path, i, t.Role, leads.ErrInvalidRole)
		}
	}
	return &tf, nil
}

func printAssessment(w io.Writer, turns int, a leads.Assessment, link string) {
	fmt.Fprintf(w, "Turns:          %d\n", turns)
	if a.Facts.EstimatedValue > 0 {
		fmt.Fprintf(w, "Estimated value: R$ %s\n", leads.FormatAmount(a.Facts.EstimatedValue))
	}
	if a.Facts.Timeline != "" {
		fmt.Fprintf(w, "Timeline:       %s\n", a.Facts.Timeline)
	}
	fmt.Fprintf(w, "Should end:     %t (%s)\n", a.Decision.ShouldEnd, a.Decision.Rule)
	fmt.Fprintf(w, "Interest:       %t\n", a.Decision.HasInterest)
	fmt.Fprintf(w, "Score:          %s/10 (%s)\n", leads.FormatScore(a.Classification.Score), a.Classification.Priority)
	fmt.Fprintf(w, "Handoff:        %s\n", link)
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(scoreCmd)
}
