package leads

import (
	"fmt"
	"strings"
)

// Assessment is an offline evaluation of a transcript: what was extracted,
// whether the conversation would end, and how the lead scores.
type Assessment struct {
	Facts          Facts          `json:"facts" yaml:"facts"`
	Decision       Decision       `json:"decision" yaml:"decision"`
	Classification Classification `json:"classification" yaml:"classification"`
}

// Assess runs extraction, termination and scoring over a whole transcript
// the same way a live conversation would on its last turn. The score is
// penalized only when the conversation ends without interest.
func Assess(category Category, turns []Turn) Assessment {
	facts := ExtractFromTurns(turns)
	d := DetectTermination(turns, facts)
	c := Score(category, turns, facts)
	if d.ShouldEnd && !d.HasInterest {
		c = c.Penalize()
	}
	return Assessment{Facts: facts, Decision: d, Classification: c}
}

// ParseTranscript reads one turn per line in the form "role: content".
// Roles accept the same spellings as Turn JSON. Blank lines are skipped and
// lines without a role prefix continue the previous turn.
func ParseTranscript(text string) ([]Turn, error) {
	var turns []Turn
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		prefix, content, found := strings.Cut(line, ":")
		var role Role
		if found {
			_ = role.UnmarshalText([]byte(strings.TrimSpace(prefix)))
		}
		if !found || (role != RoleLead && role != RoleAgent) {
			if len(turns) == 0 {
				return nil, fmt.Errorf("line %d: expected \"lead:\" or \"agent:\" prefix", i+1)
			}
			turns[len(turns)-1].Content += "\n" + line
			continue
		}
		turns = append(turns, Turn{Role: role, Content: strings.TrimSpace(content)})
	}
	return turns, nil
}
