package leads

import "strings"

var (
	noInterestPhrases = []string{
		"não tenho interesse", "não estou interessado", "não quero", "não preciso",
		"sem interesse", "desinteressado", "não é pra mim", "não é para mim",
		"não vou querer", "não vou precisar", "mudei de ideia", "desisti",
		"não agora", "talvez depois", "outro momento", "não no momento",
	}
	farewellPhrases = []string{"tchau", "adeus", "até mais", "até logo", "falou", "flw", "vlw"}
	closingPhrases  = []string{
		"ok", "tudo bem", "pode ser", "vamos", "quero falar",
		"atendente", "humano", "whatsapp", "obrigado", "valeu",
	}
	thanksPhrases = []string{"obrigado", "valeu"}
)

const (
	maxTurns          = 8
	factsEndMinTurns  = 4
	factsEndMinFields = 2
	closingMinTurns   = 3
	farewellMinTurns  = 2
)

// Decision is the outcome of termination detection.
type Decision struct {
	ShouldEnd   bool   `json:"should_end"`
	HasInterest bool   `json:"has_interest"`
	Rule        string `json:"rule"`
}

// signals are the observations the termination rules are evaluated against.
type signals struct {
	turns      int
	facts      int
	lastLead   string
	noInterest bool
	farewell   bool
	closing    string
}

func observe(turns []Turn, facts Facts) signals {
	last := strings.ToLower(lastLeadText(turns))
	all := strings.ToLower(strings.Join(leadTexts(turns), " "))
	return signals{
		turns:      len(turns),
		facts:      facts.Count(),
		lastLead:   last,
		noInterest: containsAny(all, noInterestPhrases),
		farewell:   containsAny(last, farewellPhrases),
		closing:    firstContained(last, closingPhrases),
	}
}

// terminationRule is one row of the ordered decision table.
type terminationRule struct {
	name    string
	matches func(s signals) bool
	outcome func(s signals) Decision
}

func end(interest bool) func(signals) Decision {
	return func(signals) Decision {
		return Decision{ShouldEnd: true, HasInterest: interest}
	}
}

// terminationRules are evaluated top to bottom and the first match decides.
// A no-interest signal must stay first so that volume and fact heuristics can
// never override it, and closing phrases stay last so they never mask it.
var terminationRules = []terminationRule{
	{
		name: "no_interest",
		matches: func(s signals) bool {
			return s.noInterest || (s.farewell && s.turns >= farewellMinTurns)
		},
		outcome: end(false),
	},
	{
		name:    "max_turns",
		matches: func(s signals) bool { return s.turns >= maxTurns },
		outcome: end(true),
	},
	{
		name: "facts_collected",
		matches: func(s signals) bool {
			return s.facts >= factsEndMinFields && s.turns >= factsEndMinTurns
		},
		outcome: end(true),
	},
	{
		name: "closing_phrase",
		matches: func(s signals) bool {
			return s.closing != "" && s.turns >= closingMinTurns
		},
		outcome: func(s signals) Decision {
			thanks := containsAny(s.lastLead, thanksPhrases)
			return Decision{
				ShouldEnd:   true,
				HasInterest: !(thanks && s.noInterest),
			}
		},
	},
}

// DetectTermination decides whether the conversation should end now and
// whether the lead is still interested. turns is the full ordered history and
// facts the collected facts of the conversation state.
func DetectTermination(turns []Turn, facts Facts) Decision {
	s := observe(turns, facts)
	for _, rule := range terminationRules {
		if rule.matches(s) {
			d := rule.outcome(s)
			d.Rule = rule.name
			return d
		}
	}
	return Decision{ShouldEnd: false, HasInterest: true, Rule: "continue"}
}
