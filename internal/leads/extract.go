package leads

import (
	"regexp"
	"strconv"
	"strings"
)

// minEstimatedValue is the smallest amount recorded as an estimated value.
// Smaller numbers are usually ages or counts, not money.
const minEstimatedValue = 1000

// valueRule is one entry of the ordered estimated-value rule set. normalize
// receives the full text and the submatch indices of a hit and returns the
// amount it represents, or false when the hit cannot be used.
type valueRule struct {
	name      string
	pattern   *regexp.Regexp
	normalize func(text string, loc []int) (int, bool)
}

// valueRules are tried in order; the first one yielding an accepted amount wins.
var valueRules = []valueRule{
	{
		name:      "currency",
		pattern:   regexp.MustCompile(`(?i)r\$\s*([\d.,]+)`),
		normalize: normalizeAmount,
	},
	{
		name:      "unit",
		pattern:   regexp.MustCompile(`(?i)(\d+)\s*(?:mil|k)\b`),
		normalize: normalizeAmount,
	},
	{
		name:      "intent",
		pattern:   regexp.MustCompile(`(?i)(?:valor|pensando em|quero|cerca de|aproximadamente)\s*(?:r\$)?\s*([\d.,]+)`),
		normalize: normalizeAmount,
	},
}

// unitNearby detects a "thousand" unit word close to a matched numeral.
var unitNearby = regexp.MustCompile(`(?i)mil|k\b`)

var separatorStripper = strings.NewReplacer(".", "", ",", "")

const (
	unitWindowBefore = 5
	unitWindowAfter  = 10
)

func normalizeAmount(text string, loc []int) (int, bool) {
	numeral := separatorStripper.Replace(text[loc[2]:loc[3]])
	value, err := strconv.Atoi(numeral)
	if err != nil {
		return 0, false
	}

	// The unit window is counted in bytes, so accented characters near the
	// number take two positions.
	start := max(0, loc[0]-unitWindowBefore)
	end := min(len(text), loc[1]+unitWindowAfter)
	if value < minEstimatedValue && unitNearby.MatchString(text[start:end]) {
		value *= 1000
	}

	if value < minEstimatedValue {
		return 0, false
	}
	return value, true
}

// timelineVocabulary is scanned in priority order: urgency first, then
// near-term horizons, then relaxed planning.
var timelineVocabulary = []string{
	"urgente",
	"já",
	"agora",
	"próximo mês",
	"esse ano",
	"ano que vem",
	"sem pressa",
	"planejando",
}

// Extract scans lead-authored texts for an estimated value and a timeline.
// The result only carries the fields that were found.
func Extract(texts []string) Facts {
	text := strings.Join(texts, " ")

	var facts Facts
	for _, rule := range valueRules {
		loc := rule.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if v, ok := rule.normalize(text, loc); ok {
			facts.EstimatedValue = v
			break
		}
	}

	lower := strings.ToLower(text)
	for _, phrase := range timelineVocabulary {
		if strings.Contains(lower, phrase) {
			facts.Timeline = phrase
			break
		}
	}

	return facts
}

// ExtractFromTurns runs Extract over the lead-authored turns only.
func ExtractFromTurns(turns []Turn) Facts {
	return Extract(leadTexts(turns))
}
