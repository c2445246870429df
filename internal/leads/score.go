package leads

import (
	"math"
	"strings"
)

const baseScore = 5.0

var categoryBonus = map[Category]float64{
	CategoryRealEstate: 2,
	CategoryAuto:       1.5,
	CategoryBusiness:   1,
	CategoryEducation:  0,
}

// CategoryBonus returns the fixed score bonus of a category.
func CategoryBonus(c Category) float64 {
	return categoryBonus[c]
}

// threshold pairs a minimum with the points it earns. Tables are ordered
// from the highest minimum down and the first satisfied entry applies.
type threshold struct {
	min    float64
	points float64
}

var volumeBonus = []threshold{
	{6, 1.5},
	{4, 1},
	{2, 0.5},
}

var valueBonus = []threshold{
	{100_000, 2},
	{50_000, 1.5},
	{20_000, 1},
}

func tableBonus(table []threshold, v float64) float64 {
	for _, t := range table {
		if v >= t.min {
			return t.points
		}
	}
	return 0
}

var (
	urgentTimelineTerms = []string{"urgente", "já", "agora"}
	soonTimelineTerms   = []string{"mês", "breve"}
	strongIntentTerms   = []string{"quero", "preciso", "urgente"}
	comparisonTerms     = []string{"comparando", "pesquisando"}
)

// TimelineBonus returns the points earned by a collected timeline phrase.
func TimelineBonus(timeline string) float64 {
	t := strings.ToLower(timeline)
	switch {
	case t == "":
		return 0
	case containsAny(t, urgentTimelineTerms):
		return 1.5
	case containsAny(t, soonTimelineTerms):
		return 1
	default:
		return 0
	}
}

// Score computes the engagement classification. It is pure and does not
// depend on any conversation state beyond its arguments.
func Score(category Category, turns []Turn, facts Facts) Classification {
	score := baseScore
	score += CategoryBonus(category)
	score += tableBonus(volumeBonus, float64(len(turns)))
	score += tableBonus(valueBonus, float64(facts.EstimatedValue))
	score += TimelineBonus(facts.Timeline)

	leadText := strings.ToLower(strings.Join(leadTexts(turns), " "))
	if containsAny(leadText, strongIntentTerms) {
		score += 1
	}
	if containsAny(leadText, comparisonTerms) {
		score -= 0.5
	}

	score = math.Min(math.Max(roundTenth(score), 1), 10)
	return Classification{Score: score, Priority: PriorityFor(score)}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// firstContained returns the first term found in text, or "".
func firstContained(text string, terms []string) string {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return term
		}
	}
	return ""
}
