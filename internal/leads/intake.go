package leads

import "math"

// detailedMessageLen is the initial-message length above which the lead is
// considered to have described their need.
const detailedMessageLen = 20

// IntakeScore is the pre-conversation estimate shown when the lead form is
// submitted. It only looks at the category and the initial message.
func IntakeScore(lead Lead) Classification {
	score := baseScore
	if lead.Category == CategoryAuto || lead.Category == CategoryRealEstate {
		score += 2
	}
	if len([]rune(lead.Message)) > detailedMessageLen {
		score++
	}
	score = math.Min(score, 10)

	p := PriorityLow
	switch {
	case score >= 8:
		p = PriorityHigh
	case score >= 6:
		p = PriorityMedium
	}
	return Classification{Score: score, Priority: p}
}
