package leads

import (
	"encoding/json"
	"math"
	"strings"
)

// Category is the consórcio product line a lead is interested in.
type Category string

const (
	CategoryRealEstate Category = "IMÓVEL"
	CategoryAuto       Category = "AUTO"
	CategoryBusiness   Category = "NEGÓCIO"
	CategoryEducation  Category = "EDUCAÇÃO"
)

// categoryAliases maps accepted spellings (upper-cased) to their category.
var categoryAliases = map[string]Category{
	"IMÓVEL":   CategoryRealEstate,
	"IMOVEL":   CategoryRealEstate,
	"AUTO":     CategoryAuto,
	"NEGÓCIO":  CategoryBusiness,
	"NEGOCIO":  CategoryBusiness,
	"EDUCAÇÃO": CategoryEducation,
	"EDUCACAO": CategoryEducation,
}

var categoryLabels = map[Category]string{
	CategoryRealEstate: "imóvel",
	CategoryAuto:       "automóvel",
	CategoryBusiness:   "negócio",
	CategoryEducation:  "educação",
}

// ParseCategory resolves a raw category string, tolerating case and missing accents.
func ParseCategory(raw string) (Category, error) {
	c, ok := categoryAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Label returns the human-readable Portuguese label for the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return strings.ToLower(string(c))
}

// Role identifies who authored a turn.
type Role string

const (
	RoleLead  Role = "lead"
	RoleAgent Role = "agent"
)

// UnmarshalText accepts the chat-completion spellings used by web clients.
func (r *Role) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "lead", "user":
		*r = RoleLead
	case "agent", "assistant":
		*r = RoleAgent
	default:
		*r = Role(b)
	}
	return nil
}

// Turn is one message exchanged in the conversation.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Lead holds the contact details submitted by a prospective customer.
type Lead struct {
	Name     string   `json:"name" yaml:"name"`
	Email    string   `json:"email" yaml:"email"`
	Phone    string   `json:"phone" yaml:"phone"`
	Category Category `json:"category" yaml:"category"`
	Message  string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Identity is the key correlating turns that belong to one conversation.
type Identity string

// Identity derives the conversation key from email and phone.
func (l Lead) Identity() Identity {
	return Identity(strings.ToLower(strings.TrimSpace(l.Email)) + "-" + strings.TrimSpace(l.Phone))
}

// FirstName returns the first word of the lead's name.
func (l Lead) FirstName() string {
	fields := strings.Fields(l.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Facts are the structured values inferred from the lead's own words.
// Zero values mean "not collected".
type Facts struct {
	EstimatedValue int    `json:"estimated_value,omitempty" yaml:"estimated_value,omitempty"`
	Timeline       string `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	MainConcern    string `json:"main_concern,omitempty" yaml:"main_concern,omitempty"`
}

// Merge overlays the non-empty fields of next onto f. Fields already set are
// only replaced by non-empty values, so nothing is ever unset.
func (f Facts) Merge(next Facts) Facts {
	if next.EstimatedValue > 0 {
		f.EstimatedValue = next.EstimatedValue
	}
	if next.Timeline != "" {
		f.Timeline = next.Timeline
	}
	if next.MainConcern != "" {
		f.MainConcern = next.MainConcern
	}
	return f
}

// Count returns how many fields are set.
func (f Facts) Count() int {
	n := 0
	if f.EstimatedValue > 0 {
		n++
	}
	if f.Timeline != "" {
		n++
	}
	if f.MainConcern != "" {
		n++
	}
	return n
}

// Priority is the three-tier follow-up priority of a lead.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// AtLeast reports whether p is the same tier as min or above it.
func (p Priority) AtLeast(min Priority) bool {
	return priorityRank[p] >= priorityRank[min]
}

// ParsePriority validates a priority label.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := priorityRank[p]
	return p, ok
}

// PriorityFor maps a score to its tier. Boundaries belong to the higher tier.
func PriorityFor(score float64) Priority {
	switch {
	case score >= 8:
		return PriorityHigh
	case score >= 5:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Classification is the score and tier computed when a conversation ends.
type Classification struct {
	Score    float64  `json:"score" yaml:"score"`
	Priority Priority `json:"priority" yaml:"priority"`
}

// Penalize applies the no-interest penalty: five points off, floor 1, tier low.
func (c Classification) Penalize() Classification {
	return Classification{
		Score:    math.Max(1, roundTenth(c.Score-5)),
		Priority: PriorityLow,
	}
}

// MarshalJSON keeps the one-decimal score stable on the wire.
func (c Classification) MarshalJSON() ([]byte, error) {
	type alias Classification
	a := alias(c)
	a.Score = roundTenth(a.Score)
	return json.Marshal(a)
}

func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// leadTexts returns the content of the lead-authored turns, in order.
func leadTexts(turns []Turn) []string {
	var out []string
	for _, t := range turns {
		if t.Role == RoleLead {
			out = append(out, t.Content)
		}
	}
	return out
}

// lastLeadText returns the most recent lead-authored turn, or "".
func lastLeadText(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleLead {
			return turns[i].Content
		}
	}
	return ""
}
