package leads

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultWhatsAppNumber = "5585988887777"
	DefaultCompanyName    = "Reobote Consórcios"
	whatsAppBaseURL       = "https://wa.me/"
)

// ErrNoClassification is returned when a handoff link carries no score suffix.
var ErrNoClassification = errors.New("handoff link has no classification suffix")

// HandoffBuilder builds the prefilled contact links handed to human follow-up.
type HandoffBuilder struct {
	Number  string
	Company string
}

// NewHandoffBuilder returns a builder for the given WhatsApp number and company
// name, falling back to the defaults when either is empty.
func NewHandoffBuilder(number, company string) *HandoffBuilder {
	if number == "" {
		number = DefaultWhatsAppNumber
	}
	if company == "" {
		company = DefaultCompanyName
	}
	return &HandoffBuilder{Number: number, Company: company}
}

// Build renders the handoff link for a terminated conversation.
func (b *HandoffBuilder) Build(lead Lead, facts Facts, c Classification) string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "Olá! Sou %s.\n", lead.Name)
	fmt.Fprintf(&msg, "Tenho interesse em consórcio de %s.\n", lead.Category.Label())

	if facts.EstimatedValue > 0 {
		fmt.Fprintf(&msg, "Valor aproximado: R$ %s\n", FormatAmount(facts.EstimatedValue))
	}
	if facts.Timeline != "" {
		fmt.Fprintf(&msg, "Prazo: %s\n", facts.Timeline)
	}
	if facts.MainConcern != "" {
		fmt.Fprintf(&msg, "Principal interesse: %s\n", facts.MainConcern)
	}

	fmt.Fprintf(&msg, "\n[Lead %s - Score: %s/10]",
		strings.ToUpper(string(c.Priority)), FormatScore(c.Score))

	return b.link(msg.String())
}

// Intake renders the contact link offered right after the lead form is submitted.
func (b *HandoffBuilder) Intake(lead Lead) string {
	text := fmt.Sprintf("Olá! Meu nome é %s. Tenho interesse em %s e gostaria de saber mais sobre os produtos da %s.",
		lead.Name, lead.Category.Label(), b.Company)
	if lead.Message != "" {
		text += " Minha dúvida é: " + lead.Message
	}
	return b.link(text)
}

func (b *HandoffBuilder) link(text string) string {
	return whatsAppBaseURL + b.Number + "?text=" + encodeURIComponent(text)
}

// uriComponentUnescapes undoes the QueryEscape encodings that
// encodeURIComponent leaves as literal characters.
var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent percent-encodes text the way browsers encode query
// components: %20 for spaces and !'()* kept literal.
func encodeURIComponent(text string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(text))
}

// HandoffNumber returns the WhatsApp number a handoff link points to.
func HandoffNumber(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing handoff link: %w", err)
	}
	number := strings.Trim(u.Path, "/")
	if number == "" {
		return "", fmt.Errorf("handoff link %q has no number", link)
	}
	return number, nil
}

// FormatScore renders a score with at most one decimal and no trailing zero.
func FormatScore(score float64) string {
	return strconv.FormatFloat(roundTenth(score), 'f', -1, 64)
}

// FormatAmount renders an amount with Brazilian thousands separators.
func FormatAmount(v int) string {
	return message.NewPrinter(language.BrazilianPortuguese).Sprintf("%d", v)
}

var classificationSuffix = regexp.MustCompile(`\[Lead (\w+) - Score: ([\d.]+)/10\]`)

// ParseHandoff recovers the classification embedded in a handoff link.
func ParseHandoff(link string) (Classification, error) {
	u, err := url.Parse(link)
	if err != nil {
		return Classification{}, fmt.Errorf("parsing handoff link: %w", err)
	}

	m := classificationSuffix.FindStringSubmatch(u.Query().Get("text"))
	if m == nil {
		return Classification{}, ErrNoClassification
	}

	p, ok := ParsePriority(m[1])
	if !ok {
		return Classification{}, fmt.Errorf("unknown priority %q in handoff link", m[1])
	}
	score, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Classification{}, fmt.Errorf("parsing score %q: %w", m[2], err)
	}
	return Classification{Score: score, Priority: p}, nil
}
