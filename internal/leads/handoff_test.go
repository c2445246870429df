package leads

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLead() Lead {
	return Lead{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Phone:    "(85) 98888-7777",
		Category: CategoryRealEstate,
		Message:  "Quero comprar um apartamento",
	}
}

func decodedText(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("text")
}

func TestHandoffBuild(t *testing.T) {
	b := NewHandoffBuilder("", "")
	facts := Facts{EstimatedValue: 150000, Timeline: "urgente", MainConcern: "parcelas baixas"}
	link := b.Build(testLead(), facts, Classification{Score: 9.5, Priority: PriorityHigh})

	assert.True(t, strings.HasPrefix(link, "https://wa.me/"+DefaultWhatsAppNumber+"?text="))
	assert.NotContains(t, link, "+")
	assert.Contains(t, link, "%20")

	text := decodedText(t, link)
	assert.Contains(t, text, "Olá! Sou Maria Silva.\n")
	assert.Contains(t, text, "Tenho interesse em consórcio de imóvel.\n")
	assert.Contains(t, text, "Valor aproximado: R$ 150.000\n")
	assert.Contains(t, text, "Prazo: urgente\n")
	assert.Contains(t, text, "Principal interesse: parcelas baixas\n")
	assert.True(t, strings.HasSuffix(text, "\n\n[Lead HIGH - Score: 9.5/10]"))
}

func TestHandoffBuildOmitsMissingFacts(t *testing.T) {
	b := NewHandoffBuilder("5511999990000", "")
	link := b.Build(testLead(), Facts{}, Classification{Score: 6, Priority: PriorityMedium})

	assert.True(t, strings.HasPrefix(link, "https://wa.me/5511999990000?text="))
	text := decodedText(t, link)
	assert.NotContains(t, text, "Valor aproximado")
	assert.NotContains(t, text, "Prazo")
	assert.True(t, strings.HasSuffix(text, "[Lead MEDIUM - Score: 6/10]"))
}

func TestHandoffRoundTrip(t *testing.T) {
	b := NewHandoffBuilder("", "")
	cases := []Classification{
		{Score: 8.5, Priority: PriorityHigh},
		{Score: 10, Priority: PriorityHigh},
		{Score: 7.3, Priority: PriorityMedium},
		{Score: 5, Priority: PriorityMedium},
		{Score: 3.5, Priority: PriorityLow},
		{Score: 1, Priority: PriorityLow},
	}
	for _, want := range cases {
		link := b.Build(testLead(), Facts{Timeline: "já"}, want)
		got, err := ParseHandoff(link)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseHandoffWithoutSuffix(t *testing.T) {
	b := NewHandoffBuilder("", "")
	_, err := ParseHandoff(b.Intake(testLead()))
	assert.ErrorIs(t, err, ErrNoClassification)
}

func TestHandoffIntake(t *testing.T) {
	b := NewHandoffBuilder("", "Acme Consórcios")
	text := decodedText(t, b.Intake(testLead()))
	assert.Equal(t, "Olá! Meu nome é Maria Silva. Tenho interesse em imóvel e gostaria de saber mais sobre os produtos da Acme Consórcios. Minha dúvida é: Quero comprar um apartamento", text)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "8", FormatScore(8))
	assert.Equal(t, "8.5", FormatScore(8.5))
	assert.Equal(t, "2.3", FormatScore(7.3-5))
}

func TestEncodeURIComponent(t *testing.T) {
	assert.Equal(t, "Ol%C3%A1!%20(sim)%20'ok'%20*", encodeURIComponent("Olá! (sim) 'ok' *"))
	assert.Equal(t, "a%2Bb%3Dc%26d%0A-_.~", encodeURIComponent("a+b=c&d\n-_.~"))

	link := NewHandoffBuilder("", "").Build(testLead(), Facts{}, Classification{Score: 6, Priority: PriorityMedium})
	assert.Contains(t, link, "?text=Ol%C3%A1!%20Sou%20")
}

func TestHandoffNumber(t *testing.T) {
	link := NewHandoffBuilder("5511999990000", "").Build(testLead(), Facts{}, Classification{Score: 6, Priority: PriorityMedium})
	number, err := HandoffNumber(link)
	require.NoError(t, err)
	assert.Equal(t, "5511999990000", number)

	_, err = HandoffNumber("https://wa.me/?text=oi")
	assert.Error(t, err)
}
