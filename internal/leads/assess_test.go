package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessQualifiedTranscript(t *testing.T) {
	turns := dialogue("quero R$150.000", "é urgente")

	a := Assess(CategoryRealEstate, turns)

	assert.Equal(t, 150000, a.Facts.EstimatedValue)
	assert.Equal(t, "urgente", a.Facts.Timeline)
	assert.True(t, a.Decision.ShouldEnd)
	assert.True(t, a.Decision.HasInterest)
	assert.Equal(t, Score(CategoryRealEstate, turns, a.Facts), a.Classification)
}

func TestAssessPenalizesLostInterest(t *testing.T) {
	turns := []Turn{{Role: RoleAgent, Content: "Oi!"}, {Role: RoleLead, Content: "na verdade mudei de ideia"}}

	a := Assess(CategoryAuto, turns)

	require.True(t, a.Decision.ShouldEnd)
	assert.False(t, a.Decision.HasInterest)
	assert.Equal(t, Score(CategoryAuto, turns, a.Facts).Penalize(), a.Classification)
}

func TestParseTranscript(t *testing.T) {
	text := `
agent: Olá Maria! Tudo bem?
user: Tudo! Quero uma casa
de uns R$ 200 mil

assistant: Ótimo!
lead: tchau
`
	turns, err := ParseTranscript(text)
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, Turn{Role: RoleAgent, Content: "Olá Maria! Tudo bem?"}, turns[0])
	assert.Equal(t, Turn{Role: RoleLead, Content: "Tudo! Quero uma casa\nde uns R$ 200 mil"}, turns[1])
	assert.Equal(t, RoleAgent, turns[2].Role)
	assert.Equal(t, RoleLead, turns[3].Role)
}

func TestParseTranscriptRequiresLeadingRole(t *testing.T) {
	_, err := ParseTranscript("olá sem prefixo")
	assert.Error(t, err)
}
