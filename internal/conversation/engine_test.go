package conversation

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/lead-agent/internal/db"
	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/notifications"
	"github.com/ziadkadry99/lead-agent/internal/records"
)

type stubGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []string
}

func (g *stubGenerator) Generate(_ context.Context, instruction string, _ []leads.Turn) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, instruction)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type stubNotifier struct {
	mu   sync.Mutex
	seen []*records.Attendance
}

func (n *stubNotifier) Notify(_ context.Context, a *records.Attendance) (*notifications.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, a)
	return &notifications.Notification{AttendanceID: a.ID}, nil
}

type harness struct {
	engine   *Engine
	gen      *stubGenerator
	states   *MemoryStore
	records  *records.Store
	notifier *stubNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		gen:      &stubGenerator{reply: "Que ótimo! Qual valor você tem em mente?"},
		states:   NewMemoryStore(),
		records:  records.NewStore(database),
		notifier: &stubNotifier{},
	}
	h.engine = NewEngine(Options{
		Generator: h.gen,
		States:    h.states,
		Recorder:  h.records,
		Notifier:  h.notifier,
		Logger:    logger,
	})
	return h
}

func maria() leads.Lead {
	return leads.Lead{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Phone:    "85988887777",
		Category: leads.CategoryRealEstate,
	}
}

func agent(text string) leads.Turn { return leads.Turn{Role: leads.RoleAgent, Content: text} }
func lead(text string) leads.Turn  { return leads.Turn{Role: leads.RoleLead, Content: text} }

func TestFirstTurnGreetsWithoutGeneration(t *testing.T) {
	h := newHarness(t)
	l := maria()
	l.Message = "Quero comprar um apartamento"

	resp, err := h.engine.HandleTurn(context.Background(), TurnRequest{Lead: l, IsFirstTurn: true})
	require.NoError(t, err)

	assert.Equal(t, `Oi Maria! 😊 Vi que você tem interesse em imóvel e mencionou: "Quero comprar um apartamento". Me conta mais sobre o que você está buscando!`, resp.Reply)
	assert.False(t, resp.ShouldEnd)
	assert.True(t, resp.HasInterest)
	assert.Nil(t, resp.Classification)
	assert.Nil(t, resp.HandoffLink)
	assert.Zero(t, h.gen.callCount())

	_, ok, _ := h.states.Get(context.Background(), l.Identity())
	assert.True(t, ok, "state is created on the first turn")
}

func TestSecondTurnExtractsFactsAndContinues(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	msgs := []leads.Turn{
		agent(Greeting(maria())),
		lead("quero saber sobre imóvel de R$150.000, é urgente"),
	}

	resp, err := h.engine.HandleTurn(ctx, TurnRequest{Lead: maria(), Messages: msgs})
	require.NoError(t, err)
	assert.False(t, resp.ShouldEnd)
	assert.True(t, resp.HasInterest)
	assert.Equal(t, h.gen.reply, resp.Reply)

	st, ok, err := h.states.Get(ctx, maria().Identity())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 150000, st.Facts.EstimatedValue)
	assert.Equal(t, "urgente", st.Facts.Timeline)
	assert.Equal(t, 2, st.TurnCount)

	require.Equal(t, 1, h.gen.callCount())
	assert.Contains(t, h.gen.calls[0], "Valor aproximado: R$ 150.000")
	assert.Contains(t, h.gen.calls[0], "Prazo: urgente")
}

func TestFactsCollectedEndsWithHandoff(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	msgs := []leads.Turn{
		agent(Greeting(maria())),
		lead("quero uma carta de R$150.000"),
		agent("Legal! E tem prazo?"),
		lead("é urgente"),
	}

	resp, err := h.engine.HandleTurn(ctx, TurnRequest{Lead: maria(), Messages: msgs})
	require.NoError(t, err)
	h.engine.Wait()

	assert.True(t, resp.ShouldEnd)
	assert.True(t, resp.HasInterest)
	require.NotNil(t, resp.Classification)
	assert.Equal(t, leads.Classification{Score: 10, Priority: leads.PriorityHigh}, *resp.Classification)
	require.NotNil(t, resp.HandoffLink)

	got, err := leads.ParseHandoff(*resp.HandoffLink)
	require.NoError(t, err)
	assert.Equal(t, *resp.Classification, got)

	assert.True(t, strings.HasPrefix(resp.Reply, h.gen.reply))
	assert.Contains(t, resp.Reply, "especialistas entrará em contato")

	_, ok, _ := h.states.Get(ctx, maria().Identity())
	assert.False(t, ok, "state is deleted on termination")

	a, err := h.records.Get(ctx, resp.AttendanceID)
	require.NoError(t, err)
	assert.Equal(t, records.StatusForwarded, a.Status)
	assert.Len(t, a.Turns, 4)
	assert.Equal(t, *resp.HandoffLink, a.HandoffLink)

	require.Len(t, h.notifier.seen, 1)
	assert.Equal(t, resp.AttendanceID, h.notifier.seen[0].ID)
}

func TestNoInterestIsPenalized(t *testing.T) {
	h := newHarness(t)
	h.gen.reply = "Tudo bem, Maria! Obrigada pelo seu tempo."
	l := maria()
	l.Category = leads.CategoryAuto
	msgs := []leads.Turn{
		agent(Greeting(l)),
		agent("Posso te ajudar com alguma dúvida?"),
		lead("não tenho interesse, obrigado"),
	}

	resp, err := h.engine.HandleTurn(context.Background(), TurnRequest{Lead: l, Messages: msgs})
	require.NoError(t, err)
	h.engine.Wait()

	assert.True(t, resp.ShouldEnd)
	assert.False(t, resp.HasInterest)
	require.NotNil(t, resp.Classification)
	// 5 base + 1.5 auto + 0.5 volume = 7, minus the five point penalty
	assert.Equal(t, leads.Classification{Score: 2, Priority: leads.PriorityLow}, *resp.Classification)
	assert.Equal(t, h.gen.reply, resp.Reply, "no closing remark without interest")
	require.NotNil(t, resp.HandoffLink)

	a, err := h.records.Get(context.Background(), resp.AttendanceID)
	require.NoError(t, err)
	assert.Equal(t, records.StatusCompleted, a.Status)
	require.Len(t, h.notifier.seen, 1, "the notifier decides whether to alert")
	assert.False(t, h.notifier.seen[0].HasInterest)
}

func TestReplyMentioningHandoffGetsNoClosingRemark(t *testing.T) {
	h := newHarness(t)
	h.gen.reply = "Perfeito! Vou te passar para um especialista no WhatsApp."
	msgs := []leads.Turn{
		agent("Oi!"), lead("quero R$ 80.000"),
		agent("E o prazo?"), lead("próximo mês"),
	}

	resp, err := h.engine.HandleTurn(context.Background(), TurnRequest{Lead: maria(), Messages: msgs})
	require.NoError(t, err)
	h.engine.Wait()
	assert.True(t, resp.ShouldEnd)
	assert.Equal(t, h.gen.reply, resp.Reply)
}

func TestGenerationFailureFallsBack(t *testing.T) {
	h := newHarness(t)
	h.gen.err = errors.New("upstream timeout")
	ctx := context.Background()
	msgs := []leads.Turn{
		agent("Oi!"), lead("quero R$150.000"),
		agent("E o prazo?"), lead("é urgente"),
	}

	resp, err := h.engine.HandleTurn(ctx, TurnRequest{Lead: maria(), Messages: msgs})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, resp.Reply)
	assert.False(t, resp.ShouldEnd, "termination is not evaluated on failure")
	assert.Nil(t, resp.Classification)

	st, ok, _ := h.states.Get(ctx, maria().Identity())
	require.True(t, ok, "conversation stays active")
	assert.Equal(t, 4, st.TurnCount)
	assert.Equal(t, 150000, st.Facts.EstimatedValue)
}

func TestInternalFaultDiscardsState(t *testing.T) {
	h := newHarness(t)
	h.engine.detect = func([]leads.Turn, leads.Facts) leads.Decision { panic("boom") }
	ctx := context.Background()

	_, err := h.engine.HandleTurn(ctx, TurnRequest{Lead: maria(), Messages: []leads.Turn{agent("Oi!"), lead("R$ 90.000")}})
	require.ErrorIs(t, err, ErrInternalFault)

	_, ok, _ := h.states.Get(ctx, maria().Identity())
	assert.False(t, ok)

	h.engine.detect = leads.DetectTermination
	resp, err := h.engine.HandleTurn(ctx, TurnRequest{Lead: maria(), Messages: []leads.Turn{agent("Oi!"), lead("me explica")}})
	require.NoError(t, err, "the process keeps serving")
	assert.False(t, resp.ShouldEnd)
}

func TestFreshConversationAfterTermination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.engine.HandleTurn(ctx, TurnRequest{Lead: maria(), Messages: []leads.Turn{
		agent("Oi!"), lead("quero R$150.000"), agent("Prazo?"), lead("urgente"),
	}})
	require.NoError(t, err)
	h.engine.Wait()

	_, err = h.engine.HandleTurn(ctx, TurnRequest{Lead: maria(), IsFirstTurn: true})
	require.NoError(t, err)
	st, ok, _ := h.states.Get(ctx, maria().Identity())
	require.True(t, ok)
	assert.Equal(t, leads.Facts{}, st.Facts)
}

func TestMalformedInputRejectedBeforeState(t *testing.T) {
	h := newHarness(t)
	bad := maria()
	bad.Email = ""

	_, err := h.engine.HandleTurn(context.Background(), TurnRequest{Lead: bad, Messages: []leads.Turn{lead("oi")}})
	var ve *leads.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
	assert.Zero(t, h.states.Len())
	assert.Zero(t, h.gen.callCount())

	_, err = h.engine.HandleTurn(context.Background(), TurnRequest{Lead: maria(), Messages: []leads.Turn{{Role: "system", Content: "x"}}})
	assert.ErrorIs(t, err, leads.ErrInvalidRole)
	assert.Zero(t, h.states.Len())
}

func TestConcurrentIdentitiesAreIndependent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := maria()
			l.Phone = "8598888" + string(rune('0'+i/10)) + string(rune('0'+i%10)) + "00"
			_, err := h.engine.HandleTurn(ctx, TurnRequest{Lead: l, Messages: []leads.Turn{agent("Oi!"), lead("quero R$ 50.000")}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, h.states.Len())
}
