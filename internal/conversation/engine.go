package conversation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/lead-agent/internal/leads"
	"github.com/ziadkadry99/lead-agent/internal/notifications"
	"github.com/ziadkadry99/lead-agent/internal/records"
)

// ErrInternalFault is returned when evaluating a turn panics. The identity's
// state has been discarded by the time it is returned.
var ErrInternalFault = errors.New("internal fault while evaluating conversation")

// notifyTimeout bounds the background hot-lead webhook call.
const notifyTimeout = 15 * time.Second

// TurnRequest is one lead message (or the opening of a chat) to process.
type TurnRequest struct {
	Lead        leads.Lead   `json:"lead"`
	Messages    []leads.Turn `json:"messages"`
	IsFirstTurn bool         `json:"is_first_turn"`
}

// TurnResponse is the agent's answer to a TurnRequest.
type TurnResponse struct {
	Reply          string                `json:"message"`
	ShouldEnd      bool                  `json:"should_end"`
	HasInterest    bool                  `json:"has_interest"`
	Classification *leads.Classification `json:"classification"`
	HandoffLink    *string               `json:"handoff_link"`
	AttendanceID   string                `json:"attendance_id,omitempty"`
}

// Recorder persists terminated conversations.
type Recorder interface {
	Append(ctx context.Context, a *records.Attendance) error
}

// Notifier alerts about hot leads after a conversation ends.
type Notifier interface {
	Notify(ctx context.Context, a *records.Attendance) (*notifications.Notification, error)
}

// Options configures an Engine. Only Generator is required.
type Options struct {
	Generator Generator
	States    StateStore
	Recorder  Recorder
	Notifier  Notifier
	Handoff   *leads.HandoffBuilder
	Persona   Persona
	Logger    *logrus.Logger
}

// Engine runs the per-turn conversation state machine.
type Engine struct {
	gen      Generator
	states   StateStore
	recorder Recorder
	notifier Notifier
	handoff  *leads.HandoffBuilder
	persona  Persona
	locks    *KeyedMutex
	log      *logrus.Entry
	pending  sync.WaitGroup

	detect   func([]leads.Turn, leads.Facts) leads.Decision
	classify func(leads.Category, []leads.Turn, leads.Facts) leads.Classification
}

// NewEngine creates an Engine. Missing collaborators fall back to an
// in-memory state store, no recording and no notifications.
func NewEngine(opts Options) *Engine {
	if opts.States == nil {
		opts.States = NewMemoryStore()
	}
	if opts.Handoff == nil {
		opts.Handoff = leads.NewHandoffBuilder("", opts.Persona.CompanyName)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Engine{
		gen:      opts.Generator,
		states:   opts.States,
		recorder: opts.Recorder,
		notifier: opts.Notifier,
		handoff:  opts.Handoff,
		persona:  opts.Persona.withDefaults(),
		locks:    NewKeyedMutex(),
		log:      opts.Logger.WithField("component", "conversation"),
		detect:   leads.DetectTermination,
		classify: leads.Score,
	}
}

// HandleTurn processes one turn. Validation errors are returned before any
// state is touched; generation failures are answered with FallbackReply.
func (e *Engine) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	if err := req.Lead.Validate(); err != nil {
		return nil, err
	}
	for i, t := range req.Messages {
		if t.Role != leads.RoleLead && t.Role != leads.RoleAgent {
			return nil, &leads.ValidationError{Field: fmt.Sprintf("messages[%d].role", i), Err: leads.ErrInvalidRole}
		}
	}

	id := req.Lead.Identity()
	unlock := e.locks.Lock(id)
	defer unlock()

	entry := e.log.WithFields(logrus.Fields{
		"lead":     hashIdentity(id),
		"category": req.Lead.Category,
		"turns":    len(req.Messages),
	})

	st, err := e.states.Update(ctx, id, func(s *State) error {
		s.Facts = s.Facts.Merge(leads.ExtractFromTurns(req.Messages))
		s.TurnCount = len(req.Messages)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating conversation state: %w", err)
	}

	if req.IsFirstTurn {
		entry.Debug("greeting sent")
		return &TurnResponse{Reply: Greeting(req.Lead), HasInterest: true}, nil
	}

	reply, err := e.gen.Generate(ctx, e.persona.Instruction(req.Lead, st), req.Messages)
	if err != nil {
		entry.WithError(err).Warn("generation failed, sending fallback")
		return &TurnResponse{Reply: FallbackReply, HasInterest: true}, nil
	}

	decision, class, err := e.evaluate(req, st)
	if err != nil {
		entry.WithError(err).Error("conversation evaluation failed")
		if delErr := e.states.Delete(ctx, id); delErr != nil {
			entry.WithError(delErr).Error("discarding conversation state")
		}
		return nil, err
	}

	resp := &TurnResponse{Reply: reply, ShouldEnd: decision.ShouldEnd, HasInterest: decision.HasInterest}
	if !decision.ShouldEnd {
		return resp, nil
	}

	link := e.handoff.Build(req.Lead, st.Facts, class)
	resp.Classification = &class
	resp.HandoffLink = &link
	if decision.HasInterest && !mentionsHandoff(reply) {
		resp.Reply += ClosingRemark(req.Lead)
	}

	if err := e.states.Delete(ctx, id); err != nil {
		entry.WithError(err).Error("deleting terminated conversation")
	}

	entry.WithFields(logrus.Fields{
		"rule":     decision.Rule,
		"interest": decision.HasInterest,
		"score":    class.Score,
		"priority": class.Priority,
	}).Info("conversation terminated")

	resp.AttendanceID = e.finish(ctx, entry, req, st, decision, class, link)
	return resp, nil
}

// evaluate runs termination and, when ending, classification. A panic in either
// is converted to ErrInternalFault.
func (e *Engine) evaluate(req TurnRequest, st State) (d leads.Decision, c leads.Classification, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternalFault, r)
		}
	}()

	d = e.detect(req.Messages, st.Facts)
	if !d.ShouldEnd {
		return d, c, nil
	}
	c = e.classify(req.Lead.Category, req.Messages, st.Facts)
	if !d.HasInterest {
		c = c.Penalize()
	}
	return d, c, nil
}

// finish appends the attendance record and fires the hot-lead notification in
// the background. It returns the record ID, or "" when nothing was recorded.
func (e *Engine) finish(ctx context.Context, entry *logrus.Entry, req TurnRequest, st State, d leads.Decision, c leads.Classification, link string) string {
	if e.recorder == nil {
		return ""
	}

	a := &records.Attendance{
		Lead:           req.Lead,
		Turns:          append([]leads.Turn(nil), req.Messages...),
		Facts:          st.Facts,
		Classification: c,
		HasInterest:    d.HasInterest,
		HandoffLink:    link,
		Status:         records.StatusFor(d.HasInterest),
	}
	if err := e.recorder.Append(ctx, a); err != nil {
		entry.WithError(err).Error("recording attendance")
		return ""
	}

	if e.notifier != nil {
		e.pending.Add(1)
		go func() {
			defer e.pending.Done()
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
			defer cancel()
			if _, err := e.notifier.Notify(nctx, a); err != nil {
				entry.WithError(err).Warn("hot lead notification failed")
			}
		}()
	}
	return a.ID
}

// Wait blocks until background notifications have finished.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// hashIdentity keeps contact details out of the logs.
func hashIdentity(id leads.Identity) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:6])
}
