package intake

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/lead-agent/internal/conversation"
	"github.com/ziadkadry99/lead-agent/internal/leads"
)

// Service registers leads from the contact form.
type Service struct {
	store   *Store
	gen     conversation.Generator
	persona conversation.Persona
	handoff *leads.HandoffBuilder
	log     *logrus.Entry
}

// NewService creates a Service. gen may be nil, in which case every lead gets
// the static welcome.
func NewService(store *Store, gen conversation.Generator, persona conversation.Persona, handoff *leads.HandoffBuilder, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if handoff == nil {
		handoff = leads.NewHandoffBuilder("", persona.CompanyName)
	}
	return &Service{
		store:   store,
		gen:     gen,
		persona: persona,
		handoff: handoff,
		log:     logger.WithField("component", "intake"),
	}
}

// Register validates the lead, pre-scores it, asks for a welcome reply and
// stores the result.
func (s *Service) Register(ctx context.Context, lead leads.Lead) (*Record, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	rec := &Record{
		Lead:           lead,
		Classification: leads.IntakeScore(lead),
		ContactLink:    s.handoff.Intake(lead),
		Welcome:        s.welcome(ctx, lead),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("registering lead: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"lead_id":  rec.ID,
		"category": lead.Category,
		"score":    rec.Classification.Score,
		"priority": rec.Classification.Priority,
	}).Info("lead registered")
	return rec, nil
}

func (s *Service) welcome(ctx context.Context, lead leads.Lead) string {
	if s.gen == nil {
		return conversation.FallbackWelcome
	}
	reply, err := s.gen.Generate(ctx, s.persona.WelcomeInstruction(lead), nil)
	if err != nil {
		s.log.WithError(err).Warn("welcome generation failed, using static text")
		return conversation.FallbackWelcome
	}
	return reply
}
