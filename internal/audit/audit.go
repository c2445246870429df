package audit

import (
	"context"
	"time"
)

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
)

// Action describes what happened to an attendance.
type Action string

const (
	ActionRecorded      Action = "recorded"
	ActionStatusChanged Action = "status_changed"
	ActionReclassified  Action = "reclassified"
)

// Entry is a single audit trail record.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	ActorType     ActorType `json:"actor_type"`
	ActorID       string    `json:"actor_id"`
	Action        Action    `json:"action"`
	AttendanceID  string    `json:"attendance_id"`
	Summary       string    `json:"summary,omitempty"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
}

// Actor is who an audited change is attributed to.
type Actor struct {
	Type ActorType
	ID   string
}

// DefaultActor is used when the context carries no actor.
var DefaultActor = Actor{Type: ActorSystem, ID: "leadagent"}

type actorKey struct{}

// WithActor attributes changes made with ctx to the given actor.
func WithActor(ctx context.Context, typ ActorType, id string) context.Context {
	return context.WithValue(ctx, actorKey{}, Actor{Type: typ, ID: id})
}

// ActorFrom returns the actor stored by WithActor, or DefaultActor.
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return DefaultActor
}
