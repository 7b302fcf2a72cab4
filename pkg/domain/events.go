package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter      EventType = "step_enter"
	EventStepLeave      EventType = "step_leave"
	EventAdvanceBlocked EventType = "advance_blocked"
	EventGenerate       EventType = "generate"
	EventDelivery       EventType = "delivery"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	Phase Phase  `json:"phase"`
	Index int    `json:"index"`
	Kind  string `json:"kind"`
}

// GenerateEvent reports a finished generator call.
type GenerateEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// DeliveryEvent reports the outcome of one delivery channel.
type DeliveryEvent struct {
	EventBase
	Channel Channel `json:"channel"`
	IsError bool    `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for wizard observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnStepEnter      func(context.Context, *StepEvent)
	OnStepLeave      func(context.Context, *StepEvent)
	OnAdvanceBlocked func(context.Context, *StepEvent)
	OnGenerate       func(context.Context, *GenerateEvent)
	OnDelivery       func(context.Context, *DeliveryEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:      chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:      chain(h.OnStepLeave, other.OnStepLeave),
		OnAdvanceBlocked: chain(h.OnAdvanceBlocked, other.OnAdvanceBlocked),
		OnGenerate:       chain(h.OnGenerate, other.OnGenerate),
		OnDelivery:       chain(h.OnDelivery, other.OnDelivery),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
