package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/dumpling/internal/logging"
	"github.com/aretw0/dumpling/pkg/domain"
)

// Engine applies navigation and answer operations to session states.
// It is stateless: every operation clones its input and returns the next state.
type Engine struct {
	catalog *domain.Catalog
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for UpdatedAt and events.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over a catalog.
func NewEngine(catalog *domain.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		logger:  logging.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine walks.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Navigator binds a navigator to the position of state.
func (e *Engine) Navigator(state *domain.State) *Navigator {
	return NewNavigator(e.catalog, &state.Position)
}

// Next moves forward one step. In the content phase the move is gated by
// IsAdvanceAllowed and domain.ErrAdvanceBlocked is returned when it fails.
func (e *Engine) Next(ctx context.Context, state *domain.State) (*domain.State, error) {
	next := state.Snapshot()
	nav := e.Navigator(next)

	if nav.Phase() == domain.PhaseContent {
		idx := next.Position.ContentIndex
		if !nav.IsAdvanceAllowed(idx, next.Answers, next.CustomAnswers) {
			e.logger.Debug("advance blocked", "session_id", state.SessionID, "content_index", idx)
			if e.hooks.OnAdvanceBlocked != nil {
				e.hooks.OnAdvanceBlocked(ctx, e.stepEvent(next, domain.EventAdvanceBlocked))
			}
			return nil, domain.ErrAdvanceBlocked
		}
	}

	return e.move(ctx, state, next, nav.Advance), nil
}

// Back moves backward one step. It never fails.
func (e *Engine) Back(ctx context.Context, state *domain.State) *domain.State {
	next := state.Snapshot()
	nav := e.Navigator(next)
	return e.move(ctx, state, next, nav.Retreat)
}

// Reset discards the position, answers and result of the session.
func (e *Engine) Reset(ctx context.Context, state *domain.State) *domain.State {
	next := domain.NewState(state.SessionID)
	next.CreatedAt = state.CreatedAt
	next.Contact = state.Contact
	return e.move(ctx, state, next, func() {})
}

func (e *Engine) move(ctx context.Context, prev, next *domain.State, step func()) *domain.State {
	before := prev.Position
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, e.stepEvent(prev, domain.EventStepLeave))
	}
	step()
	next.UpdatedAt = e.now()
	if next.Position != before {
		e.logger.Debug("position changed",
			"session_id", next.SessionID,
			"from", before,
			"to", next.Position)
	}
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, e.stepEvent(next, domain.EventStepEnter))
	}
	return next
}

// Answer records the selected option of a question or timeline step.
func (e *Engine) Answer(state *domain.State, stepID int, value string) (*domain.State, error) {
	step, ok := e.catalog.StepByID(stepID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownStep, stepID)
	}

	switch s := step.(type) {
	case domain.QuestionStep:
		if !s.HasOption(value) {
			return nil, fmt.Errorf("%w: %q is not an option of step %d", domain.ErrInvalidOption, value, stepID)
		}
	case domain.TimelineStep:
		if !s.HasOption(value) {
			return nil, fmt.Errorf("%w: %q is not an option of step %d", domain.ErrInvalidOption, value, stepID)
		}
	default:
		return nil, fmt.Errorf("%w: step %d is a %s step", domain.ErrStepKindMismatch, stepID, step.Kind())
	}

	next := state.Snapshot()
	next.Answers[stepID] = value
	next.UpdatedAt = e.now()
	return next, nil
}

// CustomAnswer records the free-text override of a question step.
func (e *Engine) CustomAnswer(state *domain.State, stepID int, text string) (*domain.State, error) {
	step, ok := e.catalog.StepByID(stepID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownStep, stepID)
	}
	q, ok := step.(domain.QuestionStep)
	if !ok || q.CustomOption == "" {
		return nil, fmt.Errorf("%w: step %d does not accept custom answers", domain.ErrStepKindMismatch, stepID)
	}

	next := state.Snapshot()
	if text == "" {
		delete(next.CustomAnswers, stepID)
	} else {
		next.CustomAnswers[stepID] = text
	}
	next.UpdatedAt = e.now()
	return next, nil
}

// SetControls records the tuned values of a controls step.
func (e *Engine) SetControls(state *domain.State, stepID int, value domain.ControlValue) (*domain.State, error) {
	step, ok := e.catalog.StepByID(stepID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownStep, stepID)
	}
	if _, ok := step.(domain.ControlsStep); !ok {
		return nil, fmt.Errorf("%w: step %d is a %s step", domain.ErrStepKindMismatch, stepID, step.Kind())
	}

	next := state.Snapshot()
	next.Controls[stepID] = value.Clone()
	next.UpdatedAt = e.now()
	return next, nil
}

// View derives the presentation values of a session.
func (e *Engine) View(state *domain.State) domain.View {
	pos := state.Position
	nav := NewNavigator(e.catalog, &pos)

	v := domain.View{
		SessionID:    state.SessionID,
		Status:       state.Status,
		Phase:        nav.Phase(),
		Position:     pos,
		Progress:     nav.Progress(state.HasResult()),
		Title:        nav.Title(),
		TitleVisible: nav.TitleVisible(state.HasResult(), state.Generating),
		Completed:    nav.Completed(),
		Result:       state.Result,
	}

	if intro, ok := nav.CurrentIntro(); ok {
		v.IntroStep = intro
		v.StepKind = string(intro.Kind())
		v.CanAdvance = true
	}
	if step, ok := nav.CurrentContent(); ok {
		v.ContentStep = step
		v.StepKind = string(step.Kind())
	}
	if nav.Phase() == domain.PhaseContent {
		v.CanAdvance = !v.Completed && nav.IsAdvanceAllowed(pos.ContentIndex, state.Answers, state.CustomAnswers)
	}
	return v
}

func (e *Engine) stepEvent(state *domain.State, typ domain.EventType) *domain.StepEvent {
	ev := &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      typ,
			SessionID: state.SessionID,
		},
		Phase: state.Position.Phase(),
	}
	pos := state.Position
	nav := NewNavigator(e.catalog, &pos)
	if intro, ok := nav.CurrentIntro(); ok {
		ev.Index = pos.IntroIndex
		ev.Kind = string(intro.Kind())
	} else if step, ok := nav.CurrentContent(); ok {
		ev.Index = pos.ContentIndex
		ev.Kind = string(step.Kind())
	} else if pos.Started {
		ev.Index = pos.ContentIndex
		ev.Kind = "submit"
	}
	return ev
}
