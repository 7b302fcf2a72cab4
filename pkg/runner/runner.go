package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/dumpling/internal/logging"
	"github.com/aretw0/dumpling/pkg/domain"
)

// Wizard is the part of the dumpling facade the runner drives.
type Wizard interface {
	Start(ctx context.Context, sessionID string) (*domain.State, error)
	Load(ctx context.Context, sessionID string) (*domain.State, error)
	Next(ctx context.Context, sessionID string) (*domain.State, error)
	Back(ctx context.Context, sessionID string) (*domain.State, error)
	Reset(ctx context.Context, sessionID string) (*domain.State, error)
	Answer(ctx context.Context, sessionID string, stepID int, value string) (*domain.State, error)
	CustomAnswer(ctx context.Context, sessionID string, stepID int, text string) (*domain.State, error)
	SetControls(ctx context.Context, sessionID string, stepID int, value domain.ControlValue) (*domain.State, error)
	SetContact(ctx context.Context, sessionID string, contact string) (*domain.State, error)
	Generate(ctx context.Context, sessionID string) (*domain.State, error)
	Deliver(ctx context.Context, sessionID string, channels ...domain.Channel) ([]domain.Notification, error)
	ViewOf(state *domain.State) domain.View
}

// Runner handles the interaction loop of one wizard session.
type Runner struct {
	Wizard    Wizard
	Handler   IOHandler
	Policy    DeliveryPolicy
	Logger    *slog.Logger
	SessionID string
	Headless  bool
	Renderer  ContentRenderer
}

// NewRunner creates a Runner over a wizard.
func NewRunner(wiz Wizard, opts ...Option) *Runner {
	r := &Runner{
		Wizard: wiz,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const helpText = `Commands:
  <enter> | next          advance
  back                    go back
  <n> | <option>          answer the current step
  custom <text>           answer in your own words
  set name=value ...      tune the dumpling
  contact <email>         set the delivery address
  generate                cook the recipe
  deliver [print save email]
  reset                   start over
  quit`

// Run executes the loop until the input ends, the user quits or a signal
// arrives. It returns the last state of the session; progress is persisted by
// the wizard after every command, so an interrupted session can be resumed.
func (r *Runner) Run(ctx context.Context) (*domain.State, error) {
	handler := r.resolveHandler()
	policy := r.resolvePolicy(handler)

	state, err := r.resolveSession(ctx)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("runner started", "session_id", state.SessionID, "headless", r.Headless)

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	redraw := true
	for {
		loopCtx := signals.Context()
		if redraw {
			if err := handler.Output(loopCtx, Frame{State: state, View: r.Wizard.ViewOf(state)}); err != nil {
				return state, fmt.Errorf("output error: %w", err)
			}
		}

		line, err := handler.Input(loopCtx)
		if err != nil {
			signals.CheckRace()
			if loopCtx.Err() != nil {
				if signals.Interrupted() {
					_ = handler.SystemOutput(context.Background(),
						fmt.Sprintf("Interrupted. Resume with session %s.", state.SessionID))
					return state, nil
				}
				return state, ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return state, nil
			}
			return state, fmt.Errorf("input error: %w", err)
		}

		cmd := ParseCommand(line)
		switch cmd.Verb {
		case VerbQuit:
			return state, nil
		case VerbHelp:
			_ = handler.SystemOutput(loopCtx, helpText)
			redraw = false
			continue
		}

		next, err := r.apply(loopCtx, handler, policy, state, cmd)
		if err != nil {
			r.Logger.Debug("command rejected", "session_id", state.SessionID, "verb", cmd.Verb, "error", err)
			if outErr := handler.SystemOutput(loopCtx, describeError(err)); outErr != nil {
				return state, outErr
			}
			redraw = false
			continue
		}
		redraw = next != state
		state = next
	}
}

func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	if r.Headless {
		r.Handler = NewJSONHandler(os.Stdin, os.Stdout)
	} else {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	}
	return r.Handler
}

func (r *Runner) resolvePolicy(h IOHandler) DeliveryPolicy {
	if r.Policy != nil {
		return r.Policy
	}
	if r.Headless {
		return AutoApprovePolicy()
	}
	return ConfirmationPolicy(h)
}

func (r *Runner) resolveSession(ctx context.Context) (*domain.State, error) {
	if r.SessionID != "" {
		state, err := r.Wizard.Load(ctx, r.SessionID)
		if err == nil {
			r.Logger.Debug("session resumed", "session_id", r.SessionID)
			return state, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
		}
	}
	return r.Wizard.Start(ctx, r.SessionID)
}

// apply runs one command. It returns the unchanged state for commands that
// only produce system output.
func (r *Runner) apply(ctx context.Context, h IOHandler, policy DeliveryPolicy, state *domain.State, cmd Command) (*domain.State, error) {
	id := state.SessionID
	view := r.Wizard.ViewOf(state)

	switch cmd.Verb {
	case VerbNext:
		return r.Wizard.Next(ctx, id)
	case VerbBack:
		return r.Wizard.Back(ctx, id)
	case VerbReset:
		return r.Wizard.Reset(ctx, id)
	case VerbGenerate:
		if err := h.SystemOutput(ctx, "Folding your dumplings..."); err != nil {
			return nil, err
		}
		return r.Wizard.Generate(ctx, id)

	case VerbAnswer:
		if view.ContentStep == nil {
			return nil, errNoChoice
		}
		value, err := resolveOption(view.ContentStep, cmd.Text)
		if err != nil {
			return nil, err
		}
		next, err := r.Wizard.Answer(ctx, id, view.ContentStep.StepID(), value)
		if err != nil {
			return nil, err
		}
		if q, ok := view.ContentStep.(domain.QuestionStep); ok && value == q.CustomOption && next.CustomAnswers[q.ID] == "" {
			_ = h.SystemOutput(ctx, "Tell us more: custom <text>")
			return next, nil
		}
		return r.advanceIfAllowed(ctx, next)

	case VerbCustom:
		q, ok := view.ContentStep.(domain.QuestionStep)
		if !ok || q.CustomOption == "" {
			return nil, errNoCustom
		}
		if state.Answers[q.ID] != q.CustomOption {
			if _, err := r.Wizard.Answer(ctx, id, q.ID, q.CustomOption); err != nil {
				return nil, err
			}
		}
		next, err := r.Wizard.CustomAnswer(ctx, id, q.ID, cmd.Text)
		if err != nil {
			return nil, err
		}
		return r.advanceIfAllowed(ctx, next)

	case VerbSet:
		c, ok := view.ContentStep.(domain.ControlsStep)
		if !ok {
			return nil, errNoControls
		}
		value, err := applyControls(c, state.Controls[c.ID], cmd.Text)
		if err != nil {
			return nil, err
		}
		return r.Wizard.SetControls(ctx, id, c.ID, value)

	case VerbContact:
		next, err := r.Wizard.SetContact(ctx, id, cmd.Text)
		if err != nil {
			return nil, err
		}
		msg := "Contact cleared."
		if next.Contact != "" {
			msg = "Recipes will be emailed to " + next.Contact + "."
		}
		_ = h.SystemOutput(ctx, msg)
		return next, nil

	case VerbDeliver:
		channels, err := parseChannels(cmd.Text)
		if err != nil {
			return nil, err
		}
		if !state.HasResult() {
			return nil, domain.ErrNoResult
		}
		ok, err := policy(ctx, state.Contact, channels)
		if err != nil {
			return nil, err
		}
		if !ok {
			_ = h.SystemOutput(ctx, "Delivery cancelled.")
			return state, nil
		}
		notes, err := r.Wizard.Deliver(ctx, id, channels...)
		if err != nil {
			return nil, err
		}
		_ = h.SystemOutput(ctx, formatNotifications(notes))
		return state, nil
	}
	return nil, fmt.Errorf("unsupported command %q", cmd.Verb)
}

// advanceIfAllowed moves past a step that was just answered.
func (r *Runner) advanceIfAllowed(ctx context.Context, state *domain.State) (*domain.State, error) {
	if !r.Wizard.ViewOf(state).CanAdvance {
		return state, nil
	}
	return r.Wizard.Next(ctx, state.SessionID)
}

func formatNotifications(notes []domain.Notification) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		mark := "ok"
		if !n.Success {
			mark = "failed"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", mark, n.Channel, n.Message))
	}
	return strings.Join(lines, "\n")
}

func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAdvanceBlocked):
		return "Answer this step before moving on."
	case errors.Is(err, domain.ErrNotReady):
		return "Finish every step before cooking."
	case errors.Is(err, domain.ErrNoResult):
		return "There is no recipe yet. Type generate first."
	case errors.Is(err, domain.ErrGenerating):
		return "Your dumplings are still folding."
	case errors.Is(err, domain.ErrInvalidContact):
		return "That does not look like an email address."
	}
	return "Error: " + err.Error()
}
