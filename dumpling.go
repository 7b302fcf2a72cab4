package dumpling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/dumpling/internal/logging"
	"github.com/aretw0/dumpling/internal/runtime"
	"github.com/aretw0/dumpling/pkg/adapters/generator"
	"github.com/aretw0/dumpling/pkg/adapters/memory"
	"github.com/aretw0/dumpling/pkg/adapters/notify"
	"github.com/aretw0/dumpling/pkg/adapters/printer"
	"github.com/aretw0/dumpling/pkg/catalog"
	"github.com/aretw0/dumpling/pkg/delivery"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/observability"
	"github.com/aretw0/dumpling/pkg/ports"
	"github.com/aretw0/dumpling/pkg/session"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// StateObserver is called after every persisted change of a session.
type StateObserver func(ctx context.Context, prev, next *domain.State)

// Wizard is the high-level entry point of the library.
// It owns the session lifecycle and wires the engine to its collaborators.
type Wizard struct {
	engine     *runtime.Engine
	catalog    *domain.Catalog
	store      ports.StateStore
	locker     ports.DistributedLocker
	sessions   *session.Manager
	generator  ports.RecipeGenerator
	renderer   ports.DocumentRenderer
	recorder   ports.RecipeRecorder
	notifier   ports.Notifier
	dispatcher *delivery.Dispatcher
	monitor    *observability.GenerationMonitor
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	genTimeout time.Duration

	obsMu     sync.RWMutex
	observers map[int]StateObserver
	nextObs   int
}

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithCatalog replaces the embedded step catalog.
func WithCatalog(c *domain.Catalog) Option {
	return func(w *Wizard) {
		w.catalog = c
	}
}

// WithStore sets the session store (default: in memory).
func WithStore(s ports.StateStore) Option {
	return func(w *Wizard) {
		w.store = s
	}
}

// WithLocker enables distributed session locks.
func WithLocker(l ports.DistributedLocker) Option {
	return func(w *Wizard) {
		w.locker = l
	}
}

// WithGenerator sets the recipe generator.
func WithGenerator(g ports.RecipeGenerator) Option {
	return func(w *Wizard) {
		w.generator = g
	}
}

// WithRenderer sets the print channel.
func WithRenderer(r ports.DocumentRenderer) Option {
	return func(w *Wizard) {
		w.renderer = r
	}
}

// WithRecorder sets the save channel.
func WithRecorder(r ports.RecipeRecorder) Option {
	return func(w *Wizard) {
		w.recorder = r
	}
}

// WithNotifier sets the email channel.
func WithNotifier(n ports.Notifier) Option {
	return func(w *Wizard) {
		w.notifier = n
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = w.hooks.Merge(hooks)
	}
}

// WithMonitor sets the generation monitor. One with the default history limit
// is created otherwise.
func WithMonitor(m *observability.GenerationMonitor) Option {
	return func(w *Wizard) {
		w.monitor = m
	}
}

// WithGenerateTimeout bounds a single generator call. Zero means no bound.
func WithGenerateTimeout(d time.Duration) Option {
	return func(w *Wizard) {
		w.genTimeout = d
	}
}

// New builds a Wizard. Every collaborator has a working default, so New()
// alone gives an in-memory wizard over the embedded catalog.
func New(opts ...Option) (*Wizard, error) {
	w := &Wizard{observers: make(map[int]StateObserver)}
	for _, opt := range opts {
		opt(w)
	}

	if w.catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load default catalog: %w", err)
		}
		w.catalog = c
	}
	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	if w.store == nil {
		w.store = memory.NewStore()
	}
	if w.generator == nil {
		w.generator = generator.New()
	}
	if w.renderer == nil {
		w.renderer = printer.New()
	}
	if w.recorder == nil {
		w.recorder = memory.NewRecorder()
	}
	if w.notifier == nil {
		w.notifier = notify.Nop{}
	}
	if w.monitor == nil {
		w.monitor = observability.NewGenerationMonitor(observability.DefaultHistoryLimit)
	}

	sessOpts := []session.Option{session.WithLogger(w.logger)}
	if w.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(w.locker))
	}
	w.sessions = session.NewManager(w.store, sessOpts...)

	w.engine = runtime.NewEngine(w.catalog,
		runtime.WithLifecycleHooks(w.hooks),
		runtime.WithLogger(w.logger),
	)
	w.dispatcher = delivery.New(w.renderer, w.recorder, w.notifier,
		delivery.WithLogger(w.logger),
		delivery.WithLifecycleHooks(w.hooks),
	)
	return w, nil
}

// Catalog returns the step catalog.
func (w *Wizard) Catalog() *domain.Catalog {
	return w.catalog
}

// Monitor returns the generation monitor.
func (w *Wizard) Monitor() *observability.GenerationMonitor {
	return w.monitor
}

// Recipes returns the recipes saved for a session.
func (w *Wizard) Recipes(ctx context.Context, sessionID string) ([]domain.RecipeResult, error) {
	return w.recorder.Recipes(ctx, sessionID)
}

// Observe registers fn to be called after every persisted change.
// The returned function removes it.
func (w *Wizard) Observe(fn StateObserver) func() {
	w.obsMu.Lock()
	defer w.obsMu.Unlock()
	id := w.nextObs
	w.nextObs++
	w.observers[id] = fn
	return func() {
		w.obsMu.Lock()
		defer w.obsMu.Unlock()
		delete(w.observers, id)
	}
}

func (w *Wizard) notify(ctx context.Context, prev, next *domain.State) {
	w.obsMu.RLock()
	defer w.obsMu.RUnlock()
	for _, fn := range w.observers {
		fn(ctx, prev, next)
	}
}

// Start creates a session at the first intro card.
// An empty sessionID gets a random one.
func (w *Wizard) Start(ctx context.Context, sessionID string) (*domain.State, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	state, err := w.sessions.Create(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	w.logger.Info("session started", "session_id", sessionID)
	w.notify(ctx, nil, state)
	return state, nil
}

// Load returns the stored state of a session.
func (w *Wizard) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return w.sessions.Load(ctx, sessionID)
}

// View returns the presentation of a stored session.
func (w *Wizard) View(ctx context.Context, sessionID string) (domain.View, error) {
	state, err := w.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return w.engine.View(state), nil
}

// ViewOf derives the presentation of a state without touching the store.
func (w *Wizard) ViewOf(state *domain.State) domain.View {
	return w.engine.View(state)
}

// Delete removes a session.
func (w *Wizard) Delete(ctx context.Context, sessionID string) error {
	return w.sessions.Delete(ctx, sessionID)
}

// List returns the ids of stored sessions.
func (w *Wizard) List(ctx context.Context) ([]string, error) {
	return w.sessions.List(ctx)
}

type mutation func(ctx context.Context, state *domain.State) (*domain.State, error)

// update runs fn as a locked read-modify-write and notifies observers.
func (w *Wizard) update(ctx context.Context, sessionID string, fn mutation) (*domain.State, error) {
	var prev *domain.State
	next, err := w.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		prev = s
		return fn(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	w.notify(ctx, prev, next)
	return next, nil
}

// idle guards mutations that make no sense while the generator runs.
func idle(fn mutation) mutation {
	return func(ctx context.Context, s *domain.State) (*domain.State, error) {
		if s.Generating {
			return nil, domain.ErrGenerating
		}
		return fn(ctx, s)
	}
}

// Next advances one step. In the content phase it returns domain.ErrAdvanceBlocked
// while the current step is incomplete.
func (w *Wizard) Next(ctx context.Context, sessionID string) (*domain.State, error) {
	return w.update(ctx, sessionID, idle(w.engine.Next))
}

// Back retreats one step.
func (w *Wizard) Back(ctx context.Context, sessionID string) (*domain.State, error) {
	return w.update(ctx, sessionID, idle(func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return w.engine.Back(ctx, s), nil
	}))
}

// Reset returns the session to the first intro card and clears answers and result.
// It also releases a session stuck in the generating state.
func (w *Wizard) Reset(ctx context.Context, sessionID string) (*domain.State, error) {
	return w.update(ctx, sessionID, func(ctx context.Context, s *domain.State) (*domain.State, error) {
		return w.engine.Reset(ctx, s), nil
	})
}

// Answer records the option picked on a question or timeline step.
func (w *Wizard) Answer(ctx context.Context, sessionID string, stepID int, value string) (*domain.State, error) {
	return w.update(ctx, sessionID, idle(func(_ context.Context, s *domain.State) (*domain.State, error) {
		return w.engine.Answer(s, stepID, value)
	}))
}

// CustomAnswer records the free text of a question's custom option.
func (w *Wizard) CustomAnswer(ctx context.Context, sessionID string, stepID int, text string) (*domain.State, error) {
	return w.update(ctx, sessionID, idle(func(_ context.Context, s *domain.State) (*domain.State, error) {
		return w.engine.CustomAnswer(s, stepID, text)
	}))
}

// SetControls records the tuned values of a controls step.
func (w *Wizard) SetControls(ctx context.Context, sessionID string, stepID int, value domain.ControlValue) (*domain.State, error) {
	return w.update(ctx, sessionID, idle(func(_ context.Context, s *domain.State) (*domain.State, error) {
		return w.engine.SetControls(s, stepID, value)
	}))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetContact stores the address used by the email channel. An empty contact clears it.
func (w *Wizard) SetContact(ctx context.Context, sessionID string, contact string) (*domain.State, error) {
	contact = strings.TrimSpace(contact)
	if contact != "" {
		if err := validate.Var(contact, "email"); err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidContact, contact)
		}
	}
	return w.update(ctx, sessionID, func(_ context.Context, s *domain.State) (*domain.State, error) {
		next := s.Snapshot()
		next.Contact = contact
		next.UpdatedAt = time.Now().UTC()
		return next, nil
	})
}

// Generate calls the recipe generator for a session at the submit position.
//
// The session is marked as generating before the call and the lock is released
// while the generator runs; a concurrent Generate fails with domain.ErrGenerating.
// On failure the mark is cleared and the error returned. The attempt is recorded
// in the generation monitor either way.
func (w *Wizard) Generate(ctx context.Context, sessionID string) (*domain.State, error) {
	var sub ports.Submission
	attemptID := uuid.NewString()
	_, err := w.update(ctx, sessionID, idle(func(_ context.Context, s *domain.State) (*domain.State, error) {
		if !w.engine.Navigator(s).Completed() {
			return nil, domain.ErrNotReady
		}
		next := s.Snapshot()
		next.Generating = true
		next.GenerationID = attemptID
		next.Status = domain.StatusGenerating
		next.UpdatedAt = time.Now().UTC()
		sub = ports.Submission{
			SessionID:     sessionID,
			Answers:       next.Answers,
			CustomAnswers: next.CustomAnswers,
			Controls:      next.Controls,
		}
		return next, nil
	}))
	if err != nil {
		return nil, err
	}

	genCtx := ctx
	if w.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, w.genTimeout)
		defer cancel()
	}

	started := time.Now()
	result, genErr := w.generator.Generate(genCtx, sub)
	elapsed := time.Since(started)

	attempt := observability.Attempt{SessionID: sessionID, Success: genErr == nil, Duration: elapsed, At: started.UTC()}
	if genErr != nil {
		attempt.Err = genErr.Error()
	}
	w.monitor.Record(attempt)
	if w.hooks.OnGenerate != nil {
		w.hooks.OnGenerate(ctx, &domain.GenerateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventGenerate, SessionID: sessionID},
			Duration:  elapsed,
			IsError:   genErr != nil,
		})
	}

	// The caller may have gone away; the outcome must still be stored.
	storeCtx := context.WithoutCancel(ctx)
	next, err := w.update(storeCtx, sessionID, func(_ context.Context, s *domain.State) (*domain.State, error) {
		next := s.Snapshot()
		if !s.Generating || s.GenerationID != attemptID {
			// Reset while the generator ran, and maybe walked and submitted again;
			// the result belongs to answers that no longer exist.
			return next, nil
		}
		next.Generating = false
		next.UpdatedAt = time.Now().UTC()
		if genErr != nil {
			next.Status = domain.StatusActive
			return next, nil
		}
		next.Status = domain.StatusCompleted
		next.Result = result
		return next, nil
	})
	if err != nil {
		return nil, errors.Join(genErr, err)
	}
	if genErr != nil {
		w.logger.Warn("recipe generation failed", "session_id", sessionID, "error", genErr)
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, genErr)
	}
	w.logger.Info("recipe generated", "session_id", sessionID, "duration", elapsed)
	return next, nil
}

// Deliver sends the session's recipe to the given channels (all when none is
// given) and returns one notification per channel. Failing channels never change
// the session.
func (w *Wizard) Deliver(ctx context.Context, sessionID string, channels ...domain.Channel) ([]domain.Notification, error) {
	state, err := w.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.HasResult() {
		return nil, domain.ErrNoResult
	}
	return w.dispatcher.Deliver(ctx, delivery.Request{
		SessionID: sessionID,
		Contact:   state.Contact,
		Result:    state.Result,
		Channels:  channels,
	})
}
