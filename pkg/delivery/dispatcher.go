// Package delivery fans a finished recipe out to the print, save and email channels.
//
// Channels run concurrently and fail independently: a failing channel becomes a
// failed Notification and never cancels its siblings. Repeated calls deliver again;
// there is no deduplication.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/dumpling/internal/logging"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// ErrNoContact is reported by the email channel when the session has no address.
var ErrNoContact = errors.New("no email address on file")

// ErrUnavailable is reported for a channel with no collaborator configured.
var ErrUnavailable = errors.New("channel not configured")

// Dispatcher routes a recipe to its delivery collaborators.
type Dispatcher struct {
	renderer ports.DocumentRenderer
	recorder ports.RecipeRecorder
	notifier ports.Notifier
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithLifecycleHooks registers OnDelivery observers.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(d *Dispatcher) { d.hooks = h }
}

// WithTimeout bounds every channel call. Zero means no bound.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// New creates a Dispatcher. Any collaborator may be nil, in which case its
// channel reports ErrUnavailable.
func New(renderer ports.DocumentRenderer, recorder ports.RecipeRecorder, notifier ports.Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		renderer: renderer,
		recorder: recorder,
		notifier: notifier,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Request is one delivery of a recipe.
type Request struct {
	SessionID string
	Contact   string
	Result    *domain.RecipeResult
	Channels  []domain.Channel
}

// Deliver runs every requested channel and returns one notification per channel,
// in request order. An empty channel list means all channels.
// The returned error is non-nil only when the request itself is unusable.
func (d *Dispatcher) Deliver(ctx context.Context, req Request) ([]domain.Notification, error) {
	if req.Result == nil {
		return nil, domain.ErrNoResult
	}
	channels := req.Channels
	if len(channels) == 0 {
		channels = domain.AllChannels
	}

	out := make([]domain.Notification, len(channels))
	var g errgroup.Group
	for i, ch := range channels {
		g.Go(func() error {
			out[i] = d.deliverOne(ctx, req, ch)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (d *Dispatcher) deliverOne(ctx context.Context, req Request, ch domain.Channel) domain.Notification {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	err := d.run(ctx, req, ch)
	if d.hooks.OnDelivery != nil {
		d.hooks.OnDelivery(ctx, &domain.DeliveryEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now().UTC(),
				Type:      domain.EventDelivery,
				SessionID: req.SessionID,
			},
			Channel: ch,
			IsError: err != nil,
		})
	}

	if err != nil {
		d.logger.Warn("delivery failed", "session_id", req.SessionID, "channel", ch, "error", err)
		return domain.Notification{Channel: ch, Success: false, Message: failureMessage(ch, err)}
	}
	d.logger.Info("delivered", "session_id", req.SessionID, "channel", ch, "recipe_id", req.Result.ID)
	return domain.Notification{Channel: ch, Success: true, Message: successMessage(ch, req)}
}

func (d *Dispatcher) run(ctx context.Context, req Request, ch domain.Channel) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel %s panicked: %v", ch, r)
		}
	}()

	switch ch {
	case domain.ChannelPrint:
		if d.renderer == nil {
			return ErrUnavailable
		}
		_, err := d.renderer.Render(ctx, req.Result)
		return err
	case domain.ChannelSave:
		if d.recorder == nil {
			return ErrUnavailable
		}
		return d.recorder.Record(ctx, req.SessionID, req.Result)
	case domain.ChannelEmail:
		if d.notifier == nil {
			return ErrUnavailable
		}
		if req.Contact == "" {
			return ErrNoContact
		}
		return d.notifier.Notify(ctx, ports.Email{To: req.Contact, SessionID: req.SessionID, Recipe: req.Result})
	}
	return fmt.Errorf("unknown channel %q", ch)
}

func successMessage(ch domain.Channel, req Request) string {
	switch ch {
	case domain.ChannelPrint:
		return "Recipe sent to the printer"
	case domain.ChannelSave:
		return "Recipe saved"
	case domain.ChannelEmail:
		return "Recipe emailed to " + req.Contact
	}
	return "Done"
}

func failureMessage(ch domain.Channel, err error) string {
	switch ch {
	case domain.ChannelPrint:
		return "Could not print the recipe: " + err.Error()
	case domain.ChannelSave:
		return "Could not save the recipe: " + err.Error()
	case domain.ChannelEmail:
		return "Could not send the email: " + err.Error()
	}
	return err.Error()
}
