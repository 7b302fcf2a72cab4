// Package notify sends recipe emails through a remote function.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/dumpling/pkg/ports"
)

// ErrNoRecipient is returned when the email has no address.
var ErrNoRecipient = errors.New("email has no recipient")

// StatusError is returned when the function answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("email function returned %d: %s", e.StatusCode, e.Body)
}

// Webhook implements ports.Notifier by POSTing the email as JSON.
type Webhook struct {
	url    string
	client *http.Client
	header http.Header
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = c }
}

// WithHeader adds a header to every request, e.g. an API key.
func WithHeader(key, value string) WebhookOption {
	return func(w *Webhook) { w.header.Add(key, value) }
}

// NewWebhook creates a notifier for the function at url.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ ports.Notifier = (*Webhook)(nil)

// Notify implements ports.Notifier.
func (w *Webhook) Notify(ctx context.Context, email ports.Email) error {
	if email.To == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range w.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("email function unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Nop is a notifier that accepts every email and sends nothing.
type Nop struct{}

// Notify implements ports.Notifier.
func (Nop) Notify(ctx context.Context, email ports.Email) error {
	if email.To == "" {
		return ErrNoRecipient
	}
	return nil
}
