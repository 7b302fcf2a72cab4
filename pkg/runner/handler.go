package runner

import (
	"context"

	"github.com/aretw0/dumpling/pkg/domain"
)

// Frame is one screen of the wizard: the stored state and its presentation.
type Frame struct {
	State *domain.State `json:"state"`
	View  domain.View   `json:"view"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the current frame.
	Output(ctx context.Context, frame Frame) error

	// Input reads one command line. It returns io.EOF when the source is exhausted.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (errors, confirmations, delivery
	// outcomes), distinct from step content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written (e.g. to ANSI).
type ContentRenderer func(string) (string, error)
