package ports

import (
	"context"

	"github.com/aretw0/dumpling/pkg/domain"
)

// Submission is everything the generator needs to create a recipe.
type Submission struct {
	SessionID     string
	Answers       domain.Answers
	CustomAnswers domain.CustomAnswers
	Controls      domain.Controls
}

// RecipeGenerator turns a finished session into a recipe.
type RecipeGenerator interface {
	Generate(ctx context.Context, sub Submission) (*domain.RecipeResult, error)
}

// Document is a rendered, printable recipe.
type Document struct {
	Title    string
	MIMEType string
	Body     []byte
}

// DocumentRenderer builds the printable form of a recipe and hands it to the print surface.
type DocumentRenderer interface {
	Render(ctx context.Context, result *domain.RecipeResult) (*Document, error)
}

// RecipeRecorder keeps finished recipes in a record store.
type RecipeRecorder interface {
	Record(ctx context.Context, sessionID string, result *domain.RecipeResult) error
	Recipes(ctx context.Context, sessionID string) ([]domain.RecipeResult, error)
}

// Email is the message sent by the email channel.
type Email struct {
	To        string               `json:"to"`
	SessionID string               `json:"session_id"`
	Recipe    *domain.RecipeResult `json:"recipe"`
}

// Notifier dispatches an email through a remote function.
type Notifier interface {
	Notify(ctx context.Context, email Email) error
}
