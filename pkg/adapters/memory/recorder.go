package memory

import (
	"context"
	"sync"

	"github.com/aretw0/dumpling/pkg/domain"
)

// Recorder implements ports.RecipeRecorder in memory.
// Recording the same recipe twice stores it twice; the save channel is not deduplicated.
type Recorder struct {
	mu      sync.RWMutex
	recipes map[string][]domain.RecipeResult
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{recipes: make(map[string][]domain.RecipeResult)}
}

// Record appends the recipe to the session's records.
func (r *Recorder) Record(ctx context.Context, sessionID string, result *domain.RecipeResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[sessionID] = append(r.recipes[sessionID], *result)
	return nil
}

// Recipes returns the recipes recorded for a session, oldest first.
func (r *Recorder) Recipes(ctx context.Context, sessionID string) ([]domain.RecipeResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.RecipeResult(nil), r.recipes[sessionID]...), nil
}
