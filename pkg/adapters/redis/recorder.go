package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/dumpling/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Recorder implements ports.RecipeRecorder using Redis.
// Each recipe is stored as JSON under its own key and appended to a per-session list.
type Recorder struct {
	client *backend.Client
	prefix string
}

// NewRecorder creates a recorder over an existing client.
func NewRecorder(client *backend.Client, prefix string) *Recorder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Recorder{client: client, prefix: prefix}
}

func (r *Recorder) recipeKey(id string) string {
	return r.prefix + "recipe:" + id
}

func (r *Recorder) listKey(sessionID string) string {
	return r.prefix + "recipes:" + sessionID
}

// Record stores the recipe. A second call with the same recipe overwrites the
// record and appends the id again; last write wins.
func (r *Recorder) Record(ctx context.Context, sessionID string, result *domain.RecipeResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.recipeKey(result.ID), data, 0)
	pipe.RPush(ctx, r.listKey(sessionID), result.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record recipe: %w", err)
	}
	return nil
}

// Recipes returns the recipes recorded for a session, oldest first.
// Entries whose record has been removed are skipped.
func (r *Recorder) Recipes(ctx context.Context, sessionID string) ([]domain.RecipeResult, error) {
	ids, err := r.client.LRange(ctx, r.listKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recipeKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	out := make([]domain.RecipeResult, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var res domain.RecipeResult
		if err := json.Unmarshal([]byte(s), &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
		}
		out = append(out, res)
	}
	return out, nil
}
