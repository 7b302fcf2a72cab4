package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/dumpling/pkg/adapters/memory"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := range 1000 {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewState(sid))
		_, _ = mgr.Update(ctx, sid, func(_ context.Context, s *domain.State) (*domain.State, error) {
			return s, nil
		})
		_ = mgr.Delete(ctx, sid)
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
