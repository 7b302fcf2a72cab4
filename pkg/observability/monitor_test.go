package observability_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationMonitor_EvictsOldest(t *testing.T) {
	m := observability.NewGenerationMonitor(3)
	for i := range 5 {
		m.Record(observability.Attempt{SessionID: fmt.Sprintf("s%d", i), Success: true})
		assert.LessOrEqual(t, len(m.History()), 3)
	}

	h := m.History()
	require.Len(t, h, 3)
	assert.Equal(t, "s2", h[0].SessionID)
	assert.Equal(t, "s4", h[2].SessionID)
}

func TestGenerationMonitor_DefaultLimit(t *testing.T) {
	m := observability.NewGenerationMonitor(0)
	assert.Equal(t, observability.DefaultHistoryLimit, m.Limit())
	for range observability.DefaultHistoryLimit + 10 {
		m.Record(observability.Attempt{})
	}
	assert.Len(t, m.History(), observability.DefaultHistoryLimit)
}

func TestGenerationMonitor_Stats(t *testing.T) {
	m := observability.NewGenerationMonitor(10)
	assert.Equal(t, observability.Stats{}, m.Stats())

	m.Record(observability.Attempt{SessionID: "a", Success: true, Duration: 100 * time.Millisecond})
	m.Record(observability.Attempt{SessionID: "b", Err: errors.New("model offline").Error(), Duration: 300 * time.Millisecond})

	s := m.Stats()
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, 200*time.Millisecond, s.MeanDuration)
	require.NotNil(t, s.LastFailure)
	assert.Equal(t, "b", s.LastFailure.SessionID)
}

func TestGenerationMonitor_Concurrent(t *testing.T) {
	m := observability.NewGenerationMonitor(8)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(observability.Attempt{Success: true})
			_ = m.History()
		}()
	}
	wg.Wait()
	assert.Len(t, m.History(), 8)
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	h := m.Hooks()
	ctx := context.Background()

	h.OnStepEnter(ctx, &domain.StepEvent{Phase: domain.PhaseIntro, Kind: "hero"})
	h.OnStepEnter(ctx, &domain.StepEvent{Phase: domain.PhaseIntro, Kind: "hero"})
	h.OnAdvanceBlocked(ctx, &domain.StepEvent{Index: 2})
	h.OnGenerate(ctx, &domain.GenerateEvent{Duration: time.Second})
	h.OnDelivery(ctx, &domain.DeliveryEvent{Channel: domain.ChannelEmail, IsError: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StepVisits.WithLabelValues("intro", "hero")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdvanceBlocked.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("email", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Generation))
}
