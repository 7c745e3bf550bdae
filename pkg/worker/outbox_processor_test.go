package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type fakeBroker struct {
	mu       sync.Mutex
	err      error
	channels []string
	messages []messaging.Message
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.channels = append(b.channels, channel)
	b.messages = append(b.messages, message.(messaging.Message))
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBroker) Close() error { return nil }

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		Channel:       messaging.TimelineChannel,
	}
}

func seedOutbox(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		ev, err := model.NewOutboxEvent(model.EventTimelineAppended, map[string]int{"patientId": i + 1})
		require.NoError(t, err)
		require.NoError(t, store.Outbox().Create(context.Background(), ev))
	}
}

func TestNewOutboxProcessor_InvalidConfig(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	cfg := testConfig()
	cfg.BatchSize = 0

	_, err := NewOutboxProcessor(memory.NewStore(), &fakeBroker{}, cfg, logger.Nop(), m)
	assert.ErrorContains(t, err, "batch size")
}

func TestProcessBatch_Publishes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	broker := &fakeBroker{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	seedOutbox(t, store, 3)

	p, err := NewOutboxProcessor(store, broker, testConfig(), logger.Nop(), m)
	require.NoError(t, err)

	n, err := p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, broker.messages, 3)
	assert.Equal(t, messaging.TimelineChannel, broker.channels[0])
	assert.Equal(t, model.EventTimelineAppended, broker.messages[0].Type)
	assert.NotEmpty(t, broker.messages[0].ID)

	pending, err := store.Outbox().CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.OutboxEventsProcessed))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OutboxQueueSize))

	// processed events are never claimed again
	n, err = p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, broker.messages, 3)
}

func TestProcessBatch_RespectsBatchSize(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	seedOutbox(t, store, 3)

	cfg := testConfig()
	cfg.BatchSize = 2
	p, err := NewOutboxProcessor(store, &fakeBroker{}, cfg, logger.Nop(), m)
	require.NoError(t, err)

	n, err := p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxQueueSize))
}

func TestProcessBatch_FailureRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	broker := &fakeBroker{err: errors.New("connection refused")}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	seedOutbox(t, store, 1)

	p, err := NewOutboxProcessor(store, broker, testConfig(), logger.Nop(), m)
	require.NoError(t, err)

	n, err := p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	pending, err := store.Outbox().ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1, "first failure stays pending")
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].ErrorMessage)
	assert.Equal(t, "connection refused", *pending[0].ErrorMessage)

	_, err = p.ProcessBatch(ctx)
	require.NoError(t, err)

	count, err := store.Outbox().CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "second failure marks the event failed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsFailed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues(model.EventTimelineAppended)))
}

func TestStart_StopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	broker := &fakeBroker{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	seedOutbox(t, store, 1)

	cfg := testConfig()
	cfg.PollInterval = 10 * time.Millisecond
	p, err := NewOutboxProcessor(store, broker, cfg, logger.Nop(), m)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		n, _ := store.Outbox().CountPending(context.Background())
		return n == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop")
	}
}
