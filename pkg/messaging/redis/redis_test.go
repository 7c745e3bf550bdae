package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/pkg/circuitbreaker"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

// unreachable points at a closed local port so every dial fails fast.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
}

func TestPublish_BreakerOpensAfterFailures(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	b := newBroker(unreachable(), Config{BreakerFailures: 2, BreakerTimeout: time.Minute}, nil, m)
	defer b.Close()

	msg := messaging.Message{ID: "1", Type: "timeline.appended"}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := b.Publish(ctx, messaging.TimelineChannel, msg)
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}
	assert.Equal(t, circuitbreaker.StateOpen, b.cb.State())

	err := b.Publish(ctx, messaging.TimelineChannel, msg)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RedisOperations.WithLabelValues("publish", "error")))
}

func TestPublish_RejectsUnmarshalable(t *testing.T) {
	b := newBroker(unreachable(), Config{}, nil, nil)
	defer b.Close()

	err := b.Publish(context.Background(), messaging.TimelineChannel, make(chan int))
	assert.ErrorContains(t, err, "failed to marshal message")
	assert.Equal(t, circuitbreaker.StateClosed, b.cb.State())
}

func TestNewRedisBroker_BadURL(t *testing.T) {
	_, err := NewRedisBroker(Config{URL: "not a url"}, nil, nil)
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}
