package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(NewEvent(EventCountdown, map[string]int{"seconds_left": 3}))

	select {
	case evt := <-ch:
		assert.Equal(t, EventCountdown, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHub_UnsubscribedChannelClosed(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()

	cancel()
	_, open := <-ch
	assert.False(t, open)

	// publish after unsubscribe must not panic
	assert.NotPanics(t, func() {
		h.Publish(NewEvent(EventBatchStarted, nil))
	})
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := New()
	_, cancel := h.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// overrun the buffer without a consumer
		for i := 0; i < subscriberBuffer*2; i++ {
			h.Publish(NewEvent(EventRegionSynced, nil))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHub_ShutdownClosesSubscribers(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Shutdown(context.Background())

	_, open := <-ch
	assert.False(t, open)

	// publishing after shutdown is a no-op
	assert.NotPanics(t, func() {
		h.Publish(NewEvent(EventBatchFinished, nil))
	})
}

func TestNewEvent_SetsTime(t *testing.T) {
	evt := NewEvent(EventServiceState, map[string]string{"status": "running"})
	require.Equal(t, EventServiceState, evt.Type)
	assert.WithinDuration(t, time.Now().UTC(), evt.Time, time.Minute)
}
