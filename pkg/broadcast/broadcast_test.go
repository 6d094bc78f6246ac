package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReplaysLatest(t *testing.T) {
	b := New[int]()
	b.Publish(1)
	b.Publish(2)

	sub := b.Subscribe()
	defer sub.Close()

	v, ok := <-sub.C
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSlowConsumerSkipsIntermediateValues(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(1)
	b.Publish(2)
	b.Publish(3)

	v := <-sub.C
	assert.Equal(t, 3, v, "undrained values are replaced, not queued")
}

func TestMultipleSubscribers(t *testing.T) {
	b := New[string]()
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	defer s1.Close()
	defer s2.Close()

	b.Publish("x")

	assert.Equal(t, "x", <-s1.C)
	assert.Equal(t, "x", <-s2.C)
}

func TestCloseTerminatesSubscriptions(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()

	b.Close()

	_, ok := <-sub.C
	assert.False(t, ok, "channel must be closed after broadcaster close")

	// Publishing after close is a no-op.
	b.Publish(9)

	// Subscribing after close yields a terminated stream.
	late := b.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok)
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	sub.Close()
	sub.Close()

	// Remaining subscribers still receive.
	other := b.Subscribe()
	defer other.Close()
	b.Publish(5)
	assert.Equal(t, 5, <-other.C)
}
