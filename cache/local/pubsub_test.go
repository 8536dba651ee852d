package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvOne(t *testing.T, ch <-chan *LocalMessage) *LocalMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestPubSub_DeliverAndFanOut(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch1, cancel1, err := ps.Subscribe(ctx, "feed")
	require.NoError(t, err)
	defer cancel1()
	ch2, cancel2, err := ps.Subscribe(ctx, "feed")
	require.NoError(t, err)
	defer cancel2()

	require.NoError(t, ps.Publish(ctx, "feed", "hello"))

	for _, ch := range []<-chan *LocalMessage{ch1, ch2} {
		msg := recvOne(t, ch)
		assert.Equal(t, "feed", msg.Channel)
		assert.Equal(t, "hello", msg.Payload)
	}
}

func TestPubSub_MultiChannelSubscription(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "a", "b")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "a", "first"))
	require.NoError(t, ps.Publish(ctx, "b", "second"))

	assert.Equal(t, "first", recvOne(t, ch).Payload)
	assert.Equal(t, "second", recvOne(t, ch).Payload)
}

func TestPubSub_CancelClosesStream(t *testing.T) {
	ps := NewPubSub(16)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "ch")
	require.NoError(t, err)

	cancel()
	cancel() // second cancel is a no-op

	_, ok := <-ch
	assert.False(t, ok, "stream must close after cancel")

	// Publishing to a channel with no subscribers must not block.
	assert.NoError(t, ps.Publish(ctx, "ch", "msg"))
}

func TestPubSub_FullBufferDrops(t *testing.T) {
	ps := NewPubSub(1)
	ctx := context.Background()

	ch, cancel, err := ps.Subscribe(ctx, "tiny")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, "tiny", "kept"))
	require.NoError(t, ps.Publish(ctx, "tiny", "dropped"))

	assert.Equal(t, "kept", recvOne(t, ch).Payload)
	select {
	case msg := <-ch:
		t.Fatalf("unexpected second message %q", msg.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}
