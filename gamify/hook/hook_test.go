package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigger_NoHandlers(t *testing.T) {
	c := NewCenter()
	out, err := c.Trigger(context.Background(), "noop", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestTrigger_DataPassThrough(t *testing.T) {
	c := NewCenter()
	c.Register("ev", 0, "double", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		return data.(int) * 2, nil
	})
	c.Register("ev", 1, "addTen", func(_ context.Context, _ string, data interface{}) (interface{}, error) {
		return data.(int) + 10, nil
	})
	out, err := c.Trigger(context.Background(), "ev", 5)
	require.NoError(t, err)
	assert.Equal(t, 20, out)
}

func TestTrigger_PriorityOrder(t *testing.T) {
	c := NewCenter()
	var order []int
	record := func(p int) Func {
		return func(_ context.Context, _ string, d interface{}) (interface{}, error) {
			order = append(order, p)
			return d, nil
		}
	}
	c.Register("ev", 10, "high", record(10))
	c.Register("ev", 1, "low", record(1))
	c.Register("ev", 5, "mid", record(5))
	c.Trigger(context.Background(), "ev", nil)
	assert.Equal(t, []int{1, 5, 10}, order)
}

func TestTrigger_ErrInterrupt(t *testing.T) {
	c := NewCenter()
	var secondCalled bool
	c.Register("ev", 0, "stopper", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		return d, ErrInterrupt
	})
	c.Register("ev", 1, "should_not_run", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		secondCalled = true
		return d, nil
	})
	_, err := c.Trigger(context.Background(), "ev", nil)
	assert.True(t, errors.Is(err, ErrInterrupt))
	assert.False(t, secondCalled)
}

func TestTrigger_NonInterruptErrorContinues(t *testing.T) {
	c := NewCenter()
	broken := errors.New("some error")
	var secondCalled bool
	c.Register("ev", 0, "err", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		return d, broken
	})
	c.Register("ev", 1, "second", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		secondCalled = true
		return d, nil
	})
	_, err := c.Trigger(context.Background(), "ev", nil)
	assert.ErrorIs(t, err, broken, "handler error surfaces even though the chain ran on")
	assert.True(t, secondCalled)
}

func TestUnregister_OnlyNamed(t *testing.T) {
	c := NewCenter()
	var c1, c2 bool
	c.Register("ev", 0, "h1", func(_ context.Context, _ string, d interface{}) (interface{}, error) { c1 = true; return d, nil })
	c.Register("ev", 1, "h2", func(_ context.Context, _ string, d interface{}) (interface{}, error) { c2 = true; return d, nil })
	c.Unregister("ev", "h1")
	c.Trigger(context.Background(), "ev", nil)
	assert.False(t, c1)
	assert.True(t, c2)
}

func TestUnregisterAll(t *testing.T) {
	c := NewCenter()
	var mine, other bool
	c.Register(TaskCompleted, 0, "mine", func(_ context.Context, _ string, d interface{}) (interface{}, error) { mine = true; return d, nil })
	c.Register(TeamJoined, 0, "mine", func(_ context.Context, _ string, d interface{}) (interface{}, error) { mine = true; return d, nil })
	c.Register(TaskCompleted, 1, "other", func(_ context.Context, _ string, d interface{}) (interface{}, error) { other = true; return d, nil })
	c.UnregisterAll("mine")
	c.Trigger(context.Background(), TaskCompleted, nil)
	c.Trigger(context.Background(), TeamJoined, nil)
	assert.False(t, mine)
	assert.True(t, other)
}
