package datasource

import (
	"testing"

	"github.com/launchdarkly/go-config-monitor/interfaces"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSameSignalForName(t *testing.T) {
	n := NewNamedSignals()
	a := n.Get("a")
	assert.Same(t, a, n.Get("a"))
	assert.NotSame(t, a, n.Get("b"))
	assert.Equal(t, "a", n.Source("a").Name())
}

func TestNotifyFiresOnlyThatName(t *testing.T) {
	n := NewNamedSignals()
	a, b := n.Source("a").GetChangeToken(), n.Source("b").GetChangeToken()

	n.Notify("a")

	assert.True(t, a.HasChanged())
	assert.False(t, b.HasChanged())
	assert.False(t, n.Source("a").GetChangeToken().HasChanged())
}

func TestNotifyAllFiresEveryKnownName(t *testing.T) {
	n := NewNamedSignals()
	var fired []string
	for _, name := range []string{interfaces.DefaultName, "x", "y"} {
		name := name
		n.Source(name).GetChangeToken().RegisterChangeCallback(func() { fired = append(fired, name) })
	}

	n.NotifyAll()

	assert.Equal(t, []string{interfaces.DefaultName, "x", "y"}, fired)
}

func TestCallbackCanUseSignalsDuringNotify(t *testing.T) {
	n := NewNamedSignals()
	done := false
	n.Source("a").GetChangeToken().RegisterChangeCallback(func() {
		n.Get("b")
		n.Source("a").GetChangeToken()
		done = true
	})

	n.NotifyAll()

	assert.True(t, done)
}
