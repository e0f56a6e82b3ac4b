package changetoken

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/interfaces"
)

// Composite returns a ChangeToken that fires as soon as any of the given tokens fires. With no
// tokens, it never fires.
func Composite(tokens ...interfaces.ChangeToken) interfaces.ChangeToken {
	switch len(tokens) {
	case 0:
		return NeverChanges()
	case 1:
		return tokens[0]
	}
	c := &compositeToken{Trigger: NewTrigger()}
	for _, token := range tokens {
		reg := token.RegisterChangeCallback(c.fire)
		c.lock.Lock()
		c.inner = append(c.inner, reg)
		fired := c.fired
		c.lock.Unlock()
		if fired {
			c.closeInner()
			break
		}
	}
	return c
}

// compositeToken embeds the Trigger that it fires; once that has happened, the registrations on
// the inner tokens are no longer needed.
type compositeToken struct {
	*Trigger
	inner []interfaces.Registration
	fired bool
	lock  sync.Mutex
}

func (c *compositeToken) fire() {
	c.lock.Lock()
	c.fired = true
	c.lock.Unlock()
	c.Trigger.Fire()
	c.closeInner()
}

func (c *compositeToken) closeInner() {
	c.lock.Lock()
	inner := c.inner
	c.inner = nil
	c.lock.Unlock()
	for _, reg := range inner {
		reg.Close()
	}
}
