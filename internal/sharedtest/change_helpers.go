package sharedtest

import (
	"testing"

	"github.com/launchdarkly/go-config-monitor/changetoken"
	"github.com/launchdarkly/go-config-monitor/interfaces"
)

// SubscribeChanges delivers a value to the returned channel each time source reports a change, until
// the test ends.
func SubscribeChanges(t *testing.T, source interfaces.ChangeTokenSource) <-chan struct{} {
	ch := make(chan struct{}, 100)
	reg := changetoken.OnChange(source.GetChangeToken, func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	t.Cleanup(reg.Close)
	return ch
}
