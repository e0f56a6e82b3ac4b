package lifetime

import (
	"testing"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	th "github.com/launchdarkly/go-test-helpers/v3"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleTokensFireOnce(t *testing.T) {
	a := NewApplicationLifetime(ldlog.NewDisabledLoggers())
	var events []string
	a.ApplicationStarted().RegisterChangeCallback(func() { events = append(events, "started") })
	a.ApplicationStopping().RegisterChangeCallback(func() { events = append(events, "stopping") })
	a.ApplicationStopped().RegisterChangeCallback(func() { events = append(events, "stopped") })

	assert.False(t, a.ApplicationStarted().HasChanged())

	a.NotifyStarted()
	a.NotifyStarted()
	a.StopApplication()
	a.StopApplication()
	a.NotifyStopped()

	assert.Equal(t, []string{"started", "stopping", "stopped"}, events)
	assert.True(t, a.ApplicationStarted().HasChanged())
	assert.True(t, a.ApplicationStopping().HasChanged())
	assert.True(t, a.ApplicationStopped().HasChanged())
}

func TestStoppingChannelClosesOnStop(t *testing.T) {
	a := NewApplicationLifetime(ldlog.NewDisabledLoggers())
	th.AssertChannelNotClosed(t, a.Stopping(), time.Millisecond*10)

	a.StopApplication()

	th.AssertChannelClosed(t, a.Stopping(), time.Second)
}

func TestCallbackPanicIsLoggedAndOthersStillRun(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	a := NewApplicationLifetime(mockLog.Loggers)
	ran := false
	a.ApplicationStopping().RegisterChangeCallback(func() { panic("sorry") })
	a.ApplicationStopping().RegisterChangeCallback(func() { ran = true })

	assert.NotPanics(t, a.StopApplication)

	assert.True(t, ran)
	th.AssertChannelClosed(t, a.Stopping(), time.Second)
	mockLog.AssertMessageMatch(t, true, ldlog.Error, "An error occurred stopping the application: sorry")
}

func TestRegisterAfterStartedRunsImmediately(t *testing.T) {
	a := NewApplicationLifetime(ldlog.NewDisabledLoggers())
	a.NotifyStarted()

	ran := false
	a.ApplicationStarted().RegisterChangeCallback(func() { ran = true })

	assert.True(t, ran)
}
