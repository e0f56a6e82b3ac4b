package lifetime

import (
	"fmt"
	"sync"

	"github.com/launchdarkly/go-config-monitor/changetoken"
	"github.com/launchdarkly/go-config-monitor/interfaces"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// ApplicationLifetime reports the lifecycle of an application to anyone who registers with its
// change tokens. Each token fires once.
type ApplicationLifetime struct {
	started    *changetoken.Trigger
	stopping   *changetoken.Trigger
	stopped    *changetoken.Trigger
	stoppingCh chan struct{}
	stopOnce   sync.Once
	loggers    ldlog.Loggers
}

// NewApplicationLifetime creates an ApplicationLifetime. Panics in lifecycle callbacks are
// recovered and logged with the given loggers.
func NewApplicationLifetime(loggers ldlog.Loggers) *ApplicationLifetime {
	return &ApplicationLifetime{
		started:    changetoken.NewTrigger(),
		stopping:   changetoken.NewTrigger(),
		stopped:    changetoken.NewTrigger(),
		stoppingCh: make(chan struct{}),
		loggers:    loggers,
	}
}

// ApplicationStarted fires when the application has fully started.
func (a *ApplicationLifetime) ApplicationStarted() interfaces.ChangeToken {
	return guardedToken{a.started, a, "starting"}
}

// ApplicationStopping fires when the application is starting a graceful shutdown. Shutdown waits
// for the callbacks registered on it.
func (a *ApplicationLifetime) ApplicationStopping() interfaces.ChangeToken {
	return guardedToken{a.stopping, a, "stopping"}
}

// ApplicationStopped fires when the application has completed a graceful shutdown.
func (a *ApplicationLifetime) ApplicationStopped() interfaces.ChangeToken {
	return guardedToken{a.stopped, a, "stopping"}
}

// Stopping returns a channel that is closed once StopApplication has been called and its
// callbacks have run.
func (a *ApplicationLifetime) Stopping() <-chan struct{} {
	return a.stoppingCh
}

// StopApplication requests termination of the application. Only the first call has any effect.
func (a *ApplicationLifetime) StopApplication() {
	a.stopOnce.Do(func() {
		a.stopping.Fire()
		close(a.stoppingCh)
	})
}

// NotifyStarted signals the ApplicationStarted event.
func (a *ApplicationLifetime) NotifyStarted() {
	a.started.Fire()
}

// NotifyStopped signals the ApplicationStopped event.
func (a *ApplicationLifetime) NotifyStopped() {
	a.stopped.Fire()
}

// guardedToken recovers and logs a panic from each callback, so one failing callback does not
// keep the others from running.
type guardedToken struct {
	trigger  *changetoken.Trigger
	lifetime *ApplicationLifetime
	what     string
}

func (g guardedToken) HasChanged() bool {
	return g.trigger.HasChanged()
}

func (g guardedToken) RegisterChangeCallback(callback func()) interfaces.Registration {
	return g.trigger.RegisterChangeCallback(func() {
		defer func() {
			if r := recover(); r != nil {
				g.lifetime.loggers.Errorf("An error occurred %s the application: %s", g.what, describePanic(r))
			}
		}()
		callback()
	})
}

func describePanic(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}
