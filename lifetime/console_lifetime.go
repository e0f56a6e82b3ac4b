package lifetime

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/launchdarkly/go-config-monitor/interfaces"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// ConsoleLifetimeOptions configures a ConsoleLifetime.
type ConsoleLifetimeOptions struct {
	// SuppressStatusMessages disables the messages logged when the application starts.
	SuppressStatusMessages bool
}

// HostEnvironment describes the environment the application runs in, for the startup messages.
type HostEnvironment struct {
	EnvironmentName string
	ContentRootPath string
}

// Lifetime is the part of ApplicationLifetime that ConsoleLifetime uses.
type Lifetime interface {
	ApplicationStarted() interfaces.ChangeToken
	StopApplication()
}

// ConsoleLifetime listens for Ctrl+C or SIGTERM and requests an application stop.
type ConsoleLifetime struct {
	options     ConsoleLifetimeOptions
	environment HostEnvironment
	appLifetime Lifetime
	loggers     ldlog.Loggers

	notify func(chan<- os.Signal, ...os.Signal)
	stop   func(chan<- os.Signal)

	signalCh   chan os.Signal
	closeCh    chan struct{}
	startedReg interfaces.Registration
	started    bool
	closed     bool
	lock       sync.Mutex
}

// ErrAlreadyStarted is returned by a second call to WaitForStart.
var ErrAlreadyStarted = errors.New("console lifetime was already started")

// NewConsoleLifetime creates a ConsoleLifetime. It returns an error if environment or appLifetime
// is nil.
func NewConsoleLifetime(
	options ConsoleLifetimeOptions,
	environment *HostEnvironment,
	appLifetime Lifetime,
	loggers ldlog.Loggers,
) (*ConsoleLifetime, error) {
	if environment == nil {
		return nil, errors.New("host environment must not be nil")
	}
	if appLifetime == nil {
		return nil, errors.New("application lifetime must not be nil")
	}
	return &ConsoleLifetime{
		options:     options,
		environment: *environment,
		appLifetime: appLifetime,
		loggers:     loggers,
		notify:      signal.Notify,
		stop:        signal.Stop,
		closeCh:     make(chan struct{}),
	}, nil
}

// WaitForStart installs the signal handlers. A console application starts immediately, so this
// does not block; it returns the context's error if the context is already done.
//
// Unless status messages are suppressed, the startup messages are logged once the application
// reports that it has started.
func (c *ConsoleLifetime) WaitForStart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return errors.New("console lifetime was closed")
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	if !c.options.SuppressStatusMessages {
		c.startedReg = c.appLifetime.ApplicationStarted().RegisterChangeCallback(c.onApplicationStarted)
	}

	c.signalCh = make(chan os.Signal, 1)
	c.notify(c.signalCh, os.Interrupt, syscall.SIGTERM)
	go c.run(c.signalCh)
	return nil
}

// Stop is called when the application is shutting down. There is nothing for it to do.
func (c *ConsoleLifetime) Stop(ctx context.Context) error {
	return nil
}

// Close removes the signal handlers. After Close, signals have their default behavior again.
// Calling it again has no effect.
func (c *ConsoleLifetime) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.signalCh != nil {
		c.stop(c.signalCh)
	}
	close(c.closeCh)
	if c.startedReg != nil {
		c.startedReg.Close()
	}
	return nil
}

func (c *ConsoleLifetime) run(signalCh <-chan os.Signal) {
	for {
		select {
		case sig := <-signalCh:
			c.loggers.Infof("Received %s; shutting down", sig)
			c.appLifetime.StopApplication()
		case <-c.closeCh:
			return
		}
	}
}

func (c *ConsoleLifetime) onApplicationStarted() {
	c.loggers.Info("Application started. Press Ctrl+C to shut down.")
	c.loggers.Infof("Hosting environment: %s", c.environment.EnvironmentName)
	c.loggers.Infof("Content root path: %s", c.environment.ContentRootPath)
}
