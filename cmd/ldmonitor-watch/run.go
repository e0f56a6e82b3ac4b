package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ldmonitor "github.com/launchdarkly/go-config-monitor"
	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/ldcache"
	"github.com/launchdarkly/go-config-monitor/ldfilewatch"
	"github.com/launchdarkly/go-config-monitor/ldpoll"
	"github.com/launchdarkly/go-config-monitor/ldstream"
	"github.com/launchdarkly/go-config-monitor/lifetime"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/hashicorp/go-multierror"
)

const (
	cacheMemory   = "memory"
	cacheBounded  = "bounded"
	cacheExpiring = "expiring"
)

type watchOptions struct {
	files        []string
	names        []string
	pollURL      string
	pollInterval time.Duration
	streamURL    string
	cacheKind    string
	cacheTTL     time.Duration
	cacheSize    int
}

func (o watchOptions) validate() error {
	var result *multierror.Error
	if len(o.files) == 0 {
		result = multierror.Append(result, errors.New("at least one --file is required"))
	}
	switch o.cacheKind {
	case cacheMemory, cacheBounded, cacheExpiring:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown cache type %q", o.cacheKind))
	}
	if len(o.names) > 0 && o.streamURL == "" {
		result = multierror.Append(result, errors.New("--name requires --stream-url"))
	}
	return result.ErrorOrNil()
}

func (o watchOptions) makeCache() (interfaces.Cache[*FilesDigest], func()) {
	switch o.cacheKind {
	case cacheBounded:
		c := ldcache.NewBoundedCache[*FilesDigest](o.cacheSize, o.cacheTTL)
		return c, c.Close
	case cacheExpiring:
		return ldcache.NewExpiringCache[*FilesDigest](o.cacheTTL), func() {}
	default:
		return ldcache.NewMemoryCache[*FilesDigest](), func() {}
	}
}

// runWatch keeps a digest of the watched files up to date and prints it each time it is rebuilt,
// until the application is asked to stop or ctx is done.
func runWatch(
	ctx context.Context,
	opts watchOptions,
	appLifetime *lifetime.ApplicationLifetime,
	out io.Writer,
	loggers ldlog.Loggers,
) error {
	if err := opts.validate(); err != nil {
		return err
	}

	// closed in reverse order of creation
	var closers []func()
	addCloser := func(c io.Closer) {
		closers = append(closers, func() { _ = c.Close() })
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		appLifetime.NotifyStopped()
	}()

	var sources []interfaces.ChangeTokenSource
	fileSource, err := ldfilewatch.WatchFiles(interfaces.DefaultName, opts.files, loggers)
	if err != nil {
		return err
	}
	addCloser(fileSource)
	sources = append(sources, fileSource)

	if opts.pollURL != "" {
		pollSource, err := ldpoll.NewPollingChangeSource(ldpoll.Config{
			URI:          opts.pollURL,
			PollInterval: opts.pollInterval,
			Loggers:      loggers,
		})
		if err != nil {
			return fmt.Errorf("invalid polling configuration: %w", err)
		}
		addCloser(pollSource)
		sources = append(sources, pollSource)
	}

	if opts.streamURL != "" {
		streamSource, err := ldstream.NewStreamChangeSource(ldstream.Config{URI: opts.streamURL, Loggers: loggers})
		if err != nil {
			return fmt.Errorf("invalid stream configuration: %w", err)
		}
		addCloser(streamSource)
		sources = append(sources, streamSource)
		for _, name := range opts.names {
			sources = append(sources, streamSource.ForName(name))
		}
	}

	cache, closeCache := opts.makeCache()
	closers = append(closers, closeCache)

	monitor, err := ldmonitor.NewCustomMonitor[*FilesDigest](newDigestFactory(opts.files), sources, cache,
		ldmonitor.Config{Loggers: loggers})
	if err != nil {
		return err
	}
	addCloser(monitor)

	monitor.OnChange(func(d *FilesDigest, name string) {
		printDigest(out, "changed", d)
	})
	for _, name := range append([]string{interfaces.DefaultName}, opts.names...) {
		d, err := monitor.Get(name)
		if err != nil {
			loggers.Warnf("Unable to build configuration %q: %s", name, err)
			continue
		}
		printDigest(out, "current", d)
	}

	appLifetime.NotifyStarted()
	select {
	case <-appLifetime.Stopping():
	case <-ctx.Done():
	}
	return nil
}

func printDigest(out io.Writer, what string, d *FilesDigest) {
	name := d.Name
	if name == interfaces.DefaultName {
		name = "(default)"
	}
	var missing []string
	for _, f := range d.Files {
		if f.Missing {
			missing = append(missing, f.Path)
		}
	}
	line := fmt.Sprintf("%s %s: %d of %d file(s), sha256 %s", name, what, d.Present(), len(d.Files), d.Sum)
	if len(missing) > 0 {
		line += " (missing: " + strings.Join(missing, ", ") + ")"
	}
	_, _ = fmt.Fprintln(out, line)
}
