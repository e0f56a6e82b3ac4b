// Command ldmonitor-watch watches a set of files and prints a digest of them each time a change
// source reports a change. It is a small demonstration of the monitor and its change sources.
//
//	ldmonitor-watch --file ./app.conf --poll-url https://config.example.com/app --poll-interval 1m
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/launchdarkly/go-config-monitor/ldcache"
	"github.com/launchdarkly/go-config-monitor/ldpoll"
	"github.com/launchdarkly/go-config-monitor/lifetime"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts        watchOptions
		environment string
		logLevel    string
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:   "ldmonitor-watch",
		Short: "Print a digest of configuration files whenever they change",
		Long: `ldmonitor-watch keeps a digest (size and SHA-256) of the given files, and prints it
again whenever a change source reports a change: the files themselves, a polled URL,
or a server-sent events stream. Press Ctrl+C to stop.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loggers, err := makeLoggers(logLevel)
			if err != nil {
				return err
			}
			contentRoot, err := os.Getwd()
			if err != nil {
				return err
			}

			appLifetime := lifetime.NewApplicationLifetime(loggers)
			console, err := lifetime.NewConsoleLifetime(
				lifetime.ConsoleLifetimeOptions{SuppressStatusMessages: quiet},
				&lifetime.HostEnvironment{EnvironmentName: environment, ContentRootPath: contentRoot},
				appLifetime,
				loggers,
			)
			if err != nil {
				return err
			}
			defer console.Close()
			if err := console.WaitForStart(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = console.Stop(cmd.Context()) }()

			return runWatch(cmd.Context(), opts, appLifetime, cmd.OutOrStdout(), loggers)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.files, "file", "f", nil, "File to watch (repeatable)")
	flags.StringSliceVar(&opts.names, "name", nil, "Additional configuration name announced by the stream (repeatable)")
	flags.StringVar(&opts.pollURL, "poll-url", "", "URL to poll for changes")
	flags.DurationVar(&opts.pollInterval, "poll-interval", ldpoll.DefaultPollInterval, "Interval between polls")
	flags.StringVar(&opts.streamURL, "stream-url", "", "Server-sent events URL announcing changes")
	flags.StringVar(&opts.cacheKind, "cache", cacheMemory, "Snapshot cache: memory, bounded, or expiring")
	flags.DurationVar(&opts.cacheTTL, "cache-ttl", 0, "Time to keep snapshots in a bounded or expiring cache (0 = forever)")
	flags.IntVar(&opts.cacheSize, "cache-size", ldcache.DefaultBoundedCacheSize, "Maximum entries in a bounded cache")
	flags.StringVar(&environment, "environment", "Production", "Environment name shown at startup")
	flags.StringVar(&logLevel, "log-level", "info", "Minimum log level: debug, info, warn, error, or none")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress startup messages")
	return cmd
}

func makeLoggers(level string) (ldlog.Loggers, error) {
	loggers := ldlog.NewDefaultLoggers()
	switch strings.ToLower(level) {
	case "debug":
		loggers.SetMinLevel(ldlog.Debug)
	case "info":
		loggers.SetMinLevel(ldlog.Info)
	case "warn":
		loggers.SetMinLevel(ldlog.Warn)
	case "error":
		loggers.SetMinLevel(ldlog.Error)
	case "none":
		loggers.SetMinLevel(ldlog.None)
	default:
		return ldlog.Loggers{}, fmt.Errorf("unknown log level %q", level)
	}
	return loggers, nil
}
