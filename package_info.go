// Package ldmonitor is the main package of the configuration monitor.
//
// A [Monitor] holds named configuration snapshots of some type T. Each snapshot is built on first use
// by an [interfaces.Factory], kept in an [interfaces.Cache], and rebuilt whenever one of the monitor's
// change sources reports that the configuration with that name may have changed. Application code
// can read the current snapshot with [Monitor.Get] or [Monitor.CurrentValue], and can subscribe to
// rebuilds with [Monitor.OnChange] or [Monitor.AddChangeListener].
//
//	factory := ldfactory.New[ServerSettings]().
//	    Configure(func(s *ServerSettings) { s.Port = 8080 })
//	files, err := ldfilewatch.WatchFiles(interfaces.DefaultName, []string{"./settings.conf"}, loggers)
//	if err != nil { ... }
//	monitor, err := ldmonitor.NewMonitor[*ServerSettings](factory,
//	    []interfaces.ChangeTokenSource{files}, ldcache.NewMemoryCache[*ServerSettings]())
//	if err != nil { ... }
//	defer monitor.Close()
//
// Subpackages provide the standard components: change tokens ([changetoken]), caches ([ldcache]),
// factories ([ldfactory]), change sources for files, server-sent events, and HTTP polling
// ([ldfilewatch], [ldstream], [ldpoll]), and a console lifetime that turns Ctrl+C into an orderly
// shutdown ([lifetime]).
//
// [changetoken]: https://pkg.go.dev/github.com/launchdarkly/go-config-monitor/changetoken
// [ldcache]: https://pkg.go.dev/github.com/launchdarkly/go-config-monitor/ldcache
// [ldfactory]: https://pkg.go.dev/github.com/launchdarkly/go-config-monitor/ldfactory
// [ldfilewatch]: https://pkg.go.dev/github.com/launchdarkly/go-config-monitor/ldfilewatch
// [ldstream]: https://pkg.go.dev/github.com/launchdarkly/go-config-monitor/ldstream
// [ldpoll]: https://pkg.go.dev/github.com/launchdarkly/go-config-monitor/ldpoll
// [lifetime]: https://pkg.go.dev/github.com/launchdarkly/go-config-monitor/lifetime
package ldmonitor
