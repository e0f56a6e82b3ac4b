// Package ldfilewatch provides a change source that reports when any of a set of files is modified.
//
// It only watches the files; it never reads or parses them. Use it with a Factory that loads
// whatever the files contain:
//
//	source, err := ldfilewatch.WatchFiles(interfaces.DefaultName, []string{"./app.conf"}, loggers)
//	if err != nil { ... }
//	defer source.Close()
//	monitor, err := ldmonitor.NewMonitor[*AppSettings](loadAppSettings,
//	    []interfaces.ChangeTokenSource{source}, ldcache.NewMemoryCache[*AppSettings]())
//
// The package is separate from the main module package so as to avoid bringing in the fsnotify
// dependency for applications that do not need it.
package ldfilewatch
