// Package lifetime coordinates an orderly process shutdown.
//
// ApplicationLifetime carries the started, stopping, and stopped notifications for an application.
// ConsoleLifetime ties it to the console: Ctrl+C (SIGINT) or SIGTERM requests a stop instead of
// killing the process, so the application can close its change sources and monitors first.
//
//	appLifetime := lifetime.NewApplicationLifetime(loggers)
//	console, err := lifetime.NewConsoleLifetime(lifetime.ConsoleLifetimeOptions{},
//	    &lifetime.HostEnvironment{EnvironmentName: "Production", ContentRootPath: dir}, appLifetime, loggers)
//	if err != nil { ... }
//	defer console.Close()
//	_ = console.WaitForStart(ctx)
//	appLifetime.NotifyStarted()
//	<-appLifetime.Stopping()
package lifetime
