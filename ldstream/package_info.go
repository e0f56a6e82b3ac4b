// Package ldstream provides a change source that listens to a server-sent events stream.
//
// The server tells the application which configuration changed; the application then rebuilds
// that configuration by whatever means its Factory uses. Two events are understood:
//
//	event: change
//	data: {"name": "payments"}
//
//	event: reset
//	data: {}
//
// A "change" event with no name, or a null name, refers to the default configuration. A "reset"
// event reports a change for every configuration name this source has handed out. Other events
// are logged and ignored.
package ldstream
