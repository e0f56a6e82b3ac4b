// Package ldpoll provides a change source that polls a URL and reports a change whenever the
// response body differs from the last one.
//
// Requests go through an in-memory HTTP cache, so a server that supports ETag or Last-Modified
// validation can answer with 304 Not Modified; such responses are never treated as changes.
package ldpoll
