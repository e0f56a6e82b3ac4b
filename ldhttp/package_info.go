// Package ldhttp provides helpers for building the HTTP clients used by the streaming and polling
// change sources.
//
// Normally you do not need to use this package directly; ldstream and ldpoll use NewHTTPClient
// with no options if no client is configured. Use it when the configuration server needs a custom
// CA certificate, a proxy, or NTLM proxy authentication:
//
//	client, err := ldhttp.NewHTTPClient(
//	    ldhttp.CACertFileOption("/etc/certs/internal-ca.pem"),
//	    ldhttp.ConnectTimeoutOption(5*time.Second))
package ldhttp
