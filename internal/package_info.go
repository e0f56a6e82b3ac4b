// Package internal contains implementation details that are shared between packages of the
// configuration monitor, but are not exposed to application code.
package internal
