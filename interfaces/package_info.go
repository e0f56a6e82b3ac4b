// Package interfaces contains the contracts between the configuration monitor and the
// components it is built from: snapshot factories, change tokens, change sources, and caches.
//
// You will not need to refer to these types in your code unless you are creating a custom
// component, such as a new kind of change source or cache.
package interfaces
