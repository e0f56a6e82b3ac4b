// Package sharedtest contains types and functions used by unit tests in multiple packages.
//
// Since it is inside internal/, none of this code can be seen by application code and it can be
// freely changed. It is important that no non-test code ever imports this package.
//
// This package must not be imported by tests in the internal or changetoken packages, because it
// depends on changetoken, which depends on internal.
package sharedtest
