// Package changetoken provides the standard implementations of interfaces.ChangeToken, and the
// OnChange helper that keeps a subscription alive across any number of one-shot tokens.
//
// The model is borrowed from change notification in hosting frameworks: a token represents the
// next change only. A consumer that wants every change calls OnChange with a function that
// produces a fresh token each time:
//
//	reg := changetoken.OnChange(source.GetChangeToken, func() {
//	    reloadSomething()
//	})
//	defer reg.Close()
package changetoken
