package interfaces

// Registration is a handle for a subscription. Closing it ends the subscription; closing it more
// than once has no additional effect.
type Registration interface {
	Close()
}

// ChangeToken represents a single future notification that something may have changed.
//
// A token fires at most once. After it has fired, HasChanged returns true, and a consumer that
// wants to hear about further changes must obtain a new token from its source. The
// changetoken.OnChange helper implements that loop.
type ChangeToken interface {
	// HasChanged reports whether the token has already fired.
	HasChanged() bool
	// RegisterChangeCallback arranges for callback to be called when the token fires. If the token
	// has already fired, callback is called immediately on the calling goroutine.
	RegisterChangeCallback(callback func()) Registration
}

// ChangeTokenSource produces change tokens for one named configuration.
type ChangeTokenSource interface {
	// Name returns the name of the configuration that this source reports changes for. An empty
	// string means DefaultName.
	Name() string
	// GetChangeToken returns a token that will fire on the next change.
	GetChangeToken() ChangeToken
}
