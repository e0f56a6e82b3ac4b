// Package ldfactory provides a configurable implementation of interfaces.Factory.
//
// A factory built with New allocates a new value for each snapshot and runs a sequence of actions on
// it: configure actions in the order they were added, then post-configure actions, then validations.
// Actions can apply to one name or to every name.
//
//	factory := ldfactory.New[ServerSettings]().
//	    Configure(func(s *ServerSettings) { s.Port = 8080 }).
//	    ConfigureNamed("admin", func(s *ServerSettings) { s.Port = 9090 }).
//	    Validate(func(s ServerSettings) bool { return s.Port > 0 }, "port must be positive")
package ldfactory
