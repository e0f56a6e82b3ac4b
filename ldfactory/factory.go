package ldfactory

import (
	"errors"
	"fmt"

	"github.com/launchdarkly/go-config-monitor/interfaces"

	"github.com/hashicorp/go-multierror"
)

// Factory builds configuration snapshots of type *S. Create it with New, and add actions with its
// builder methods before handing it to a monitor; the builder methods are not safe to call
// concurrently with Create.
type Factory[S any] struct {
	configures     []namedAction[S]
	postConfigures []namedAction[S]
	validations    []validation[S]
}

type namedAction[S any] struct {
	all    bool
	name   string
	action func(name string, value *S)
}

type validation[S any] struct {
	all     bool
	name    string
	check   func(value S) bool
	message string
}

// ValidationError is returned by Create when one or more validations fail.
type ValidationError struct {
	// Name is the name of the configuration that failed validation.
	Name string
	// Failures contains one error per failed validation, in the order the validations were added.
	Failures *multierror.Error
}

// Error returns a description of all of the failures.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration %q is invalid: %s", e.Name, e.Failures.Error())
}

// Unwrap returns the aggregated failures.
func (e *ValidationError) Unwrap() error {
	return e.Failures
}

// New creates a Factory with no actions. Without any actions, Create returns a pointer to a zero S.
func New[S any]() *Factory[S] {
	return &Factory[S]{}
}

var _ interfaces.Factory[*int] = (*Factory[int])(nil)

// Configure adds an action that applies to the default configuration.
func (f *Factory[S]) Configure(action func(value *S)) *Factory[S] {
	return f.ConfigureNamed(interfaces.DefaultName, action)
}

// ConfigureNamed adds an action that applies to the configuration with the given name.
func (f *Factory[S]) ConfigureNamed(name string, action func(value *S)) *Factory[S] {
	f.configures = append(f.configures, namedAction[S]{
		name:   name,
		action: func(_ string, value *S) { action(value) },
	})
	return f
}

// ConfigureAll adds an action that applies to every configuration. It receives the name.
func (f *Factory[S]) ConfigureAll(action func(name string, value *S)) *Factory[S] {
	f.configures = append(f.configures, namedAction[S]{all: true, action: action})
	return f
}

// PostConfigure adds an action for the default configuration that runs after all configure actions.
func (f *Factory[S]) PostConfigure(action func(value *S)) *Factory[S] {
	f.postConfigures = append(f.postConfigures, namedAction[S]{
		name:   interfaces.DefaultName,
		action: func(_ string, value *S) { action(value) },
	})
	return f
}

// PostConfigureAll adds an action for every configuration that runs after all configure actions.
func (f *Factory[S]) PostConfigureAll(action func(name string, value *S)) *Factory[S] {
	f.postConfigures = append(f.postConfigures, namedAction[S]{all: true, action: action})
	return f
}

// Validate adds a check that applies to every configuration. If check returns false, Create fails
// with a ValidationError that includes failureMessage.
func (f *Factory[S]) Validate(check func(value S) bool, failureMessage string) *Factory[S] {
	f.validations = append(f.validations, validation[S]{all: true, check: check, message: failureMessage})
	return f
}

// ValidateNamed is like Validate, but only applies to the configuration with the given name.
func (f *Factory[S]) ValidateNamed(name string, check func(value S) bool, failureMessage string) *Factory[S] {
	f.validations = append(f.validations, validation[S]{name: name, check: check, message: failureMessage})
	return f
}

// Create is a standard method of interfaces.Factory. Each call returns a newly allocated value.
func (f *Factory[S]) Create(name string) (*S, error) {
	value := new(S)
	for _, a := range f.configures {
		if a.all || a.name == name {
			a.action(name, value)
		}
	}
	for _, a := range f.postConfigures {
		if a.all || a.name == name {
			a.action(name, value)
		}
	}

	var failures *multierror.Error
	for _, v := range f.validations {
		if (v.all || v.name == name) && !v.check(*value) {
			failures = multierror.Append(failures, errors.New(v.message))
		}
	}
	if failures != nil {
		return nil, &ValidationError{Name: name, Failures: failures}
	}
	return value, nil
}
