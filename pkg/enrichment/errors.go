package enrichment

import (
	"errors"
	"fmt"
)

// Integrity violations. They indicate a misconfigured registry, not bad input.
var (
	ErrModuleNotFound      = errors.New("enrichment module not found")
	ErrCircularDependency  = errors.New("circular dependency")
	ErrDependencyInjection = errors.New("required dependency result missing")
)

// IntegrityError names the module that broke the dependency graph
type IntegrityError struct {
	Kind       error
	ModuleID   string
	RequiredBy string // dependent of a missing module
	Dependency string // dependency whose result was missing at injection
}

func (e *IntegrityError) Error() string {
	switch {
	case e.Dependency != "":
		return fmt.Sprintf("%v: module %q needs %q", e.Kind, e.ModuleID, e.Dependency)
	case e.RequiredBy != "":
		return fmt.Sprintf("%v: %q (required by %q)", e.Kind, e.ModuleID, e.RequiredBy)
	}
	return fmt.Sprintf("%v: %q", e.Kind, e.ModuleID)
}

func (e *IntegrityError) Unwrap() error {
	return e.Kind
}

// IsIntegrityError reports whether err is a dependency graph violation
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
