// Package fault defines the error taxonomy of the rebuild engine.
//
// A lookup miss is never a fault. Everything else is a *Error of one of three
// kinds, optionally tied to the object it was raised for.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a fault.
type Kind string

const (
	// KindSchema marks data that violates a parsing assumption: repeated
	// properties, two delay sources, an unexpected loop flag, a class without
	// a build implementation.
	KindSchema Kind = "schema-violation"
	// KindCycle marks a re-entrant request for an object still being processed.
	KindCycle Kind = "reference-cycle"
	// KindGeneration marks a failure while rendering one object's script entry.
	KindGeneration Kind = "generation-failure"
)

var (
	ErrSchema     = errors.New(string(KindSchema))
	ErrCycle      = errors.New(string(KindCycle))
	ErrGeneration = errors.New(string(KindGeneration))
)

// Error is a classified fault. Class and ObjectID are zero when the fault was
// raised below the object level (for example while resolving properties).
type Error struct {
	Kind     Kind
	Class    string
	Bank     uint32
	ObjectID uint32
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Class != "" || e.ObjectID != 0 {
		msg = fmt.Sprintf("%s - %s %d", msg, e.Class, e.ObjectID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSchema:
		return e.Kind == KindSchema
	case ErrCycle:
		return e.Kind == KindCycle
	case ErrGeneration:
		return e.Kind == KindGeneration
	}
	return false
}

// Schema builds a schema violation.
func Schema(format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Msg: fmt.Sprintf(format, args...)}
}

// Cycle builds a cycle fault for the object at (bank, id).
func Cycle(class string, bank, id uint32) *Error {
	return &Error{
		Kind:     KindCycle,
		Class:    class,
		Bank:     bank,
		ObjectID: id,
		Msg:      "object requested while still in progress",
	}
}

// Generation wraps cause as the generation failure of object id.
func Generation(class string, bank, id uint32, cause error) *Error {
	return &Error{
		Kind:     KindGeneration,
		Class:    class,
		Bank:     bank,
		ObjectID: id,
		Msg:      fmt.Sprintf("error processing script for node %d", id),
		Err:      cause,
	}
}

// Attach ties an identity-less fault to an object. Wrapped errors, other
// errors and faults that already carry an identity are returned unchanged.
func Attach(err error, class string, bank, id uint32) error {
	f, ok := err.(*Error)
	if !ok || f.Class != "" || f.ObjectID != 0 {
		return err
	}
	c := *f
	c.Class, c.Bank, c.ObjectID = class, bank, id
	return &c
}

// IsCycle reports whether any fault in err's chain is a cycle.
func IsCycle(err error) bool {
	return errors.Is(err, ErrCycle)
}
