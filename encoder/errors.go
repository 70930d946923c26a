package encoder

import "fmt"

// AssembleError provides context for a host-code emission failure: which
// guest PC the JIT was compiling when the assembler could not proceed
// (an unresolved label at Bytes, an out-of-range operand), plus the
// underlying error if any.
type AssembleError struct {
	GuestPC uint64
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *AssembleError) Error() string {
	loc := ""
	if e.GuestPC != 0 {
		loc = fmt.Sprintf("guest PC=0x%016X: ", e.GuestPC)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s%s: %v", loc, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s%s", loc, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AssembleError) Unwrap() error { return e.Wrapped }

// NewAssembleError builds an AssembleError anchored to the guest PC the
// JIT was compiling.
func NewAssembleError(guestPC uint64, message string) *AssembleError {
	return &AssembleError{GuestPC: guestPC, Message: message}
}

// WrapAssembleError wraps err with guest-PC context, leaving an existing
// *AssembleError untouched.
func WrapAssembleError(guestPC uint64, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AssembleError); ok {
		return ae
	}
	return &AssembleError{GuestPC: guestPC, Message: "failed to assemble host code", Wrapped: err}
}
