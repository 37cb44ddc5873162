package invocation

import "errors"

// ErrInvalidInvocation is returned when an invocation lacks a variant or operation.
var ErrInvalidInvocation = errors.New("invocation: variant and operation are required")
