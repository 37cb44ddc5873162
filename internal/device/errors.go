package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrUnknownVariant) {
//	    // handle not found case
//	}
var (
	// ErrUnknownVariant is returned when a variant is not in the catalogue.
	ErrUnknownVariant = errors.New("device: unknown variant")

	// ErrCapabilityUnsupported is returned when an operation needs a capability
	// the device does not have.
	ErrCapabilityUnsupported = errors.New("device: capability not supported")

	// ErrCallUnsupported is the panic value raised by the call stubs that
	// FlatDevice forces onto ChiplessTablet.
	ErrCallUnsupported = errors.New("device: tablet without cellular chip cannot handle calls")
)
