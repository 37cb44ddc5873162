package device

// PowerSwitcher is implemented by every device that can be switched on and off.
type PowerSwitcher interface {
	PowerOn() string
	PowerOff() string
}

// InfoReporter is implemented by devices that report diagnostic information.
type InfoReporter interface {
	ShowInfo() string
}

// Caller is implemented only by devices with a cellular chip.
//
// The number is passed through untouched. Validating its format is the
// caller's concern.
type Caller interface {
	MakeCall(number string) string
	ReceiveCall(number string) string
}

// Basic is the capability set shared by all device variants.
type Basic interface {
	PowerSwitcher
	InfoReporter
}

// Telephone is a Basic device that can also place and receive calls.
type Telephone interface {
	Basic
	Caller
}

// Capability names a capability contract in API responses.
type Capability string

// Capability constants, in discovery order.
const (
	CapPower Capability = "power"
	CapInfo  Capability = "info"
	CapCall  Capability = "call"
)

// CapabilitiesOf reports which capability contracts dev satisfies.
// The result is ordered power, info, call and is never nil.
func CapabilitiesOf(dev any) []Capability {
	caps := make([]Capability, 0, 3) //nolint:mnd // one slot per capability contract
	if _, ok := dev.(PowerSwitcher); ok {
		caps = append(caps, CapPower)
	}
	if _, ok := dev.(InfoReporter); ok {
		caps = append(caps, CapInfo)
	}
	if _, ok := dev.(Caller); ok {
		caps = append(caps, CapCall)
	}
	return caps
}

// HasCapability reports whether dev satisfies the named capability.
func HasCapability(dev any, c Capability) bool {
	for _, have := range CapabilitiesOf(dev) {
		if have == c {
			return true
		}
	}
	return false
}
