package device

// FlatDevice is the single all-in-one interface the segregated contracts
// replace. Every implementation must provide call operations, whether or
// not the hardware can place calls.
//
// Deprecated: compose PowerSwitcher, InfoReporter and Caller instead. This
// type only backs the legacy /tablet/sin-chip route.
type FlatDevice interface {
	PowerOn() string
	PowerOff() string
	ShowInfo() string
	MakeCall(number string) string
	ReceiveCall(number string) string
}

// ChiplessTablet is a Tablet forced into FlatDevice. Its call methods exist
// only to satisfy the interface and panic with ErrCallUnsupported.
//
// Deprecated: use Tablet.
type ChiplessTablet struct {
	Tablet
}

var _ FlatDevice = ChiplessTablet{}

// MakeCall panics: a tablet without a chip cannot place calls.
func (ChiplessTablet) MakeCall(string) string {
	panic(ErrCallUnsupported)
}

// ReceiveCall panics: a tablet without a chip cannot receive calls.
func (ChiplessTablet) ReceiveCall(string) string {
	panic(ErrCallUnsupported)
}

// ExerciseFlat invokes all five FlatDevice operations in route order.
// With a ChiplessTablet it panics on MakeCall, after the power and info
// operations have already run.
func ExerciseFlat(dev FlatDevice, number string) []Result {
	return []Result{
		{Operation: OpPowerOn, Output: dev.PowerOn()},
		{Operation: OpPowerOff, Output: dev.PowerOff()},
		{Operation: OpShowInfo, Output: dev.ShowInfo()},
		{Operation: OpMakeCall, Input: number, Output: dev.MakeCall(number)},
		{Operation: OpReceiveCall, Input: number, Output: dev.ReceiveCall(number)},
	}
}
