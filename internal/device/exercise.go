package device

import (
	"fmt"
	"strings"
)

// DefaultNumber is the number dialled by the fixed device routes.
const DefaultNumber = "123456789"

// Operation names a single device operation.
type Operation string

// Operation constants, in the order Exercise invokes them.
const (
	OpPowerOn     Operation = "power_on"
	OpPowerOff    Operation = "power_off"
	OpShowInfo    Operation = "show_info"
	OpMakeCall    Operation = "make_call"
	OpReceiveCall Operation = "receive_call"
)

// Result is the output of one operation. Input is set for call operations.
type Result struct {
	Operation Operation `json:"operation"`
	Input     string    `json:"input,omitempty"`
	Output    string    `json:"output"`
}

// Exercise runs every operation dev supports.
//
// Power and info operations always run. The call operations run with
// number only when dev is a Caller; for any other device they are skipped.
func Exercise(dev Basic, number string) []Result {
	results := []Result{
		{Operation: OpPowerOn, Output: dev.PowerOn()},
		{Operation: OpPowerOff, Output: dev.PowerOff()},
		{Operation: OpShowInfo, Output: dev.ShowInfo()},
	}

	if caller, ok := dev.(Caller); ok {
		results = append(results, callResults(caller, number)...)
	}

	return results
}

// Call places and receives a call on dev.
// Returns ErrCapabilityUnsupported if dev is not a Caller.
func Call(dev Basic, number string) ([]Result, error) {
	caller, ok := dev.(Caller)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCapabilityUnsupported, CapCall)
	}
	return callResults(caller, number), nil
}

func callResults(c Caller, number string) []Result {
	return []Result{
		{Operation: OpMakeCall, Input: number, Output: c.MakeCall(number)},
		{Operation: OpReceiveCall, Input: number, Output: c.ReceiveCall(number)},
	}
}

// Join concatenates result outputs with newlines, in order.
func Join(results []Result) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = r.Output
	}
	return strings.Join(lines, "\n")
}
