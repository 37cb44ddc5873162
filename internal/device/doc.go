// Package device provides the device variants served by the ISP Devices service
// and the capability contracts they are composed from.
//
// Each capability is a small interface describing one thing a device can do.
// A variant satisfies exactly the capabilities it can honour, so the absence
// of a capability is a property of the Go type rather than a runtime check.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                        Capability contracts                       │
//	│                                                                   │
//	│   PowerSwitcher        InfoReporter             Caller            │
//	│   PowerOn/PowerOff     ShowInfo                 MakeCall          │
//	│                                                 ReceiveCall       │
//	│        └──────── Basic ────────┘                   │              │
//	│                    └──────────── Telephone ────────┘              │
//	└──────────────────────────────────────────────────────────────────┘
//	             │                                  │
//	             ▼                                  ▼
//	     ┌──────────────┐                   ┌──────────────┐
//	     │    Tablet    │                   │    Phone     │
//	     │  (Basic)     │                   │ (Telephone)  │
//	     └──────────────┘                   └──────────────┘
//
// # Key Types
//
//   - PowerSwitcher, InfoReporter, Caller: single-purpose capability contracts
//   - Basic, Telephone: composites of the contracts above
//   - Phone, Tablet: the device variants
//   - Catalogue: one shared instance per Variant
//   - Result: the output of a single operation invoked by Exercise or Call
//
// FlatDevice and ChiplessTablet keep the original single-interface design
// around as a negative example. Nothing outside the legacy HTTP route uses them.
//
// # Usage
//
//	catalogue := device.NewCatalogue()
//	dev, err := catalogue.Lookup(device.VariantTablet)
//	if err != nil {
//	    return err
//	}
//
//	results := device.Exercise(dev, "123456789")
//	fmt.Println(device.Join(results))
//	// Tablet encendida
//	// Tablet apagada
//	// Mostrando informacion
//
//	if _, err := device.Call(dev, "123456789"); errors.Is(err, device.ErrCapabilityUnsupported) {
//	    // tablets have no Caller capability
//	}
//
// # Thread Safety
//
// Device values are empty structs with no state. Every operation is a pure
// function of its input and may be called from any number of goroutines.
package device
