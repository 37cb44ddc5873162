package device

// Tablet is a tablet without a cellular chip.
//
// It satisfies Basic and nothing else: there are no call methods on this
// type, so code that tries to place a call on a Tablet does not compile.
type Tablet struct{}

var _ Basic = Tablet{}

// PowerOn implements PowerSwitcher.
func (Tablet) PowerOn() string {
	return "Tablet encendida"
}

// PowerOff implements PowerSwitcher.
func (Tablet) PowerOff() string {
	return "Tablet apagada"
}

// ShowInfo implements InfoReporter.
func (Tablet) ShowInfo() string {
	return "Mostrando informacion"
}
