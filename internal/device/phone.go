package device

// Phone is a smartphone. It has a cellular chip, so it satisfies Telephone.
type Phone struct{}

var _ Telephone = Phone{}

// PowerOn implements PowerSwitcher.
func (Phone) PowerOn() string {
	return "Teléfono inteligente encendido"
}

// PowerOff implements PowerSwitcher.
func (Phone) PowerOff() string {
	return "Teléfono inteligente apagado"
}

// ShowInfo implements InfoReporter.
func (Phone) ShowInfo() string {
	return "Mostrando información"
}

// MakeCall implements Caller.
func (Phone) MakeCall(number string) string {
	return "Llamando al número: " + number
}

// ReceiveCall implements Caller.
func (Phone) ReceiveCall(number string) string {
	return "Recibiendo llamada del número: " + number
}
