package topology

// OperationFor derives the thermostat operation from the mode and the
// ordered comparison of the current temperature against the set points.
//
// It is a pure function with no memory of the previous operation:
//
//	mode Off                                    -> Off
//	current > high, mode in {Cool, HeatCool}    -> Cooling
//	current < low,  mode in {Heat, HeatCool}    -> Heating
//	otherwise                                   -> Off
//
// Ties (current exactly at low or high) resolve to Off. No hysteresis band
// is modelled.
//
// TODO: add a configurable hysteresis band so the operation doesn't flap
// when current hovers at a set point.
func OperationFor(mode ThermoMode, low, high, current CentiCelsius) ThermoOperation {
	switch {
	case mode == ModeOff:
		return OperationOff
	case current > high && (mode == ModeCool || mode == ModeHeatCool):
		return OperationCooling
	case current < low && (mode == ModeHeat || mode == ModeHeatCool):
		return OperationHeating
	default:
		return OperationOff
	}
}

// recompute refreshes the derived Operation field. Called after every
// mutation that touches mode, low, high, or current.
func (p *ThermostatProps) recompute() {
	p.Operation = OperationFor(p.Mode, p.Low, p.High, p.Current)
}
