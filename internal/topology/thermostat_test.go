package topology

import "testing"

func TestOperationFor(t *testing.T) {
	// Set points fixed at [2000, 2500] throughout.
	const low, high = CentiCelsius(2000), CentiCelsius(2500)

	tests := []struct {
		name    string
		mode    ThermoMode
		current CentiCelsius
		want    ThermoOperation
	}{
		{"off mode ignores cold", ModeOff, 1000, OperationOff},
		{"off mode ignores heat", ModeOff, 3500, OperationOff},
		{"heat mode below low", ModeHeat, 1500, OperationHeating},
		{"heat mode in band", ModeHeat, 2200, OperationOff},
		{"heat mode ignores high", ModeHeat, 3000, OperationOff},
		{"cool mode above high", ModeCool, 3000, OperationCooling},
		{"cool mode in band", ModeCool, 2200, OperationOff},
		{"cool mode ignores low", ModeCool, 1500, OperationOff},
		{"heatcool below low", ModeHeatCool, 1500, OperationHeating},
		{"heatcool above high", ModeHeatCool, 3000, OperationCooling},
		{"heatcool in band", ModeHeatCool, 2200, OperationOff},
		{"exactly at low", ModeHeatCool, low, OperationOff},
		{"exactly at high", ModeHeatCool, high, OperationOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OperationFor(tt.mode, low, high, tt.current); got != tt.want {
				t.Errorf("OperationFor(%s, %d) = %q, want %q", tt.mode, tt.current, got, tt.want)
			}
		})
	}
}

func TestRecompute(t *testing.T) {
	p := ThermostatProps{
		Mode:    ModeHeat,
		Low:     2000,
		High:    2500,
		Current: 1500,
	}
	p.recompute()
	if p.Operation != OperationHeating {
		t.Errorf("operation = %q, want heating", p.Operation)
	}

	p.Mode = ModeOff
	p.recompute()
	if p.Operation != OperationOff {
		t.Errorf("operation = %q, want off", p.Operation)
	}
}
