package topology

import "time"

// Kind identifies an entity class in the topology.
type Kind string

// Entity kinds. The device kinds form a closed set; see Kind.IsDevice.
const (
	KindDwelling   Kind = "dwelling"
	KindHub        Kind = "hub"
	KindSwitch     Kind = "switch"
	KindDimmer     Kind = "dimmer"
	KindLock       Kind = "lock"
	KindThermostat Kind = "thermostat"
)

// AllKinds returns every valid entity kind, places before devices.
func AllKinds() []Kind {
	return []Kind{KindDwelling, KindHub, KindSwitch, KindDimmer, KindLock, KindThermostat}
}

// DeviceKinds returns the closed set of device kinds.
func DeviceKinds() []Kind {
	return []Kind{KindSwitch, KindDimmer, KindLock, KindThermostat}
}

// IsDevice reports whether the kind is one of the device variants.
func (k Kind) IsDevice() bool {
	switch k {
	case KindSwitch, KindDimmer, KindLock, KindThermostat:
		return true
	default:
		return false
	}
}

// Valid reports whether the kind is one of the declared entity kinds.
func (k Kind) Valid() bool {
	return k == KindDwelling || k == KindHub || k.IsDevice()
}

// Occupancy is the occupancy state of a Dwelling.
type Occupancy string

// Occupancy states.
const (
	OccupancyVacant   Occupancy = "vacant"
	OccupancyOccupied Occupancy = "occupied"
)

// SwitchState is the on/off state of a Switch.
type SwitchState string

// Switch states.
const (
	SwitchOn  SwitchState = "on"
	SwitchOff SwitchState = "off"
)

// LockState is the locked/unlocked state of a Lock.
type LockState string

// Lock states.
const (
	Locked   LockState = "locked"
	Unlocked LockState = "unlocked"
)

// ThermoDisplay is the display unit of a Thermostat.
type ThermoDisplay string

// Thermostat display units.
const (
	DisplayCelsius    ThermoDisplay = "c"
	DisplayFahrenheit ThermoDisplay = "f"
)

// ThermoMode is the configured operating mode of a Thermostat: whether it
// may heat, cool, both, or neither.
type ThermoMode string

// Thermostat modes.
const (
	ModeOff      ThermoMode = "off"
	ModeHeat     ThermoMode = "heat"
	ModeCool     ThermoMode = "cool"
	ModeHeatCool ThermoMode = "heatcool"
)

// ThermoOperation is the heating/cooling action a Thermostat is currently
// commanding. It is derived from (mode, low, high, current); see
// OperationFor.
type ThermoOperation string

// Thermostat operations.
const (
	OperationOff     ThermoOperation = "off"
	OperationHeating ThermoOperation = "heating"
	OperationCooling ThermoOperation = "cooling"
)

// CentiCelsius is a temperature in hundredths of a degree Celsius.
// Temperatures are stored as integers to avoid floating-point drift;
// conversion to display units happens only at the boundary.
type CentiCelsius int64

// Celsius returns the temperature in degrees Celsius.
func (c CentiCelsius) Celsius() float64 {
	return float64(c) / 100.0
}

// Fahrenheit returns the temperature in degrees Fahrenheit.
func (c CentiCelsius) Fahrenheit() float64 {
	return float64(c)*9.0/500.0 + 32.0
}

// defaultTempCentiC is the initial value for all thermostat temperature
// fields (22.20 degrees Celsius).
const defaultTempCentiC CentiCelsius = 2220

// Hardware carries opaque hardware metadata common to hubs and devices.
// The core stores these fields but never validates them beyond presence.
type Hardware struct {
	HardwareVersion string    `json:"hardware_version"`
	FirmwareVersion string    `json:"firmware_version"`
	FirmwareUpdated time.Time `json:"firmware_updated"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// defaultVersion is the version string assigned to new hardware records.
const defaultVersion = "0.0.0"

// Dwelling is a living space that hubs can be installed into.
// Its name is unique across dwellings.
type Dwelling struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Occupancy Occupancy `json:"occupancy"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hub is a controller that devices pair to. A hub is optionally installed
// into exactly one dwelling, referenced by identifier. Its name is unique
// across hubs.
type Hub struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	DwellingID *int64 `json:"dwelling_id,omitempty"`
	Hardware
}

// Device is an addressable unit paired to at most one hub. It is a closed
// tagged union: Kind discriminates, and exactly one of the props pointers
// (Switch, Dimmer, Lock, Thermostat) is non-nil. (kind, name) pairs are
// unique, so two devices of different kinds may share a name.
type Device struct {
	ID    int64  `json:"id"`
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	HubID *int64 `json:"hub_id,omitempty"`
	Hardware

	Switch     *SwitchProps     `json:"switch,omitempty"`
	Dimmer     *DimmerProps     `json:"dimmer,omitempty"`
	Lock       *LockProps       `json:"lock,omitempty"`
	Thermostat *ThermostatProps `json:"thermostat,omitempty"`
}

// SwitchProps holds the state specific to a Switch.
type SwitchProps struct {
	State SwitchState `json:"state"`
}

// DimmerProps holds the state specific to a Dimmer.
// Invariants: MinValue <= Value <= MaxValue, MinValue <= MaxValue, Scale != 0.
type DimmerProps struct {
	Value    int64 `json:"value"`
	MinValue int64 `json:"min_value"`
	MaxValue int64 `json:"max_value"`
	Scale    int64 `json:"scale"`
}

// DisplayValue returns the dimmer value scaled for display.
func (p DimmerProps) DisplayValue() float64 {
	return float64(p.Value) / float64(p.Scale)
}

// LockProps holds the state specific to a Lock, including its owned,
// ordered PIN set. Each PIN is four or more decimal digits.
type LockProps struct {
	State LockState `json:"state"`
	Pins  []string  `json:"pins"`
}

// HasPin reports whether pin is in the lock's PIN set.
func (p LockProps) HasPin(pin string) bool {
	for _, candidate := range p.Pins {
		if candidate == pin {
			return true
		}
	}
	return false
}

// ThermostatProps holds the state specific to a Thermostat. Operation is
// always the value of OperationFor over the other fields; every mutator
// that touches mode or a temperature recomputes it.
type ThermostatProps struct {
	Mode      ThermoMode      `json:"mode"`
	Operation ThermoOperation `json:"operation"`
	Display   ThermoDisplay   `json:"display"`
	Low       CentiCelsius    `json:"low_centi_c"`
	High      CentiCelsius    `json:"high_centi_c"`
	Current   CentiCelsius    `json:"current_centi_c"`
	Target    CentiCelsius    `json:"target_centi_c"`
}

// DisplayLow returns the low set point in the configured display unit.
func (p ThermostatProps) DisplayLow() float64 { return p.display(p.Low) }

// DisplayHigh returns the high set point in the configured display unit.
func (p ThermostatProps) DisplayHigh() float64 { return p.display(p.High) }

// DisplayCurrent returns the current temperature in the configured display unit.
func (p ThermostatProps) DisplayCurrent() float64 { return p.display(p.Current) }

// DisplayTarget returns the target temperature in the configured display unit.
func (p ThermostatProps) DisplayTarget() float64 { return p.display(p.Target) }

func (p ThermostatProps) display(c CentiCelsius) float64 {
	if p.Display == DisplayFahrenheit {
		return c.Fahrenheit()
	}
	return c.Celsius()
}

// Entity is implemented by the three stored entity types. It gives the
// command layer and the announce layer a uniform view without exposing
// mutable internals.
type Entity interface {
	EntityID() int64
	EntityKind() Kind
	EntityName() string
}

// EntityID returns the dwelling's identifier.
func (d *Dwelling) EntityID() int64 { return d.ID }

// EntityKind returns KindDwelling.
func (d *Dwelling) EntityKind() Kind { return KindDwelling }

// EntityName returns the dwelling's name.
func (d *Dwelling) EntityName() string { return d.Name }

// EntityID returns the hub's identifier.
func (h *Hub) EntityID() int64 { return h.ID }

// EntityKind returns KindHub.
func (h *Hub) EntityKind() Kind { return KindHub }

// EntityName returns the hub's name.
func (h *Hub) EntityName() string { return h.Name }

// EntityID returns the device's identifier.
func (d *Device) EntityID() int64 { return d.ID }

// EntityKind returns the device's kind discriminator.
func (d *Device) EntityKind() Kind { return d.Kind }

// EntityName returns the device's name.
func (d *Device) EntityName() string { return d.Name }
