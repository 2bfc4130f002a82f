package topology

import (
	"fmt"
	"regexp"
)

// Validation constants.
const (
	maxNameLength = 100

	// pinPattern requires four or more decimal digits.
	pinPattern = `^[0-9]{4,}$`
)

var pinRegex = regexp.MustCompile(pinPattern)

// ValidateName checks an entity name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidValue)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidValue, maxNameLength)
	}
	return nil
}

// ValidatePin checks the PIN format rule: four or more decimal digits.
func ValidatePin(pin string) error {
	if !pinRegex.MatchString(pin) {
		return fmt.Errorf("%w: pin %q must be four or more digits", ErrInvalidValue, pin)
	}
	return nil
}

// ValidateDimmerRange checks a dimmer range envelope.
func ValidateDimmerRange(minValue, maxValue, scale int64) error {
	if minValue > maxValue {
		return fmt.Errorf("%w: dimmer range [%d, %d] has min above max", ErrInvalidValue, minValue, maxValue)
	}
	if scale == 0 {
		return fmt.Errorf("%w: dimmer scale must not be zero", ErrInvalidValue)
	}
	return nil
}

// ValidateSetPoints checks a thermostat set-point pair.
func ValidateSetPoints(low, high CentiCelsius) error {
	if low > high {
		return fmt.Errorf("%w: set points [%d, %d] have low above high", ErrInvalidValue, low, high)
	}
	return nil
}

// ValidateOccupancy checks an occupancy value.
func ValidateOccupancy(state Occupancy) error {
	switch state {
	case OccupancyVacant, OccupancyOccupied:
		return nil
	default:
		return fmt.Errorf("%w: occupancy %q", ErrInvalidValue, state)
	}
}

// ValidateSwitchState checks a switch state value.
func ValidateSwitchState(state SwitchState) error {
	switch state {
	case SwitchOn, SwitchOff:
		return nil
	default:
		return fmt.Errorf("%w: switch state %q", ErrInvalidValue, state)
	}
}

// ValidateThermoMode checks a thermostat mode value.
func ValidateThermoMode(mode ThermoMode) error {
	switch mode {
	case ModeOff, ModeHeat, ModeCool, ModeHeatCool:
		return nil
	default:
		return fmt.Errorf("%w: thermostat mode %q", ErrInvalidValue, mode)
	}
}

// ValidateThermoDisplay checks a thermostat display unit.
func ValidateThermoDisplay(display ThermoDisplay) error {
	switch display {
	case DisplayCelsius, DisplayFahrenheit:
		return nil
	default:
		return fmt.Errorf("%w: thermostat display %q", ErrInvalidValue, display)
	}
}

// validateKind checks that kind names a declared entity kind.
func validateKind(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidValue, kind)
	}
	return nil
}

// validateDeviceKind checks that kind names a device variant.
func validateDeviceKind(kind Kind) error {
	if !kind.IsDevice() {
		return fmt.Errorf("%w: %q is not a device kind", ErrInvalidValue, kind)
	}
	return nil
}
