package topology

import (
	"context"
	"fmt"
	"time"
)

// SetDwellingOccupancy marks a dwelling occupied or vacant.
func (t *Tx) SetDwellingOccupancy(ctx context.Context, name string, state Occupancy) (*Dwelling, error) {
	if err := ValidateOccupancy(state); err != nil {
		return nil, err
	}

	d, err := t.GetDwelling(ctx, name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE dwellings SET occupancy = ?, updated_at = ? WHERE id = ?`,
		string(state), formatTime(now), d.ID); err != nil {
		return nil, fmt.Errorf("updating dwelling %q: %w", name, err)
	}

	d.Occupancy = state
	d.UpdatedAt = now
	t.record(ActionUpdated, d)
	return d, nil
}

// SetSwitchState turns a switch on or off.
func (t *Tx) SetSwitchState(ctx context.Context, name string, state SwitchState) (*Device, error) {
	if err := ValidateSwitchState(state); err != nil {
		return nil, err
	}

	d, err := t.GetDevice(ctx, KindSwitch, name)
	if err != nil {
		return nil, err
	}

	d.Switch.State = state
	if err := t.updateDevice(ctx, d,
		`UPDATE devices SET switch_state = ?, updated_at = ? WHERE id = ?`,
		string(state)); err != nil {
		return nil, err
	}
	return d, nil
}

// SetDimmerValue sets a dimmer's value. The value must fall within the
// dimmer's range envelope.
func (t *Tx) SetDimmerValue(ctx context.Context, name string, value int64) (*Device, error) {
	d, err := t.GetDevice(ctx, KindDimmer, name)
	if err != nil {
		return nil, err
	}

	p := d.Dimmer
	if value < p.MinValue || value > p.MaxValue {
		return nil, fmt.Errorf("%w: dimmer %q value %d outside [%d, %d]",
			ErrOutOfRange, name, value, p.MinValue, p.MaxValue)
	}

	p.Value = value
	if err := t.updateDevice(ctx, d,
		`UPDATE devices SET dimmer_value = ?, updated_at = ? WHERE id = ?`,
		value); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDimmer replaces a dimmer's range envelope. The value resets to the
// new minimum; the previous value is not clamped or preserved.
func (t *Tx) UpdateDimmer(ctx context.Context, name string, minValue, maxValue, scale int64) (*Device, error) {
	if err := ValidateDimmerRange(minValue, maxValue, scale); err != nil {
		return nil, err
	}

	d, err := t.GetDevice(ctx, KindDimmer, name)
	if err != nil {
		return nil, err
	}

	p := d.Dimmer
	p.Value = minValue
	p.MinValue = minValue
	p.MaxValue = maxValue
	p.Scale = scale
	if err := t.updateDevice(ctx, d,
		`UPDATE devices SET dimmer_value = ?, dimmer_min_value = ?, dimmer_max_value = ?,
			dimmer_scale = ?, updated_at = ? WHERE id = ?`,
		p.Value, p.MinValue, p.MaxValue, p.Scale); err != nil {
		return nil, err
	}
	return d, nil
}

// LockDoor sets a lock to locked. No PIN is needed to lock.
func (t *Tx) LockDoor(ctx context.Context, name string) (*Device, error) {
	return t.setLockState(ctx, name, Locked)
}

// UnlockDoor sets a lock to unlocked if the PIN matches one of its
// registered PINs; otherwise it fails with ErrInvalidPin and the lock
// stays locked.
func (t *Tx) UnlockDoor(ctx context.Context, name, pin string) (*Device, error) {
	d, err := t.GetDevice(ctx, KindLock, name)
	if err != nil {
		return nil, err
	}
	if !d.Lock.HasPin(pin) {
		return nil, fmt.Errorf("%w: lock %q rejected the pin", ErrInvalidPin, name)
	}

	d.Lock.State = Unlocked
	if err := t.updateDevice(ctx, d,
		`UPDATE devices SET lock_state = ?, updated_at = ? WHERE id = ?`,
		string(Unlocked)); err != nil {
		return nil, err
	}
	return d, nil
}

// AddLockPin registers an additional PIN on a lock. Adding a PIN the lock
// already has is a no-op.
func (t *Tx) AddLockPin(ctx context.Context, name, pin string) (*Device, error) {
	if err := ValidatePin(pin); err != nil {
		return nil, err
	}

	d, err := t.GetDevice(ctx, KindLock, name)
	if err != nil {
		return nil, err
	}
	if d.Lock.HasPin(pin) {
		return d, nil
	}

	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO lock_pins (device_id, pin) VALUES (?, ?)`, d.ID, pin); err != nil {
		return nil, fmt.Errorf("inserting pin for lock %q: %w", name, err)
	}
	d.Lock.Pins = append(d.Lock.Pins, pin)
	if err := t.touchDevice(ctx, d); err != nil {
		return nil, err
	}
	t.record(ActionUpdated, d)
	return d, nil
}

// RemoveLockPin removes a PIN from a lock. Removing a PIN the lock does
// not have fails with ErrInvalidPin.
func (t *Tx) RemoveLockPin(ctx context.Context, name, pin string) (*Device, error) {
	d, err := t.GetDevice(ctx, KindLock, name)
	if err != nil {
		return nil, err
	}
	if !d.Lock.HasPin(pin) {
		return nil, fmt.Errorf("%w: lock %q has no such pin", ErrInvalidPin, name)
	}

	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM lock_pins WHERE device_id = ? AND pin = ?`, d.ID, pin); err != nil {
		return nil, fmt.Errorf("removing pin from lock %q: %w", name, err)
	}
	pins := d.Lock.Pins[:0]
	for _, p := range d.Lock.Pins {
		if p != pin {
			pins = append(pins, p)
		}
	}
	d.Lock.Pins = pins
	if err := t.touchDevice(ctx, d); err != nil {
		return nil, err
	}
	t.record(ActionUpdated, d)
	return d, nil
}

// SetThermoMode sets a thermostat's mode and derives its new operation.
func (t *Tx) SetThermoMode(ctx context.Context, name string, mode ThermoMode) (*Device, error) {
	if err := ValidateThermoMode(mode); err != nil {
		return nil, err
	}

	d, err := t.GetDevice(ctx, KindThermostat, name)
	if err != nil {
		return nil, err
	}

	d.Thermostat.Mode = mode
	d.Thermostat.recompute()
	return d, t.updateThermostat(ctx, d)
}

// SetThermoCurrentTemp records a thermostat's observed temperature and
// derives its new operation. In a live deployment this is the reading the
// device itself reports.
func (t *Tx) SetThermoCurrentTemp(ctx context.Context, name string, value CentiCelsius) (*Device, error) {
	d, err := t.GetDevice(ctx, KindThermostat, name)
	if err != nil {
		return nil, err
	}

	d.Thermostat.Current = value
	d.Thermostat.recompute()
	return d, t.updateThermostat(ctx, d)
}

// SetThermoSetPoints sets a thermostat's low and high set points and
// derives its new operation. The low set point must not exceed the high.
func (t *Tx) SetThermoSetPoints(ctx context.Context, name string, low, high CentiCelsius) (*Device, error) {
	if err := ValidateSetPoints(low, high); err != nil {
		return nil, err
	}

	d, err := t.GetDevice(ctx, KindThermostat, name)
	if err != nil {
		return nil, err
	}

	d.Thermostat.Low = low
	d.Thermostat.High = high
	d.Thermostat.recompute()
	return d, t.updateThermostat(ctx, d)
}

// UpdateThermostat changes a thermostat's display unit.
func (t *Tx) UpdateThermostat(ctx context.Context, name string, display ThermoDisplay) (*Device, error) {
	if err := ValidateThermoDisplay(display); err != nil {
		return nil, err
	}

	d, err := t.GetDevice(ctx, KindThermostat, name)
	if err != nil {
		return nil, err
	}

	d.Thermostat.Display = display
	if err := t.updateDevice(ctx, d,
		`UPDATE devices SET thermo_display = ?, updated_at = ? WHERE id = ?`,
		string(display)); err != nil {
		return nil, err
	}
	return d, nil
}

func (t *Tx) setLockState(ctx context.Context, name string, state LockState) (*Device, error) {
	d, err := t.GetDevice(ctx, KindLock, name)
	if err != nil {
		return nil, err
	}

	d.Lock.State = state
	if err := t.updateDevice(ctx, d,
		`UPDATE devices SET lock_state = ?, updated_at = ? WHERE id = ?`,
		string(state)); err != nil {
		return nil, err
	}
	return d, nil
}

// updateThermostat writes back every derived thermostat column in one
// statement so the stored operation never drifts from the stored inputs.
func (t *Tx) updateThermostat(ctx context.Context, d *Device) error {
	p := d.Thermostat
	return t.updateDevice(ctx, d,
		`UPDATE devices SET thermo_mode = ?, thermo_operation = ?,
			thermo_low_centi_c = ?, thermo_high_centi_c = ?,
			thermo_current_centi_c = ?, thermo_target_centi_c = ?,
			updated_at = ? WHERE id = ?`,
		string(p.Mode), string(p.Operation),
		int64(p.Low), int64(p.High), int64(p.Current), int64(p.Target))
}

// updateDevice runs a device UPDATE whose final two placeholders are
// updated_at and id, then records the change.
func (t *Tx) updateDevice(ctx context.Context, d *Device, query string, args ...any) error {
	now := time.Now().UTC()
	args = append(args, formatTime(now), d.ID)
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating %s %q: %w", d.Kind, d.Name, err)
	}
	d.UpdatedAt = now
	t.record(ActionUpdated, d)
	return nil
}

// touchDevice bumps updated_at without changing any other column.
func (t *Tx) touchDevice(ctx context.Context, d *Device) error {
	now := time.Now().UTC()
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE devices SET updated_at = ? WHERE id = ?`, formatTime(now), d.ID); err != nil {
		return fmt.Errorf("updating %s %q: %w", d.Kind, d.Name, err)
	}
	d.UpdatedAt = now
	return nil
}
