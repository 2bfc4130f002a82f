package topology

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// NewDwelling creates a dwelling, initially vacant.
func (t *Tx) NewDwelling(ctx context.Context, name string) (*Dwelling, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := t.ensureNameFree(ctx, KindDwelling, name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &Dwelling{
		Name:      name,
		Occupancy: OccupancyVacant,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO dwellings (name, occupancy, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		d.Name, string(d.Occupancy), formatTime(now), formatTime(now))
	if err != nil {
		return nil, t.createError(KindDwelling, name, err)
	}

	d.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading dwelling id: %w", err)
	}

	t.record(ActionCreated, d)
	return d, nil
}

// NewHub creates a hub, not yet installed into any dwelling.
func (t *Tx) NewHub(ctx context.Context, name string) (*Hub, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := t.ensureNameFree(ctx, KindHub, name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	h := &Hub{
		Name:     name,
		Hardware: newHardware(now),
	}

	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO hubs (name, dwelling_id,
			hardware_version, firmware_version, firmware_updated, created_at, updated_at)
		VALUES (?, NULL, ?, ?, ?, ?, ?)`,
		h.Name, h.HardwareVersion, h.FirmwareVersion,
		formatTime(h.FirmwareUpdated), formatTime(now), formatTime(now))
	if err != nil {
		return nil, t.createError(KindHub, name, err)
	}

	h.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading hub id: %w", err)
	}

	t.record(ActionCreated, h)
	return h, nil
}

// NewSwitch creates a switch, initially off.
func (t *Tx) NewSwitch(ctx context.Context, name string) (*Device, error) {
	d := &Device{
		Kind:   KindSwitch,
		Name:   name,
		Switch: &SwitchProps{State: SwitchOff},
	}
	if err := t.insertDevice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDimmer creates a dimmer. The range envelope must be valid
// (minValue <= maxValue, scale != 0); the value starts at minValue.
func (t *Tx) NewDimmer(ctx context.Context, name string, minValue, maxValue, scale int64) (*Device, error) {
	if err := ValidateDimmerRange(minValue, maxValue, scale); err != nil {
		return nil, err
	}

	d := &Device{
		Kind: KindDimmer,
		Name: name,
		Dimmer: &DimmerProps{
			Value:    minValue,
			MinValue: minValue,
			MaxValue: maxValue,
			Scale:    scale,
		},
	}
	if err := t.insertDevice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// NewLock creates a lock, initially unlocked, with one PIN. The PIN must be
// four or more decimal digits.
func (t *Tx) NewLock(ctx context.Context, name, pin string) (*Device, error) {
	if err := ValidatePin(pin); err != nil {
		return nil, err
	}

	d := &Device{
		Kind: KindLock,
		Name: name,
		Lock: &LockProps{State: Unlocked, Pins: []string{pin}},
	}
	if err := t.insertDevice(ctx, d); err != nil {
		return nil, err
	}

	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO lock_pins (device_id, pin) VALUES (?, ?)`, d.ID, pin); err != nil {
		return nil, fmt.Errorf("inserting pin for lock %q: %w", name, err)
	}
	return d, nil
}

// NewThermostat creates a thermostat in mode off with all temperatures at
// the default set point.
func (t *Tx) NewThermostat(ctx context.Context, name string, display ThermoDisplay) (*Device, error) {
	if err := ValidateThermoDisplay(display); err != nil {
		return nil, err
	}

	d := &Device{
		Kind: KindThermostat,
		Name: name,
		Thermostat: &ThermostatProps{
			Mode:      ModeOff,
			Operation: OperationOff,
			Display:   display,
			Low:       defaultTempCentiC,
			High:      defaultTempCentiC,
			Current:   defaultTempCentiC,
			Target:    defaultTempCentiC,
		},
	}
	if err := t.insertDevice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// insertDevice validates the shared fields, stamps hardware metadata, and
// writes the full device row.
func (t *Tx) insertDevice(ctx context.Context, d *Device) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if err := t.ensureNameFree(ctx, d.Kind, d.Name); err != nil {
		return err
	}

	now := time.Now().UTC()
	d.Hardware = newHardware(now)

	var (
		switchState, lockState, thermoMode, thermoOperation, thermoDisplay sql.NullString
		dimValue, dimMin, dimMax, dimScale                                 sql.NullInt64
		thermoLow, thermoHigh, thermoCurrent, thermoTarget                 sql.NullInt64
	)

	switch d.Kind {
	case KindSwitch:
		switchState = sql.NullString{String: string(d.Switch.State), Valid: true}
	case KindDimmer:
		dimValue = sql.NullInt64{Int64: d.Dimmer.Value, Valid: true}
		dimMin = sql.NullInt64{Int64: d.Dimmer.MinValue, Valid: true}
		dimMax = sql.NullInt64{Int64: d.Dimmer.MaxValue, Valid: true}
		dimScale = sql.NullInt64{Int64: d.Dimmer.Scale, Valid: true}
	case KindLock:
		lockState = sql.NullString{String: string(d.Lock.State), Valid: true}
	case KindThermostat:
		thermoMode = sql.NullString{String: string(d.Thermostat.Mode), Valid: true}
		thermoOperation = sql.NullString{String: string(d.Thermostat.Operation), Valid: true}
		thermoDisplay = sql.NullString{String: string(d.Thermostat.Display), Valid: true}
		thermoLow = sql.NullInt64{Int64: int64(d.Thermostat.Low), Valid: true}
		thermoHigh = sql.NullInt64{Int64: int64(d.Thermostat.High), Valid: true}
		thermoCurrent = sql.NullInt64{Int64: int64(d.Thermostat.Current), Valid: true}
		thermoTarget = sql.NullInt64{Int64: int64(d.Thermostat.Target), Valid: true}
	default:
		return validateDeviceKind(d.Kind)
	}

	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO devices (kind, name, hub_id,
			hardware_version, firmware_version, firmware_updated, created_at, updated_at,
			switch_state,
			dimmer_value, dimmer_min_value, dimmer_max_value, dimmer_scale,
			lock_state,
			thermo_mode, thermo_operation, thermo_display,
			thermo_low_centi_c, thermo_high_centi_c, thermo_current_centi_c, thermo_target_centi_c)
		VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(d.Kind), d.Name,
		d.HardwareVersion, d.FirmwareVersion,
		formatTime(d.FirmwareUpdated), formatTime(now), formatTime(now),
		switchState,
		dimValue, dimMin, dimMax, dimScale,
		lockState,
		thermoMode, thermoOperation, thermoDisplay,
		thermoLow, thermoHigh, thermoCurrent, thermoTarget)
	if err != nil {
		return t.createError(d.Kind, d.Name, err)
	}

	d.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading %s id: %w", d.Kind, err)
	}

	t.record(ActionCreated, d)
	return nil
}

// newHardware returns fresh hardware metadata for a new entity.
func newHardware(now time.Time) Hardware {
	return Hardware{
		HardwareVersion: defaultVersion,
		FirmwareVersion: defaultVersion,
		FirmwareUpdated: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ensureNameFree enforces the name-uniqueness invariant before insertion.
func (t *Tx) ensureNameFree(ctx context.Context, kind Kind, name string) error {
	exists, err := t.nameExists(ctx, kind, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, name)
	}
	return nil
}

// createError maps an insertion failure to a typed error. The UNIQUE index
// is a backstop behind ensureNameFree; hitting it still surfaces as
// ErrDuplicateName.
func (t *Tx) createError(kind Kind, name string, err error) error {
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, name)
	}
	return fmt.Errorf("inserting %s %q: %w", kind, name, err)
}

// isUniqueConstraintError checks for a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
