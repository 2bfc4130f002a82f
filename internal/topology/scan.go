package topology

import (
	"database/sql"
	"fmt"
	"time"
)

// Column lists for SELECT statements, kept in one place so scan functions
// and queries cannot drift apart.
const (
	dwellingColumns = `id, name, occupancy, created_at, updated_at`

	hubColumns = `id, name, dwelling_id,
		hardware_version, firmware_version, firmware_updated, created_at, updated_at`

	deviceColumns = `id, kind, name, hub_id,
		hardware_version, firmware_version, firmware_updated, created_at, updated_at,
		switch_state,
		dimmer_value, dimmer_min_value, dimmer_max_value, dimmer_scale,
		lock_state,
		thermo_mode, thermo_operation, thermo_display,
		thermo_low_centi_c, thermo_high_centi_c, thermo_current_centi_c, thermo_target_centi_c`
)

// rowScanner is satisfied by both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDwelling scans one row of dwellingColumns.
func scanDwelling(scanner rowScanner) (*Dwelling, error) {
	var d Dwelling
	var occupancy, createdAt, updatedAt string

	if err := scanner.Scan(&d.ID, &d.Name, &occupancy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	d.Occupancy = Occupancy(occupancy)
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}

// scanHub scans one row of hubColumns.
func scanHub(scanner rowScanner) (*Hub, error) {
	var h Hub
	var dwellingID sql.NullInt64
	var firmwareUpdated, createdAt, updatedAt string

	err := scanner.Scan(&h.ID, &h.Name, &dwellingID,
		&h.HardwareVersion, &h.FirmwareVersion, &firmwareUpdated, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if dwellingID.Valid {
		h.DwellingID = &dwellingID.Int64
	}
	h.FirmwareUpdated = parseTime(firmwareUpdated)
	h.CreatedAt = parseTime(createdAt)
	h.UpdatedAt = parseTime(updatedAt)
	return &h, nil
}

// scanDevice scans one row of deviceColumns and builds the kind-specific
// props. Lock PINs live in their own table and are loaded separately.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var kind string
	var hubID sql.NullInt64
	var firmwareUpdated, createdAt, updatedAt string
	var switchState, lockState, thermoMode, thermoOperation, thermoDisplay sql.NullString
	var dimValue, dimMin, dimMax, dimScale sql.NullInt64
	var thermoLow, thermoHigh, thermoCurrent, thermoTarget sql.NullInt64

	err := scanner.Scan(&d.ID, &kind, &d.Name, &hubID,
		&d.HardwareVersion, &d.FirmwareVersion, &firmwareUpdated, &createdAt, &updatedAt,
		&switchState,
		&dimValue, &dimMin, &dimMax, &dimScale,
		&lockState,
		&thermoMode, &thermoOperation, &thermoDisplay,
		&thermoLow, &thermoHigh, &thermoCurrent, &thermoTarget)
	if err != nil {
		return nil, err
	}

	d.Kind = Kind(kind)
	if hubID.Valid {
		d.HubID = &hubID.Int64
	}
	d.FirmwareUpdated = parseTime(firmwareUpdated)
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)

	switch d.Kind {
	case KindSwitch:
		d.Switch = &SwitchProps{State: SwitchState(switchState.String)}
	case KindDimmer:
		d.Dimmer = &DimmerProps{
			Value:    dimValue.Int64,
			MinValue: dimMin.Int64,
			MaxValue: dimMax.Int64,
			Scale:    dimScale.Int64,
		}
	case KindLock:
		d.Lock = &LockProps{State: LockState(lockState.String)}
	case KindThermostat:
		d.Thermostat = &ThermostatProps{
			Mode:      ThermoMode(thermoMode.String),
			Operation: ThermoOperation(thermoOperation.String),
			Display:   ThermoDisplay(thermoDisplay.String),
			Low:       CentiCelsius(thermoLow.Int64),
			High:      CentiCelsius(thermoHigh.Int64),
			Current:   CentiCelsius(thermoCurrent.Int64),
			Target:    CentiCelsius(thermoTarget.Int64),
		}
	default:
		return nil, fmt.Errorf("scanning device %d: unknown kind %q", d.ID, kind)
	}

	return &d, nil
}

// nullID converts an optional identifier reference for a nullable column.
func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// formatTime renders a timestamp the way the schema stores it.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// SQLite's strftime default omits the offset; zero time only if
		// both formats fail, which the schema's DEFAULT prevents.
		t, err = time.Parse("2006-01-02T15:04:05Z", s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}
