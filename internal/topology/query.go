package topology

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetDwelling finds a dwelling by name.
func (t *Tx) GetDwelling(ctx context.Context, name string) (*Dwelling, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+dwellingColumns+` FROM dwellings WHERE name = ?`, name)
	d, err := scanDwelling(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: dwelling %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("querying dwelling %q: %w", name, err)
	}
	return d, nil
}

// GetHub finds a hub by name.
func (t *Tx) GetHub(ctx context.Context, name string) (*Hub, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+hubColumns+` FROM hubs WHERE name = ?`, name)
	h, err := scanHub(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: hub %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("querying hub %q: %w", name, err)
	}
	return h, nil
}

// GetDevice finds a device by (kind, name). Lock devices come back with
// their PIN set loaded in insertion order.
func (t *Tx) GetDevice(ctx context.Context, kind Kind, name string) (*Device, error) {
	if err := validateDeviceKind(kind); err != nil {
		return nil, err
	}

	row := t.tx.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE kind = ? AND name = ?`,
		string(kind), name)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
		}
		return nil, fmt.Errorf("querying %s %q: %w", kind, name, err)
	}

	if d.Kind == KindLock {
		if err := t.loadLockPins(ctx, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// GetByName finds any entity by kind and name.
func (t *Tx) GetByName(ctx context.Context, kind Kind, name string) (Entity, error) {
	switch {
	case kind == KindDwelling:
		return t.GetDwelling(ctx, name)
	case kind == KindHub:
		return t.GetHub(ctx, name)
	case kind.IsDevice():
		return t.GetDevice(ctx, kind, name)
	default:
		return nil, validateKind(kind)
	}
}

// GetAll returns every entity of a kind in creation order.
func (t *Tx) GetAll(ctx context.Context, kind Kind) ([]Entity, error) {
	switch {
	case kind == KindDwelling:
		dwellings, err := t.queryDwellings(ctx,
			`SELECT `+dwellingColumns+` FROM dwellings ORDER BY id`)
		if err != nil {
			return nil, err
		}
		entities := make([]Entity, len(dwellings))
		for i := range dwellings {
			entities[i] = &dwellings[i]
		}
		return entities, nil

	case kind == KindHub:
		hubs, err := t.queryHubs(ctx,
			`SELECT `+hubColumns+` FROM hubs ORDER BY id`)
		if err != nil {
			return nil, err
		}
		entities := make([]Entity, len(hubs))
		for i := range hubs {
			entities[i] = &hubs[i]
		}
		return entities, nil

	case kind.IsDevice():
		devices, err := t.queryDevices(ctx,
			`SELECT `+deviceColumns+` FROM devices WHERE kind = ? ORDER BY id`,
			string(kind))
		if err != nil {
			return nil, err
		}
		entities := make([]Entity, len(devices))
		for i := range devices {
			entities[i] = &devices[i]
		}
		return entities, nil

	default:
		return nil, validateKind(kind)
	}
}

// GetAllNames returns the names of every entity of a kind in creation order.
func (t *Tx) GetAllNames(ctx context.Context, kind Kind) ([]string, error) {
	var query string
	var args []any
	switch {
	case kind == KindDwelling:
		query = `SELECT name FROM dwellings ORDER BY id`
	case kind == KindHub:
		query = `SELECT name FROM hubs ORDER BY id`
	case kind.IsDevice():
		query = `SELECT name FROM devices WHERE kind = ? ORDER BY id`
		args = append(args, string(kind))
	default:
		return nil, validateKind(kind)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s names: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning %s name: %w", kind, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s names: %w", kind, err)
	}
	return names, nil
}

// FindDevices returns every device named name, regardless of kind, in
// creation order. Names are unique per kind, so at most one device of
// each kind can match.
func (t *Tx) FindDevices(ctx context.Context, name string) ([]Device, error) {
	devices, err := t.queryDevices(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE name = ? ORDER BY id`,
		name)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: device %q", ErrNotFound, name)
	}
	return devices, nil
}

// AllDevices returns every device of every kind in creation order.
func (t *Tx) AllDevices(ctx context.Context) ([]Device, error) {
	return t.queryDevices(ctx,
		`SELECT `+deviceColumns+` FROM devices ORDER BY id`)
}

// AllDeviceNames returns the names of every device in creation order.
func (t *Tx) AllDeviceNames(ctx context.Context) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT name FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying device names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning device name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device names: %w", err)
	}
	return names, nil
}

// DwellingHubs returns the hubs installed into a dwelling, oldest first.
func (t *Tx) DwellingHubs(ctx context.Context, dwellingName string) ([]Hub, error) {
	dwelling, err := t.GetDwelling(ctx, dwellingName)
	if err != nil {
		return nil, err
	}
	return t.queryHubs(ctx,
		`SELECT `+hubColumns+` FROM hubs WHERE dwelling_id = ? ORDER BY id`,
		dwelling.ID)
}

// HubDevices returns the devices paired to a hub, most recently paired
// first (creation order descending, mirroring the pairing history).
func (t *Tx) HubDevices(ctx context.Context, hubName string) ([]Device, error) {
	hub, err := t.GetHub(ctx, hubName)
	if err != nil {
		return nil, err
	}
	return t.queryDevices(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE hub_id = ? ORDER BY created_at DESC, id DESC`,
		hub.ID)
}

// queryDwellings executes a query returning dwellingColumns rows.
func (t *Tx) queryDwellings(ctx context.Context, query string, args ...any) ([]Dwelling, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dwellings: %w", err)
	}
	defer rows.Close()

	var dwellings []Dwelling
	for rows.Next() {
		d, err := scanDwelling(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dwelling row: %w", err)
		}
		dwellings = append(dwellings, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dwelling rows: %w", err)
	}
	return dwellings, nil
}

// queryHubs executes a query returning hubColumns rows.
func (t *Tx) queryHubs(ctx context.Context, query string, args ...any) ([]Hub, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hubs: %w", err)
	}
	defer rows.Close()

	var hubs []Hub
	for rows.Next() {
		h, err := scanHub(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning hub row: %w", err)
		}
		hubs = append(hubs, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hub rows: %w", err)
	}
	return hubs, nil
}

// queryDevices executes a query returning deviceColumns rows, loading PIN
// sets for any locks in the result.
func (t *Tx) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device rows: %w", err)
	}

	// PIN loading happens after the device cursor closes; SQLite dislikes
	// nested queries on a single connection.
	for i := range devices {
		if devices[i].Kind == KindLock {
			if err := t.loadLockPins(ctx, &devices[i]); err != nil {
				return nil, err
			}
		}
	}
	return devices, nil
}

// loadLockPins fills a lock device's PIN set in insertion order.
func (t *Tx) loadLockPins(ctx context.Context, d *Device) error {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT pin FROM lock_pins WHERE device_id = ? ORDER BY rowid`, d.ID)
	if err != nil {
		return fmt.Errorf("querying pins for lock %q: %w", d.Name, err)
	}
	defer rows.Close()

	var pins []string
	for rows.Next() {
		var pin string
		if err := rows.Scan(&pin); err != nil {
			return fmt.Errorf("scanning pin for lock %q: %w", d.Name, err)
		}
		pins = append(pins, pin)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating pins for lock %q: %w", d.Name, err)
	}

	d.Lock.Pins = pins
	return nil
}

// nameExists reports whether an entity of the kind already has the name.
func (t *Tx) nameExists(ctx context.Context, kind Kind, name string) (bool, error) {
	var query string
	var args []any
	switch {
	case kind == KindDwelling:
		query = `SELECT COUNT(*) FROM dwellings WHERE name = ?`
		args = []any{name}
	case kind == KindHub:
		query = `SELECT COUNT(*) FROM hubs WHERE name = ?`
		args = []any{name}
	default:
		query = `SELECT COUNT(*) FROM devices WHERE kind = ? AND name = ?`
		args = []any{string(kind), name}
	}

	var count int
	if err := t.tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking %s name %q: %w", kind, name, err)
	}
	return count > 0, nil
}

// dwellingNameByID resolves a dwelling name for error messages.
func (t *Tx) dwellingNameByID(ctx context.Context, id int64) (string, error) {
	var name string
	err := t.tx.QueryRowContext(ctx, `SELECT name FROM dwellings WHERE id = ?`, id).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("resolving dwelling %d: %w", id, err)
	}
	return name, nil
}

// hubNameByID resolves a hub name for error messages.
func (t *Tx) hubNameByID(ctx context.Context, id int64) (string, error) {
	var name string
	err := t.tx.QueryRowContext(ctx, `SELECT name FROM hubs WHERE id = ?`, id).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("resolving hub %d: %w", id, err)
	}
	return name, nil
}
