package topology

import (
	"context"
	"fmt"
	"time"
)

// Rename changes an entity's name. The new name must be valid and unused
// by any other entity of the same kind.
func (t *Tx) Rename(ctx context.Context, kind Kind, oldName, newName string) (Entity, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	e, err := t.GetByName(ctx, kind, oldName)
	if err != nil {
		return nil, err
	}
	if newName == oldName {
		return e, nil
	}
	if err := t.ensureNameFree(ctx, kind, newName); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	table := tableFor(kind)
	if _, err := t.tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = ?, updated_at = ? WHERE id = ?`, table),
		newName, formatTime(now), e.EntityID()); err != nil {
		return nil, fmt.Errorf("renaming %s %q: %w", kind, oldName, err)
	}

	switch v := e.(type) {
	case *Dwelling:
		v.Name = newName
		v.UpdatedAt = now
	case *Hub:
		v.Name = newName
		v.UpdatedAt = now
	case *Device:
		v.Name = newName
		v.UpdatedAt = now
	}

	t.record(ActionRenamed, e)
	return e, nil
}

// Delete removes an entity. Deletion is refused while the entity is still
// attached: a paired device or installed hub fails with ErrAlreadyPaired,
// a hub with paired devices or a dwelling with installed hubs fails with
// ErrHasDependents. Deleting a lock removes its PINs with it.
func (t *Tx) Delete(ctx context.Context, kind Kind, name string) (Entity, error) {
	e, err := t.GetByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}

	switch v := e.(type) {
	case *Dwelling:
		if err := t.ensureNoInstalledHubs(ctx, v); err != nil {
			return nil, err
		}
	case *Hub:
		if v.DwellingID != nil {
			current, err := t.dwellingNameByID(ctx, *v.DwellingID)
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: hub %q is installed in dwelling %q", ErrAlreadyPaired, name, current)
		}
		if err := t.ensureNoPairedDevices(ctx, v); err != nil {
			return nil, err
		}
	case *Device:
		if v.HubID != nil {
			current, err := t.hubNameByID(ctx, *v.HubID)
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s %q is paired with hub %q", ErrAlreadyPaired, kind, name, current)
		}
	}

	table := tableFor(kind)
	if _, err := t.tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), e.EntityID()); err != nil {
		return nil, fmt.Errorf("deleting %s %q: %w", kind, name, err)
	}

	t.record(ActionDeleted, e)
	return e, nil
}

func (t *Tx) ensureNoInstalledHubs(ctx context.Context, d *Dwelling) error {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hubs WHERE dwelling_id = ?`, d.ID).Scan(&count)
	if err != nil {
		return fmt.Errorf("counting hubs of dwelling %q: %w", d.Name, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: dwelling %q has %d installed hub(s)", ErrHasDependents, d.Name, count)
	}
	return nil
}

func (t *Tx) ensureNoPairedDevices(ctx context.Context, h *Hub) error {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE hub_id = ?`, h.ID).Scan(&count)
	if err != nil {
		return fmt.Errorf("counting devices of hub %q: %w", h.Name, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: hub %q has %d paired device(s)", ErrHasDependents, h.Name, count)
	}
	return nil
}

// tableFor maps a kind to its backing table. All device kinds share one
// table.
func tableFor(kind Kind) string {
	switch kind {
	case KindDwelling:
		return "dwellings"
	case KindHub:
		return "hubs"
	default:
		return "devices"
	}
}
