package topology

import (
	"context"
	"fmt"
	"time"
)

// InstallHub attaches a hub to a dwelling. Installing a hub into the
// dwelling it already occupies is a no-op; installing it while it occupies
// a different dwelling fails with ErrAlreadyPaired.
func (t *Tx) InstallHub(ctx context.Context, dwellingName, hubName string) (*Hub, error) {
	d, err := t.GetDwelling(ctx, dwellingName)
	if err != nil {
		return nil, err
	}
	h, err := t.GetHub(ctx, hubName)
	if err != nil {
		return nil, err
	}

	if h.DwellingID != nil {
		if *h.DwellingID == d.ID {
			return h, nil
		}
		current, err := t.dwellingNameByID(ctx, *h.DwellingID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: hub %q is installed in dwelling %q", ErrAlreadyPaired, hubName, current)
	}

	if err := t.setHubDwelling(ctx, h, &d.ID); err != nil {
		return nil, err
	}
	t.record(ActionPaired, h)
	return h, nil
}

// UninstallHub detaches a hub from its dwelling. An uninstalled hub fails
// with ErrNotPaired.
func (t *Tx) UninstallHub(ctx context.Context, hubName string) (*Hub, error) {
	h, err := t.GetHub(ctx, hubName)
	if err != nil {
		return nil, err
	}
	if h.DwellingID == nil {
		return nil, fmt.Errorf("%w: hub %q is not installed", ErrNotPaired, hubName)
	}

	if err := t.setHubDwelling(ctx, h, nil); err != nil {
		return nil, err
	}
	t.record(ActionUnpaired, h)
	return h, nil
}

// PairDevice attaches a device to a hub. Pairing a device with the hub it
// is already paired to is a no-op; pairing it while attached to a different
// hub fails with ErrAlreadyPaired.
func (t *Tx) PairDevice(ctx context.Context, hubName string, kind Kind, deviceName string) (*Device, error) {
	h, err := t.GetHub(ctx, hubName)
	if err != nil {
		return nil, err
	}
	d, err := t.GetDevice(ctx, kind, deviceName)
	if err != nil {
		return nil, err
	}

	if d.HubID != nil {
		if *d.HubID == h.ID {
			return d, nil
		}
		current, err := t.hubNameByID(ctx, *d.HubID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %q is paired with hub %q", ErrAlreadyPaired, kind, deviceName, current)
	}

	if err := t.setDeviceHub(ctx, d, &h.ID); err != nil {
		return nil, err
	}
	t.record(ActionPaired, d)
	return d, nil
}

// UnpairDevice detaches a device from its hub. An unpaired device fails
// with ErrNotPaired.
func (t *Tx) UnpairDevice(ctx context.Context, kind Kind, deviceName string) (*Device, error) {
	d, err := t.GetDevice(ctx, kind, deviceName)
	if err != nil {
		return nil, err
	}
	if d.HubID == nil {
		return nil, fmt.Errorf("%w: %s %q is not paired", ErrNotPaired, kind, deviceName)
	}

	if err := t.setDeviceHub(ctx, d, nil); err != nil {
		return nil, err
	}
	t.record(ActionUnpaired, d)
	return d, nil
}

func (t *Tx) setHubDwelling(ctx context.Context, h *Hub, dwellingID *int64) error {
	now := time.Now().UTC()
	_, err := t.tx.ExecContext(ctx,
		`UPDATE hubs SET dwelling_id = ?, updated_at = ? WHERE id = ?`,
		nullID(dwellingID), formatTime(now), h.ID)
	if err != nil {
		return fmt.Errorf("updating hub %q: %w", h.Name, err)
	}
	h.DwellingID = dwellingID
	h.UpdatedAt = now
	return nil
}

func (t *Tx) setDeviceHub(ctx context.Context, d *Device, hubID *int64) error {
	now := time.Now().UTC()
	_, err := t.tx.ExecContext(ctx,
		`UPDATE devices SET hub_id = ?, updated_at = ? WHERE id = ?`,
		nullID(hubID), formatTime(now), d.ID)
	if err != nil {
		return fmt.Errorf("updating %s %q: %w", d.Kind, d.Name, err)
	}
	d.HubID = hubID
	d.UpdatedAt = now
	return nil
}
