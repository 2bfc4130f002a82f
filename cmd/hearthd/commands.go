package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hearthline/hearth-core/internal/audit"
	"github.com/hearthline/hearth-core/internal/topology"
)

// errBadCommand is returned for lines that match no command form.
var errBadCommand = errors.New("unknown command or bad syntax")

// deviceKinds maps DSL device keywords to topology kinds.
var deviceKinds = map[string]topology.Kind{
	"SWITCH":     topology.KindSwitch,
	"DIMMER":     topology.KindDimmer,
	"LOCK":       topology.KindLock,
	"THERMOSTAT": topology.KindThermostat,
}

// entityKinds extends deviceKinds with the place keywords. Used by
// RENAME and DELETE, which apply to any stored entity.
var entityKinds = map[string]topology.Kind{
	"DWELLING":   topology.KindDwelling,
	"HUB":        topology.KindHub,
	"SWITCH":     topology.KindSwitch,
	"DIMMER":     topology.KindDimmer,
	"LOCK":       topology.KindLock,
	"THERMOSTAT": topology.KindThermostat,
}

// pluralKinds maps the plural keywords of LIST and DETAIL to kinds.
// DEVICES is handled separately; it spans all device kinds.
var pluralKinds = map[string]topology.Kind{
	"DWELLINGS":   topology.KindDwelling,
	"HUBS":        topology.KindHub,
	"SWITCHES":    topology.KindSwitch,
	"DIMMERS":     topology.KindDimmer,
	"LOCKS":       topology.KindLock,
	"THERMOSTATS": topology.KindThermostat,
}

// Logger is the minimal logging surface the processor needs.
type Logger interface {
	Error(msg string, args ...any)
}

// Processor executes topology DSL commands against a store.
//
// Each line runs in its own transaction: a failed command rolls back
// cleanly and processing continues with the next line.
type Processor struct {
	store   *topology.Store
	history *audit.Recorder
	log     Logger
}

// NewProcessor creates a Processor over the given store. history backs
// the HISTORY command and may be nil.
func NewProcessor(store *topology.Store, history *audit.Recorder, log Logger) *Processor {
	return &Processor{store: store, history: history, log: log}
}

// Run reads commands line by line from in, writing query output to out.
// Command failures are logged and do not stop the run; only a read
// error or context cancellation ends it early.
func (p *Processor) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	lineNum := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if err := p.ProcessLine(ctx, out, line); err != nil {
			p.log.Error("command failed",
				"line", lineNum,
				"command", line,
				"error", err,
			)
		}
		lineNum++
	}
	return scanner.Err()
}

// ProcessLine executes a single command line in its own transaction.
// Blank lines and comment lines (first token "#") are no-ops.
func (p *Processor) ProcessLine(ctx context.Context, out io.Writer, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] == "#" {
		return nil
	}

	// HISTORY reads the audit log through its own connection and must
	// not run while a store transaction holds the single SQLite writer.
	if fields[0] == "HISTORY" {
		return p.executeHistory(ctx, out, fields[1:])
	}

	return p.store.WithTx(ctx, func(tx *topology.Tx) error {
		return p.execute(ctx, tx, out, fields)
	})
}

// execute dispatches one tokenized command.
func (p *Processor) execute(ctx context.Context, tx *topology.Tx, out io.Writer, f []string) error {
	switch f[0] {
	case "NEW":
		return p.executeNew(ctx, tx, f[1:])
	case "SET":
		return p.executeSet(ctx, tx, f[1:])
	case "MODIFY":
		return p.executeModify(ctx, tx, f[1:])

	case "INSTALL":
		// INSTALL <hub> INTO <dwelling>
		if len(f) != 4 || f[2] != "INTO" {
			return errBadCommand
		}
		_, err := tx.InstallHub(ctx, f[3], f[1])
		return err

	case "UNINSTALL":
		// UNINSTALL <hub>
		if len(f) != 2 {
			return errBadCommand
		}
		_, err := tx.UninstallHub(ctx, f[1])
		return err

	case "PAIR":
		// PAIR <device-kind> <device> WITH <hub>
		if len(f) != 5 || f[3] != "WITH" {
			return errBadCommand
		}
		kind, ok := deviceKinds[f[1]]
		if !ok {
			return errBadCommand
		}
		_, err := tx.PairDevice(ctx, f[4], kind, f[2])
		return err

	case "UNPAIR":
		// UNPAIR <device-kind> <device>
		if len(f) != 3 {
			return errBadCommand
		}
		kind, ok := deviceKinds[f[1]]
		if !ok {
			return errBadCommand
		}
		_, err := tx.UnpairDevice(ctx, kind, f[2])
		return err

	case "RENAME":
		// RENAME <kind> <old> TO <new>
		if len(f) != 5 || f[3] != "TO" {
			return errBadCommand
		}
		kind, ok := entityKinds[f[1]]
		if !ok {
			return errBadCommand
		}
		_, err := tx.Rename(ctx, kind, f[2], f[4])
		return err

	case "DELETE":
		// DELETE <kind> <name>
		if len(f) != 3 {
			return errBadCommand
		}
		kind, ok := entityKinds[f[1]]
		if !ok {
			return errBadCommand
		}
		_, err := tx.Delete(ctx, kind, f[2])
		return err

	case "SHOW":
		return p.executeShow(ctx, tx, out, f[1:])
	case "DETAIL":
		return p.executeDetail(ctx, tx, out, f[1:])
	case "LIST":
		return p.executeList(ctx, tx, out, f[1:])

	default:
		return errBadCommand
	}
}

// executeNew handles the NEW <kind> forms.
func (p *Processor) executeNew(ctx context.Context, tx *topology.Tx, f []string) error {
	switch {
	// NEW DWELLING <name>
	case len(f) == 2 && f[0] == "DWELLING":
		_, err := tx.NewDwelling(ctx, f[1])
		return err

	// NEW HUB <name>
	case len(f) == 2 && f[0] == "HUB":
		_, err := tx.NewHub(ctx, f[1])
		return err

	// NEW SWITCH <name>
	case len(f) == 2 && f[0] == "SWITCH":
		_, err := tx.NewSwitch(ctx, f[1])
		return err

	// NEW DIMMER <name> RANGE <low> TO <high> WITH FACTOR <factor>
	case len(f) == 9 && f[0] == "DIMMER" && f[2] == "RANGE" && f[4] == "TO" && f[6] == "WITH" && f[7] == "FACTOR":
		low, high, factor, err := parseInts3(f[3], f[5], f[8])
		if err != nil {
			return err
		}
		_, err = tx.NewDimmer(ctx, f[1], low, high, factor)
		return err

	// NEW LOCK <name> WITH PIN <pin>
	case len(f) == 5 && f[0] == "LOCK" && f[2] == "WITH" && f[3] == "PIN":
		_, err := tx.NewLock(ctx, f[1], f[4])
		return err

	// NEW THERMOSTAT <name> WITH DISPLAY IN <C|F>
	case len(f) == 6 && f[0] == "THERMOSTAT" && f[2] == "WITH" && f[3] == "DISPLAY" && f[4] == "IN":
		display, err := parseDisplay(f[5])
		if err != nil {
			return err
		}
		_, err = tx.NewThermostat(ctx, f[1], display)
		return err

	default:
		return errBadCommand
	}
}

// executeSet handles the SET <kind> forms.
func (p *Processor) executeSet(ctx context.Context, tx *topology.Tx, f []string) error {
	switch {
	// SET DWELLING <name> TO OCCUPIED|VACANT
	case len(f) == 4 && f[0] == "DWELLING" && f[2] == "TO" && (f[3] == "OCCUPIED" || f[3] == "VACANT"):
		_, err := tx.SetDwellingOccupancy(ctx, f[1], topology.Occupancy(strings.ToLower(f[3])))
		return err

	// SET SWITCH <name> TO ON|OFF
	case len(f) == 4 && f[0] == "SWITCH" && f[2] == "TO" && (f[3] == "ON" || f[3] == "OFF"):
		_, err := tx.SetSwitchState(ctx, f[1], topology.SwitchState(strings.ToLower(f[3])))
		return err

	// SET DIMMER <name> TO <value>
	case len(f) == 4 && f[0] == "DIMMER" && f[2] == "TO":
		value, err := strconv.ParseInt(f[3], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", errBadCommand, f[3])
		}
		_, err = tx.SetDimmerValue(ctx, f[1], value)
		return err

	// SET LOCK <name> TO LOCKED
	case len(f) == 4 && f[0] == "LOCK" && f[2] == "TO" && f[3] == "LOCKED":
		_, err := tx.LockDoor(ctx, f[1])
		return err

	// SET LOCK <name> TO UNLOCKED USING <pin>
	case len(f) == 6 && f[0] == "LOCK" && f[2] == "TO" && f[3] == "UNLOCKED" && f[4] == "USING":
		_, err := tx.UnlockDoor(ctx, f[1], f[5])
		return err

	// SET THERMOSTAT <name> TO OFF|HEAT|COOL|HEATCOOL
	case len(f) == 4 && f[0] == "THERMOSTAT" && f[2] == "TO" && isThermoMode(f[3]):
		_, err := tx.SetThermoMode(ctx, f[1], topology.ThermoMode(strings.ToLower(f[3])))
		return err

	// SET THERMOSTAT <name> TARGET TO <low> TO <high>
	case len(f) == 7 && f[0] == "THERMOSTAT" && f[2] == "TARGET" && f[3] == "TO" && f[5] == "TO":
		low, err := strconv.ParseInt(f[4], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", errBadCommand, f[4])
		}
		high, err := strconv.ParseInt(f[6], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", errBadCommand, f[6])
		}
		_, err = tx.SetThermoSetPoints(ctx, f[1], topology.CentiCelsius(low), topology.CentiCelsius(high))
		return err

	// SET THERMOSTAT <name> CURRENT TO <current>
	case len(f) == 5 && f[0] == "THERMOSTAT" && f[2] == "CURRENT" && f[3] == "TO":
		current, err := strconv.ParseInt(f[4], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", errBadCommand, f[4])
		}
		_, err = tx.SetThermoCurrentTemp(ctx, f[1], topology.CentiCelsius(current))
		return err

	default:
		return errBadCommand
	}
}

// executeModify handles the MODIFY <kind> forms.
func (p *Processor) executeModify(ctx context.Context, tx *topology.Tx, f []string) error {
	switch {
	// MODIFY DIMMER <name> RANGE <low> TO <high> WITH FACTOR <factor>
	case len(f) == 9 && f[0] == "DIMMER" && f[2] == "RANGE" && f[4] == "TO" && f[6] == "WITH" && f[7] == "FACTOR":
		low, high, factor, err := parseInts3(f[3], f[5], f[8])
		if err != nil {
			return err
		}
		_, err = tx.UpdateDimmer(ctx, f[1], low, high, factor)
		return err

	// MODIFY LOCK <name> ADD PIN <pin>
	case len(f) == 5 && f[0] == "LOCK" && f[2] == "ADD" && f[3] == "PIN":
		_, err := tx.AddLockPin(ctx, f[1], f[4])
		return err

	// MODIFY LOCK <name> REMOVE PIN <pin>
	case len(f) == 5 && f[0] == "LOCK" && f[2] == "REMOVE" && f[3] == "PIN":
		_, err := tx.RemoveLockPin(ctx, f[1], f[4])
		return err

	// MODIFY THERMOSTAT <name> WITH DISPLAY IN <C|F>
	case len(f) == 6 && f[0] == "THERMOSTAT" && f[2] == "WITH" && f[3] == "DISPLAY" && f[4] == "IN":
		display, err := parseDisplay(f[5])
		if err != nil {
			return err
		}
		_, err = tx.UpdateThermostat(ctx, f[1], display)
		return err

	default:
		return errBadCommand
	}
}

// executeShow handles SHOW <kind> <name>: a one-line summary per entity.
func (p *Processor) executeShow(ctx context.Context, tx *topology.Tx, out io.Writer, f []string) error {
	if len(f) != 2 {
		return errBadCommand
	}

	entities, err := p.lookup(ctx, tx, f[0], f[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "--%s '%s'--\n", f[0], f[1])
	for _, entity := range entities {
		if err := writeCompact(out, entity); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)
	return nil
}

// executeDetail handles both DETAIL <kind> <name> and DETAIL <plural-kind>.
func (p *Processor) executeDetail(ctx context.Context, tx *topology.Tx, out io.Writer, f []string) error {
	switch len(f) {
	case 2:
		entities, err := p.lookup(ctx, tx, f[0], f[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "--%s '%s'--\n", f[0], f[1])
		for _, entity := range entities {
			if err := writeIndented(out, entity); err != nil {
				return err
			}
		}
		fmt.Fprintln(out)
		return nil

	case 1:
		entities, err := p.lookupAll(ctx, tx, f[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "--All %s--\n", f[0])
		for _, entity := range entities {
			if err := writeIndented(out, entity); err != nil {
				return err
			}
		}
		fmt.Fprintln(out)
		return nil

	default:
		return errBadCommand
	}
}

// executeList handles LIST <plural-kind>: names only.
func (p *Processor) executeList(ctx context.Context, tx *topology.Tx, out io.Writer, f []string) error {
	if len(f) != 1 {
		return errBadCommand
	}

	var names []string
	var err error
	if f[0] == "DEVICES" {
		names, err = tx.AllDeviceNames(ctx)
	} else {
		kind, ok := pluralKinds[f[0]]
		if !ok {
			return errBadCommand
		}
		names, err = tx.GetAllNames(ctx, kind)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "--All %s--\n", f[0])
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	fmt.Fprintln(out)
	return nil
}

// executeHistory handles HISTORY, HISTORY <kind>, and HISTORY <kind> <name>:
// committed changes from the audit log, most recent first.
func (p *Processor) executeHistory(ctx context.Context, out io.Writer, f []string) error {
	if p.history == nil {
		return errors.New("history is not available")
	}

	var filter audit.Filter
	header := "--HISTORY--"
	switch len(f) {
	case 0:
	case 1:
		kind, ok := entityKinds[f[0]]
		if !ok {
			return errBadCommand
		}
		filter.Kind = string(kind)
		header = fmt.Sprintf("--HISTORY %s--", f[0])
	case 2:
		kind, ok := entityKinds[f[0]]
		if !ok {
			return errBadCommand
		}
		filter.Kind = string(kind)
		filter.Name = f[1]
		header = fmt.Sprintf("--HISTORY %s '%s'--", f[0], f[1])
	default:
		return errBadCommand
	}

	result, err := p.history.List(ctx, filter)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, header)
	for _, entry := range result.Entries {
		fmt.Fprintf(out, "%s %s %s '%s'\n",
			entry.OccurredAt.UTC().Format(time.RFC3339),
			entry.Action, entry.Kind, entry.Name)
	}
	fmt.Fprintln(out)
	return nil
}

// lookup resolves a singular kind keyword and name to entities. The
// generic DEVICE keyword may match one device per kind.
func (p *Processor) lookup(ctx context.Context, tx *topology.Tx, kindWord, name string) ([]topology.Entity, error) {
	if kindWord == "DEVICE" {
		devices, err := tx.FindDevices(ctx, name)
		if err != nil {
			return nil, err
		}
		entities := make([]topology.Entity, len(devices))
		for i := range devices {
			entities[i] = &devices[i]
		}
		return entities, nil
	}

	kind, ok := entityKinds[kindWord]
	if !ok {
		return nil, errBadCommand
	}
	entity, err := tx.GetByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	return []topology.Entity{entity}, nil
}

// lookupAll resolves a plural kind keyword to all entities of that kind.
func (p *Processor) lookupAll(ctx context.Context, tx *topology.Tx, kindWord string) ([]topology.Entity, error) {
	if kindWord == "DEVICES" {
		devices, err := tx.AllDevices(ctx)
		if err != nil {
			return nil, err
		}
		entities := make([]topology.Entity, len(devices))
		for i := range devices {
			entities[i] = &devices[i]
		}
		return entities, nil
	}

	kind, ok := pluralKinds[kindWord]
	if !ok {
		return nil, errBadCommand
	}
	return tx.GetAll(ctx, kind)
}

// writeCompact writes an entity as single-line JSON.
func writeCompact(out io.Writer, entity topology.Entity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", entity.EntityKind(), entity.EntityName(), err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

// writeIndented writes an entity as indented JSON.
func writeIndented(out io.Writer, entity topology.Entity) error {
	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", entity.EntityKind(), entity.EntityName(), err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

// parseInts3 parses the three integer arguments of the dimmer commands.
func parseInts3(a, b, c string) (int64, int64, int64, error) {
	va, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q is not an integer", errBadCommand, a)
	}
	vb, err := strconv.ParseInt(b, 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q is not an integer", errBadCommand, b)
	}
	vc, err := strconv.ParseInt(c, 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q is not an integer", errBadCommand, c)
	}
	return va, vb, vc, nil
}

// parseDisplay parses a thermostat display unit keyword.
func parseDisplay(word string) (topology.ThermoDisplay, error) {
	switch word {
	case "C":
		return topology.DisplayCelsius, nil
	case "F":
		return topology.DisplayFahrenheit, nil
	default:
		return "", errBadCommand
	}
}

// isThermoMode reports whether the keyword is a thermostat mode.
func isThermoMode(word string) bool {
	switch word {
	case "OFF", "HEAT", "COOL", "HEATCOOL":
		return true
	default:
		return false
	}
}
