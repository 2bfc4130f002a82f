package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/hearthline/hearth-core/migrations"

	"github.com/hearthline/hearth-core/internal/audit"
	"github.com/hearthline/hearth-core/internal/infrastructure/database"
	"github.com/hearthline/hearth-core/internal/topology"
)

// testLogger collects error log calls.
type testLogger struct {
	errors []string
}

func (l *testLogger) Error(msg string, args ...any) {
	l.errors = append(l.errors, msg)
}

// newTestProcessor builds a Processor over a migrated temp database.
func newTestProcessor(t *testing.T) (*Processor, *testLogger) {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     false,
		BusyTimeout: 1,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing database: %v", err)
		}
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	log := &testLogger{}
	store := topology.NewStore(db.DB)
	recorder := audit.NewRecorder(db.DB, log)
	store.OnCommit(recorder.HandleCommit)
	return NewProcessor(store, recorder, log), log
}

// runCommands feeds a script through the processor and returns its output.
func runCommands(t *testing.T, p *Processor, script string) string {
	t.Helper()

	var out bytes.Buffer
	if err := p.Run(context.Background(), strings.NewReader(script), &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestProcessorCreateAndList(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW DWELLING Home
NEW DWELLING Cabin
LIST DWELLINGS
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}

	want := "--All DWELLINGS--\nHome\nCabin\n\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestProcessorCommentsAndBlanks(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
# this is a comment
# NEW DWELLING NotCreated

LIST DWELLINGS
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}
	if out != "--All DWELLINGS--\n\n" {
		t.Errorf("output = %q", out)
	}
}

func TestProcessorPairAndShow(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW DWELLING Home
NEW HUB Hub1
INSTALL Hub1 INTO Home
NEW SWITCH Porch
PAIR SWITCH Porch WITH Hub1
SET SWITCH Porch TO ON
SHOW SWITCH Porch
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}
	if !strings.Contains(out, "--SWITCH 'Porch'--") {
		t.Errorf("output missing header: %q", out)
	}
	if !strings.Contains(out, `"state":"on"`) {
		t.Errorf("output missing switch state: %q", out)
	}
}

func TestProcessorBadSyntaxContinues(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
FROB THE WIDGET
NEW DWELLING Home
LIST DWELLINGS
`)

	if len(log.errors) != 1 {
		t.Fatalf("errors = %v, want one", log.errors)
	}
	if !strings.Contains(out, "Home") {
		t.Errorf("valid command after bad line did not run: %q", out)
	}
}

func TestProcessorFailedCommandRollsBack(t *testing.T) {
	p, log := newTestProcessor(t)

	// Inverted range fails validation; the dimmer must not exist after.
	out := runCommands(t, p, `
NEW DIMMER Lounge RANGE 100 TO 0 WITH FACTOR 10
LIST DIMMERS
`)

	if len(log.errors) != 1 {
		t.Fatalf("errors = %v, want one", log.errors)
	}
	if out != "--All DIMMERS--\n\n" {
		t.Errorf("output = %q, want empty dimmer list", out)
	}
}

func TestProcessorDimmerWorkflow(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW DIMMER Lounge RANGE 0 TO 1000 WITH FACTOR 10
SET DIMMER Lounge TO 750
MODIFY DIMMER Lounge RANGE 100 TO 200 WITH FACTOR 1
DETAIL DIMMER Lounge
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}
	// Shrinking the range resets the value to the new minimum.
	if !strings.Contains(out, `"value": 100`) {
		t.Errorf("output = %q, want value reset to 100", out)
	}
}

func TestProcessorLockWorkflow(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW LOCK Front RANGE
`)
	if len(log.errors) != 1 {
		t.Fatalf("malformed NEW LOCK accepted: %q", out)
	}

	log.errors = nil
	out = runCommands(t, p, `
NEW LOCK Front WITH PIN 1234
SET LOCK Front TO LOCKED
SET LOCK Front TO UNLOCKED USING 9999
SHOW LOCK Front
`)

	// The wrong PIN fails; the lock stays locked.
	if len(log.errors) != 1 {
		t.Fatalf("errors = %v, want one", log.errors)
	}
	if !strings.Contains(out, `"state":"locked"`) {
		t.Errorf("output = %q, want locked", out)
	}

	log.errors = nil
	out = runCommands(t, p, `
SET LOCK Front TO UNLOCKED USING 1234
SHOW LOCK Front
`)
	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}
	if !strings.Contains(out, `"state":"unlocked"`) {
		t.Errorf("output = %q, want unlocked", out)
	}
}

func TestProcessorThermostatWorkflow(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW THERMOSTAT Hallway WITH DISPLAY IN C
SET THERMOSTAT Hallway TARGET TO 2000 TO 2500
SET THERMOSTAT Hallway CURRENT TO 1500
SET THERMOSTAT Hallway TO HEAT
DETAIL THERMOSTAT Hallway
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}
	if !strings.Contains(out, `"operation": "heating"`) {
		t.Errorf("output = %q, want heating operation", out)
	}
}

func TestProcessorGenericDevice(t *testing.T) {
	p, log := newTestProcessor(t)

	// Devices of different kinds may share a name.
	out := runCommands(t, p, `
NEW SWITCH Porch
NEW DIMMER Porch RANGE 0 TO 100 WITH FACTOR 1
NEW LOCK Front WITH PIN 1234
LIST DEVICES
SHOW DEVICE Porch
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}

	if !strings.Contains(out, "--All DEVICES--\nPorch\nPorch\nFront\n") {
		t.Errorf("LIST DEVICES output = %q", out)
	}

	// SHOW DEVICE matches both same-named devices.
	if got := strings.Count(out, `"name":"Porch"`); got != 2 {
		t.Errorf("SHOW DEVICE matched %d devices, want 2", got)
	}
}

func TestProcessorRenameAndDelete(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW SWITCH Porch
RENAME SWITCH Porch TO Garden
DELETE SWITCH Garden
LIST SWITCHES
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}
	if out != "--All SWITCHES--\n\n" {
		t.Errorf("output = %q, want empty switch list", out)
	}
}

func TestProcessorDeleteGuards(t *testing.T) {
	p, log := newTestProcessor(t)

	runCommands(t, p, `
NEW HUB Hub1
NEW SWITCH Porch
PAIR SWITCH Porch WITH Hub1
DELETE SWITCH Porch
DELETE HUB Hub1
`)

	// Both deletes fail: the switch is paired, the hub has devices.
	if len(log.errors) != 2 {
		t.Fatalf("errors = %v, want two", log.errors)
	}

	out := runCommands(t, p, `LIST SWITCHES`)
	if !strings.Contains(out, "Porch") {
		t.Errorf("guarded delete removed the switch: %q", out)
	}
}

func TestProcessorBadInteger(t *testing.T) {
	p, log := newTestProcessor(t)

	runCommands(t, p, `
NEW DIMMER Lounge RANGE 0 TO ten WITH FACTOR 1
SET THERMOSTAT Hall CURRENT TO warm
`)

	if len(log.errors) != 2 {
		t.Fatalf("errors = %v, want two", log.errors)
	}
}

func TestProcessorHistory(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW SWITCH Porch
SET SWITCH Porch TO ON
NEW DWELLING Home
HISTORY
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}

	if !strings.Contains(out, "--HISTORY--\n") {
		t.Fatalf("missing history header: %q", out)
	}
	for _, want := range []string{
		"created switch 'Porch'",
		"updated switch 'Porch'",
		"created dwelling 'Home'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q: %q", want, out)
		}
	}

	// Most recent first.
	if strings.Index(out, "created dwelling 'Home'") > strings.Index(out, "created switch 'Porch'") {
		t.Errorf("history not newest-first: %q", out)
	}
}

func TestProcessorHistoryFiltered(t *testing.T) {
	p, log := newTestProcessor(t)

	out := runCommands(t, p, `
NEW SWITCH Porch
NEW SWITCH Garden
NEW HUB Hub1
HISTORY SWITCH Porch
`)

	if len(log.errors) != 0 {
		t.Fatalf("unexpected command errors: %v", log.errors)
	}

	if !strings.Contains(out, "--HISTORY SWITCH 'Porch'--\n") {
		t.Fatalf("missing filtered history header: %q", out)
	}
	if !strings.Contains(out, "created switch 'Porch'") {
		t.Errorf("filtered history missing the matching entry: %q", out)
	}
	if strings.Contains(out, "Garden") || strings.Contains(out, "Hub1") {
		t.Errorf("filter leaked other entities: %q", out)
	}
}

func TestProcessorHistoryBadKind(t *testing.T) {
	p, log := newTestProcessor(t)

	runCommands(t, p, `HISTORY GADGET`)

	if len(log.errors) != 1 {
		t.Fatalf("errors = %v, want one", log.errors)
	}
}
