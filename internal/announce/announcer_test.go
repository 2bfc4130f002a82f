package announce

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hearthline/hearth-core/internal/topology"
)

// fakePublisher records published messages in order.
type fakePublisher struct {
	messages []publishedMessage
	failWith error
}

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.messages = append(f.messages, publishedMessage{topic, payload, qos, retained})
	return nil
}

func (f *fakePublisher) PublishRetained(topic string, payload []byte) error {
	return f.Publish(topic, payload, 1, true)
}

// fakeRecorder records telemetry calls.
type fakeRecorder struct {
	thermostats []string
	dimmers     map[string]float64
	occupancy   map[string]string
	states      []string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		dimmers:   make(map[string]float64),
		occupancy: make(map[string]string),
	}
}

func (f *fakeRecorder) WriteThermostatReading(name string, currentC, lowC, highC float64, operation string) {
	f.thermostats = append(f.thermostats, name+":"+operation)
}

func (f *fakeRecorder) WriteDimmerLevel(name string, percent float64) {
	f.dimmers[name] = percent
}

func (f *fakeRecorder) WriteOccupancy(dwelling string, occupancy string) {
	f.occupancy[dwelling] = occupancy
}

func (f *fakeRecorder) WriteDeviceState(kind, name, state string, active int) {
	f.states = append(f.states, kind+"/"+name+"="+state)
}

// fakeLogger counts warnings.
type fakeLogger struct {
	warnings int
}

func (f *fakeLogger) Warn(msg string, args ...any) {
	f.warnings++
}

func switchEvent(action topology.Action, name string, state topology.SwitchState) topology.ChangeEvent {
	return topology.ChangeEvent{
		ID:     "test-event",
		Kind:   topology.KindSwitch,
		Name:   name,
		Action: action,
		Entity: &topology.Device{
			Kind:   topology.KindSwitch,
			Name:   name,
			Switch: &topology.SwitchProps{State: state},
		},
		OccurredAt: time.Now().UTC(),
	}
}

func TestHandleCommitPublishesState(t *testing.T) {
	pub := &fakePublisher{}
	a := New(pub, nil, nil, 1)

	a.HandleCommit([]topology.ChangeEvent{
		switchEvent(topology.ActionCreated, "Porch", topology.SwitchOff),
	})

	if len(pub.messages) != 2 {
		t.Fatalf("published %d messages, want 2 (state + event)", len(pub.messages))
	}

	state := pub.messages[0]
	if state.topic != "hearth/topology/switch/Porch" {
		t.Errorf("state topic = %q", state.topic)
	}
	if !state.retained {
		t.Error("state message should be retained")
	}

	var device topology.Device
	if err := json.Unmarshal(state.payload, &device); err != nil {
		t.Fatalf("state payload is not valid JSON: %v", err)
	}
	if device.Switch == nil || device.Switch.State != topology.SwitchOff {
		t.Errorf("state payload = %s", state.payload)
	}

	event := pub.messages[1]
	if event.topic != "hearth/event/created" {
		t.Errorf("event topic = %q", event.topic)
	}
	if event.retained {
		t.Error("event message should not be retained")
	}
	if event.qos != 1 {
		t.Errorf("event QoS = %d, want 1", event.qos)
	}
}

func TestHandleCommitDeleteClearsRetained(t *testing.T) {
	pub := &fakePublisher{}
	a := New(pub, nil, nil, 1)

	a.HandleCommit([]topology.ChangeEvent{
		switchEvent(topology.ActionDeleted, "Porch", topology.SwitchOff),
	})

	if len(pub.messages) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.messages))
	}

	clear := pub.messages[0]
	if clear.topic != "hearth/topology/switch/Porch" {
		t.Errorf("clear topic = %q", clear.topic)
	}
	if len(clear.payload) != 0 {
		t.Errorf("clear payload = %q, want empty", clear.payload)
	}
	if !clear.retained {
		t.Error("clear message should be retained")
	}
}

func TestHandleCommitTelemetry(t *testing.T) {
	rec := newFakeRecorder()
	a := New(nil, rec, nil, 1)

	low := topology.CentiCelsius(2000)
	high := topology.CentiCelsius(2500)
	current := topology.CentiCelsius(1500)

	a.HandleCommit([]topology.ChangeEvent{
		{
			Kind:   topology.KindDwelling,
			Name:   "Home",
			Action: topology.ActionUpdated,
			Entity: &topology.Dwelling{Name: "Home", Occupancy: topology.OccupancyOccupied},
		},
		{
			Kind:   topology.KindDimmer,
			Name:   "Lounge",
			Action: topology.ActionUpdated,
			Entity: &topology.Device{
				Kind: topology.KindDimmer,
				Name: "Lounge",
				Dimmer: &topology.DimmerProps{
					Value: 750, MinValue: 0, MaxValue: 1000, Scale: 10,
				},
			},
		},
		{
			Kind:   topology.KindThermostat,
			Name:   "Hallway",
			Action: topology.ActionUpdated,
			Entity: &topology.Device{
				Kind: topology.KindThermostat,
				Name: "Hallway",
				Thermostat: &topology.ThermostatProps{
					Mode:      topology.ModeHeat,
					Operation: topology.OperationHeating,
					Low:       low,
					High:      high,
					Current:   current,
				},
			},
		},
		switchEvent(topology.ActionUpdated, "Porch", topology.SwitchOn),
	})

	if got := rec.occupancy["Home"]; got != "occupied" {
		t.Errorf("occupancy = %q, want occupied", got)
	}
	if got := rec.dimmers["Lounge"]; got != 75.0 {
		t.Errorf("dimmer percent = %v, want 75", got)
	}
	if len(rec.thermostats) != 1 || rec.thermostats[0] != "Hallway:heating" {
		t.Errorf("thermostat readings = %v", rec.thermostats)
	}
	if len(rec.states) != 1 || rec.states[0] != "switch/Porch=on" {
		t.Errorf("device states = %v", rec.states)
	}
}

func TestHandleCommitDeleteSkipsTelemetry(t *testing.T) {
	rec := newFakeRecorder()
	a := New(nil, rec, nil, 1)

	a.HandleCommit([]topology.ChangeEvent{
		switchEvent(topology.ActionDeleted, "Porch", topology.SwitchOn),
	})

	if len(rec.states) != 0 {
		t.Errorf("deleted entity recorded telemetry: %v", rec.states)
	}
}

func TestHandleCommitPublishFailureLogged(t *testing.T) {
	pub := &fakePublisher{failWith: errors.New("broker down")}
	logger := &fakeLogger{}
	a := New(pub, nil, logger, 1)

	a.HandleCommit([]topology.ChangeEvent{
		switchEvent(topology.ActionCreated, "Porch", topology.SwitchOff),
	})

	if logger.warnings != 2 {
		t.Errorf("warnings = %d, want 2 (state + event)", logger.warnings)
	}
}

func TestHandleCommitNilSinks(t *testing.T) {
	a := New(nil, nil, nil, 1)

	// Must not panic with both sinks disabled.
	a.HandleCommit([]topology.ChangeEvent{
		switchEvent(topology.ActionCreated, "Porch", topology.SwitchOff),
	})
}

func TestDimmerPercent(t *testing.T) {
	tests := []struct {
		name string
		prop topology.DimmerProps
		want float64
	}{
		{"midpoint", topology.DimmerProps{Value: 500, MinValue: 0, MaxValue: 1000}, 50},
		{"at min", topology.DimmerProps{Value: 100, MinValue: 100, MaxValue: 200}, 0},
		{"at max", topology.DimmerProps{Value: 200, MinValue: 100, MaxValue: 200}, 100},
		{"degenerate range", topology.DimmerProps{Value: 5, MinValue: 5, MaxValue: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dimmerPercent(&tt.prop); got != tt.want {
				t.Errorf("dimmerPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}
