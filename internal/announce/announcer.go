package announce

import (
	"encoding/json"

	"github.com/hearthline/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthline/hearth-core/internal/topology"
)

// Publisher is the subset of the MQTT client the announcer needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// Recorder is the subset of the InfluxDB client the announcer needs.
type Recorder interface {
	WriteThermostatReading(name string, currentC, lowC, highC float64, operation string)
	WriteDimmerLevel(name string, percent float64)
	WriteOccupancy(dwelling string, occupancy string)
	WriteDeviceState(kind, name, state string, active int)
}

// Logger is the minimal logging surface the announcer needs.
// Satisfied by logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// Announcer fans committed topology changes out to MQTT and InfluxDB.
//
// Either sink may be nil, in which case it is skipped. Register
// HandleCommit with Store.OnCommit to wire it up:
//
//	store.OnCommit(announcer.HandleCommit)
type Announcer struct {
	pub    Publisher
	rec    Recorder
	logger Logger

	eventQoS byte
}

// New creates an Announcer. pub, rec, and logger may each be nil.
func New(pub Publisher, rec Recorder, logger Logger, eventQoS byte) *Announcer {
	return &Announcer{
		pub:      pub,
		rec:      rec,
		logger:   logger,
		eventQoS: eventQoS,
	}
}

// HandleCommit processes the change events of one committed transaction.
//
// It matches the topology.Store.OnCommit hook signature. Failures are
// logged and do not stop processing of the remaining events.
func (a *Announcer) HandleCommit(events []topology.ChangeEvent) {
	for _, event := range events {
		a.publishState(event)
		a.publishEvent(event)
		a.recordTelemetry(event)
	}
}

// publishState maintains the retained per-entity state topics.
func (a *Announcer) publishState(event topology.ChangeEvent) {
	if a.pub == nil {
		return
	}

	topic := mqtt.Topics{}.EntityState(string(event.Kind), event.Name)

	if event.Action == topology.ActionDeleted {
		// An empty retained payload clears the topic on the broker.
		if err := a.pub.PublishRetained(topic, nil); err != nil {
			a.warn("failed to clear retained state", "topic", topic, "error", err)
		}
		return
	}

	// TODO: on rename, clear the retained topic for the old name; the
	// change event does not carry it yet.

	payload, err := json.Marshal(event.Entity)
	if err != nil {
		a.warn("failed to marshal entity state", "topic", topic, "error", err)
		return
	}

	if err := a.pub.PublishRetained(topic, payload); err != nil {
		a.warn("failed to publish entity state", "topic", topic, "error", err)
	}
}

// publishEvent publishes the change event envelope to the event stream.
func (a *Announcer) publishEvent(event topology.ChangeEvent) {
	if a.pub == nil {
		return
	}

	topic := mqtt.Topics{}.Event(string(event.Action))

	payload, err := json.Marshal(event)
	if err != nil {
		a.warn("failed to marshal change event", "topic", topic, "error", err)
		return
	}

	if err := a.pub.Publish(topic, payload, a.eventQoS, false); err != nil {
		a.warn("failed to publish change event", "topic", topic, "error", err)
	}
}

// recordTelemetry derives numeric measurements from the entity snapshot.
// Deletions carry a pre-delete snapshot and are not recorded.
func (a *Announcer) recordTelemetry(event topology.ChangeEvent) {
	if a.rec == nil || event.Action == topology.ActionDeleted {
		return
	}

	switch entity := event.Entity.(type) {
	case *topology.Dwelling:
		a.rec.WriteOccupancy(entity.Name, string(entity.Occupancy))

	case *topology.Device:
		a.recordDevice(entity)
	}
}

func (a *Announcer) recordDevice(d *topology.Device) {
	switch {
	case d.Switch != nil:
		active := 0
		if d.Switch.State == topology.SwitchOn {
			active = 1
		}
		a.rec.WriteDeviceState(string(d.Kind), d.Name, string(d.Switch.State), active)

	case d.Dimmer != nil:
		a.rec.WriteDimmerLevel(d.Name, dimmerPercent(d.Dimmer))

	case d.Lock != nil:
		active := 0
		if d.Lock.State == topology.Locked {
			active = 1
		}
		a.rec.WriteDeviceState(string(d.Kind), d.Name, string(d.Lock.State), active)

	case d.Thermostat != nil:
		t := d.Thermostat
		a.rec.WriteThermostatReading(d.Name,
			t.Current.Celsius(), t.Low.Celsius(), t.High.Celsius(),
			string(t.Operation))
	}
}

// dimmerPercent maps the dimmer's value onto 0-100 within its range.
func dimmerPercent(p *topology.DimmerProps) float64 {
	span := p.MaxValue - p.MinValue
	if span <= 0 {
		return 0
	}
	return float64(p.Value-p.MinValue) / float64(span) * 100.0
}

func (a *Announcer) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
