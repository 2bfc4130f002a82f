package mqtt

import "fmt"

// Topic prefixes for the Hearthline MQTT hierarchy.
//
// Entity state is published retained under hearth/topology so late
// subscribers always see the current picture; the event stream under
// hearth/event is fire-and-forget.
const (
	// TopicPrefix is the base for all Hearthline topics.
	TopicPrefix = "hearth"

	// TopicPrefixTopology is the base for retained entity state topics.
	TopicPrefixTopology = "hearth/topology"

	// TopicPrefixEvent is the base for change event topics.
	TopicPrefixEvent = "hearth/event"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hearth/system"
)

// Topics provides builders for Hearthline MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.EntityState("thermostat", "Hallway")
//	// Returns: "hearth/topology/thermostat/Hallway"
type Topics struct{}

// EntityState returns the retained state topic for an entity.
//
// Example: hearth/topology/dimmer/Lounge
func (Topics) EntityState(kind, name string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixTopology, kind, name)
}

// Event returns the topic for one action's change event stream.
//
// Example: hearth/event/paired
func (Topics) Event(action string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvent, action)
}

// AllEntityStates returns a pattern matching every retained entity state.
//
// Pattern: hearth/topology/+/+
func (Topics) AllEntityStates() string {
	return TopicPrefixTopology + "/+/+"
}

// AllEvents returns a pattern matching every change event.
//
// Pattern: hearth/event/+
func (Topics) AllEvents() string {
	return TopicPrefixEvent + "/+"
}

// Command returns the topic hearthd listens on for command lines.
//
// Example: hearth/command
func (Topics) Command() string {
	return TopicPrefix + "/command"
}

// CommandResult returns the topic for command execution results.
//
// Example: hearth/command/result
func (Topics) CommandResult() string {
	return TopicPrefix + "/command/result"
}

// SystemStatus returns the topic for core online/offline status.
// Used for both the birth message and the LWT.
//
// Example: hearth/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
