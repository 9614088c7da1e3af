// Package telemetry provides windowed motion statistics, bookmarking and CSV output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventForceAdded EventType = iota
	EventUserForce
	EventUserCancel
	EventMeshActivated
	EventMeshDeactivated
)

var eventNames = [...]string{
	EventForceAdded:      "force_added",
	EventUserForce:       "user_force",
	EventUserCancel:      "user_cancel",
	EventMeshActivated:   "mesh_activated",
	EventMeshDeactivated: "mesh_deactivated",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a single exertor lifecycle event.
type Event struct {
	Type EventType
	Tick int32
	Kind string // exertor kind or mesh name, depending on Type
}

// NewForceAddedEvent creates an event for a permanent exertor being placed.
func NewForceAddedEvent(tick int32, kind string) Event {
	return Event{Type: EventForceAdded, Tick: tick, Kind: kind}
}

// NewUserForceEvent creates an event for a tick with the user exertor active.
func NewUserForceEvent(tick int32, kind string) Event {
	return Event{Type: EventUserForce, Tick: tick, Kind: kind}
}

// NewUserCancelEvent creates an event for the user exertor being released.
func NewUserCancelEvent(tick int32) Event {
	return Event{Type: EventUserCancel, Tick: tick}
}

// NewMeshEvent creates a mesh activation or deactivation event.
func NewMeshEvent(tick int32, active bool, mesh string) Event {
	t := EventMeshDeactivated
	if active {
		t = EventMeshActivated
	}
	return Event{Type: t, Tick: tick, Kind: mesh}
}
