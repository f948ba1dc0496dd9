package plugin

// EventHandler handles manager events. Handlers run synchronously on the
// goroutine performing the transition, after the transition has
// completed, so they may read the Manager. Panics in handlers are
// recovered.
type EventHandler func(event ManagerEvent)

// ManagerEvent describes a lifecycle transition.
type ManagerEvent struct {
	Type   ManagerEventType
	Plugin string
	Window int
	Error  error
}

// ManagerEventType is the type of manager event.
type ManagerEventType int

const (
	// EventOpened is emitted when a plugin becomes current.
	EventOpened ManagerEventType = iota
	// EventClosed is emitted when the current plugin is removed or the
	// user closes a detached plugin window.
	EventClosed
	// EventDetached is emitted when the current plugin moves to a floating window.
	EventDetached
	// EventReattached is emitted when a floating plugin returns to the host window.
	EventReattached
	// EventFeaturesChanged is emitted after a feature is added or removed.
	EventFeaturesChanged
	// EventUnsupportedPlatform is emitted when an open request is refused.
	EventUnsupportedPlatform
	// EventError is emitted when a transition fails.
	EventError
)

// String returns a string representation of the event type.
func (t ManagerEventType) String() string {
	switch t {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventDetached:
		return "detached"
	case EventReattached:
		return "reattached"
	case EventFeaturesChanged:
		return "features-changed"
	case EventUnsupportedPlatform:
		return "unsupported-platform"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
