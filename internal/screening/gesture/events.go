// internal/screening/gesture/events.go
package gesture

// EventType enumerates the inbound UI events the interpreter understands.
type EventType string

const (
	EventPointerDown  EventType = "pointer_down"
	EventPointerMove  EventType = "pointer_move"
	EventPointerUp    EventType = "pointer_up"
	EventPointerLeave EventType = "pointer_leave"
	EventTouchStart   EventType = "touch_start"
	EventTouchMove    EventType = "touch_move"
	EventTouchEnd     EventType = "touch_end"
	EventKey          EventType = "key"
	EventButtonAccept EventType = "button_accept"
	EventButtonReject EventType = "button_reject"
)

// Event is one raw input sample. Touch events carry the first touch point in X/Y.
type Event struct {
	Type   EventType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Target Target    `json:"target,omitempty"`
	Key    string    `json:"key,omitempty"`
}

// Feed dispatches an event to the matching entry point.
func (in *Interpreter) Feed(ev Event) Decision {
	switch ev.Type {
	case EventPointerDown, EventTouchStart:
		target := ev.Target
		if target == "" {
			target = TargetCard
		}
		in.Begin(ev.X, ev.Y, target)
	case EventPointerMove, EventTouchMove:
		in.Move(ev.X, ev.Y)
	case EventPointerUp, EventTouchEnd:
		return in.End()
	case EventPointerLeave:
		return in.Leave()
	case EventKey:
		return in.Key(ev.Key)
	case EventButtonAccept:
		return in.Accept()
	case EventButtonReject:
		return in.Reject()
	}
	return DecisionNone
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventPointerDown, EventPointerMove, EventPointerUp, EventPointerLeave,
		EventTouchStart, EventTouchMove, EventTouchEnd,
		EventKey, EventButtonAccept, EventButtonReject:
		return true
	}
	return false
}
