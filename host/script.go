package host

// Script is a synchronous in-memory Source
// Events are delivered in push order; not safe for concurrent use
type Script struct {
	events []Event
}

// NewScript creates a script preloaded with events
func NewScript(events ...Event) *Script {
	return &Script{events: append([]Event(nil), events...)}
}

// Push appends events to the script
func (s *Script) Push(events ...Event) {
	s.events = append(s.events, events...)
}

// PushKey appends a key-down event
func (s *Script) PushKey(code KeyCode, flags KeyFlags, ascii uint16) {
	s.events = append(s.events, KeyDownEvent(code, flags, ascii))
}

// PushKeyUp appends a key-up event
func (s *Script) PushKeyUp(code KeyCode, flags KeyFlags) {
	s.events = append(s.events, KeyUpEvent(code, flags))
}

// PollEvent implements Source
func (s *Script) PollEvent(ev *Event) bool {
	if len(s.events) == 0 {
		return false
	}
	*ev = s.events[0]
	s.events[0] = Event{}
	s.events = s.events[1:]
	return true
}

// Len returns the number of undelivered events
func (s *Script) Len() int {
	return len(s.events)
}
