package publish

// Emitter publishes named events to whatever transport is attached.
// The resolution pipeline only ever talks to this interface, so it can
// be exercised in tests without a real transport.
type Emitter interface {
	Emit(event string, payload interface{})
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(event string, payload interface{})

func (f EmitterFunc) Emit(event string, payload interface{}) {
	f(event, payload)
}

// Discard is an Emitter that drops every event.
var Discard = EmitterFunc(func(string, interface{}) {})
