package service

import "context"

// EventEmitter abstracts the frontend event channel so services never touch
// the Wails runtime directly. The App struct satisfies it by delegating to
// wailsRuntime.EventsEmit; tests substitute MockEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// MockEmitter records emissions for test assertions.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent is one recorded emission.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions carrying the given event name.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
