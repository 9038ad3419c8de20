package room

import "github.com/mcoot/tarot-go2/internal/model"

// Sink receives a room's deliveries in sequence order. Publish is called from the room's
// actor goroutine and must not block.
type Sink interface {
	Publish(d model.Delivery)
}

// Sinks fans deliveries out to several sinks in order
type Sinks []Sink

func (s Sinks) Publish(d model.Delivery) {
	for _, sink := range s {
		sink.Publish(d)
	}
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(d model.Delivery)

func (f SinkFunc) Publish(d model.Delivery) {
	f(d)
}

// discard drops every delivery
type discard struct{}

func (discard) Publish(model.Delivery) {}
