package event

// Publisher is the port through which lifecycles and the supervisor emit
// events and through which subscribers consume them. A wildcard subscriber
// is simply one that applies no Filter.
type Publisher interface {
	// Publish delivers event to every current subscriber whose filter
	// accepts it. Publish never blocks on a slow subscriber.
	Publish(e Event)
	// Subscribe registers a new subscriber and returns the channel it will
	// receive events on. A nil filter accepts every event (wildcard).
	Subscribe(filter Filter) <-chan Event
	// Unsubscribe removes a previously registered subscriber. It is safe to
	// call Unsubscribe more than once for the same channel.
	Unsubscribe(ch <-chan Event)
	// Close shuts down the publisher, closing every subscriber channel.
	Close()
}

// Filter decides whether an event should be delivered to a subscriber.
type Filter func(Event) bool

// FilterByType returns a Filter that passes only the named types.
func FilterByType(types ...Type) Filter {
	set := make(map[Type]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(e Event) bool {
		_, ok := set[e.Type]
		return ok
	}
}

// FilterByServerName returns a Filter that passes only events naming server.
func FilterByServerName(server string) Filter {
	return func(e Event) bool {
		return e.ServerName == server
	}
}

// FilterFleet returns a Filter that passes only fleet-channel events.
func FilterFleet() Filter {
	return func(e Event) bool {
		return e.Type.IsFleetEvent()
	}
}
