package ioreport

// ChannelRequest names a channel group, and optionally a subgroup, to
// subscribe to. An empty request list subscribes to every channel the
// provider exposes.
type ChannelRequest struct {
	Group    string
	Subgroup string
}

// Provider is the platform telemetry source. The platform binding owns the
// wire representation; consumers only rely on this contract.
type Provider interface {
	Subscribe(requests []ChannelRequest) (Subscription, error)
}

// Subscription is an open channel subscription. Energy counters are
// monotonic non-negative for the lifetime of the subscription.
type Subscription interface {
	// Snapshot produces an opaque point-in-time counter snapshot.
	Snapshot() (Snapshot, error)

	// Delta diffs two snapshots of this subscription, older first. The
	// returned DeltaSnapshot owns its entry handles until released.
	Delta(older, newer Snapshot, elapsedMS uint64) (*DeltaSnapshot, error)

	Close() error
}

// Snapshot is an opaque point-in-time snapshot. Every snapshot must be
// released exactly once.
type Snapshot interface {
	Release()
}

// CounterHandle yields the raw integer counter value of one delta entry.
// Handles are owned by the enclosing DeltaSnapshot and are invalid after
// the snapshot is released.
type CounterHandle interface {
	Value() int64
}
