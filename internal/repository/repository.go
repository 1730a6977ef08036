package repository

import (
	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
)

// Snapshot is a consistent view of the order cache: the raw order set, the
// filter in force, and the filtered projection derived from both. The slices
// are owned by the receiver and must not be mutated.
type Snapshot struct {
	Orders   []domain.Order
	Filtered []domain.Order
	Filter   domain.Filter
}

// Observer receives a snapshot after every cache mutation. It is invoked
// synchronously on the mutating goroutine, so a slow observer slows writers.
type Observer func(Snapshot)

// OrderCache holds the client-side copy of the order set. Writes come from a
// single goroutine (the orders service); reads may come from many.
type OrderCache interface {
	// Load replaces the whole order set and re-derives the filtered view
	// with the filter already in force.
	Load(orders []domain.Order)

	// Patch replaces a single order in place, matched by ID. An ID not in
	// the cache is a no-op; replaced reports which happened.
	Patch(order domain.Order) (replaced bool)

	// SetFilter installs new view criteria and re-derives the filtered view
	// over the current order set.
	SetFilter(f domain.Filter)

	// Get returns a copy of the cached order with the given ID.
	Get(id string) (domain.Order, bool)

	// Snapshot returns a consistent view of the cache.
	Snapshot() Snapshot

	// Subscribe registers an observer for future snapshots. The returned
	// function removes it.
	Subscribe(fn Observer) (cancel func())
}
