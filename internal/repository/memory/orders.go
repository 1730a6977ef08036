// Package memory provides the in-process order cache backing the admin
// console. There is no persistence: the backend owns the data and the cache
// is rebuilt from it on every refresh.
package memory

import (
	"sync"

	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
	"github.com/Mousaahmad63636/spotlymobile/internal/repository"
)

// OrderCache is the in-memory implementation of repository.OrderCache.
// Mutations derive the filtered view and publish a snapshot to observers
// before returning, so a caller always observes its own write.
type OrderCache struct {
	mu        sync.RWMutex
	orders    []domain.Order
	filtered  []domain.Order
	filter    domain.Filter
	observers map[int]repository.Observer
	nextObs   int
}

// New returns an empty cache with no filter constraints.
func New() *OrderCache {
	return &OrderCache{observers: make(map[int]repository.Observer)}
}

func (c *OrderCache) Load(orders []domain.Order) {
	c.mu.Lock()
	c.orders = make([]domain.Order, len(orders))
	copy(c.orders, orders)
	c.filtered = c.filter.Apply(c.orders)
	snap, obs := c.snapshotLocked()
	c.mu.Unlock()

	publish(snap, obs)
}

func (c *OrderCache) Patch(order domain.Order) bool {
	c.mu.Lock()
	idx := -1
	for i := range c.orders {
		if c.orders[i].ID == order.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.orders[idx] = order
	c.filtered = c.filter.Apply(c.orders)
	snap, obs := c.snapshotLocked()
	c.mu.Unlock()

	publish(snap, obs)
	return true
}

func (c *OrderCache) SetFilter(f domain.Filter) {
	c.mu.Lock()
	c.filter = f
	c.filtered = f.Apply(c.orders)
	snap, obs := c.snapshotLocked()
	c.mu.Unlock()

	publish(snap, obs)
}

func (c *OrderCache) Get(id string) (domain.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.orders {
		if c.orders[i].ID == id {
			return c.orders[i], true
		}
	}
	return domain.Order{}, false
}

func (c *OrderCache) Snapshot() repository.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, _ := c.snapshotLocked()
	return snap
}

func (c *OrderCache) Subscribe(fn repository.Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// snapshotLocked copies the cache state so observers and readers can hold the
// snapshot without racing later mutations. Callers must hold at least a read
// lock.
func (c *OrderCache) snapshotLocked() (repository.Snapshot, []repository.Observer) {
	snap := repository.Snapshot{
		Orders:   make([]domain.Order, len(c.orders)),
		Filtered: make([]domain.Order, len(c.filtered)),
		Filter:   c.filter,
	}
	copy(snap.Orders, c.orders)
	copy(snap.Filtered, c.filtered)

	obs := make([]repository.Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	return snap, obs
}

func publish(snap repository.Snapshot, obs []repository.Observer) {
	for _, fn := range obs {
		fn(snap)
	}
}
