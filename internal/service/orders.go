// Package service orchestrates the backend client and the local order cache.
// It owns refresh lifecycles and the status-update flow; handlers and the
// event listener stay thin.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
	"github.com/Mousaahmad63636/spotlymobile/internal/repository"
	apperrors "github.com/Mousaahmad63636/spotlymobile/pkg/errors"
)

// FetchState is the lifecycle of the most recent order list refresh.
type FetchState string

const (
	FetchIdle    FetchState = "idle"
	FetchLoading FetchState = "loading"
	FetchSuccess FetchState = "success"
	FetchError   FetchState = "error"
)

// FetchStatus is the publishable refresh outcome. Err carries the user-facing
// message only when State is FetchError.
type FetchStatus struct {
	State FetchState `json:"state"`
	Err   string     `json:"error,omitempty"`
	At    time.Time  `json:"at"`
}

// OrderAPI is the slice of the backend client the service needs.
type OrderAPI interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	Order(ctx context.Context, id string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
}

// Orders coordinates refreshes and status updates over the shared cache.
// Refresh may be called from several goroutines; a newer refresh supersedes
// an older in-flight one, whose result is then discarded.
type Orders struct {
	api    OrderAPI
	cache  repository.OrderCache
	logger *slog.Logger

	mu     sync.Mutex
	gen    uint64
	status FetchStatus
}

func NewOrders(api OrderAPI, cache repository.OrderCache, log *slog.Logger) *Orders {
	return &Orders{
		api:    api,
		cache:  cache,
		logger: log,
		status: FetchStatus{State: FetchIdle},
	}
}

// Status returns the current refresh status.
func (s *Orders) Status() FetchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Refresh fetches the full order list and replaces the cache wholesale. The
// filter already in force is re-applied by the cache. When a newer Refresh
// starts before this one finishes, this one's result is discarded so a stale
// list can never overwrite a fresher one.
func (s *Orders) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.status = FetchStatus{State: FetchLoading, At: time.Now().UTC()}
	s.mu.Unlock()

	orders, err := s.api.Orders(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.DebugContext(ctx, "refresh superseded, discarding result")
		return nil
	}
	if err != nil {
		s.status = FetchStatus{State: FetchError, Err: apperrors.UserMessage(err), At: time.Now().UTC()}
		s.logger.ErrorContext(ctx, "order refresh failed", slog.String("error", err.Error()))
		return err
	}

	s.cache.Load(orders)
	s.status = FetchStatus{State: FetchSuccess, At: time.Now().UTC()}
	s.logger.InfoContext(ctx, "order cache refreshed", slog.Int("count", len(orders)))
	return nil
}

// RefreshOne re-fetches a single order and patches it into the cache. Used by
// the event listener so one changed order does not cost a full list fetch.
func (s *Orders) RefreshOne(ctx context.Context, id string) error {
	order, err := s.api.Order(ctx, id)
	if err != nil {
		return err
	}
	if !s.cache.Patch(order) {
		// Not cached yet, e.g. an order created after the last full refresh.
		s.logger.InfoContext(ctx, "order not in cache, full refresh needed",
			slog.String("order_id", id))
		return s.Refresh(ctx)
	}
	return nil
}

// UpdateStatus moves an order to a new status. The backend's update response
// may omit fields, so after a successful PUT the full order is re-fetched and
// that record wins. When the re-fetch fails the update still succeeded, so
// the cached order is patched with just the new status rather than losing the
// change or caching a partial record.
func (s *Orders) UpdateStatus(ctx context.Context, id string, target domain.Status) (domain.Order, error) {
	if cached, ok := s.cache.Get(id); ok {
		if current := cached.StatusCode(); !domain.CanTransition(current, target) {
			// Advisory only. The backend owns the workflow and may accept
			// transitions this client does not offer.
			s.logger.WarnContext(ctx, "transition not offered by workflow",
				slog.String("order_id", id),
				slog.String("from", string(current)),
				slog.String("to", string(target)),
			)
		}
	}

	updated, err := s.api.UpdateOrderStatus(ctx, id, target)
	if err != nil {
		return domain.Order{}, err
	}

	full, err := s.api.Order(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			// The update landed server-side but the caller is gone. A
			// canceled flow must not publish, so leave the cache to the
			// next refresh.
			return domain.Order{}, ctx.Err()
		}
		s.logger.WarnContext(ctx, "re-fetch after update failed, merging status only",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
		full = s.mergeStatus(id, updated, target)
	}

	s.cache.Patch(full)
	return full, nil
}

// mergeStatus builds the fallback record: the cached order with only the
// status replaced. The update response's status wins over the requested one
// in case the backend normalized it.
func (s *Orders) mergeStatus(id string, updated domain.Order, target domain.Status) domain.Order {
	status := string(target)
	if updated.Status != nil && *updated.Status != "" {
		status = *updated.Status
	}

	base, ok := s.cache.Get(id)
	if !ok {
		// Nothing cached to merge into; the update response is all we have.
		base = updated
		base.ID = id
	}
	base.Status = &status
	return base
}

// Dashboard aggregates the full cached order set.
func (s *Orders) Dashboard() domain.Dashboard {
	return domain.BuildDashboard(s.cache.Snapshot().Orders)
}

// SetFilter installs new view criteria over the cache.
func (s *Orders) SetFilter(f domain.Filter) {
	s.cache.SetFilter(f)
}

// Snapshot exposes the cache's current consistent view.
func (s *Orders) Snapshot() repository.Snapshot {
	return s.cache.Snapshot()
}

// Get returns a single cached order.
func (s *Orders) Get(id string) (domain.Order, bool) {
	return s.cache.Get(id)
}
