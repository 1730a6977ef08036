package domain

import (
	"sort"
	"strings"
	"time"
)

// SortOrder selects how filtered orders are arranged.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// Filter is the client-side view criteria applied over the cached order set.
// Zero values mean "no constraint": empty OrderNumber matches everything,
// empty Status matches every status, nil date bounds are open.
type Filter struct {
	OrderNumber string
	Status      Status
	DateFrom    *time.Time
	DateTo      *time.Time
	Sort        SortOrder
}

// IsZero reports whether the filter constrains nothing and sorts newest-first.
func (f Filter) IsZero() bool {
	return f.OrderNumber == "" && f.Status == "" &&
		f.DateFrom == nil && f.DateTo == nil &&
		(f.Sort == "" || f.Sort == SortNewest)
}

func (f Filter) matches(o *Order) bool {
	if f.OrderNumber != "" &&
		!strings.Contains(strings.ToLower(o.OrderNumber), strings.ToLower(f.OrderNumber)) {
		return false
	}
	if f.Status != "" && o.StatusCode() != f.Status {
		return false
	}
	if f.DateFrom != nil || f.DateTo != nil {
		t, ok := o.CreatedTime()
		if !ok {
			// A date constraint can only admit orders whose timestamp is
			// actually comparable.
			return false
		}
		if f.DateFrom != nil && t.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && t.After(*f.DateTo) {
			return false
		}
	}
	return true
}

// Apply filters and sorts a copy of orders without mutating the input. The
// sort is stable, so orders with equal timestamps keep their original
// relative positions. Orders with unparseable timestamps always sort after
// parseable ones, in both directions.
func (f Filter) Apply(orders []Order) []Order {
	type keyed struct {
		order Order
		at    time.Time
		ok    bool
	}
	out := make([]keyed, 0, len(orders))
	for i := range orders {
		if !f.matches(&orders[i]) {
			continue
		}
		t, ok := orders[i].CreatedTime()
		out = append(out, keyed{order: orders[i], at: t, ok: ok})
	}

	oldest := f.Sort == SortOldest
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}
		if oldest {
			return a.at.Before(b.at)
		}
		return b.at.Before(a.at)
	})

	result := make([]Order, len(out))
	for i, k := range out {
		result[i] = k.order
	}
	return result
}
