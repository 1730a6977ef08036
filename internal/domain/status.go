package domain

import "strings"

// Status is the closed set of order states the admin console understands.
// Anything the backend sends outside this set parses to StatusUnknown.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// KnownStatuses returns the five real states in workflow order.
func KnownStatuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	}
}

// ParseStatus normalizes a raw wire status. Comparison is case-insensitive;
// nil and unrecognized values both map to StatusUnknown, which behaves
// identically everywhere (a malformed order is treated the same as one that
// never had a status).
func ParseStatus(raw *string) Status {
	if raw == nil {
		return StatusUnknown
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case string(StatusPending):
		return StatusPending
	case string(StatusConfirmed):
		return StatusConfirmed
	case string(StatusShipped):
		return StatusShipped
	case string(StatusDelivered):
		return StatusDelivered
	case string(StatusCancelled):
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// Title returns the canonical display form ("Pending", "Confirmed", ...).
func (s Status) Title() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusShipped:
		return "Shipped"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// NextStatuses returns the transitions the workflow allows from the current
// status, in the order they are offered to the admin. Unknown acts as a
// recovery path: it offers the three early states so a malformed order can be
// forced back onto a known track. The result is advisory only; the backend
// re-validates every transition.
func NextStatuses(current Status) []Status {
	switch current {
	case StatusPending:
		return []Status{StatusConfirmed, StatusCancelled}
	case StatusConfirmed:
		return []Status{StatusShipped, StatusCancelled}
	case StatusShipped:
		return []Status{StatusDelivered, StatusCancelled}
	case StatusDelivered, StatusCancelled:
		return nil
	default:
		return []Status{StatusPending, StatusConfirmed, StatusCancelled}
	}
}

// CanTransition reports whether moving from current to target is allowed.
func CanTransition(current, target Status) bool {
	for _, s := range NextStatuses(current) {
		if s == target {
			return true
		}
	}
	return false
}
