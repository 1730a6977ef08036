package domain

// Dashboard is an aggregate view over the full (unfiltered) order set.
type Dashboard struct {
	Total   int            `json:"total"`
	Counts  map[string]int `json:"counts"`
	Revenue float64        `json:"revenue"`
	Recent  []Order        `json:"recent"`
}

const recentLimit = 5

// BuildDashboard computes per-status counts, delivered revenue and the most
// recent orders. Revenue only counts delivered orders; everything else is
// still money in flight.
func BuildDashboard(orders []Order) Dashboard {
	d := Dashboard{
		Total:  len(orders),
		Counts: make(map[string]int, len(KnownStatuses())+1),
	}
	for _, s := range KnownStatuses() {
		d.Counts[string(s)] = 0
	}
	for i := range orders {
		code := orders[i].StatusCode()
		d.Counts[string(code)]++
		if code == StatusDelivered {
			d.Revenue += orders[i].TotalAmount
		}
	}
	d.Recent = Filter{Sort: SortNewest}.Apply(orders)
	if len(d.Recent) > recentLimit {
		d.Recent = d.Recent[:recentLimit]
	}
	return d
}
