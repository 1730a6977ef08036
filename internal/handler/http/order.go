package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
	"github.com/Mousaahmad63636/spotlymobile/internal/service"
	"github.com/Mousaahmad63636/spotlymobile/pkg/httputil"
	"github.com/Mousaahmad63636/spotlymobile/pkg/validator"
)

const dateOnly = "2006-01-02"

// OrderHandler serves the cached order set. uploadsURL is the base for
// resolving product image paths.
type OrderHandler struct {
	orders     *service.Orders
	uploadsURL string
	logger     *slog.Logger
}

func NewOrderHandler(orders *service.Orders, uploadsURL string, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, uploadsURL: uploadsURL, logger: logger}
}

// FilterRequest is the JSON request body for installing view criteria. Dates
// are calendar days; DateTo covers its whole day.
type FilterRequest struct {
	OrderID  string `json:"order_id" validate:"omitempty,max=64"`
	Status   string `json:"status" validate:"omitempty,oneof=pending confirmed shipped delivered cancelled"`
	DateFrom string `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Sort     string `json:"sort" validate:"omitempty,oneof=newest oldest"`
}

// UpdateStatusRequest is the JSON request body for a status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// ListResponse is the order list payload: the filtered view plus enough
// context to render it (total cached, criteria, last refresh outcome).
type ListResponse struct {
	Orders []domain.Order      `json:"orders"`
	Total  int                 `json:"total"`
	Filter FilterRequest       `json:"filter"`
	Fetch  service.FetchStatus `json:"fetch"`
}

// LineView is a display-ready order line: resolved prices and image URL.
type LineView struct {
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	LineTotal     float64 `json:"lineTotal"`
	SelectedColor *string `json:"selectedColor,omitempty"`
	SelectedSize  *string `json:"selectedSize,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
}

// DetailResponse is a single order plus the transitions offered from its
// current status and its display-ready lines.
type DetailResponse struct {
	Order        domain.Order    `json:"order"`
	NextStatuses []domain.Status `json:"nextStatuses"`
	Lines        []LineView      `json:"lines"`
	Discount     float64         `json:"discount"`
}

func (h *OrderHandler) detail(order domain.Order) DetailResponse {
	lines := make([]LineView, 0, len(order.Products))
	for _, p := range order.Products {
		line := LineView{
			Quantity:      p.Quantity,
			UnitPrice:     p.UnitPrice(),
			LineTotal:     p.LineTotal(),
			SelectedColor: p.SelectedColor,
			SelectedSize:  p.SelectedSize,
			ImageURL:      domain.ImageURL(h.uploadsURL, p.Product.FirstImage()),
		}
		if p.Product != nil {
			line.Name = p.Product.Name
		}
		lines = append(lines, line)
	}
	return DetailResponse{
		Order:        order,
		NextStatuses: domain.NextStatuses(order.StatusCode()),
		Lines:        lines,
		Discount:     order.DiscountAmount(),
	}
}

// List handles GET /api/v1/orders. Filter query parameters, when present,
// install new view criteria exactly like PUT /orders/filter; without them the
// persisted criteria stay in force.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := FilterRequest{
		OrderID:  q.Get("order_id"),
		Status:   q.Get("status"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Sort:     q.Get("sort"),
	}
	if req != (FilterRequest{}) {
		if err := validator.Validate(req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		filter, err := requestToFilter(req)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		h.orders.SetFilter(filter)
	}

	snap := h.orders.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ListResponse{
		Orders: snap.Filtered,
		Total:  len(snap.Orders),
		Filter: filterToRequest(snap.Filter),
		Fetch:  h.orders.Status(),
	}})
}

// Refresh handles POST /api/v1/orders/refresh
func (h *OrderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	snap := h.orders.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ListResponse{
		Orders: snap.Filtered,
		Total:  len(snap.Orders),
		Filter: filterToRequest(snap.Filter),
		Fetch:  h.orders.Status(),
	}})
}

// SetFilter handles PUT /api/v1/orders/filter
func (h *OrderHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	filter, err := requestToFilter(req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.orders.SetFilter(filter)

	snap := h.orders.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ListResponse{
		Orders: snap.Filtered,
		Total:  len(snap.Orders),
		Filter: filterToRequest(snap.Filter),
		Fetch:  h.orders.Status(),
	}})
}

// ClearFilter handles DELETE /api/v1/orders/filter
func (h *OrderHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	h.orders.SetFilter(domain.Filter{})
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, ok := h.orders.Get(id)
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "order not cached, refresh first"},
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.detail(order)})
}

// UpdateStatus handles PUT /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, domain.Status(req.Status))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.detail(order)})
}

// Dashboard handles GET /api/v1/dashboard
func (h *OrderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.orders.Dashboard()})
}

// requestToFilter converts wire criteria into the domain filter. DateTo is a
// calendar day, so it expands to the last representable instant of that day
// in UTC; the backend's timestamps carry millisecond precision.
func requestToFilter(req FilterRequest) (domain.Filter, error) {
	f := domain.Filter{
		OrderNumber: req.OrderID,
		Sort:        domain.SortOrder(req.Sort),
	}
	if req.Status != "" {
		f.Status = domain.Status(req.Status)
	}
	if req.DateFrom != "" {
		t, err := time.ParseInLocation(dateOnly, req.DateFrom, time.UTC)
		if err != nil {
			return domain.Filter{}, err
		}
		f.DateFrom = &t
	}
	if req.DateTo != "" {
		t, err := time.ParseInLocation(dateOnly, req.DateTo, time.UTC)
		if err != nil {
			return domain.Filter{}, err
		}
		end := t.Add(24*time.Hour - time.Millisecond)
		f.DateTo = &end
	}
	return f, nil
}

func filterToRequest(f domain.Filter) FilterRequest {
	req := FilterRequest{
		OrderID: f.OrderNumber,
		Status:  string(f.Status),
		Sort:    string(f.Sort),
	}
	if f.DateFrom != nil {
		req.DateFrom = f.DateFrom.Format(dateOnly)
	}
	if f.DateTo != nil {
		req.DateTo = f.DateTo.Format(dateOnly)
	}
	return req
}
