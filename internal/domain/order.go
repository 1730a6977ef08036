package domain

import (
	"strings"
	"time"
)

// CreatedAtLayout is the exact timestamp format the backend emits, UTC with
// millisecond precision. Anything that does not match is treated as
// unparseable rather than guessed at.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// Product is the catalog item referenced by an order line.
type Product struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Images []string `json:"images,omitempty"`
	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`
}

// FirstImage returns the primary image path, or "" when the product has none.
func (p *Product) FirstImage() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ImageURL resolves an image path against the uploads base URL. Absolute
// URLs pass through untouched.
func ImageURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// OrderProduct is a single line on an order. Product may be nil when the
// catalog entry was deleted after the order was placed.
type OrderProduct struct {
	Product       *Product `json:"product"`
	Quantity      int      `json:"quantity"`
	SelectedColor *string  `json:"selectedColor,omitempty"`
	SelectedSize  *string  `json:"selectedSize,omitempty"`
	Price         *float64 `json:"price,omitempty"`
}

// UnitPrice resolves the effective per-unit price: the price captured on the
// line wins over the current catalog price, so later catalog edits do not
// rewrite order history.
func (op OrderProduct) UnitPrice() float64 {
	if op.Price != nil {
		return *op.Price
	}
	if op.Product != nil {
		return op.Product.Price
	}
	return 0
}

// LineTotal is the unit price multiplied by quantity.
func (op OrderProduct) LineTotal() float64 {
	return op.UnitPrice() * float64(op.Quantity)
}

// Order is the wire shape of a customer order. Field names mirror the
// backend's JSON exactly; optional fields are pointers so absence survives a
// round trip.
type Order struct {
	ID                  string         `json:"_id"`
	OrderNumber         string         `json:"orderId"`
	CustomerName        string         `json:"customerName"`
	CustomerEmail       *string        `json:"customerEmail,omitempty"`
	PhoneNumber         string         `json:"phoneNumber"`
	Address             string         `json:"address"`
	Products            []OrderProduct `json:"products,omitempty"`
	Subtotal            float64        `json:"subtotal"`
	ShippingFee         float64        `json:"shippingFee"`
	TotalAmount         float64        `json:"totalAmount"`
	Status              *string        `json:"status"`
	SpecialInstructions *string        `json:"specialInstructions,omitempty"`
	CreatedAt           string         `json:"createdAt"`
	UpdatedAt           string         `json:"updatedAt"`
	PromoCode           *string        `json:"promoCode,omitempty"`
	PromoDiscount       *float64       `json:"promoDiscount,omitempty"`
}

// StatusCode parses the raw wire status into the closed enumeration.
func (o *Order) StatusCode() Status {
	return ParseStatus(o.Status)
}

// CreatedTime parses createdAt. ok is false when the timestamp is missing or
// malformed; callers decide how an unparseable order sorts and filters.
func (o *Order) CreatedTime() (time.Time, bool) {
	t, err := time.Parse(CreatedAtLayout, o.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DiscountAmount is the promo discount applied to the subtotal, in currency
// units. Zero when no promo was used.
func (o *Order) DiscountAmount() float64 {
	if o.PromoDiscount == nil || *o.PromoDiscount <= 0 {
		return 0
	}
	return o.Subtotal * *o.PromoDiscount / 100
}

// ItemCount is the total quantity across all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, p := range o.Products {
		n += p.Quantity
	}
	return n
}

// User is the authenticated admin account returned by the login endpoint.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the account may use the admin console.
func (u User) IsAdmin() bool {
	return u.Role == "admin"
}
