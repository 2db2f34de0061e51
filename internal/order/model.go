package order

import "time"

type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "pending"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentCompleted           PaymentStatus = "completed"
)

type Status string

const (
	StatusReceived   Status = "received"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is one of the order lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusReceived, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is the persisted record of an accepted checkout. Customer fields
// hold sanitized values only; raw client input never reaches this struct.
type Order struct {
	ID              int64
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	BillingAddress  string
	ShippingAddress string
	CompanyName     string
	CompanyOIB      string
	NeedsInvoice    bool
	Notes           string
	TotalAmount     float64
	TaxAmount       float64
	ShippingCost    float64
	Discount        float64
	PaymentMethod   string
	PaymentStatus   PaymentStatus
	Status          Status
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []Item
}

// Item is a persisted order line. Subtotal is always recomputed from the
// sanitized quantity and unit price; a client-submitted subtotal is never
// stored.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	Subtotal    float64
	Width       float64
	Height      float64
	Options     map[string]string
}
