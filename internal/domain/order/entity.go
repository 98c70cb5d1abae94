// internal/domain/order/entity.go
package order

import (
	"time"
)

// OrderStatus represents fulfillment state
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents payment state
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// PaymentMethod represents the accepted payment methods
type PaymentMethod string

const (
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid reports whether m is one of the accepted payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodStripe, PaymentMethodPayPal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// ShippingAddress is the delivery address captured at checkout.
// Every field is required.
type ShippingAddress struct {
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:255;not null" json:"email"`
	Phone     string `gorm:"size:20;not null" json:"phone"`
	Address   string `gorm:"size:255;not null" json:"address"`
	City      string `gorm:"size:100;not null" json:"city"`
	State     string `gorm:"size:100;not null" json:"state"`
	Country   string `gorm:"size:100;not null" json:"country"`
	ZipCode   string `gorm:"size:20;not null" json:"zip_code"`
}

// Order represents a placed order. Item names and prices are snapshots
// taken at checkout; later catalog changes never alter an order.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`

	Subtotal     int64  `gorm:"not null" json:"subtotal"`
	ShippingCost int64  `gorm:"default:0" json:"shipping_cost"`
	Tax          int64  `gorm:"default:0" json:"tax"`
	Total        int64  `gorm:"not null" json:"total"`
	Currency     string `gorm:"size:3;default:'USD'" json:"currency"`

	Status          OrderStatus     `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"size:20;default:'pending'" json:"payment_status"`
	PaymentMethod   PaymentMethod   `gorm:"size:20;not null" json:"payment_method"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	TrackingNumber    string     `gorm:"size:100" json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`

	Notes       string `gorm:"size:500" json:"notes,omitempty"`
	IsGift      bool   `gorm:"default:false" json:"is_gift"`
	GiftMessage string `gorm:"size:500" json:"gift_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem represents a single order line
type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	ProductID uint   `gorm:"not null" json:"product_id"`
	Name      string `gorm:"not null;size:200" json:"name"`
	Price     int64  `gorm:"not null" json:"price"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	ImageURL  string `gorm:"size:500" json:"image_url,omitempty"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// LineTotal returns the extended price of the line
func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// orderStatusTransitions defines the fulfillment state machine.
// Cancellation is reachable from every state except delivered.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// paymentStatusTransitions defines the payment state machine. A payment
// can only fail once it has started processing; pending payments move to
// processing first.
var paymentStatusTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentProcessing},
	PaymentProcessing: {PaymentCompleted, PaymentFailed},
	PaymentCompleted:  {PaymentRefunded},
	PaymentFailed:     {},
	PaymentRefunded:   {},
}

// CanTransitionTo reports whether the fulfillment status may move to target
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the payment status may move to target
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentStatusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known fulfillment status
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

// IsValid reports whether s is a known payment status
func (s PaymentStatus) IsValid() bool {
	_, ok := paymentStatusTransitions[s]
	return ok
}

// CanBeCancelled reports whether the order may still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(StatusCancelled)
}

// GetTotalItems returns the sum of quantities across all lines
func (o *Order) GetTotalItems() int {
	total := 0
	for i := range o.Items {
		total += o.Items[i].Quantity
	}
	return total
}

// TimelineEntry is one step of an order's status history as presented to
// the customer
type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Label     string      `json:"label"`
	Completed bool        `json:"completed"`
	Current   bool        `json:"current"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
}

var timelineSteps = []struct {
	status OrderStatus
	label  string
}{
	{StatusPending, "Order placed"},
	{StatusConfirmed, "Order confirmed"},
	{StatusProcessing, "Being prepared"},
	{StatusShipped, "Shipped"},
	{StatusDelivered, "Delivered"},
}

var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// Timeline derives the status history from the order's current status.
// Only the first and last steps carry real timestamps (created_at and
// updated_at); intermediate steps are shown without one since individual
// transition times are not recorded.
func (o *Order) Timeline() []TimelineEntry {
	if o.Status == StatusCancelled {
		created := o.CreatedAt
		updated := o.UpdatedAt
		return []TimelineEntry{
			{Status: StatusPending, Label: "Order placed", Completed: true, Timestamp: &created},
			{Status: StatusCancelled, Label: "Cancelled", Completed: true, Current: true, Timestamp: &updated},
		}
	}

	rank := statusRank[o.Status]
	entries := make([]TimelineEntry, 0, len(timelineSteps))
	for _, step := range timelineSteps {
		stepRank := statusRank[step.status]
		entry := TimelineEntry{
			Status:    step.status,
			Label:     step.label,
			Completed: stepRank <= rank,
			Current:   stepRank == rank,
		}
		if stepRank == 0 {
			created := o.CreatedAt
			entry.Timestamp = &created
		} else if stepRank == rank {
			updated := o.UpdatedAt
			entry.Timestamp = &updated
		}
		entries = append(entries, entry)
	}
	return entries
}
