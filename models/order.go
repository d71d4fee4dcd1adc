package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// orderTransitions is the allowed next-status set per current status.
// cancelled and returned are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusReturned},
	OrderStatusCancelled:  {},
	OrderStatusReturned:   {},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	_, ok := orderTransitions[st]
	return st, ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable statuses: before the order has shipped.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

type OrderItem struct {
	ProductID bson.ObjectID `bson:"productId" json:"productId"`
	Name      string        `bson:"name" json:"name"`
	Slug      string        `bson:"slug,omitempty" json:"slug,omitempty"`
	ImageUrl  string        `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Quantity  int           `bson:"quantity" json:"quantity"`
	UnitPrice float64       `bson:"unitPrice" json:"unitPrice"`
	Total     float64       `bson:"total" json:"total"`
}

type Address struct {
	FullName   string `bson:"fullName" json:"fullName"`
	Line1      string `bson:"line1" json:"line1"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type Payment struct {
	Method   string        `bson:"method" json:"method"`
	Amount   float64       `bson:"amount" json:"amount"`
	Currency string        `bson:"currency" json:"currency"`
	Status   PaymentStatus `bson:"status" json:"status"`
}

type Pricing struct {
	Currency string  `bson:"currency" json:"currency"`
	Rate     float64 `bson:"rate" json:"rate"`
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Tax      float64 `bson:"tax" json:"tax"`
	Shipping float64 `bson:"shipping" json:"shipping"`
	Total    float64 `bson:"total" json:"total"`
}

// TimelineEntry records one status change; the timeline is append-only.
type TimelineEntry struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Message   string      `bson:"message" json:"message"`
	Actor     string      `bson:"actor" json:"actor"`
	CreatedAt time.Time   `bson:"createdAt" json:"createdAt"`
}

func NewTimelineEntry(status OrderStatus, message, actor string) TimelineEntry {
	return TimelineEntry{
		Status:    status,
		Message:   message,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}
}

type Tracking struct {
	Carrier string `bson:"carrier" json:"carrier"`
	Number  string `bson:"number" json:"number"`
}

type Refund struct {
	Amount      float64   `bson:"amount" json:"amount"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Status      string    `bson:"status" json:"status"`
	RequestedAt time.Time `bson:"requestedAt" json:"requestedAt"`
}

type Order struct {
	Id              bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrderNumber     string          `bson:"orderNumber" json:"orderNumber"`
	UserID          bson.ObjectID   `bson:"userId" json:"userId"`
	Items           []OrderItem     `bson:"items" json:"items"`
	ShippingAddress Address         `bson:"shippingAddress" json:"shippingAddress"`
	BillingAddress  *Address        `bson:"billingAddress,omitempty" json:"billingAddress,omitempty"`
	Payment         Payment         `bson:"payment" json:"payment"`
	Pricing         Pricing         `bson:"pricing" json:"pricing"`
	Status          OrderStatus     `bson:"status" json:"status"`
	Timeline        []TimelineEntry `bson:"timeline" json:"timeline"`
	Tracking        *Tracking       `bson:"tracking,omitempty" json:"tracking,omitempty"`
	Refund          *Refund         `bson:"refund,omitempty" json:"refund,omitempty"`
	DeliveredAt     *time.Time      `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// NewOrderNumber builds a human-readable unique reference,
// e.g. VL-20260831-7F3A21BC.
func NewOrderNumber() string {
	return "VL-" + time.Now().UTC().Format("20060102") + "-" +
		strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
