package dto

type OrderItemDTO struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type AddressDTO struct {
	FullName   string `json:"fullName" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required,len=2"`
	Phone      string `json:"phone"`
}

type CreateOrderDTO struct {
	Items           []OrderItemDTO `json:"items" binding:"required,min=1,dive"`
	ShippingAddress AddressDTO     `json:"shippingAddress" binding:"required"`
	BillingAddress  *AddressDTO    `json:"billingAddress"`
	PaymentMethod   string         `json:"paymentMethod" binding:"required,oneof=card cod bank_transfer"`
}

type UpdateOrderStatusDTO struct {
	Status  string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled returned"`
	Message string `json:"message"`
	Carrier string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
}

type CancelOrderDTO struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type ReturnOrderDTO struct {
	// ProductIds limits the return to specific lines; empty returns the
	// whole order.
	ProductIds []string `json:"productIds"`
	Reason     string   `json:"reason" binding:"max=1000"`
}
