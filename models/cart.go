package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CartItem struct {
	ProductID bson.ObjectID `bson:"productId" json:"productId"`
	Name      string        `bson:"name" json:"name"`
	Slug      string        `bson:"slug,omitempty" json:"slug,omitempty"`
	ImageUrl  string        `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	UnitPrice float64       `bson:"unitPrice" json:"unitPrice"`
	Quantity  int           `bson:"quantity" json:"quantity"`
	AddedAt   time.Time     `bson:"addedAt" json:"addedAt"`
}

// Cart is the server-side cart, one document per user.
type Cart struct {
	Id        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    bson.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem    `bson:"items" json:"items"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (c Cart) Subtotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}
