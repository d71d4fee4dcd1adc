package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ProductVariant struct {
	Name    string   `bson:"name" json:"name"`
	Options []string `bson:"options" json:"options"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Review struct {
	UserID    bson.ObjectID `bson:"userId" json:"userId"`
	UserName  string        `bson:"userName" json:"userName"`
	Rating    int           `bson:"rating" json:"rating"`
	Comment   string        `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	Id            bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name          string            `bson:"name" json:"name"`
	Slug          string            `bson:"slug" json:"slug"`
	Price         float64           `bson:"price" json:"price"`
	OriginalPrice float64           `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Quantity      int               `bson:"quantity" json:"quantity"`
	CategoryIds   []bson.ObjectID   `bson:"categoryIds" json:"categoryIds"`
	ImageUrls     []string          `bson:"imageUrls" json:"imageUrls"`
	Description   string            `bson:"description,omitempty" json:"description,omitempty"`
	Attributes    map[string]string `bson:"attributes,omitempty" json:"attributes,omitempty"`
	Variants      []ProductVariant  `bson:"variants,omitempty" json:"variants,omitempty"`
	Rating        Rating            `bson:"rating" json:"rating"`
	Reviews       []Review          `bson:"reviews,omitempty" json:"reviews,omitempty"`
	IsFeatured    bool              `bson:"isFeatured" json:"isFeatured"`
	IsDisabled    bool              `bson:"isDisabled" json:"isDisabled"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Discount is the percentage off the original price, rounded down.
// Zero when the product is not discounted.
func (p Product) Discount() int {
	if p.OriginalPrice <= 0 || p.Price >= p.OriginalPrice {
		return 0
	}
	return int((p.OriginalPrice - p.Price) / p.OriginalPrice * 100)
}

// HasReviewBy reports whether the user already reviewed this product.
func (p Product) HasReviewBy(userID bson.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// RatingWith returns the aggregate after adding one more rating value.
func (p Product) RatingWith(value int) Rating {
	count := p.Rating.Count + 1
	sum := p.Rating.Average*float64(p.Rating.Count) + float64(value)
	return Rating{
		Average: sum / float64(count),
		Count:   count,
	}
}
