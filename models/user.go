package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserAddress struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Label     string        `bson:"label,omitempty" json:"label,omitempty"`
	Address   `bson:",inline"`
	IsDefault bool `bson:"isDefault" json:"isDefault"`
}

// PaymentMethod keeps only the masked card number; the full PAN is never stored.
type PaymentMethod struct {
	ID         bson.ObjectID `bson:"_id" json:"id"`
	Brand      string        `bson:"brand" json:"brand"`
	CardNumber string        `bson:"cardNumber" json:"cardNumber"`
	ExpMonth   int           `bson:"expMonth" json:"expMonth"`
	ExpYear    int           `bson:"expYear" json:"expYear"`
	IsDefault  bool          `bson:"isDefault" json:"isDefault"`
}

type User struct {
	ID             bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email          string          `bson:"email" json:"email"`
	PasswordHash   string          `bson:"passwordHash" json:"-"` // never expose
	Name           string          `bson:"name,omitempty" json:"name,omitempty"`
	Phone          string          `bson:"phone,omitempty" json:"phone,omitempty"`
	Role           Role            `bson:"role" json:"role"`
	IsActive       bool            `bson:"isActive" json:"isActive"`
	Addresses      []UserAddress   `bson:"addresses,omitempty" json:"addresses,omitempty"`
	PaymentMethods []PaymentMethod `bson:"paymentMethods,omitempty" json:"paymentMethods,omitempty"`
	Wishlist       []bson.ObjectID `bson:"wishlist,omitempty" json:"wishlist,omitempty"`
	CreatedAt      time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updatedAt" json:"updatedAt"`
}

type RefreshToken struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	UserID     bson.ObjectID `bson:"userId"`
	TokenHash  string        `bson:"tokenHash"`
	ExpiresAt  time.Time     `bson:"expiresAt"`
	CreatedAt  time.Time     `bson:"createdAt"`
	RevokedAt  *time.Time    `bson:"revokedAt,omitempty"`
	ReplacedBy *string       `bson:"replacedBy,omitempty"`
}
