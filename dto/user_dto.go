package dto

type UpdateProfileDTO struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type AddAddressDTO struct {
	Label      string `json:"label"`
	FullName   string `json:"fullName" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required,len=2"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"isDefault"`
}

type AddPaymentMethodDTO struct {
	Brand      string `json:"brand" binding:"required"`
	CardNumber string `json:"cardNumber" binding:"required,min=12,max=19"`
	ExpMonth   int    `json:"expMonth" binding:"required,min=1,max=12"`
	ExpYear    int    `json:"expYear" binding:"required,min=2024"`
	IsDefault  bool   `json:"isDefault"`
}

type AddWishlistDTO struct {
	ProductID string `json:"productId" binding:"required"`
}

type SetUserStatusDTO struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
