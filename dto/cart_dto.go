package dto

type AddCartItemDTO struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemDTO struct {
	Quantity int `json:"quantity" binding:"required"`
}
