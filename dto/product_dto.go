package dto

// CreateProductDTO is parsed from the "data" multipart field (JSON);
// images arrive as files next to it.
type CreateProductDTO struct {
	Name          string            `json:"name" binding:"required,min=3"`
	Price         float64           `json:"price" binding:"required,gt=0"`
	OriginalPrice float64           `json:"originalPrice" binding:"omitempty,gt=0"`
	Quantity      int               `json:"quantity" binding:"gte=0"`
	Slug          string            `json:"slug"` // auto-generated from Name if empty
	CategoryIds   []string          `json:"categoryIds" binding:"required,min=1"`
	Description   string            `json:"description"`
	Attributes    map[string]string `json:"attributes"`
	Variants      []VariantDTO      `json:"variants" binding:"omitempty,dive"`
	IsFeatured    bool              `json:"isFeatured"`
	IsDisabled    bool              `json:"isDisabled"`
}

type VariantDTO struct {
	Name    string   `json:"name" binding:"required"`
	Options []string `json:"options" binding:"required,min=1"`
}

type UpdateProductDTO struct {
	Name              *string            `json:"name,omitempty"`
	Price             *float64           `json:"price,omitempty"`
	OriginalPrice     *float64           `json:"originalPrice,omitempty"`
	Quantity          *int               `json:"quantity,omitempty"`
	Slug              *string            `json:"slug,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Attributes        *map[string]string `json:"attributes,omitempty"`
	Variants          *[]VariantDTO      `json:"variants,omitempty"`
	CategoryIds       *[]string          `json:"categoryIds,omitempty"`
	IsFeatured        *bool              `json:"isFeatured,omitempty"`
	IsDisabled        *bool              `json:"isDisabled,omitempty"`
	RemovedImagesUrls []string           `json:"removedImagesUrls,omitempty"`
}

type CreateReviewDTO struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=4000"`
}
