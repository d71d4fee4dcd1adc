package dto

type CreateCategoryDTO struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug"` // auto-generated from Name if empty
	Description string  `json:"description"`
	ParentId    *string `json:"parentId"`
	SortOrder   int     `json:"sortOrder"`
	IsActive    bool    `json:"isActive"`
}

// UpdateCategoryDTO carries optional pointer fields
type UpdateCategoryDTO struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ParentId    *string `json:"parentId"` // empty string detaches from parent
	SortOrder   *int    `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}
