package dto

type HeroSlideDTO struct {
	ID        string `json:"id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Subtitle  string `json:"subtitle"`
	ImageUrl  string `json:"imageUrl" binding:"required"`
	CtaText   string `json:"ctaText"`
	CtaLink   string `json:"ctaLink"`
	SortOrder int    `json:"sortOrder"`
}

type UpdateHeroDTO struct {
	Slides []HeroSlideDTO `json:"slides" binding:"required,dive"`
}

type ChatDTO struct {
	Message string `json:"message" binding:"required,max=4000"`
}
