package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/velora-shop/velora-backend/dto"
	"github.com/velora-shop/velora-backend/models"
	"github.com/velora-shop/velora-backend/utils"
)

// GET /api/content/hero
func GetHeroContent(store *models.HeroStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		slides := store.Slides()
		sort.SliceStable(slides, func(i, j int) bool {
			return slides[i].SortOrder < slides[j].SortOrder
		})
		respondData(c, http.StatusOK, gin.H{"slides": slides})
	}
}

// PUT /admin/content/hero replaces the whole slide set
func UpdateHeroContent(store *models.HeroStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateHeroDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		slides := make([]models.HeroSlide, 0, len(body.Slides))
		for _, s := range body.Slides {
			slides = append(slides, models.HeroSlide{
				ID:        s.ID,
				Title:     s.Title,
				Subtitle:  s.Subtitle,
				ImageUrl:  s.ImageUrl,
				CtaText:   s.CtaText,
				CtaLink:   s.CtaLink,
				SortOrder: s.SortOrder,
			})
		}
		store.Replace(slides)

		respondData(c, http.StatusOK, gin.H{"slides": store.Slides()})
	}
}

// POST /admin/content/hero/image uploads a hero banner to R2
func UploadHeroImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "image file is required")
			return
		}
		if fileHeader.Size > 10<<20 {
			respondError(c, http.StatusBadRequest, "image exceeds the 10MB limit")
			return
		}

		r2, err := utils.NewR2Client(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		url, err := utils.UploadImageToR2(c.Request.Context(), r2, "hero", fileHeader)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusCreated, gin.H{"imageUrl": url})
	}
}
