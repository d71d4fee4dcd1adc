package controllers

import "github.com/gin-gonic/gin"

// Every /api endpoint answers with the same envelope:
// { "success": bool, "data": ..., "message": ... }

func respondData(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

type pageMeta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	HasNextPage bool  `json:"hasNextPage"`
}

func newPageMeta(page, limit int, total int64) pageMeta {
	return pageMeta{
		Page:        page,
		Limit:       limit,
		Total:       total,
		HasNextPage: int64(page*limit) < total,
	}
}
