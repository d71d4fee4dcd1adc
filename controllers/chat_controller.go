package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velora-shop/velora-backend/database"
	"github.com/velora-shop/velora-backend/dto"
	"github.com/velora-shop/velora-backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var chatHTTPClient = &http.Client{Timeout: 10 * time.Second}

type chatUpstreamRequest struct {
	Model    string        `json:"model,omitempty"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatUpstreamResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// dealsContext summarizes the current discounted products so the assistant
// can answer questions about active deals.
func dealsContext(c *gin.Context) string {
	ctx := c.Request.Context()
	productsCol := database.OpenCollection("products")

	opts := options.Find().SetLimit(5).SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := productsCol.Find(ctx, bson.M{
		"isDisabled":    false,
		"originalPrice": bson.M{"$gt": 0},
		"$expr":         bson.M{"$lt": []string{"$price", "$originalPrice"}},
	}, opts)
	if err != nil {
		return ""
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil || len(products) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Current deals:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: $%.2f (was $%.2f, %d%% off)\n",
			p.Name, p.Price, p.OriginalPrice, p.Discount())
	}
	return b.String()
}

// POST /api/chat proxies the shopping assistant upstream. The API key
// stays server side.
func Chat() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiURL := os.Getenv("CHAT_API_URL")
		apiKey := os.Getenv("CHAT_API_KEY")
		if apiURL == "" || apiKey == "" {
			respondError(c, http.StatusServiceUnavailable, "chat is not configured")
			return
		}

		var body dto.ChatDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		system := "You are a helpful shopping assistant for the Velora store."
		if deals := dealsContext(c); deals != "" {
			system += "\n\n" + deals
		}

		payload, err := json.Marshal(chatUpstreamRequest{
			Model: os.Getenv("CHAT_API_MODEL"),
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: body.Message},
			},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		req, err := http.NewRequestWithContext(c.Request.Context(),
			http.MethodPost, apiURL, bytes.NewReader(payload))
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := chatHTTPClient.Do(req)
		if err != nil {
			respondError(c, http.StatusBadGateway, "chat upstream unavailable")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respondError(c, http.StatusBadGateway, "chat upstream error")
			return
		}

		var upstream chatUpstreamResponse
		if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil ||
			len(upstream.Choices) == 0 {
			respondError(c, http.StatusBadGateway, "chat upstream returned an unexpected response")
			return
		}

		respondData(c, http.StatusOK, gin.H{"reply": upstream.Choices[0].Message.Content})
	}
}
