package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velora-shop/velora-backend/database"
	"github.com/velora-shop/velora-backend/dto"
	"github.com/velora-shop/velora-backend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func firstImage(p models.Product) string {
	if len(p.ImageUrls) > 0 {
		return p.ImageUrls[0]
	}
	return ""
}

// loadCart fetches the user's cart, creating an empty one on first use.
func loadCart(c *gin.Context, userID bson.ObjectID) (models.Cart, error) {
	ctx := c.Request.Context()
	cartsCol := database.OpenCollection("carts")

	var cart models.Cart
	err := cartsCol.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, err
	}

	cart = models.Cart{
		Id:        bson.NewObjectID(),
		UserID:    userID,
		Items:     []models.CartItem{},
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := cartsCol.InsertOne(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

func saveCart(c *gin.Context, cart models.Cart) error {
	cartsCol := database.OpenCollection("carts")
	cart.UpdatedAt = time.Now().UTC()
	_, err := cartsCol.UpdateByID(c.Request.Context(), cart.Id, bson.M{
		"$set": bson.M{"items": cart.Items, "updatedAt": cart.UpdatedAt},
	})
	return err
}

// GET /api/cart
func GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		cart, err := loadCart(c, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{"cart": cart, "subtotal": cart.Subtotal()})
	}
}

// POST /api/cart/items
func AddToCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.AddCartItemDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		prodID, err := bson.ObjectIDFromHex(body.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		productsCol := database.OpenCollection("products")
		var product models.Product
		if err := productsCol.FindOne(ctx, bson.M{"_id": prodID, "isDisabled": false}).Decode(&product); err != nil {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		cart, err := loadCart(c, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		merged := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == prodID {
				cart.Items[i].Quantity += body.Quantity
				merged = true
				break
			}
		}
		if !merged {
			// price and name are snapshotted at add time
			cart.Items = append(cart.Items, models.CartItem{
				ProductID: prodID,
				Name:      product.Name,
				Slug:      product.Slug,
				ImageUrl:  firstImage(product),
				UnitPrice: product.Price,
				Quantity:  body.Quantity,
				AddedAt:   time.Now().UTC(),
			})
		}

		if err := saveCart(c, cart); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{"cart": cart, "subtotal": cart.Subtotal()})
	}
}

// PUT /api/cart/items/:productId; quantity <= 0 removes the line
func UpdateCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		prodID, err := bson.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		var body dto.UpdateCartItemDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		cart, err := loadCart(c, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		found := false
		items := cart.Items[:0]
		for _, it := range cart.Items {
			if it.ProductID == prodID {
				found = true
				if body.Quantity <= 0 {
					continue
				}
				it.Quantity = body.Quantity
			}
			items = append(items, it)
		}
		if !found {
			respondError(c, http.StatusNotFound, "item not in cart")
			return
		}
		cart.Items = items

		if err := saveCart(c, cart); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{"cart": cart, "subtotal": cart.Subtotal()})
	}
}

// DELETE /api/cart/items/:productId
func RemoveCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		prodID, err := bson.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		cart, err := loadCart(c, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		items := cart.Items[:0]
		for _, it := range cart.Items {
			if it.ProductID != prodID {
				items = append(items, it)
			}
		}
		cart.Items = items

		if err := saveCart(c, cart); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{"cart": cart, "subtotal": cart.Subtotal()})
	}
}

// DELETE /api/cart empties the cart
func ClearCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		cart, err := loadCart(c, userID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		cart.Items = []models.CartItem{}
		if err := saveCart(c, cart); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{"cart": cart, "subtotal": 0.0})
	}
}
