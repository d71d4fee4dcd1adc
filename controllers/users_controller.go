package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velora-shop/velora-backend/database"
	"github.com/velora-shop/velora-backend/dto"
	"github.com/velora-shop/velora-backend/models"
	"github.com/velora-shop/velora-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GET /api/users/me
func GetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}

		respondData(c, http.StatusOK, user)
	}
}

// PUT /api/users/me
func UpdateMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.UpdateProfileDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		set := bson.M{"updatedAt": time.Now().UTC()}
		if body.Name != nil {
			set["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Phone != nil {
			set["phone"] = strings.TrimSpace(*body.Phone)
		}

		var user models.User
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := usersCol.FindOneAndUpdate(ctx,
			bson.M{"_id": userID}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}

		respondData(c, http.StatusOK, user)
	}
}

func addressFromAddDTO(body dto.AddAddressDTO) models.UserAddress {
	return models.UserAddress{
		ID:    bson.NewObjectID(),
		Label: strings.TrimSpace(body.Label),
		Address: models.Address{
			FullName:   strings.TrimSpace(body.FullName),
			Line1:      strings.TrimSpace(body.Line1),
			Line2:      strings.TrimSpace(body.Line2),
			City:       strings.TrimSpace(body.City),
			State:      strings.TrimSpace(body.State),
			PostalCode: strings.TrimSpace(body.PostalCode),
			Country:    strings.ToUpper(strings.TrimSpace(body.Country)),
			Phone:      strings.TrimSpace(body.Phone),
		},
		IsDefault: body.IsDefault,
	}
}

// POST /api/users/me/addresses
func AddAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.AddAddressDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		address := addressFromAddDTO(body)

		// a new default unsets the previous one
		if address.IsDefault {
			_, _ = usersCol.UpdateByID(ctx, userID, bson.M{
				"$set": bson.M{"addresses.$[].isDefault": false},
			})
		}

		res, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$push": bson.M{"addresses": address},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}

		respondData(c, http.StatusCreated, address)
	}
}

// PUT /api/users/me/addresses/:addressId
func UpdateAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		addressID, err := bson.ObjectIDFromHex(c.Param("addressId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid address id")
			return
		}

		var body dto.AddAddressDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		address := addressFromAddDTO(body)
		address.ID = addressID

		if address.IsDefault {
			_, _ = usersCol.UpdateByID(ctx, userID, bson.M{
				"$set": bson.M{"addresses.$[].isDefault": false},
			})
		}

		res, err := usersCol.UpdateOne(ctx,
			bson.M{"_id": userID, "addresses._id": addressID},
			bson.M{"$set": bson.M{
				"addresses.$": address,
				"updatedAt":   time.Now().UTC(),
			}},
		)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "address not found")
			return
		}

		respondData(c, http.StatusOK, address)
	}
}

// DELETE /api/users/me/addresses/:addressId
func DeleteAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		addressID, err := bson.ObjectIDFromHex(c.Param("addressId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid address id")
			return
		}

		res, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.ModifiedCount == 0 {
			respondError(c, http.StatusNotFound, "address not found")
			return
		}

		respondMessage(c, http.StatusOK, "address removed")
	}
}

// POST /api/users/me/payment-methods
func AddPaymentMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.AddPaymentMethodDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		method := models.PaymentMethod{
			ID:         bson.NewObjectID(),
			Brand:      strings.TrimSpace(body.Brand),
			CardNumber: utils.MaskCardNumber(body.CardNumber),
			ExpMonth:   body.ExpMonth,
			ExpYear:    body.ExpYear,
			IsDefault:  body.IsDefault,
		}

		if method.IsDefault {
			_, _ = usersCol.UpdateByID(ctx, userID, bson.M{
				"$set": bson.M{"paymentMethods.$[].isDefault": false},
			})
		}

		res, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$push": bson.M{"paymentMethods": method},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}

		respondData(c, http.StatusCreated, method)
	}
}

// DELETE /api/users/me/payment-methods/:methodId
func DeletePaymentMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		methodID, err := bson.ObjectIDFromHex(c.Param("methodId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid payment method id")
			return
		}

		res, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"paymentMethods": bson.M{"_id": methodID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.ModifiedCount == 0 {
			respondError(c, http.StatusNotFound, "payment method not found")
			return
		}

		respondMessage(c, http.StatusOK, "payment method removed")
	}
}

// GET /api/users/me/wishlist, resolved to product documents
func GetWishlist() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")
		productsCol := database.OpenCollection("products")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}

		products := make([]models.Product, 0)
		if len(user.Wishlist) > 0 {
			cursor, err := productsCol.Find(ctx, bson.M{
				"_id":        bson.M{"$in": user.Wishlist},
				"isDisabled": false,
			})
			if err != nil {
				respondError(c, http.StatusInternalServerError, err.Error())
				return
			}
			defer cursor.Close(ctx)
			if err := cursor.All(ctx, &products); err != nil {
				respondError(c, http.StatusInternalServerError, err.Error())
				return
			}
		}

		respondData(c, http.StatusOK, products)
	}
}

// POST /api/users/me/wishlist
func AddToWishlist() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")
		productsCol := database.OpenCollection("products")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		var body dto.AddWishlistDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		productID, err := bson.ObjectIDFromHex(body.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		count, err := productsCol.CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		// $addToSet keeps the wishlist duplicate-free
		if _, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$addToSet": bson.M{"wishlist": productID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondMessage(c, http.StatusOK, "added to wishlist")
	}
}

// DELETE /api/users/me/wishlist/:productId
func RemoveFromWishlist() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		productID, err := bson.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		if _, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"wishlist": productID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondMessage(c, http.StatusOK, "removed from wishlist")
	}
}

// GET /admin/users
func ListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		maxLimit, defaultLimit := utils.GetDefaultQueryLimits()
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), defaultLimit)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}

		filter := bson.M{}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			filter["$or"] = []bson.M{
				{"email": bson.M{"$regex": q, "$options": "i"}},
				{"name": bson.M{"$regex": q, "$options": "i"}},
			}
		}

		opts := options.Find().
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := usersCol.Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		total, err := usersCol.CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"items": users,
			"meta":  newPageMeta(page, limit, total),
		})
	}
}

// PUT /admin/users/:id/status enables or disables an account
func SetUserStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid user id")
			return
		}

		var body dto.SetUserStatusDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		res, err := usersCol.UpdateByID(ctx, id, bson.M{
			"$set": bson.M{"isActive": *body.IsActive, "updatedAt": time.Now().UTC()},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}

		respondMessage(c, http.StatusOK, "user status updated")
	}
}
