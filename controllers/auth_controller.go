package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/velora-shop/velora-backend/database"
	"github.com/velora-shop/velora-backend/dto"
	"github.com/velora-shop/velora-backend/models"
	"github.com/velora-shop/velora-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		now := time.Now().UTC()
		user := models.User{
			ID:           bson.NewObjectID(),
			Email:        email,
			PasswordHash: hash,
			Name:         strings.TrimSpace(body.Name),
			Role:         models.RoleUser,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		usersCol := database.OpenCollection("users")
		if _, err := usersCol.InsertOne(c.Request.Context(), user); err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		})
	}
}

func Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		usersCol := database.OpenCollection("users")
		if err := usersCol.FindOne(c, bson.M{"email": strings.ToLower(strings.TrimSpace(body.Email))}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		accessToken, _ := utils.GenerateAccessToken(user.ID.Hex(), user.Email, string(user.Role), utils.AccessTTL())
		refreshToken, _ := utils.GenerateRefreshToken(user.ID.Hex())

		refreshTokensCol := database.OpenCollection("refresh_tokens")
		_, err := refreshTokensCol.InsertOne(c, models.RefreshToken{
			UserID:    user.ID,
			TokenHash: utils.HashToken(refreshToken),
			ExpiresAt: time.Now().Add(utils.RefreshTTL()),
			CreatedAt: time.Now(),
		})
		if err != nil {
			log.Print("Connection failed ", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "connection failed"})
			return
		}
		setRefreshCookie(c, refreshToken)
		c.JSON(http.StatusOK, gin.H{
			"access_token": accessToken,
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.Name,
				"role":  user.Role,
			},
		})
	}
}

func Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")
		refreshCol := database.OpenCollection("refresh_tokens")

		raw, err := c.Cookie("refreshToken")
		if err != nil || raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
			return
		}
		var rt models.RefreshToken
		err = refreshCol.FindOne(ctx, bson.M{
			"tokenHash": utils.HashToken(raw),
			"revokedAt": bson.M{"$exists": false},
			"expiresAt": bson.M{"$gt": time.Now().UTC()},
		}).Decode(&rt)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": rt.UserID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
			return
		}

		// Rotate refresh token; only its digest touches the database
		newToken, err := utils.GenerateRefreshToken(user.ID.Hex())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
			return
		}
		newHash := utils.HashToken(newToken)

		now := time.Now().UTC()

		_, err = refreshCol.UpdateByID(ctx, rt.ID, bson.M{
			"$set": bson.M{
				"revokedAt":  now,
				"replacedBy": newHash,
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke refresh token"})
			return
		}

		_, err = refreshCol.InsertOne(ctx, models.RefreshToken{
			UserID:    user.ID,
			TokenHash: newHash,
			ExpiresAt: now.Add(utils.RefreshTTL()),
			CreatedAt: now,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store refresh token"})
			return
		}

		accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, string(user.Role), utils.AccessTTL())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access token"})
			return
		}

		setRefreshCookie(c, newToken)
		c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		refreshCol := database.OpenCollection("refresh_tokens")

		raw, _ := c.Cookie("refreshToken")
		utils.ClearRefreshCookie(c)

		// best effort revoke
		if raw != "" {
			now := time.Now().UTC()
			_, _ = refreshCol.UpdateOne(ctx, bson.M{
				"tokenHash": utils.HashToken(raw),
				"revokedAt": bson.M{"$exists": false},
			}, bson.M{
				"$set": bson.M{"revokedAt": now},
			})
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// POST /api/auth/password
func ChangeMyPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		userID, ok := authedUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "invalid auth context")
			return
		}

		usersCol := database.OpenCollection("users")

		var user models.User
		if err := usersCol.FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, http.StatusUnauthorized, "invalid user")
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
			respondError(c, http.StatusForbidden, "current password is incorrect")
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to hash password")
			return
		}

		now := time.Now().UTC()
		if _, err := usersCol.UpdateByID(c.Request.Context(), user.ID, bson.M{
			"$set": bson.M{"passwordHash": hash, "updatedAt": now},
		}); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondMessage(c, http.StatusOK, "password updated")
	}
}

// setRefreshCookie scopes the refresh token to the whole /auth group so the
// browser sends it to /auth/refresh and /auth/logout, matching the path
// ClearRefreshCookie clears.
func setRefreshCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "refreshToken",
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(utils.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode, // for cross-site
	})
}

// authedUserID reads the authenticated user's id set by the auth middleware.
func authedUserID(c *gin.Context) (bson.ObjectID, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(v.(string))
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	roleVal, ok := c.Get("role")
	return ok && roleVal.(string) == string(models.RoleAdmin)
}
