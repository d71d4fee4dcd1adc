package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/velora-shop/velora-backend/database"
	"github.com/velora-shop/velora-backend/dto"
	"github.com/velora-shop/velora-backend/models"
	"github.com/velora-shop/velora-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GET /api/categories[?tree=true]
func GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := database.OpenCollection("categories")

		filter := bson.M{}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			filter["name"] = bson.M{"$regex": q, "$options": "i"}
		}
		if !isAdmin(c) {
			filter["isActive"] = true
		}

		opts := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}, {Key: "name", Value: 1}})
		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.Category, 0)
		if err := cursor.All(ctx, &items); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		if tree, err := utils.ParseBoolQuery(c.Query("tree")); err == nil && tree != nil && *tree {
			respondData(c, http.StatusOK, models.BuildCategoryTree(items))
			return
		}

		respondData(c, http.StatusOK, items)
	}
}

// GET /api/categories/:id and /api/categories/slug/:slug
func GetCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := database.OpenCollection("categories")

		idHex := c.Param("id")
		slug := strings.TrimSpace(c.Param("slug"))
		if idHex == "" && slug == "" {
			respondError(c, http.StatusBadRequest, "no id or slug provided")
			return
		}

		filter := bson.M{}
		if idHex != "" {
			id, err := bson.ObjectIDFromHex(idHex)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid category id")
				return
			}
			filter["_id"] = id
		} else {
			filter["slug"] = slug
		}

		var cat models.Category
		if err := col.FindOne(ctx, filter).Decode(&cat); err != nil {
			respondError(c, http.StatusNotFound, "category not found")
			return
		}

		respondData(c, http.StatusOK, cat)
	}
}

// GET /api/categories/:id/products
func GetCategoryProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id")
			return
		}

		categoriesCol := database.OpenCollection("categories")
		var cat models.Category
		if err := categoriesCol.FindOne(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
			respondError(c, http.StatusNotFound, "category not found")
			return
		}

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

		filter := bson.M{
			"categoryIds": bson.M{"$in": bson.A{id}},
			"isDisabled":  false,
		}

		productsCol := database.OpenCollection("products")
		opts := options.Find().
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "name", Value: 1}})

		cursor, err := productsCol.Find(ctx, filter, opts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.Product, 0)
		if err := cursor.All(ctx, &items); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		total, err := productsCol.CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"category": cat,
			"items":    items,
			"meta":     newPageMeta(page, limit, total),
		})
	}
}

// POST /admin/categories
func AddCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := database.OpenCollection("categories")

		var body dto.CreateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Slug = strings.TrimSpace(body.Slug)
		if body.Slug == "" {
			body.Slug = utils.GenerateSlug(body.Name)
		}

		doc := models.Category{
			Id:          bson.NewObjectID(),
			Name:        body.Name,
			Slug:        body.Slug,
			Description: body.Description,
			SortOrder:   body.SortOrder,
			IsActive:    body.IsActive,
		}

		if body.ParentId != nil && *body.ParentId != "" {
			parentID, err := bson.ObjectIDFromHex(*body.ParentId)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid parent id")
				return
			}
			var parent models.Category
			if err := col.FindOne(ctx, bson.M{"_id": parentID}).Decode(&parent); err != nil {
				respondError(c, http.StatusBadRequest, "parent category not found")
				return
			}
			doc.ParentId = &parentID
		}

		if _, err := col.InsertOne(ctx, doc); err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "slug already exists", "field": "slug"})
				return
			}
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusCreated, doc)
	}
}

// PATCH /admin/categories/:id
func UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := database.OpenCollection("categories")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id")
			return
		}

		var body dto.UpdateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		set := bson.M{}
		unset := bson.M{}
		if body.Name != nil {
			v := strings.TrimSpace(*body.Name)
			if v == "" {
				respondError(c, http.StatusBadRequest, "name cannot be empty")
				return
			}
			set["name"] = v
		}
		if body.Slug != nil {
			v := strings.TrimSpace(*body.Slug)
			if v == "" {
				respondError(c, http.StatusBadRequest, "slug cannot be empty")
				return
			}
			set["slug"] = v
		}
		if body.Description != nil {
			set["description"] = *body.Description
		}
		if body.SortOrder != nil {
			set["sortOrder"] = *body.SortOrder
		}
		if body.IsActive != nil {
			set["isActive"] = *body.IsActive
		}
		if body.ParentId != nil {
			v := strings.TrimSpace(*body.ParentId)
			if v == "" {
				unset["parentId"] = ""
			} else {
				parentID, err := bson.ObjectIDFromHex(v)
				if err != nil {
					respondError(c, http.StatusBadRequest, "invalid parent id")
					return
				}
				if parentID == id {
					respondError(c, http.StatusBadRequest, "category cannot be its own parent")
					return
				}
				var parent models.Category
				if err := col.FindOne(ctx, bson.M{"_id": parentID}).Decode(&parent); err != nil {
					respondError(c, http.StatusBadRequest, "parent category not found")
					return
				}
				set["parentId"] = parentID
			}
		}

		if len(set) == 0 && len(unset) == 0 {
			respondError(c, http.StatusBadRequest, "no updates provided")
			return
		}

		update := bson.M{}
		if len(set) > 0 {
			update["$set"] = set
		}
		if len(unset) > 0 {
			update["$unset"] = unset
		}

		res, err := col.UpdateByID(ctx, id, update)
		if err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "slug already exists", "field": "slug"})
				return
			}
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "category not found")
			return
		}

		respondMessage(c, http.StatusOK, "category updated")
	}
}

// POST /admin/categories/:id/image stores the image in R2
func UploadCategoryImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := database.OpenCollection("categories")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id")
			return
		}

		var category models.Category
		if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
			respondError(c, http.StatusNotFound, "category not found")
			return
		}

		fh, err := c.FormFile("image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "missing image file")
			return
		}
		if fh.Size > 5*1024*1024 {
			respondError(c, http.StatusBadRequest, "image too large (max 5MB)")
			return
		}

		r2, err := utils.NewR2Client(ctx)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to init storage client")
			return
		}

		url, err := utils.UploadImageToR2(ctx, r2, "categories/"+id.Hex(), fh)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"imageUrl": url}}); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		// the replaced banner would be orphaned in the bucket otherwise
		if category.ImageUrl != "" {
			if obj, err := utils.ObjectNameFromR2PublicURL(category.ImageUrl); err == nil {
				if err := utils.DeleteR2Objects(ctx, r2, []string{obj}); err != nil {
					log.Printf("failed to delete replaced category image %s: %v", obj, err)
				}
			}
		}

		respondData(c, http.StatusOK, gin.H{"imageUrl": url})
	}
}

// DELETE /admin/categories/:id. Deletion is refused while products or
// subcategories still reference the category.
func DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := database.OpenCollection("categories")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id")
			return
		}

		productsCol := database.OpenCollection("products")
		productCount, err := productsCol.CountDocuments(ctx, bson.M{"categoryIds": bson.M{"$in": bson.A{id}}})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if productCount > 0 {
			respondError(c, http.StatusBadRequest, "category still has products")
			return
		}

		childCount, err := col.CountDocuments(ctx, bson.M{"parentId": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if childCount > 0 {
			respondError(c, http.StatusBadRequest, "category still has subcategories")
			return
		}

		res, err := col.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, "category not found")
			return
		}

		respondMessage(c, http.StatusOK, "category deleted")
	}
}
