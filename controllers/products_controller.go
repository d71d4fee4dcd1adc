package controllers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
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

// GET /api/products
func GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

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
		skip := int64((page - 1) * limit)

		sortParam := strings.TrimSpace(c.Query("sort"))
		sortDoc := bson.D{{Key: "name", Value: 1}}
		switch sortParam {
		case "price_asc":
			sortDoc = bson.D{{Key: "price", Value: 1}}
		case "price_desc":
			sortDoc = bson.D{{Key: "price", Value: -1}}
		case "newest":
			sortDoc = bson.D{{Key: "createdAt", Value: -1}}
		case "rating":
			sortDoc = bson.D{{Key: "rating.average", Value: -1}}
		}

		productsCol := database.OpenCollection("products")
		categoriesCol := database.OpenCollection("categories")

		filter := bson.M{}

		// Category slug resolves to an ObjectID; unknown slug is an empty page
		categorySlug := strings.TrimSpace(c.Query("category"))
		if categorySlug != "" {
			var cat models.Category
			if err := categoriesCol.FindOne(ctx, bson.M{"slug": categorySlug}).Decode(&cat); err != nil {
				respondData(c, http.StatusOK, gin.H{
					"items": []models.Product{},
					"meta":  newPageMeta(page, limit, 0),
				})
				return
			}
			filter["categoryIds"] = bson.M{"$in": bson.A{cat.Id}}
		}

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			filter["name"] = bson.M{"$regex": q, "$options": "i"}
		}
		if b, err := utils.ParseBoolQuery(c.Query("featured")); err == nil && b != nil {
			filter["isFeatured"] = *b
		}
		if minPrice, err := utils.ParseFloatQuery(c.Query("minPrice")); err == nil && minPrice != nil {
			filter["price"] = bson.M{"$gte": *minPrice}
		}
		if maxPrice, err := utils.ParseFloatQuery(c.Query("maxPrice")); err == nil && maxPrice != nil {
			if existing, ok := filter["price"].(bson.M); ok {
				existing["$lte"] = *maxPrice
			} else {
				filter["price"] = bson.M{"$lte": *maxPrice}
			}
		}

		// Storefront never sees disabled products; admins may ask for them
		filter["isDisabled"] = false
		if isAdmin(c) {
			if b, err := utils.ParseBoolQuery(c.Query("disabled")); err == nil && b != nil {
				filter["isDisabled"] = *b
			}
		}

		findOpts := options.Find().
			SetSkip(skip).
			SetLimit(int64(limit)).
			SetSort(sortDoc)

		cursor, err := productsCol.Find(ctx, filter, findOpts)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		for cursor.Next(ctx) {
			var p models.Product
			if err := cursor.Decode(&p); err != nil {
				respondError(c, http.StatusInternalServerError, err.Error())
				return
			}
			products = append(products, p)
		}
		if err := cursor.Err(); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		total, err := productsCol.CountDocuments(ctx, filter)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusOK, gin.H{
			"items": products,
			"meta":  newPageMeta(page, limit, total),
		})
	}
}

// GET /api/products/:id
func GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		productsCol := database.OpenCollection("products")

		var p models.Product
		if err := productsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}
		if p.IsDisabled && !isAdmin(c) {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		respondData(c, http.StatusOK, p)
	}
}

// POST /admin/products (multipart)
func AddProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		collection := database.OpenCollection("products")

		jsonData := c.PostForm("data")
		if jsonData == "" {
			respondError(c, http.StatusBadRequest, "missing data")
			return
		}

		var body dto.CreateProductDTO
		if err := json.Unmarshal([]byte(jsonData), &body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid data json")
			return
		}
		if body.Slug == "" {
			body.Slug = utils.GenerateSlug(body.Name)
		}

		categoryIds, err := utils.StringsToObjectIDs(body.CategoryIds)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id")
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid multipart form")
			return
		}
		files := form.File["images"]

		gcsClient, bucket, err := utils.NewGCSClient(ctx)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to create storage client")
			return
		}
		defer gcsClient.Close()

		imageUrls, err := utils.UploadImagesToGCSAndGetPublicURLs(ctx, gcsClient, bucket, body.Slug, files)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		variants := make([]models.ProductVariant, 0, len(body.Variants))
		for _, v := range body.Variants {
			variants = append(variants, models.ProductVariant{Name: v.Name, Options: v.Options})
		}

		now := time.Now().UTC()
		product := models.Product{
			Id:            bson.NewObjectID(),
			Name:          body.Name,
			Slug:          body.Slug,
			Price:         body.Price,
			OriginalPrice: body.OriginalPrice,
			Quantity:      body.Quantity,
			ImageUrls:     imageUrls,
			CategoryIds:   categoryIds,
			Description:   body.Description,
			Attributes:    body.Attributes,
			Variants:      variants,
			IsFeatured:    body.IsFeatured,
			IsDisabled:    body.IsDisabled,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if _, err := collection.InsertOne(ctx, product); err != nil {
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "slug already exists", "field": "slug"})
				return
			}
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		respondData(c, http.StatusCreated, product)
	}
}

// PATCH /admin/products/:id (multipart)
func UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		prodID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}
		collection := database.OpenCollection("products")

		dataStr := c.PostForm("data")
		if dataStr == "" {
			respondError(c, http.StatusBadRequest, "missing data")
			return
		}

		var body dto.UpdateProductDTO
		if err := json.Unmarshal([]byte(dataStr), &body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid data json")
			return
		}

		// 1) Load product (need current imageUrls)
		var product models.Product
		if err := collection.FindOne(ctx, bson.M{"_id": prodID}).Decode(&product); err != nil {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		// 2) Only urls the product actually owns may be removed
		imagesToDelete := utils.IntersectStrings(body.RemovedImagesUrls, product.ImageUrls)

		var newFiles []*multipart.FileHeader
		if form, err := c.MultipartForm(); err == nil && form != nil {
			newFiles = form.File["images"]
		}
		maxProdImages, err := strconv.Atoi(os.Getenv("MAX_PROD_IMAGES"))
		if err != nil {
			maxProdImages = 4
		}
		totalImageCount := len(product.ImageUrls) - len(imagesToDelete) + len(newFiles)
		if totalImageCount > maxProdImages {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("Max %v images", maxProdImages))
			return
		}

		gcsClient, bucket, err := utils.NewGCSClient(ctx)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to create storage client")
			return
		}
		defer gcsClient.Close()

		// 3) Upload new images (if any)
		var imageUrls []string
		if len(newFiles) > 0 {
			imageUrls, err = utils.UploadImagesToGCSAndGetPublicURLs(ctx, gcsClient, bucket, product.Slug, newFiles)
			if err != nil {
				respondError(c, http.StatusBadRequest, err.Error())
				return
			}
		}

		newObjectNames := []string{} // for cleanup if DB update fails
		for _, imageUrl := range imageUrls {
			objName, _ := utils.ObjectNameFromGCSPublicURL(bucket, imageUrl)
			newObjectNames = append(newObjectNames, objName)
		}

		set := bson.M{}

		if body.Name != nil {
			set["name"] = *body.Name
		}
		if body.Price != nil {
			set["price"] = *body.Price
		}
		if body.OriginalPrice != nil {
			set["originalPrice"] = *body.OriginalPrice
		}
		if body.Quantity != nil {
			set["quantity"] = *body.Quantity
		}
		if body.Slug != nil {
			set["slug"] = *body.Slug
		}
		if body.Description != nil {
			set["description"] = *body.Description
		}
		if body.Attributes != nil {
			set["attributes"] = *body.Attributes
		}
		if body.Variants != nil {
			variants := make([]models.ProductVariant, 0, len(*body.Variants))
			for _, v := range *body.Variants {
				variants = append(variants, models.ProductVariant{Name: v.Name, Options: v.Options})
			}
			set["variants"] = variants
		}
		if body.CategoryIds != nil {
			categoryIds, err := utils.StringsToObjectIDs(*body.CategoryIds)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid category id")
				return
			}
			set["categoryIds"] = categoryIds
		}
		if body.IsFeatured != nil {
			set["isFeatured"] = *body.IsFeatured
		}
		if body.IsDisabled != nil {
			set["isDisabled"] = *body.IsDisabled
		}

		if len(imagesToDelete) > 0 || len(imageUrls) > 0 {
			set["imageUrls"] = utils.MergeImageUrls(product.ImageUrls, imagesToDelete, imageUrls)
		}

		if len(set) == 0 {
			respondError(c, http.StatusBadRequest, "no updates provided")
			return
		}
		set["updatedAt"] = time.Now().UTC()

		// 4) Update DB first
		if _, err := collection.UpdateByID(ctx, prodID, bson.M{"$set": set}); err != nil {
			// roll the new uploads back
			if len(newObjectNames) > 0 {
				_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, newObjectNames)
			}
			if utils.IsDuplicateKey(err) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "slug already exists", "field": "slug"})
				return
			}
			respondError(c, http.StatusInternalServerError, "db update failed")
			return
		}

		// 5) DB update went fine. Delete old images from GCS
		if len(imagesToDelete) > 0 {
			objectNames := make([]string, 0, len(imagesToDelete))
			for _, imageUrl := range imagesToDelete {
				obj, err := utils.ObjectNameFromGCSPublicURL(bucket, imageUrl)
				if err == nil {
					objectNames = append(objectNames, obj)
				}
			}
			_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, objectNames)
		}

		respondMessage(c, http.StatusOK, "product updated")
	}
}

// DELETE /admin/products/:id
func DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		collection := database.OpenCollection("products")

		var product models.Product
		if err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		if _, err := collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		// best effort image cleanup
		if len(product.ImageUrls) > 0 {
			if gcsClient, bucket, err := utils.NewGCSClient(ctx); err == nil {
				defer gcsClient.Close()
				objectNames := make([]string, 0, len(product.ImageUrls))
				for _, u := range product.ImageUrls {
					if obj, err := utils.ObjectNameFromGCSPublicURL(bucket, u); err == nil {
						objectNames = append(objectNames, obj)
					}
				}
				_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, objectNames)
			}
		}

		respondMessage(c, http.StatusOK, "product deleted")
	}
}

// POST /api/products/:id/reviews (auth)
func AddReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		prodID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id")
			return
		}

		var body dto.CreateReviewDTO
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
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, http.StatusUnauthorized, "user not found")
			return
		}

		productsCol := database.OpenCollection("products")
		var product models.Product
		if err := productsCol.FindOne(ctx, bson.M{"_id": prodID}).Decode(&product); err != nil {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}
		if product.HasReviewBy(userID) {
			respondError(c, http.StatusConflict, "you already reviewed this product")
			return
		}

		review := models.Review{
			UserID:    userID,
			UserName:  user.Name,
			Rating:    body.Rating,
			Comment:   strings.TrimSpace(body.Comment),
			CreatedAt: time.Now().UTC(),
		}

		res, err := productsCol.UpdateByID(ctx, prodID, bson.M{
			"$push": bson.M{"reviews": review},
			"$set": bson.M{
				"rating":    product.RatingWith(body.Rating),
				"updatedAt": review.CreatedAt,
			},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}

		respondData(c, http.StatusCreated, review)
	}
}

// GET /admin/products/export, xlsx download
func ExportProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		productsCol := database.OpenCollection("products")

		cursor, err := productsCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}

		file, err := utils.ProductsWorkbook(products)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to build workbook")
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")

		if err := file.Write(c.Writer); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to write workbook")
			return
		}
	}
}
