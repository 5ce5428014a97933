package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"backend/internal/images"
	"backend/internal/models"
)

// ListProducts returns products newest first. Inactive entries are visible
// only to authenticated callers.
func ListProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if !isAuthenticated(c) {
			filter["isActive"] = true
		}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = bson.M{"$in": []string{category}}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		filter := bson.M{"_id": id}
		if !isAuthenticated(c) {
			filter["isActive"] = true
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err := db.Collection("products").FindOne(ctx, filter).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

func CreateProduct(db *mongo.Database, gateway images.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "products"); !ok {
			return
		}

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondWithError(c, http.StatusUnsupportedMediaType, "multipart/form-data required")
			return
		}

		form, err := parseImageForm(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			respondWithError(c, http.StatusBadRequest, "name required")
			return
		}

		priceRaw := strings.TrimSpace(c.PostForm("price"))
		if priceRaw == "" {
			respondWithError(c, http.StatusBadRequest, "price required")
			return
		}
		price, err := strconv.ParseFloat(priceRaw, 64)
		if err != nil || price < 0 {
			respondWithError(c, http.StatusBadRequest, "invalid price")
			return
		}

		inStock := true
		if raw := strings.TrimSpace(c.PostForm("inStock")); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, "inStock must be boolean")
				return
			}
			inStock = parsed
		}

		isActive := true
		if raw := strings.TrimSpace(c.PostForm("isActive")); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, "isActive must be boolean")
				return
			}
			isActive = parsed
		}

		resolved := images.Normalize(c.Request.Context(), gateway, form.normalizerInput("", nil), log)

		now := time.Now()
		product := models.Product{
			Name:        name,
			Description: strings.TrimSpace(c.PostForm("description")),
			Price:       price,
			Category:    images.DecodeField(c.PostFormArray("category")).Values,
			Image:       resolved.Main,
			Images:      models.StringList(resolved.Gallery),
			InStock:     inStock,
			IsActive:    isActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Error("product insert failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		product.ID = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, product)
	}
}

type updateProductJSON struct {
	imageJSONInput
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Category    *[]string `json:"category"`
	InStock     *bool     `json:"inStock"`
	IsActive    *bool     `json:"isActive"`
}

// UpdateProduct patches a product. Unlike services and projects, the
// product gallery is deduplicated on update.
func UpdateProduct(db *mongo.Database, gateway images.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "products"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		updateSet := bson.M{}

		if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			form, err := parseImageForm(c)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, err.Error())
				return
			}

			if value, set := c.GetPostForm("name"); set {
				name := strings.TrimSpace(value)
				if name == "" {
					respondWithError(c, http.StatusBadRequest, "name required")
					return
				}
				updateSet["name"] = name
			}
			if value, set := c.GetPostForm("description"); set {
				updateSet["description"] = strings.TrimSpace(value)
			}
			if value, set := c.GetPostForm("price"); set {
				parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
				if err != nil || parsed < 0 {
					respondWithError(c, http.StatusBadRequest, "invalid price")
					return
				}
				updateSet["price"] = parsed
			}
			if categories := c.PostFormArray("category"); len(categories) > 0 {
				updateSet["category"] = models.StringList(images.DecodeField(categories).Values)
			}
			if value, set := c.GetPostForm("inStock"); set {
				parsed, err := strconv.ParseBool(strings.TrimSpace(value))
				if err != nil {
					respondWithError(c, http.StatusBadRequest, "inStock must be boolean")
					return
				}
				updateSet["inStock"] = parsed
			}
			if value, set := c.GetPostForm("isActive"); set {
				parsed, err := strconv.ParseBool(strings.TrimSpace(value))
				if err != nil {
					respondWithError(c, http.StatusBadRequest, "isActive must be boolean")
					return
				}
				updateSet["isActive"] = parsed
			}

			resolved := images.Normalize(c.Request.Context(), gateway,
				form.normalizerInput(existing.Image, existing.Images), log)
			updateSet["image"] = resolved.Main
			updateSet["images"] = models.StringList(images.Dedupe(resolved.Gallery))
		} else {
			var req updateProductJSON
			if err := c.ShouldBindJSON(&req); err != nil {
				respondWithError(c, http.StatusBadRequest, "invalid request body")
				return
			}

			if req.Name != nil {
				name := strings.TrimSpace(*req.Name)
				if name == "" {
					respondWithError(c, http.StatusBadRequest, "name required")
					return
				}
				updateSet["name"] = name
			}
			if req.Description != nil {
				updateSet["description"] = strings.TrimSpace(*req.Description)
			}
			if req.Price != nil {
				if *req.Price < 0 {
					respondWithError(c, http.StatusBadRequest, "invalid price")
					return
				}
				updateSet["price"] = *req.Price
			}
			if req.Category != nil {
				updateSet["category"] = models.StringList(*req.Category)
			}
			if req.InStock != nil {
				updateSet["inStock"] = *req.InStock
			}
			if req.IsActive != nil {
				updateSet["isActive"] = *req.IsActive
			}
			if req.provided() {
				resolved := images.Normalize(c.Request.Context(), gateway,
					req.normalizerInput(existing.Image, existing.Images), log)
				updateSet["image"] = resolved.Main
				updateSet["images"] = models.StringList(images.Dedupe(resolved.Gallery))
			}
		}

		if len(updateSet) == 0 {
			respondWithError(c, http.StatusBadRequest, "no fields to update")
			return
		}
		updateSet["updatedAt"] = time.Now()

		var updated models.Product
		err = db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "product not found")
			return
		}
		if err != nil {
			log.Error("product update failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "products"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
