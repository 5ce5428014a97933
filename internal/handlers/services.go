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

// ListServices returns services ordered by display order. Inactive entries
// are visible only to authenticated callers.
func ListServices(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if !isAuthenticated(c) {
			filter["isActive"] = true
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("services").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		defer cursor.Close(ctx)

		services := make([]models.Service, 0)
		if err := cursor.All(ctx, &services); err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, services)
	}
}

func GetService(db *mongo.Database) gin.HandlerFunc {
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

		var service models.Service
		err := db.Collection("services").FindOne(ctx, filter).Decode(&service)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "service not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, service)
	}
}

func CreateService(db *mongo.Database, gateway images.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "services"); !ok {
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

		title := strings.TrimSpace(c.PostForm("title"))
		if title == "" {
			respondWithError(c, http.StatusBadRequest, "title required")
			return
		}

		order := 0
		if raw := strings.TrimSpace(c.PostForm("order")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, "order must be a number")
				return
			}
			order = parsed
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
		service := models.Service{
			Title:       title,
			Description: strings.TrimSpace(c.PostForm("description")),
			Icon:        strings.TrimSpace(c.PostForm("icon")),
			Image:       resolved.Main,
			Images:      models.StringList(resolved.Gallery),
			Order:       order,
			IsActive:    isActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("services").InsertOne(ctx, service)
		if err != nil {
			log.Error("service insert failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		service.ID = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, service)
	}
}

type updateServiceJSON struct {
	imageJSONInput
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"isActive"`
}

func UpdateService(db *mongo.Database, gateway images.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "services"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Service
		err := db.Collection("services").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "service not found")
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

			if value, set := c.GetPostForm("title"); set {
				title := strings.TrimSpace(value)
				if title == "" {
					respondWithError(c, http.StatusBadRequest, "title required")
					return
				}
				updateSet["title"] = title
			}
			if value, set := c.GetPostForm("description"); set {
				updateSet["description"] = strings.TrimSpace(value)
			}
			if value, set := c.GetPostForm("icon"); set {
				updateSet["icon"] = strings.TrimSpace(value)
			}
			if value, set := c.GetPostForm("order"); set {
				parsed, err := strconv.Atoi(strings.TrimSpace(value))
				if err != nil {
					respondWithError(c, http.StatusBadRequest, "order must be a number")
					return
				}
				updateSet["order"] = parsed
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
			updateSet["images"] = models.StringList(resolved.Gallery)
		} else {
			var req updateServiceJSON
			if err := c.ShouldBindJSON(&req); err != nil {
				respondWithError(c, http.StatusBadRequest, "invalid request body")
				return
			}

			if req.Title != nil {
				title := strings.TrimSpace(*req.Title)
				if title == "" {
					respondWithError(c, http.StatusBadRequest, "title required")
					return
				}
				updateSet["title"] = title
			}
			if req.Description != nil {
				updateSet["description"] = strings.TrimSpace(*req.Description)
			}
			if req.Icon != nil {
				updateSet["icon"] = strings.TrimSpace(*req.Icon)
			}
			if req.Order != nil {
				updateSet["order"] = *req.Order
			}
			if req.IsActive != nil {
				updateSet["isActive"] = *req.IsActive
			}
			if req.provided() {
				resolved := images.Normalize(c.Request.Context(), gateway,
					req.normalizerInput(existing.Image, existing.Images), log)
				updateSet["image"] = resolved.Main
				updateSet["images"] = models.StringList(resolved.Gallery)
			}
		}

		if len(updateSet) == 0 {
			respondWithError(c, http.StatusBadRequest, "no fields to update")
			return
		}
		updateSet["updatedAt"] = time.Now()

		var updated models.Service
		err = db.Collection("services").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "service not found")
			return
		}
		if err != nil {
			log.Error("service update failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteService(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "services"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("services").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, "service not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
	}
}
