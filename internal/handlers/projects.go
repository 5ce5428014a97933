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

// ListProjects returns projects newest first, optionally filtered by
// category. Inactive entries are visible only to authenticated callers.
func ListProjects(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if !isAuthenticated(c) {
			filter["isActive"] = true
		}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("projects").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		defer cursor.Close(ctx)

		projects := make([]models.Project, 0)
		if err := cursor.All(ctx, &projects); err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, projects)
	}
}

func GetProject(db *mongo.Database) gin.HandlerFunc {
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

		var project models.Project
		err := db.Collection("projects").FindOne(ctx, filter).Decode(&project)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "project not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

func CreateProject(db *mongo.Database, gateway images.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "projects"); !ok {
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

		year := 0
		if raw := strings.TrimSpace(c.PostForm("year")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, "year must be a number")
				return
			}
			year = parsed
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
		project := models.Project{
			Title:       title,
			Description: strings.TrimSpace(c.PostForm("description")),
			Category:    strings.TrimSpace(c.PostForm("category")),
			Location:    strings.TrimSpace(c.PostForm("location")),
			Year:        year,
			Image:       resolved.Main,
			Images:      models.StringList(resolved.Gallery),
			IsActive:    isActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("projects").InsertOne(ctx, project)
		if err != nil {
			log.Error("project insert failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		project.ID = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, project)
	}
}

type updateProjectJSON struct {
	imageJSONInput
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Year        *int    `json:"year"`
	IsActive    *bool   `json:"isActive"`
}

func UpdateProject(db *mongo.Database, gateway images.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "projects"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Project
		err := db.Collection("projects").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "project not found")
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
			if value, set := c.GetPostForm("category"); set {
				updateSet["category"] = strings.TrimSpace(value)
			}
			if value, set := c.GetPostForm("location"); set {
				updateSet["location"] = strings.TrimSpace(value)
			}
			if value, set := c.GetPostForm("year"); set {
				parsed, err := strconv.Atoi(strings.TrimSpace(value))
				if err != nil {
					respondWithError(c, http.StatusBadRequest, "year must be a number")
					return
				}
				updateSet["year"] = parsed
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
			var req updateProjectJSON
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
			if req.Category != nil {
				updateSet["category"] = strings.TrimSpace(*req.Category)
			}
			if req.Location != nil {
				updateSet["location"] = strings.TrimSpace(*req.Location)
			}
			if req.Year != nil {
				updateSet["year"] = *req.Year
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

		var updated models.Project
		err = db.Collection("projects").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "project not found")
			return
		}
		if err != nil {
			log.Error("project update failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteProject(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "projects"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("projects").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, "project not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}
