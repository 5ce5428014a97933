package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/models"
)

func ListUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "users"); !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("users").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

func GetUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "users"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

type createUserRequest struct {
	Username    string              `json:"username" binding:"required"`
	Email       string              `json:"email" binding:"required,email"`
	Password    string              `json:"password" binding:"required,min=6"`
	Role        string              `json:"role"`
	Permissions *models.Permissions `json:"permissions"`
	IsActive    *bool               `json:"isActive"`
}

// CreateUser lets an authorized caller provision accounts with explicit
// roles and capability maps.
func CreateUser(db *mongo.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "users"); !ok {
			return
		}

		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "username, email and password are required")
			return
		}

		role := strings.TrimSpace(req.Role)
		if role == "" {
			role = models.RoleViewer
		}
		if role != models.RoleAdmin && role != models.RoleViewer {
			respondWithError(c, http.StatusBadRequest, "invalid role")
			return
		}

		permissions := models.Permissions{}
		if role == models.RoleAdmin {
			permissions = models.FullPermissions()
		}
		if req.Permissions != nil {
			permissions = *req.Permissions
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "password hashing failed")
			return
		}

		now := time.Now()
		user := models.User{
			Username:     strings.ToLower(strings.TrimSpace(req.Username)),
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: string(hash),
			Role:         role,
			Permissions:  permissions,
			IsActive:     isActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if isDuplicateKey(err) {
				respondWithError(c, http.StatusBadRequest, "email or username already in use")
				return
			}
			log.Error("user insert failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		user.ID = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, user)
	}
}

type updateUserRequest struct {
	Username    *string             `json:"username"`
	Email       *string             `json:"email"`
	Password    *string             `json:"password"`
	Role        *string             `json:"role"`
	Permissions *models.Permissions `json:"permissions"`
	IsActive    *bool               `json:"isActive"`
}

func UpdateUser(db *mongo.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "users"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		updateSet := bson.M{}

		if req.Username != nil {
			username := strings.ToLower(strings.TrimSpace(*req.Username))
			if username == "" {
				respondWithError(c, http.StatusBadRequest, "username required")
				return
			}
			updateSet["username"] = username
		}
		if req.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*req.Email))
			if email == "" {
				respondWithError(c, http.StatusBadRequest, "email required")
				return
			}
			updateSet["email"] = email
		}
		if req.Password != nil {
			if len(*req.Password) < 6 {
				respondWithError(c, http.StatusBadRequest, "password too short")
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, "password hashing failed")
				return
			}
			updateSet["passwordHash"] = string(hash)
		}
		if req.Role != nil {
			role := strings.TrimSpace(*req.Role)
			if role != models.RoleAdmin && role != models.RoleViewer {
				respondWithError(c, http.StatusBadRequest, "invalid role")
				return
			}
			updateSet["role"] = role
		}
		if req.Permissions != nil {
			updateSet["permissions"] = *req.Permissions
		}
		if req.IsActive != nil {
			updateSet["isActive"] = *req.IsActive
		}

		if len(updateSet) == 0 {
			respondWithError(c, http.StatusBadRequest, "no fields to update")
			return
		}
		updateSet["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.User
		err := db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			if isDuplicateKey(err) {
				respondWithError(c, http.StatusBadRequest, "email or username already in use")
				return
			}
			log.Error("user update failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requirePermission(c, "users")
		if !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		if user.ID == id {
			respondWithError(c, http.StatusBadRequest, "cannot delete your own account")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, "user not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}
