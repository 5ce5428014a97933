package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/middleware"
	"backend/internal/models"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a viewer account. The pre-insert existence check is a
// fast path for a friendly message; the unique indexes on email and
// username are the actual guard, so a concurrent duplicate surfaces as a
// conflict, never a crash.
func Register(db *mongo.Database, jwtSecret string, expiry time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "username, email and password are required")
			return
		}

		createUserAccount(c, db, req, models.RoleViewer, models.Permissions{}, jwtSecret, expiry, log)
	}
}

// CreateAdmin bootstraps the first admin account. Once an admin exists the
// route refuses with 403.
func CreateAdmin(db *mongo.Database, jwtSecret string, expiry time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "username, email and password are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusForbidden, "admin account already exists")
			return
		}

		createUserAccount(c, db, req, models.RoleAdmin, models.FullPermissions(), jwtSecret, expiry, log)
	}
}

func createUserAccount(
	c *gin.Context,
	db *mongo.Database,
	req registerRequest,
	role string,
	permissions models.Permissions,
	jwtSecret string,
	expiry time.Duration,
	log *zap.Logger,
) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": username}},
	})
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, "db error")
		return
	}
	if count > 0 {
		respondWithError(c, http.StatusBadRequest, "email or username already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, "password hashing failed")
		return
	}

	now := time.Now()
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Permissions:  permissions,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		if isDuplicateKey(err) {
			// Lost the race against a concurrent create with the same key.
			respondWithError(c, http.StatusBadRequest, "email or username already in use")
			return
		}
		log.Error("user insert failed", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "db error")
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	token, err := signToken(user, jwtSecret, expiry)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, "token generation failed")
		return
	}

	log.Info("user created",
		zap.String("username", user.Username),
		zap.String("role", user.Role))

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login authenticates by username or email.
func Login(db *mongo.Database, jwtSecret string, expiry time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "username and password are required")
			return
		}

		identifier := strings.ToLower(strings.TrimSpace(req.Username))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"$or": []bson.M{{"username": identifier}, {"email": identifier}},
			"isActive": true,
		}).Decode(&user)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondWithError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := signToken(user, jwtSecret, expiry)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "token generation failed")
			return
		}

		log.Info("user logged in", zap.String("username", user.Username))

		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}

// Me returns the authenticated user attached by the auth middleware.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func signToken(user models.User, secret string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.Hex(),
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
