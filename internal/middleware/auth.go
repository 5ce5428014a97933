package middleware

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

	"backend/internal/models"
)

const userContextKey = "currentUser"

// RequireAuth verifies the bearer token, resolves it to an active user and
// attaches the user to the request context. A missing signing secret is a
// configuration fault: it surfaces as a 500 naming the variable rather
// than aborting the server at startup.
func RequireAuth(db *mongo.Database, secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			log.Error("JWT_SECRET is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "JWT_SECRET is not configured"})
			return
		}

		user, ok := resolveUser(c, db, secret, log)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user identity when a valid token is present and
// silently continues otherwise. Used by catalog reads that reveal inactive
// items only to authenticated callers.
func OptionalAuth(db *mongo.Database, secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" {
			if user, ok := resolveUser(c, db, secret, log); ok {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by the middleware.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

func resolveUser(c *gin.Context, db *mongo.Database, secret string, log *zap.Logger) (models.User, bool) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		return models.User{}, false
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return models.User{}, false
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		log.Debug("token validation failed", zap.Error(err))
		return models.User{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, false
	}

	sub, _ := claims["sub"].(string)
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(sub))
	if err != nil {
		return models.User{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{
		"_id":      userID,
		"isActive": true,
	}).Decode(&user)
	if err != nil {
		return models.User{}, false
	}

	return user, true
}
