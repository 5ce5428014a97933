package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/middleware"
	"backend/internal/models"
)

func respondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// objectIDParam parses the :id route parameter. On failure it writes the
// 400 response itself and reports false.
func objectIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// requirePermission fetches the authenticated user and checks the
// capability for the named resource. Writes the 403 itself on failure.
func requirePermission(c *gin.Context, resource string) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, "unauthorized")
		return models.User{}, false
	}
	if !user.Can(resource) {
		respondWithError(c, http.StatusForbidden, "forbidden")
		return models.User{}, false
	}
	return user, true
}

// isAuthenticated reports whether the optional-auth middleware attached an
// identity to this request.
func isAuthenticated(c *gin.Context) bool {
	_, ok := middleware.CurrentUser(c)
	return ok
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
