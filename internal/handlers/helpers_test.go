package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, isDuplicateKey(dup))

	assert.False(t, isDuplicateKey(nil))
	assert.False(t, isDuplicateKey(errors.New("connection reset")))
	assert.False(t, isDuplicateKey(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 121, Message: "document failed validation"}},
	}))
}

func TestDuplicateKeyMapsToConflictResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// The insert branch every create handler runs on a duplicate key.
	err := error(mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	})
	if isDuplicateKey(err) {
		respondWithError(c, http.StatusBadRequest, "order number already exists")
	} else {
		respondWithError(c, http.StatusInternalServerError, "db error")
	}

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "order number already exists")
}
