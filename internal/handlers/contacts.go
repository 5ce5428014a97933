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

	"backend/internal/models"
)

type createContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// CreateContact stores a public contact-form message. This is the only
// open write on the contacts collection.
func CreateContact(db *mongo.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "name, email and message are required")
			return
		}

		contact := models.Contact{
			Name:      strings.TrimSpace(req.Name),
			Email:     strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:     strings.TrimSpace(req.Phone),
			Subject:   strings.TrimSpace(req.Subject),
			Message:   strings.TrimSpace(req.Message),
			Read:      false,
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("contacts").InsertOne(ctx, contact)
		if err != nil {
			log.Error("contact insert failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		contact.ID = res.InsertedID.(primitive.ObjectID)

		c.JSON(http.StatusCreated, contact)
	}
}

func ListContacts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "contacts"); !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("contacts").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		defer cursor.Close(ctx)

		contacts := make([]models.Contact, 0)
		if err := cursor.All(ctx, &contacts); err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, contacts)
	}
}

type updateContactRequest struct {
	Read *bool `json:"read"`
}

// UpdateContact toggles the read flag.
func UpdateContact(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "contacts"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		var req updateContactRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Read == nil {
			respondWithError(c, http.StatusBadRequest, "read flag required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Contact
		err := db.Collection("contacts").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"read": *req.Read}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "contact not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteContact(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "contacts"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("contacts").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, "contact not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "contact deleted"})
	}
}
