package handlers

import (
	"context"
	"errors"
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
	"backend/internal/orders"
)

type orderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" binding:"required"`
	Category  string  `json:"category"`
	Image     string  `json:"image"`
}

type orderCustomerRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode"`
}

type createOrderRequest struct {
	OrderNumber string               `json:"orderNumber"`
	Customer    orderCustomerRequest `json:"customer" binding:"required"`
	Items       []orderItemRequest   `json:"items" binding:"required"`
	Total       *float64             `json:"total" binding:"required"`
	Status      string               `json:"status"`
	Notes       string               `json:"notes"`
}

type updateOrderRequest struct {
	Customer *orderCustomerRequest `json:"customer"`
	Items    *[]orderItemRequest   `json:"items"`
	Total    *float64              `json:"total"`
	Status   *string               `json:"status"`
	Notes    *string               `json:"notes"`
}

// CreateOrder persists the order and returns it immediately. Rendering and
// emailing the invoice happens on the background pipeline; its outcome is
// observed only in logs, never in this response.
func CreateOrder(db *mongo.Database, pipeline *orders.Pipeline, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := buildOrder(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			if isDuplicateKey(err) {
				respondWithError(c, http.StatusBadRequest, "order number already exists")
				return
			}
			log.Error("order insert failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		order.ID = res.InsertedID.(primitive.ObjectID)

		log.Info("order created",
			zap.String("orderNumber", order.OrderNumber),
			zap.Float64("total", order.Total))

		// Fire and forget: the response does not wait for the invoice.
		pipeline.Enqueue(order)

		c.JSON(http.StatusCreated, order)
	}
}

// ListOrders returns every order, newest first. No pagination.
func ListOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "orders"); !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		defer cursor.Close(ctx)

		orderList := make([]models.Order, 0)
		if err := cursor.All(ctx, &orderList); err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, orderList)
	}
}

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrder patches an order. Status accepts any member of the fixed set
// with no transition graph. The order number is immutable and the invoice
// is never re-rendered or re-sent here.
func UpdateOrder(db *mongo.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "orders"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		var req updateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		updateSet := bson.M{}

		if req.Customer != nil {
			updateSet["customer"] = models.OrderCustomer(*req.Customer)
		}
		if req.Items != nil {
			items, err := buildItems(*req.Items)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, err.Error())
				return
			}
			updateSet["items"] = items
		}
		if req.Total != nil {
			if *req.Total < 0 {
				respondWithError(c, http.StatusBadRequest, "total must be zero or greater")
				return
			}
			updateSet["total"] = *req.Total
		}
		if req.Status != nil {
			status := strings.TrimSpace(*req.Status)
			if !models.IsValidOrderStatus(status) {
				respondWithError(c, http.StatusBadRequest, "invalid status")
				return
			}
			updateSet["status"] = status
		}
		if req.Notes != nil {
			updateSet["notes"] = strings.TrimSpace(*req.Notes)
		}

		if len(updateSet) == 0 {
			respondWithError(c, http.StatusBadRequest, "no fields to update")
			return
		}
		updateSet["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Order
		err := db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			log.Error("order update failed", zap.Error(err))
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requirePermission(c, "orders"); !ok {
			return
		}

		id, ok := objectIDParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, "order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

func buildOrder(req createOrderRequest) (models.Order, error) {
	items, err := buildItems(req.Items)
	if err != nil {
		return models.Order{}, err
	}

	if *req.Total < 0 {
		return models.Order{}, errors.New("total must be zero or greater")
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.OrderStatusPending
	}
	if !models.IsValidOrderStatus(status) {
		return models.Order{}, errors.New("invalid status")
	}

	now := time.Now()

	number := strings.TrimSpace(req.OrderNumber)
	if number == "" {
		number = orders.GenerateNumber(now)
	}

	return models.Order{
		OrderNumber: number,
		Customer:    models.OrderCustomer(req.Customer),
		Items:       items,
		Total:       *req.Total,
		Status:      status,
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func buildItems(reqs []orderItemRequest) ([]models.OrderItem, error) {
	if len(reqs) == 0 {
		return nil, errors.New("at least one item is required")
	}

	items := make([]models.OrderItem, 0, len(reqs))
	for _, item := range reqs {
		if item.Price < 0 {
			return nil, errors.New("item price must be zero or greater")
		}
		if item.Quantity < 1 {
			return nil, errors.New("item quantity must be at least 1")
		}
		items = append(items, models.OrderItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Name:      strings.TrimSpace(item.Name),
			Price:     item.Price,
			Quantity:  item.Quantity,
			Category:  strings.TrimSpace(item.Category),
			Image:     strings.TrimSpace(item.Image),
		})
	}
	return items, nil
}
