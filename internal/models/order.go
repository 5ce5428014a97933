package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses lists every accepted status value. There is no transition
// graph: an authorized update may move an order between any two of these.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// OrderCustomer carries the contact details captured at checkout.
type OrderCustomer struct {
	FullName   string `bson:"fullName" json:"fullName"`
	Email      string `bson:"email" json:"email"`
	Phone      string `bson:"phone" json:"phone"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
}

// OrderItem is a snapshot of the catalog state at order time. It carries no
// live reference to the product document.
type OrderItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Category  string  `bson:"category,omitempty" json:"category,omitempty"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
}

// Order is the persisted order document. OrderNumber is generated once at
// creation and never regenerated. Total is the pre-tax amount as supplied by
// the caller; VAT is applied at invoice render time only.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`
	Customer    OrderCustomer      `bson:"customer" json:"customer"`
	Items       []OrderItem        `bson:"items" json:"items"`
	Total       float64            `bson:"total" json:"total"`
	Status      string             `bson:"status" json:"status"`
	Notes       string             `bson:"notes" json:"notes"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
