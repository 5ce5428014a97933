package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is a catalog entry on the public services page.
type Service struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Icon        string             `bson:"icon,omitempty" json:"icon,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Images      StringList         `bson:"images" json:"images"`
	Order       int                `bson:"order" json:"order"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
