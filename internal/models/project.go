package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a reference/portfolio entry.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Year        int                `bson:"year,omitempty" json:"year,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Images      StringList         `bson:"images" json:"images"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
