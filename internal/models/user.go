package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Permissions is a fixed-shape capability map: one boolean per resource
// type. Admins bypass it entirely.
type Permissions struct {
	Services bool `bson:"services" json:"services"`
	Projects bool `bson:"projects" json:"projects"`
	Products bool `bson:"products" json:"products"`
	Orders   bool `bson:"orders" json:"orders"`
	Contacts bool `bson:"contacts" json:"contacts"`
	Users    bool `bson:"users" json:"users"`
}

// FullPermissions grants every capability. Assigned to admin accounts.
func FullPermissions() Permissions {
	return Permissions{
		Services: true,
		Projects: true,
		Products: true,
		Orders:   true,
		Contacts: true,
		Users:    true,
	}
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Permissions  Permissions        `bson:"permissions" json:"permissions"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Can reports whether the user may mutate the named resource collection.
func (u User) Can(resource string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	switch resource {
	case "services":
		return u.Permissions.Services
	case "projects":
		return u.Permissions.Projects
	case "products":
		return u.Permissions.Products
	case "orders":
		return u.Permissions.Orders
	case "contacts":
		return u.Permissions.Contacts
	case "users":
		return u.Permissions.Users
	default:
		return false
	}
}
