package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered account. Users own products as sellers and
// appear in registration ledgers as bidders, always referenced by ID.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	FirstName    string        `bson:"first_name" json:"firstName" example:"Ada"`
	LastName     string        `bson:"last_name" json:"lastName" example:"Lovelace"`
	Email        string        `bson:"email" json:"email" example:"ada@example.com"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005703677Z"`
}
