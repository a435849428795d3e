package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supervisor represents a back-office user for fleet management. Supervisors
// log into the admin panel and trigger the assignment workflows.
type Supervisor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Roles     []string           `bson:"roles" json:"roles"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
