package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rider holds the structure for the riders collection in mongo. Riders are the
// delivery/rental users a vehicle or asset can be handed to.
type Rider struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Phone          string             `bson:"phone" json:"phone"`
	Password       string             `bson:"password" json:"-"`
	EmployeeID     string             `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	Hub            string             `bson:"hub,omitempty" json:"hub,omitempty"`
	Active         bool               `bson:"active" json:"active"`
	StripeCustomer string             `bson:"stripeCustomer,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
