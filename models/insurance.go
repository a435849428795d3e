package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InsuranceDocument holds the structure for the insuranceDocuments collection
// in mongo. One document per policy per vehicle; the uploaded policy file
// lives in Cloudinary and only its URL is stored here.
type InsuranceDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID    primitive.ObjectID `bson:"vehicleId" json:"vehicleId"`
	PolicyNumber string             `bson:"policyNumber" json:"policyNumber"`
	Provider     string             `bson:"provider" json:"provider"`
	StartDate    time.Time          `bson:"startDate" json:"startDate"`
	ExpiryDate   time.Time          `bson:"expiryDate" json:"expiryDate"`
	DocumentURL  string             `bson:"documentUrl,omitempty" json:"documentUrl,omitempty"`
	UploadedBy   primitive.ObjectID `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	RemindedAt   *time.Time         `bson:"remindedAt,omitempty" json:"remindedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExpiresWithin reports whether the policy lapses inside the given window
func (d InsuranceDocument) ExpiresWithin(now time.Time, window time.Duration) bool {
	return d.ExpiryDate.After(now) && d.ExpiryDate.Before(now.Add(window))
}
