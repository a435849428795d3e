package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetStatus describes the availability of a fleet asset (helmet, battery
// pack, charger, phone mount and the like)
type AssetStatus string

// Asset statuses
const (
	AssetStatusAvailable AssetStatus = "available"
	AssetStatusAssigned  AssetStatus = "assigned"
	AssetStatusRetired   AssetStatus = "retired"
)

// Asset holds the structure for the assets collection in mongo
type Asset struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssetTag     string             `bson:"assetTag" json:"assetTag"`
	Name         string             `bson:"name" json:"name"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	SerialNumber string             `bson:"serialNumber,omitempty" json:"serialNumber,omitempty"`
	Status       AssetStatus        `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
