package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStatus describes where a vehicle sits in the fleet lifecycle. It is
// the field the detail screens use to gate which assignment actions are legal.
type VehicleStatus string

// Vehicle statuses
const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusAssigned    VehicleStatus = "assigned"
	VehicleStatusDamaged     VehicleStatus = "damaged"
	VehicleStatusLost        VehicleStatus = "lost"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

// Valid reports whether s is one of the known vehicle statuses
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusAssigned, VehicleStatusDamaged,
		VehicleStatusLost, VehicleStatusMaintenance:
		return true
	}
	return false
}

// Vehicle holds the structure for the vehicles collection in mongo
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleNumber   string             `bson:"vehicleNumber" json:"vehicleNumber"`
	Model           string             `bson:"model" json:"model"`
	Manufacturer    string             `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	ChassisNumber   string             `bson:"chassisNumber,omitempty" json:"chassisNumber,omitempty"`
	BatteryCapacity string             `bson:"batteryCapacity,omitempty" json:"batteryCapacity,omitempty"`
	Status          VehicleStatus      `bson:"status" json:"status"`
	Hub             string             `bson:"hub,omitempty" json:"hub,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
