package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetAssignmentStatus tracks the lifecycle of one user's custody of an asset
type AssetAssignmentStatus string

// Asset assignment statuses
const (
	AssetAssignmentPending  AssetAssignmentStatus = "pending"
	AssetAssignmentApproved AssetAssignmentStatus = "approved"
	AssetAssignmentRejected AssetAssignmentStatus = "rejected"
	AssetAssignmentActive   AssetAssignmentStatus = "active"
	AssetAssignmentReturned AssetAssignmentStatus = "returned"
)

// AssignmentType scopes an asset assignment: to a user alone, to a user for a
// specific vehicle, or as a temporary loan
type AssignmentType string

// Assignment types
const (
	AssignmentTypeUserOnly        AssignmentType = "user_only"
	AssignmentTypeVehicleSpecific AssignmentType = "vehicle_specific"
	AssignmentTypeTemporary       AssignmentType = "temporary"
)

// Valid reports whether t is one of the known assignment types
func (t AssignmentType) Valid() bool {
	switch t {
	case AssignmentTypeUserOnly, AssignmentTypeVehicleSpecific, AssignmentTypeTemporary:
		return true
	}
	return false
}

// AssetCondition captures the reported condition of an asset at assignment or
// return time
type AssetCondition struct {
	Description string   `bson:"description" json:"description"`
	Media       []string `bson:"media,omitempty" json:"media,omitempty"`
}

// AssetAssignment holds the structure for the assetAssignments collection in
// mongo. One document represents one user's custody of one asset, optionally
// scoped to a vehicle.
type AssetAssignment struct {
	ID                 primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	AssetID            primitive.ObjectID    `bson:"assetId" json:"assetId"`
	UserID             primitive.ObjectID    `bson:"userId" json:"userId"`
	VehicleID          *primitive.ObjectID   `bson:"vehicleId,omitempty" json:"vehicleId,omitempty"`
	AssignedBy         primitive.ObjectID    `bson:"assignedBy" json:"assignedBy"`
	AssignmentType     AssignmentType        `bson:"assignmentType" json:"assignmentType"`
	AssignmentReason   string                `bson:"assignmentReason" json:"assignmentReason"`
	AssignmentPurpose  string                `bson:"assignmentPurpose" json:"assignmentPurpose"`
	ExpectedReturnDate time.Time             `bson:"expectedReturnDate" json:"expectedReturnDate"`
	ActualReturnDate   *time.Time            `bson:"actualReturnDate,omitempty" json:"actualReturnDate,omitempty"`
	ConditionAtAssign  AssetCondition        `bson:"assetConditionAtAssignment" json:"assetConditionAtAssignment"`
	ConditionAtReturn  *AssetCondition       `bson:"assetConditionAtReturn,omitempty" json:"assetConditionAtReturn,omitempty"`
	Status             AssetAssignmentStatus `bson:"assignmentStatus" json:"assignmentStatus"`
	Notes              string                `bson:"notes,omitempty" json:"notes,omitempty"`
	IsActive           bool                  `bson:"isActive" json:"isActive"`
	CreatedAt          time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// IsOverdue reports whether the assignment is past its expected return date
// while still active. Overdue is a display-only flag: it never mutates the
// stored assignmentStatus.
func (a AssetAssignment) IsOverdue(now time.Time) bool {
	return a.Status == AssetAssignmentActive && a.ExpectedReturnDate.Before(now)
}

// AssetAssignmentView is the list/detail response shape: the stored document
// plus the computed overdue flag
type AssetAssignmentView struct {
	AssetAssignment `bson:",inline"`
	Overdue         bool `json:"isOverdue"`
}

// AssetAssignmentStatistics aggregates assignment counts for the dashboard
type AssetAssignmentStatistics struct {
	Total    int64 `bson:"total" json:"total"`
	Pending  int64 `bson:"pending" json:"pending"`
	Approved int64 `bson:"approved" json:"approved"`
	Rejected int64 `bson:"rejected" json:"rejected"`
	Active   int64 `bson:"active" json:"active"`
	Returned int64 `bson:"returned" json:"returned"`
	Overdue  int64 `bson:"overdue" json:"overdue"`
}
