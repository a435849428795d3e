package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleAssignmentStatus tracks the state of one rider's custody of one
// vehicle. The update flow may also submit "pending" while a return is under
// review, so it is part of the closed enum.
type VehicleAssignmentStatus string

// Vehicle assignment statuses
const (
	AssignmentStatusAssigned    VehicleAssignmentStatus = "assigned"
	AssignmentStatusPending     VehicleAssignmentStatus = "pending"
	AssignmentStatusReturned    VehicleAssignmentStatus = "returned"
	AssignmentStatusMaintenance VehicleAssignmentStatus = "maintenance"
	AssignmentStatusDamaged     VehicleAssignmentStatus = "damaged"
	AssignmentStatusUnassigned  VehicleAssignmentStatus = "unassigned"
	AssignmentStatusResolved    VehicleAssignmentStatus = "resolved"
)

// Valid reports whether s is one of the known assignment statuses
func (s VehicleAssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusAssigned, AssignmentStatusPending, AssignmentStatusReturned,
		AssignmentStatusMaintenance, AssignmentStatusDamaged, AssignmentStatusUnassigned,
		AssignmentStatusResolved:
		return true
	}
	return false
}

// Terminal reports whether the status closes out the assignment. A terminal
// assignment is kept as history and can never become active again.
func (s VehicleAssignmentStatus) Terminal() bool {
	switch s {
	case AssignmentStatusReturned, AssignmentStatusUnassigned, AssignmentStatusResolved:
		return true
	}
	return false
}

// StatusOption is one selectable target status for the status-update form
type StatusOption struct {
	Value VehicleAssignmentStatus `json:"value"`
	Label string                  `json:"label"`
}

// NextVehicleStatusOptions returns, in display order, the target statuses an
// operator may move the active assignment to. Returned, maintenance and
// damaged are always offered while an assignment is active; pending is offered
// only from assigned. A terminal or empty current status yields nil: with no
// active assignment the only action left is assigning a new vehicle.
func NextVehicleStatusOptions(current VehicleAssignmentStatus) []StatusOption {
	if current == "" || current.Terminal() || !current.Valid() {
		return nil
	}
	opts := []StatusOption{
		{Value: AssignmentStatusReturned, Label: "Returned"},
		{Value: AssignmentStatusMaintenance, Label: "Maintenance"},
		{Value: AssignmentStatusDamaged, Label: "Damaged"},
	}
	if current == AssignmentStatusAssigned {
		opts = append(opts, StatusOption{Value: AssignmentStatusPending, Label: "Pending"})
	}
	return opts
}

// CanTransitionVehicleAssignment reports whether an active assignment in
// status from may be moved to status to. Resolved is reachable only from
// maintenance and damaged; everything else follows the option list above.
func CanTransitionVehicleAssignment(from, to VehicleAssignmentStatus) bool {
	if to == AssignmentStatusResolved {
		return from == AssignmentStatusMaintenance || from == AssignmentStatusDamaged
	}
	for _, opt := range NextVehicleStatusOptions(from) {
		if opt.Value == to {
			return true
		}
	}
	return false
}

// VehicleCondition captures the reported condition of a vehicle at hand-over
// or return time, with optional media references (photo URLs)
type VehicleCondition struct {
	Description string   `bson:"description" json:"description"`
	Media       []string `bson:"media,omitempty" json:"media,omitempty"`
}

// VehicleAssignment holds the structure for the vehicleAssignments collection
// in mongo. One document represents one rider's custody of one vehicle over an
// interval. For a given vehicle at most one document has isActive == true;
// rows are never deleted, they are retained as history.
type VehicleAssignment struct {
	ID                     primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	VehicleID              primitive.ObjectID      `bson:"vehicleId" json:"vehicleId"`
	RiderID                *primitive.ObjectID     `bson:"riderId,omitempty" json:"riderId,omitempty"`
	AssignedBy             primitive.ObjectID      `bson:"assignedBy" json:"assignedBy"`
	AssignmentDate         time.Time               `bson:"assignmentDate" json:"assignmentDate"`
	ReturnDate             *time.Time              `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	MaintenanceDate        *time.Time              `bson:"maintenanceDate,omitempty" json:"maintenanceDate,omitempty"`
	DamageDate             *time.Time              `bson:"damageDate,omitempty" json:"damageDate,omitempty"`
	ResolvedAt             *time.Time              `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	Notes                  string                  `bson:"notes,omitempty" json:"notes,omitempty"`
	VehicleCondition       VehicleCondition        `bson:"vehicleCondition" json:"vehicleCondition"`
	ReturnVehicleCondition *VehicleCondition       `bson:"returnVehicleCondition,omitempty" json:"returnVehicleCondition,omitempty"`
	IsActive               bool                    `bson:"isActive" json:"isActive"`
	Status                 VehicleAssignmentStatus `bson:"vehicleAssignmentStatus" json:"vehicleAssignmentStatus"`
	IsSystemAssignment     bool                    `bson:"isSystemAssignment" json:"isSystemAssignment"`
	CreatedAt              time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time               `bson:"updatedAt" json:"updatedAt"`
}
