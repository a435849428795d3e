package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextVehicleStatusOptionsFromAssigned(t *testing.T) {
	opts := NextVehicleStatusOptions(AssignmentStatusAssigned)

	values := make([]VehicleAssignmentStatus, 0, len(opts))
	for _, o := range opts {
		values = append(values, o.Value)
	}
	assert.Equal(t, []VehicleAssignmentStatus{
		AssignmentStatusReturned,
		AssignmentStatusMaintenance,
		AssignmentStatusDamaged,
		AssignmentStatusPending,
	}, values)
}

func TestNextVehicleStatusOptionsPendingOnlyFromAssigned(t *testing.T) {
	for _, current := range []VehicleAssignmentStatus{
		AssignmentStatusPending,
		AssignmentStatusMaintenance,
		AssignmentStatusDamaged,
	} {
		opts := NextVehicleStatusOptions(current)
		assert.Len(t, opts, 3, "current status %s", current)
		for _, o := range opts {
			assert.NotEqual(t, AssignmentStatusPending, o.Value, "current status %s", current)
		}
	}
}

func TestNextVehicleStatusOptionsTerminal(t *testing.T) {
	for _, current := range []VehicleAssignmentStatus{
		AssignmentStatusReturned,
		AssignmentStatusUnassigned,
		AssignmentStatusResolved,
	} {
		assert.Nil(t, NextVehicleStatusOptions(current), "current status %s", current)
	}
}

func TestNextVehicleStatusOptionsEmptyAndUnknown(t *testing.T) {
	assert.Nil(t, NextVehicleStatusOptions(""))
	assert.Nil(t, NextVehicleStatusOptions("bogus"))
}

func TestCanTransitionVehicleAssignmentResolved(t *testing.T) {
	assert.True(t, CanTransitionVehicleAssignment(AssignmentStatusMaintenance, AssignmentStatusResolved))
	assert.True(t, CanTransitionVehicleAssignment(AssignmentStatusDamaged, AssignmentStatusResolved))

	assert.False(t, CanTransitionVehicleAssignment(AssignmentStatusAssigned, AssignmentStatusResolved))
	assert.False(t, CanTransitionVehicleAssignment(AssignmentStatusPending, AssignmentStatusResolved))
	assert.False(t, CanTransitionVehicleAssignment(AssignmentStatusReturned, AssignmentStatusResolved))
}

func TestCanTransitionVehicleAssignmentFromTerminal(t *testing.T) {
	for _, from := range []VehicleAssignmentStatus{
		AssignmentStatusReturned,
		AssignmentStatusUnassigned,
	} {
		for _, to := range []VehicleAssignmentStatus{
			AssignmentStatusAssigned,
			AssignmentStatusMaintenance,
			AssignmentStatusDamaged,
			AssignmentStatusReturned,
		} {
			assert.False(t, CanTransitionVehicleAssignment(from, to), "%s -> %s", from, to)
		}
	}
}

func TestVehicleAssignmentStatusTerminal(t *testing.T) {
	assert.True(t, AssignmentStatusReturned.Terminal())
	assert.True(t, AssignmentStatusUnassigned.Terminal())
	assert.True(t, AssignmentStatusResolved.Terminal())

	assert.False(t, AssignmentStatusAssigned.Terminal())
	assert.False(t, AssignmentStatusPending.Terminal())
	assert.False(t, AssignmentStatusMaintenance.Terminal())
	assert.False(t, AssignmentStatusDamaged.Terminal())
}
