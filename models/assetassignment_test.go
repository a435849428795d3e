package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssetAssignmentIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	active := AssetAssignment{
		Status:             AssetAssignmentActive,
		ExpectedReturnDate: now.Add(-24 * time.Hour),
	}
	assert.True(t, active.IsOverdue(now))

	notYetDue := AssetAssignment{
		Status:             AssetAssignmentActive,
		ExpectedReturnDate: now.Add(24 * time.Hour),
	}
	assert.False(t, notYetDue.IsOverdue(now))
}

func TestAssetAssignmentIsOverdueOnlyWhileActive(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	pastDue := now.Add(-24 * time.Hour)

	for _, status := range []AssetAssignmentStatus{
		AssetAssignmentPending,
		AssetAssignmentApproved,
		AssetAssignmentRejected,
		AssetAssignmentReturned,
	} {
		a := AssetAssignment{Status: status, ExpectedReturnDate: pastDue}
		assert.False(t, a.IsOverdue(now), "status %s", status)
	}
}

func TestAssignmentTypeValid(t *testing.T) {
	assert.True(t, AssignmentTypeUserOnly.Valid())
	assert.True(t, AssignmentTypeVehicleSpecific.Valid())
	assert.True(t, AssignmentTypeTemporary.Valid())
	assert.False(t, AssignmentType("permanent").Valid())
	assert.False(t, AssignmentType("").Valid())
}
