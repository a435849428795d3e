package databases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/databases/mocks"
	"github.com/voltride/fleet-api/models"
)

// statusBucket mirrors the anonymous row type Statistics decodes its $group
// results into
type statusBucket = struct {
	Status models.AssetAssignmentStatus `bson:"_id"`
	Count  int64                        `bson:"count"`
}

func TestAssetAssignmentStatisticsComputesOverdue(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	// a stray stored "overdue" status must not feed the overdue figure,
	// overdue is always computed from the active rows
	cursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		rows := args.Get(0).(*[]statusBucket)
		*rows = append(*rows,
			statusBucket{Status: models.AssetAssignmentActive, Count: 3},
			statusBucket{Status: models.AssetAssignmentPending, Count: 1},
			statusBucket{Status: "overdue", Count: 5},
		)
	}).Return(nil)
	conn.On("Aggregate", mock.Anything, mock.Anything).Return(cursor, nil)
	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(2), nil)
	dbHelper.On("Collection", "assetAssignments").Return(conn)

	db := databases.NewAssetAssignmentDatabase(dbHelper)

	stats, err := db.Statistics(context.Background(), time.Now())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.Active)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(2), stats.Overdue)
	assert.Equal(t, int64(9), stats.Total)
}
