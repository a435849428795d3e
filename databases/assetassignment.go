package databases

//go generate: mockery --name AssetAssignmentDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltride/fleet-api/models"
)

const assetAssignmentName = "assetAssignments"

// AssetAssignmentDatabase contains the methods to use with the asset assignment database
type AssetAssignmentDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.AssetAssignment, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AssetAssignment, error)
	FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.AssetAssignment, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Statistics(ctx context.Context, now time.Time) (*models.AssetAssignmentStatistics, error)
}

type assetAssignmentDatabase struct {
	db DatabaseHelper
}

// NewAssetAssignmentDatabase initializes a new instance of asset assignment database with the provided db connection
func NewAssetAssignmentDatabase(db DatabaseHelper) AssetAssignmentDatabase {
	return &assetAssignmentDatabase{
		db: db,
	}
}

func (c *assetAssignmentDatabase) FindOne(ctx context.Context, filter interface{}) (*models.AssetAssignment, error) {
	assignment := &models.AssetAssignment{}
	err := c.db.Collection(assetAssignmentName).FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (c *assetAssignmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AssetAssignment, error) {
	var assignments []models.AssetAssignment
	err := c.db.Collection(assetAssignmentName).Find(ctx, filter, opts...).Decode(&assignments)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (c *assetAssignmentDatabase) FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.AssetAssignment, error) {
	opts := newMongoPaginate(limit, page).getPaginatedOpts()
	opts.SetSort(map[string]interface{}{"createdAt": -1})
	return c.Find(ctx, filter, opts)
}

func (c *assetAssignmentDatabase) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	return c.db.Collection(assetAssignmentName).InsertOne(ctx, document).Decode(), nil
}

func (c *assetAssignmentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(assetAssignmentName).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount(), nil
}

func (c *assetAssignmentDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(assetAssignmentName).CountDocuments(ctx, filter)
}

// Statistics groups assignments by status server-side and adds the computed
// overdue count (active rows past their expected return date)
func (c *assetAssignmentDatabase) Statistics(ctx context.Context, now time.Time) (*models.AssetAssignmentStatistics, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$assignmentStatus", "count": bson.M{"$sum": 1}}},
	}
	cursor, err := c.db.Collection(assetAssignmentName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var grouped []struct {
		Status models.AssetAssignmentStatus `bson:"_id"`
		Count  int64                        `bson:"count"`
	}
	if err := cursor.Decode(&grouped); err != nil {
		return nil, err
	}

	stats := &models.AssetAssignmentStatistics{}
	for _, g := range grouped {
		stats.Total += g.Count
		switch g.Status {
		case models.AssetAssignmentPending:
			stats.Pending = g.Count
		case models.AssetAssignmentApproved:
			stats.Approved = g.Count
		case models.AssetAssignmentRejected:
			stats.Rejected = g.Count
		case models.AssetAssignmentActive:
			stats.Active = g.Count
		case models.AssetAssignmentReturned:
			stats.Returned = g.Count
		}
	}

	// overdue is never stored as a status, it is always computed from the
	// active rows
	overdue, err := c.CountDocuments(ctx, bson.M{
		"assignmentStatus":   models.AssetAssignmentActive,
		"expectedReturnDate": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, err
	}
	stats.Overdue = overdue

	return stats, nil
}
