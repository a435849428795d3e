package databases

//go generate: mockery --name RiderDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltride/fleet-api/models"
)

const riderName = "riders"

// RiderDatabase contains the methods to use with the rider database
type RiderDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Rider, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Rider, error)
	FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Rider, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
}

type riderDatabase struct {
	db DatabaseHelper
}

// NewRiderDatabase initializes a new instance of rider database with the provided db connection
func NewRiderDatabase(db DatabaseHelper) RiderDatabase {
	return &riderDatabase{
		db: db,
	}
}

func (c *riderDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Rider, error) {
	rider := &models.Rider{}
	err := c.db.Collection(riderName).FindOne(ctx, filter).Decode(&rider)
	if err != nil {
		return nil, err
	}
	return rider, nil
}

func (c *riderDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Rider, error) {
	var riders []models.Rider
	err := c.db.Collection(riderName).Find(ctx, filter, opts...).Decode(&riders)
	if err != nil {
		return nil, err
	}
	return riders, nil
}

func (c *riderDatabase) FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Rider, error) {
	return c.Find(ctx, filter, newMongoPaginate(limit, page).getPaginatedOpts())
}

func (c *riderDatabase) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	return c.db.Collection(riderName).InsertOne(ctx, document).Decode(), nil
}

func (c *riderDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(riderName).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount(), nil
}
