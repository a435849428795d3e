package databases

//go generate: mockery --name InsuranceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltride/fleet-api/models"
)

const insuranceName = "insuranceDocuments"

// InsuranceDatabase contains the methods to use with the insurance document database
type InsuranceDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.InsuranceDocument, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.InsuranceDocument, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
}

type insuranceDatabase struct {
	db DatabaseHelper
}

// NewInsuranceDatabase initializes a new instance of insurance database with the provided db connection
func NewInsuranceDatabase(db DatabaseHelper) InsuranceDatabase {
	return &insuranceDatabase{
		db: db,
	}
}

func (c *insuranceDatabase) FindOne(ctx context.Context, filter interface{}) (*models.InsuranceDocument, error) {
	doc := &models.InsuranceDocument{}
	err := c.db.Collection(insuranceName).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *insuranceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.InsuranceDocument, error) {
	var docs []models.InsuranceDocument
	err := c.db.Collection(insuranceName).Find(ctx, filter, opts...).Decode(&docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *insuranceDatabase) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	return c.db.Collection(insuranceName).InsertOne(ctx, document).Decode(), nil
}

func (c *insuranceDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(insuranceName).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount(), nil
}
