package databases

//go generate: mockery --name AssetDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltride/fleet-api/models"
)

const assetName = "assets"

// AssetDatabase contains the methods to use with the asset database
type AssetDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Asset, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Asset, error)
	FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Asset, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
}

type assetDatabase struct {
	db DatabaseHelper
}

// NewAssetDatabase initializes a new instance of asset database with the provided db connection
func NewAssetDatabase(db DatabaseHelper) AssetDatabase {
	return &assetDatabase{
		db: db,
	}
}

func (c *assetDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Asset, error) {
	asset := &models.Asset{}
	err := c.db.Collection(assetName).FindOne(ctx, filter).Decode(&asset)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (c *assetDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Asset, error) {
	var assets []models.Asset
	err := c.db.Collection(assetName).Find(ctx, filter, opts...).Decode(&assets)
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (c *assetDatabase) FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.Asset, error) {
	return c.Find(ctx, filter, newMongoPaginate(limit, page).getPaginatedOpts())
}

func (c *assetDatabase) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	return c.db.Collection(assetName).InsertOne(ctx, document).Decode(), nil
}

func (c *assetDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(assetName).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount(), nil
}
