package databases

//go generate: mockery --name SupervisorDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltride/fleet-api/models"
)

const supervisorName = "supervisors"

// SupervisorDatabase contains the methods to use with the supervisor database
type SupervisorDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Supervisor, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Supervisor, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
}

type supervisorDatabase struct {
	db DatabaseHelper
}

// NewSupervisorDatabase initializes a new instance of supervisor database with the provided db connection
func NewSupervisorDatabase(db DatabaseHelper) SupervisorDatabase {
	return &supervisorDatabase{
		db: db,
	}
}

func (c *supervisorDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Supervisor, error) {
	supervisor := &models.Supervisor{}
	err := c.db.Collection(supervisorName).FindOne(ctx, filter).Decode(&supervisor)
	if err != nil {
		return nil, err
	}
	return supervisor, nil
}

func (c *supervisorDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Supervisor, error) {
	var supervisors []models.Supervisor
	err := c.db.Collection(supervisorName).Find(ctx, filter, opts...).Decode(&supervisors)
	if err != nil {
		return nil, err
	}
	return supervisors, nil
}

func (c *supervisorDatabase) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	return c.db.Collection(supervisorName).InsertOne(ctx, document).Decode(), nil
}

func (c *supervisorDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(supervisorName).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount(), nil
}
