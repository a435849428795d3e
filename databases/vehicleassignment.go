package databases

//go generate: mockery --name VehicleAssignmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltride/fleet-api/models"
)

const vehicleAssignmentName = "vehicleAssignments"

// VehicleAssignmentDatabase contains the methods to use with the vehicle assignment database
type VehicleAssignmentDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.VehicleAssignment, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.VehicleAssignment, error)
	FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.VehicleAssignment, error)
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type vehicleAssignmentDatabase struct {
	db DatabaseHelper
}

// NewVehicleAssignmentDatabase initializes a new instance of vehicle assignment database with the provided db connection
func NewVehicleAssignmentDatabase(db DatabaseHelper) VehicleAssignmentDatabase {
	return &vehicleAssignmentDatabase{
		db: db,
	}
}

func (c *vehicleAssignmentDatabase) FindOne(ctx context.Context, filter interface{}) (*models.VehicleAssignment, error) {
	assignment := &models.VehicleAssignment{}
	err := c.db.Collection(vehicleAssignmentName).FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

func (c *vehicleAssignmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.VehicleAssignment, error) {
	var assignments []models.VehicleAssignment
	err := c.db.Collection(vehicleAssignmentName).Find(ctx, filter, opts...).Decode(&assignments)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (c *vehicleAssignmentDatabase) FindPage(ctx context.Context, filter interface{}, limit, page int) ([]models.VehicleAssignment, error) {
	opts := newMongoPaginate(limit, page).getPaginatedOpts()
	// history lists read newest first
	opts.SetSort(map[string]interface{}{"assignmentDate": -1})
	return c.Find(ctx, filter, opts)
}

func (c *vehicleAssignmentDatabase) InsertOne(ctx context.Context, document interface{}) (interface{}, error) {
	return c.db.Collection(vehicleAssignmentName).InsertOne(ctx, document).Decode(), nil
}

func (c *vehicleAssignmentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	res, err := c.db.Collection(vehicleAssignmentName).UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount(), nil
}

func (c *vehicleAssignmentDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(vehicleAssignmentName).CountDocuments(ctx, filter)
}
