package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/voltride/fleet-api/api/handlers"
	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/databases/mocks"
	"github.com/voltride/fleet-api/models"
)

func TestVehicleAssignment_AssignValidationSkipsDatabase(t *testing.T) {
	// nil databases: any lookup would panic, so a passing test proves
	// validation rejects the request before touching storage
	va := handlers.VehicleAssignment{}

	req, err := http.NewRequest("POST", "/api/v1/vehicle-assignment/assign/admin",
		jsonBody(`{"riderId": "5fc51f58c72ff10004dca382", "vehicleCondition": {"description": "ok"}}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(va.AssignVehicleAdminHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := `{"response": "vehicleNumber is required, missing vehicleNumber"}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestVehicleAssignment_UpdateStatusRequiresMaintenanceDate(t *testing.T) {
	va := handlers.VehicleAssignment{}

	req, err := http.NewRequest("PUT", "/api/v1/vehicle-assignment/vehicle-status/5fc51f58c72ff10004dca382",
		jsonBody(`{"status": "maintenance"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(va.UpdateVehicleStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
}

func TestVehicleAssignment_UpdateStatusRequiresDamageDate(t *testing.T) {
	va := handlers.VehicleAssignment{}

	req, err := http.NewRequest("PUT", "/api/v1/vehicle-assignment/vehicle-status/5fc51f58c72ff10004dca382",
		jsonBody(`{"status": "damaged"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(va.UpdateVehicleStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
}

func TestVehicleAssignment_UpdateStatusRejectsIllegalTransition(t *testing.T) {
	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	// the active assignment is in maintenance; pending is only reachable
	// from assigned
	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.VehicleAssignment)
		(*arg).Status = models.AssignmentStatusMaintenance
		(*arg).IsActive = true
	}).Return(nil)
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "vehicleAssignments").Return(conn)

	va := handlers.VehicleAssignment{
		DB: databases.NewVehicleAssignmentDatabase(db),
	}

	req, err := http.NewRequest("PUT", "/api/v1/vehicle-assignment/vehicle-status/5fc51f58c72ff10004dca382",
		jsonBody(`{"status": "pending"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(va.UpdateVehicleStatusHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusUnprocessableEntity {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnprocessableEntity)
	}
}

func TestVehicleAssignment_UnassignRequiresVehicleID(t *testing.T) {
	va := handlers.VehicleAssignment{}

	req, err := http.NewRequest("PUT", "/api/v1/vehicle-assignment/unAssignVehical", jsonBody(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(va.UnassignVehicleHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := `{"response": "vehichleId is required, missing vehichleId"}`
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestVehicleAssignment_StatusOptionsNoActiveAssignment(t *testing.T) {
	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "vehicleAssignments").Return(conn)

	va := handlers.VehicleAssignment{
		DB: databases.NewVehicleAssignmentDatabase(db),
	}

	req, err := http.NewRequest("GET", "/api/v1/vehicle-assignment/status-options/5fc51f58c72ff10004dca382", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(va.StatusOptionsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var resp struct {
		HasActiveAssignment bool                  `json:"hasActiveAssignment"`
		Options             []models.StatusOption `json:"options"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.False(t, resp.HasActiveAssignment)
	assert.NotNil(t, resp.Options)
	assert.Empty(t, resp.Options)
}

func TestVehicleAssignment_StatusOptionsFromAssigned(t *testing.T) {
	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.VehicleAssignment)
		(*arg).Status = models.AssignmentStatusAssigned
		(*arg).IsActive = true
	}).Return(nil)
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "vehicleAssignments").Return(conn)

	va := handlers.VehicleAssignment{
		DB: databases.NewVehicleAssignmentDatabase(db),
	}

	req, err := http.NewRequest("GET", "/api/v1/vehicle-assignment/status-options/5fc51f58c72ff10004dca382", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": "5fc51f58c72ff10004dca382"})
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(va.StatusOptionsHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var resp struct {
		HasActiveAssignment bool                  `json:"hasActiveAssignment"`
		Options             []models.StatusOption `json:"options"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	assert.True(t, resp.HasActiveAssignment)

	values := make([]models.VehicleAssignmentStatus, 0, len(resp.Options))
	for _, o := range resp.Options {
		values = append(values, o.Value)
	}
	assert.Equal(t, []models.VehicleAssignmentStatus{
		models.AssignmentStatusReturned,
		models.AssignmentStatusMaintenance,
		models.AssignmentStatusDamaged,
		models.AssignmentStatusPending,
	}, values)
}

func TestVehicleAssignment_AssignThenRiderHistory(t *testing.T) {
	var db databases.DatabaseHelper
	db = &MockDatabaseHelper{}

	vehicleID := primitive.NewObjectID()
	riderID := primitive.NewObjectID()

	vehicleConn := &mocks.CollectionHelper{}
	riderConn := &mocks.CollectionHelper{}
	assignConn := &mocks.CollectionHelper{}
	vehicleResult := &mocks.SingleResultHelper{}
	riderResult := &mocks.SingleResultHelper{}
	insertResult := &mocks.InsertOneResultHelper{}
	updateResult := &mocks.UpdateResultHelper{}
	cursor := &mocks.CursorHelper{}

	vehicleResult.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Vehicle)
		(*arg).ID = vehicleID
		(*arg).VehicleNumber = "EV-042"
		(*arg).Status = models.VehicleStatusAvailable
	}).Return(nil)
	vehicleConn.On("FindOne", mock.Anything, mock.Anything).Return(vehicleResult)
	updateResult.On("MatchedCount").Return(int64(1))
	vehicleConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)

	riderResult.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Rider)
		(*arg).ID = riderID
		(*arg).Name = "Asha Kumar"
	}).Return(nil)
	riderConn.On("FindOne", mock.Anything, mock.Anything).Return(riderResult)

	// the history lookup returns whatever the assign step persisted
	var inserted models.VehicleAssignment
	insertResult.On("Decode").Return(nil)
	assignConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	assignConn.On("InsertOne", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(models.VehicleAssignment)
	}).Return(insertResult)
	cursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.VehicleAssignment)
		*arg = append(*arg, inserted)
	}).Return(nil)
	assignConn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor)

	db.(*MockDatabaseHelper).On("Collection", "vehicles").Return(vehicleConn)
	db.(*MockDatabaseHelper).On("Collection", "riders").Return(riderConn)
	db.(*MockDatabaseHelper).On("Collection", "vehicleAssignments").Return(assignConn)

	va := handlers.VehicleAssignment{
		DB:        databases.NewVehicleAssignmentDatabase(db),
		VehicleDB: databases.NewVehicleDatabase(db),
		RiderDB:   databases.NewRiderDatabase(db),
	}

	body := fmt.Sprintf(`{"vehicleNumber": "EV-042", "riderId": %q, "vehicleCondition": {"description": "full charge"}}`, riderID.Hex())
	req, err := http.NewRequest("POST", "/api/v1/vehicle-assignment/assign/admin", jsonBody(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()
	http.HandlerFunc(va.AssignVehicleAdminHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	histReq, err := http.NewRequest("GET", "/api/v1/vehicle-assignment/rider/"+riderID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	histReq = mux.SetURLVars(histReq, map[string]string{"user_id": riderID.Hex()})
	histReq.Header.Set("Authorization", "Bearer abc123")

	histRR := httptest.NewRecorder()
	http.HandlerFunc(va.AssignmentsByRiderIDHandler).ServeHTTP(histRR, histReq)

	if status := histRR.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var history []models.VehicleAssignment
	if err := json.Unmarshal(histRR.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	assert.Len(t, history, 1)
	assert.Equal(t, models.AssignmentStatusAssigned, history[0].Status)
	assert.True(t, history[0].IsActive)
	assert.Equal(t, vehicleID, history[0].VehicleID)
}

func TestVehicleAssignment_ReturnClosesAssignment(t *testing.T) {
	var db databases.DatabaseHelper
	db = &MockDatabaseHelper{}

	vehicleID := primitive.NewObjectID()
	assignmentID := primitive.NewObjectID()

	assignConn := &mocks.CollectionHelper{}
	vehicleConn := &mocks.CollectionHelper{}
	singleResult := &mocks.SingleResultHelper{}
	updateResult := &mocks.UpdateResultHelper{}

	// the first lookup finds the active assignment, the second returns the
	// row as the update left it
	var assignUpdate, vehicleUpdate interface{}
	lookups := 0
	singleResult.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.VehicleAssignment)
		(*arg).ID = assignmentID
		(*arg).VehicleID = vehicleID
		if lookups == 0 {
			(*arg).Status = models.AssignmentStatusAssigned
			(*arg).IsActive = true
		} else {
			set := assignUpdate.(bson.M)["$set"].(bson.M)
			(*arg).Status = set["vehicleAssignmentStatus"].(models.VehicleAssignmentStatus)
			(*arg).IsActive = set["isActive"].(bool)
			returnDate := set["returnDate"].(time.Time)
			(*arg).ReturnDate = &returnDate
		}
		lookups++
	}).Return(nil)
	assignConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)

	updateResult.On("MatchedCount").Return(int64(1))
	assignConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		assignUpdate = args.Get(2)
	}).Return(updateResult, nil)
	vehicleConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		vehicleUpdate = args.Get(2)
	}).Return(updateResult, nil)

	db.(*MockDatabaseHelper).On("Collection", "vehicleAssignments").Return(assignConn)
	db.(*MockDatabaseHelper).On("Collection", "vehicles").Return(vehicleConn)

	va := handlers.VehicleAssignment{
		DB:        databases.NewVehicleAssignmentDatabase(db),
		VehicleDB: databases.NewVehicleDatabase(db),
	}

	req, err := http.NewRequest("PUT", "/api/v1/vehicle-assignment/vehicle-status/"+vehicleID.Hex(),
		jsonBody(`{"status": "returned"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"vehicle_id": vehicleID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	rr := httptest.NewRecorder()

	before := time.Now()
	http.HandlerFunc(va.UpdateVehicleStatusHandler).ServeHTTP(rr, req)
	after := time.Now()

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var updated models.VehicleAssignment
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, models.AssignmentStatusReturned, updated.Status)
	assert.False(t, updated.IsActive)
	if assert.NotNil(t, updated.ReturnDate) {
		assert.False(t, updated.ReturnDate.Before(before.Add(-5*time.Second)))
		assert.False(t, updated.ReturnDate.After(after.Add(5*time.Second)))
	}

	vehicleSet := vehicleUpdate.(bson.M)["$set"].(bson.M)
	assert.Equal(t, models.VehicleStatusAvailable, vehicleSet["status"])
}
