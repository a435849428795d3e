package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/voltride/fleet-api/api"
	"github.com/voltride/fleet-api/config"
	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/models"
)

// VehicleAssignment exported for testing purposes
type VehicleAssignment struct {
	DB        databases.VehicleAssignmentDatabase
	VehicleDB databases.VehicleDatabase
	RiderDB   databases.RiderDatabase
}

type assignVehicleRequest struct {
	VehicleNumber    string                  `json:"vehicleNumber"`
	RiderID          string                  `json:"riderId"`
	AssignedByID     string                  `json:"assignedById"`
	VehicleCondition models.VehicleCondition `json:"vehicleCondition"`
	Notes            string                  `json:"notes"`
}

// AssignVehicleAdminHandler assigns a vehicle to a rider on behalf of an admin
func (va VehicleAssignment) AssignVehicleAdminHandler(w http.ResponseWriter, r *http.Request) {
	va.assignVehicle(w, r, true)
}

// AssignVehicleSelfHandler assigns a vehicle through the rider self-service flow
func (va VehicleAssignment) AssignVehicleSelfHandler(w http.ResponseWriter, r *http.Request) {
	va.assignVehicle(w, r, false)
}

func (va VehicleAssignment) assignVehicle(w http.ResponseWriter, r *http.Request, byAdmin bool) {
	var req assignVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	// reject known-invalid input before any database work
	if req.VehicleNumber == "" {
		config.ErrorStatus("vehicleNumber is required", http.StatusBadRequest, w, fmt.Errorf("missing vehicleNumber"))
		return
	}
	if req.RiderID == "" {
		config.ErrorStatus("riderId is required", http.StatusBadRequest, w, fmt.Errorf("missing riderId"))
		return
	}
	if req.VehicleCondition.Description == "" {
		config.ErrorStatus("vehicle condition description is required", http.StatusBadRequest, w, fmt.Errorf("missing vehicleCondition.description"))
		return
	}

	riderID, err := primitive.ObjectIDFromHex(req.RiderID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	vehicle, err := va.VehicleDB.FindOne(r.Context(), bson.M{"vehicleNumber": req.VehicleNumber})
	if err != nil {
		config.ErrorStatus("failed to get vehicle by number", http.StatusNotFound, w, err)
		return
	}
	rider, err := va.RiderDB.FindOne(r.Context(), bson.M{"_id": riderID})
	if err != nil {
		config.ErrorStatus("failed to get rider by ID", http.StatusNotFound, w, err)
		return
	}

	// at most one active assignment per vehicle
	active, err := va.DB.CountDocuments(r.Context(), bson.M{"vehicleId": vehicle.ID, "isActive": true})
	if err != nil {
		config.ErrorStatus("failed to count active assignments", http.StatusInternalServerError, w, err)
		return
	}
	if active > 0 {
		config.ErrorStatus("vehicle already has an active assignment", http.StatusConflict, w, fmt.Errorf("vehicle %s is currently assigned", req.VehicleNumber))
		return
	}
	if vehicle.Status != models.VehicleStatusAvailable {
		config.ErrorStatus("vehicle is not available", http.StatusConflict, w, fmt.Errorf("vehicle %s has status %s", req.VehicleNumber, vehicle.Status))
		return
	}

	assignedBy := rider.ID
	if req.AssignedByID != "" {
		if id, err := primitive.ObjectIDFromHex(req.AssignedByID); err == nil {
			assignedBy = id
		}
	}

	now := time.Now()
	assignment := models.VehicleAssignment{
		ID:                 primitive.NewObjectID(),
		VehicleID:          vehicle.ID,
		RiderID:            &rider.ID,
		AssignedBy:         assignedBy,
		AssignmentDate:     now,
		Notes:              req.Notes,
		VehicleCondition:   req.VehicleCondition,
		IsActive:           true,
		Status:             models.AssignmentStatusAssigned,
		IsSystemAssignment: byAdmin,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := va.DB.InsertOne(r.Context(), assignment); err != nil {
		config.ErrorStatus("failed to create vehicle assignment", http.StatusInternalServerError, w, err)
		return
	}

	if _, err := va.VehicleDB.UpdateOne(r.Context(), bson.M{"_id": vehicle.ID},
		bson.M{"$set": bson.M{"status": models.VehicleStatusAssigned, "updatedAt": now}}); err != nil {
		config.ErrorStatus("failed to update vehicle status", http.StatusInternalServerError, w, err)
		return
	}

	broadcastAssignmentEvent(AssignmentEvent{
		Type:      "vehicle_assigned",
		VehicleID: vehicle.ID.Hex(),
		RiderID:   rider.ID.Hex(),
		Status:    string(models.AssignmentStatusAssigned),
	})

	// return the created resource so clients can update their caches from the
	// mutation response instead of refetching after a guessed delay
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(assignment)
}

type updateVehicleStatusRequest struct {
	Status                 models.VehicleAssignmentStatus `json:"status"`
	Notes                  string                         `json:"notes"`
	ReturnVehicleCondition *models.VehicleCondition       `json:"returnVehicleCondition"`
	MaintenanceDate        *time.Time                     `json:"maintenanceDate"`
	DamageDate             *time.Time                     `json:"damageDate"`
}

// UpdateVehicleStatusHandler moves the vehicle's active assignment to a new status
func (va VehicleAssignment) UpdateVehicleStatusHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req updateVehicleStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if !req.Status.Valid() {
		config.ErrorStatus("invalid assignment status", http.StatusBadRequest, w, fmt.Errorf("unknown status %q", req.Status))
		return
	}
	if req.Status == models.AssignmentStatusMaintenance && req.MaintenanceDate == nil {
		config.ErrorStatus("maintenanceDate is required for maintenance status", http.StatusBadRequest, w, fmt.Errorf("missing maintenanceDate"))
		return
	}
	if req.Status == models.AssignmentStatusDamaged && req.DamageDate == nil {
		config.ErrorStatus("damageDate is required for damaged status", http.StatusBadRequest, w, fmt.Errorf("missing damageDate"))
		return
	}

	assignment, err := va.DB.FindOne(r.Context(), bson.M{"vehicleId": vID, "isActive": true})
	if err != nil {
		config.ErrorStatus("no active assignment for vehicle", http.StatusNotFound, w, err)
		return
	}

	if !models.CanTransitionVehicleAssignment(assignment.Status, req.Status) {
		config.ErrorStatus("illegal status transition", http.StatusUnprocessableEntity, w,
			fmt.Errorf("cannot move assignment from %s to %s", assignment.Status, req.Status))
		return
	}

	now := time.Now()
	set := bson.M{
		"vehicleAssignmentStatus": req.Status,
		"updatedAt":               now,
	}
	if req.Notes != "" {
		set["notes"] = req.Notes
	}
	if req.ReturnVehicleCondition != nil {
		set["returnVehicleCondition"] = req.ReturnVehicleCondition
	}

	vehicleStatus := models.VehicleStatusAssigned
	switch req.Status {
	case models.AssignmentStatusReturned:
		// returnDate is stamped server-side at the moment of the mutation
		set["returnDate"] = now
		set["isActive"] = false
		vehicleStatus = models.VehicleStatusAvailable
	case models.AssignmentStatusMaintenance:
		set["maintenanceDate"] = req.MaintenanceDate
		vehicleStatus = models.VehicleStatusMaintenance
	case models.AssignmentStatusDamaged:
		set["damageDate"] = req.DamageDate
		vehicleStatus = models.VehicleStatusDamaged
	case models.AssignmentStatusResolved:
		set["resolvedAt"] = now
		set["isActive"] = false
		vehicleStatus = models.VehicleStatusAvailable
	}

	if _, err := va.DB.UpdateOne(r.Context(), bson.M{"_id": assignment.ID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update assignment status", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := va.VehicleDB.UpdateOne(r.Context(), bson.M{"_id": vID},
		bson.M{"$set": bson.M{"status": vehicleStatus, "updatedAt": now}}); err != nil {
		config.ErrorStatus("failed to update vehicle status", http.StatusInternalServerError, w, err)
		return
	}

	updated, err := va.DB.FindOne(r.Context(), bson.M{"_id": assignment.ID})
	if err != nil {
		config.ErrorStatus("failed to get updated assignment", http.StatusInternalServerError, w, err)
		return
	}

	broadcastAssignmentEvent(AssignmentEvent{
		Type:      "vehicle_status_updated",
		VehicleID: vID.Hex(),
		Status:    string(req.Status),
	})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// unassignVehicleRequest carries the misspelled vehichleId key, which is a
// real contract quirk the admin panel depends on and must be preserved
// byte-for-byte
type unassignVehicleRequest struct {
	VehicleID              string                   `json:"vehichleId"`
	Notes                  string                   `json:"notes"`
	ReturnVehicleCondition *models.VehicleCondition `json:"returnVehicleCondition"`
}

// UnassignVehicleHandler clears the vehicle's active assignment and frees the vehicle
func (va VehicleAssignment) UnassignVehicleHandler(w http.ResponseWriter, r *http.Request) {
	var req unassignVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.VehicleID == "" {
		config.ErrorStatus("vehichleId is required", http.StatusBadRequest, w, fmt.Errorf("missing vehichleId"))
		return
	}
	vID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	assignment, err := va.DB.FindOne(r.Context(), bson.M{"vehicleId": vID, "isActive": true})
	if err != nil {
		config.ErrorStatus("no active assignment for vehicle", http.StatusNotFound, w, err)
		return
	}

	now := time.Now()
	set := bson.M{
		"vehicleAssignmentStatus": models.AssignmentStatusUnassigned,
		"isActive":                false,
		"returnDate":              now,
		"updatedAt":               now,
	}
	if req.Notes != "" {
		set["notes"] = req.Notes
	}
	if req.ReturnVehicleCondition != nil {
		set["returnVehicleCondition"] = req.ReturnVehicleCondition
	}

	if _, err := va.DB.UpdateOne(r.Context(), bson.M{"_id": assignment.ID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to unassign vehicle", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := va.VehicleDB.UpdateOne(r.Context(), bson.M{"_id": vID},
		bson.M{"$set": bson.M{"status": models.VehicleStatusAvailable, "updatedAt": now}}); err != nil {
		config.ErrorStatus("failed to update vehicle status", http.StatusInternalServerError, w, err)
		return
	}

	updated, err := va.DB.FindOne(r.Context(), bson.M{"_id": assignment.ID})
	if err != nil {
		config.ErrorStatus("failed to get updated assignment", http.StatusInternalServerError, w, err)
		return
	}

	broadcastAssignmentEvent(AssignmentEvent{
		Type:      "vehicle_unassigned",
		VehicleID: vID.Hex(),
		Status:    string(models.AssignmentStatusUnassigned),
	})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

type statusOptionsResponse struct {
	HasActiveAssignment bool                  `json:"hasActiveAssignment"`
	Options             []models.StatusOption `json:"options"`
}

// StatusOptionsHandler returns the target statuses the panel may offer for the
// vehicle's current active assignment
func (va VehicleAssignment) StatusOptionsHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	resp := statusOptionsResponse{Options: []models.StatusOption{}}
	assignment, err := va.DB.FindOne(r.Context(), bson.M{"vehicleId": vID, "isActive": true})
	if err == nil {
		resp.HasActiveAssignment = true
		resp.Options = models.NextVehicleStatusOptions(assignment.Status)
		if resp.Options == nil {
			resp.Options = []models.StatusOption{}
		}
	} else {
		zap.S().Debugf("no active assignment for vehicle %s: %v", vehicleID, err)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// AssignmentsByRiderIDHandler returns the assignment history for a rider, newest first
func (va VehicleAssignment) AssignmentsByRiderIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	Page = getPage(Page, r)

	rID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := va.DB.FindPage(ctx, bson.M{"riderId": rID}, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get assignments by rider id", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.VehicleAssignment{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AssignmentsByVehicleIDHandler returns the assignment history for a vehicle, newest first
func (va VehicleAssignment) AssignmentsByVehicleIDHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	Page = getPage(Page, r)

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := va.DB.FindPage(ctx, bson.M{"vehicleId": vID}, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get assignments by vehicle id", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.VehicleAssignment{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
