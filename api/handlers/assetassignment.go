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

// AssetAssignment exported for testing purposes
type AssetAssignment struct {
	DB      databases.AssetAssignmentDatabase
	AssetDB databases.AssetDatabase
}

type assignAssetRequest struct {
	AssetID           string                `json:"assetId"`
	UserID            string                `json:"userId"`
	VehicleID         string                `json:"vehicleId"`
	AssignedByID      string                `json:"assignedById"`
	AssignmentType    models.AssignmentType `json:"assignmentType"`
	AssignmentReason  string                `json:"assignmentReason"`
	AssignmentPurpose string                `json:"assignmentPurpose"`
	ExpectedReturn    string                `json:"expectedReturnDate"`
	Condition         models.AssetCondition `json:"assetConditionAtAssignment"`
	Notes             string                `json:"notes"`
}

// validate returns a field-keyed error map. An empty map means the request is
// acceptable. All fields are checked in one pass so the form can surface every
// problem at once.
func (req assignAssetRequest) validate(today time.Time) map[string]string {
	errs := map[string]string{}
	if req.AssetID == "" {
		errs["assetId"] = "assetId is required"
	}
	if req.UserID == "" {
		errs["userId"] = "userId is required"
	}
	if !req.AssignmentType.Valid() {
		errs["assignmentType"] = "assignmentType must be one of user_only, vehicle_specific, temporary"
	}
	if req.AssignmentType == models.AssignmentTypeVehicleSpecific && req.VehicleID == "" {
		errs["vehicleId"] = "vehicleId is required for vehicle_specific assignments"
	}
	if req.AssignmentReason == "" {
		errs["assignmentReason"] = "assignmentReason is required"
	}
	if req.AssignmentPurpose == "" {
		errs["assignmentPurpose"] = "assignmentPurpose is required"
	}
	if req.Condition.Description == "" {
		errs["assetConditionAtAssignment"] = "asset condition description is required"
	}
	if req.ExpectedReturn == "" {
		errs["expectedReturnDate"] = "expectedReturnDate is required"
	} else if ret, err := time.Parse(time.RFC3339, req.ExpectedReturn); err != nil {
		errs["expectedReturnDate"] = "expectedReturnDate must be an RFC 3339 timestamp"
	} else {
		startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		if ret.Before(startOfToday) {
			errs["expectedReturnDate"] = "expectedReturnDate cannot be in the past"
		}
	}
	return errs
}

// AssignAssetHandler creates a new asset assignment in pending status
func (aa AssetAssignment) AssignAssetHandler(w http.ResponseWriter, r *http.Request) {
	var req assignAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	// validation failures never reach the database
	if errs := req.validate(time.Now()); len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ValidationErrorResponse{Errors: errs})
		return
	}

	assetID, err := primitive.ObjectIDFromHex(req.AssetID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	asset, err := aa.AssetDB.FindOne(r.Context(), bson.M{"_id": assetID})
	if err != nil {
		config.ErrorStatus("failed to get asset by ID", http.StatusNotFound, w, err)
		return
	}
	if asset.Status != models.AssetStatusAvailable {
		config.ErrorStatus("asset is not available", http.StatusConflict, w, fmt.Errorf("asset %s has status %s", asset.AssetTag, asset.Status))
		return
	}

	expectedReturn, err := time.Parse(time.RFC3339, req.ExpectedReturn)
	if err != nil {
		config.ErrorStatus("failed to parse expectedReturnDate", http.StatusBadRequest, w, err)
		return
	}

	var vehicleID *primitive.ObjectID
	if req.VehicleID != "" {
		vID, err := primitive.ObjectIDFromHex(req.VehicleID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		vehicleID = &vID
	}

	assignedBy := userID
	if req.AssignedByID != "" {
		if id, err := primitive.ObjectIDFromHex(req.AssignedByID); err == nil {
			assignedBy = id
		}
	}

	now := time.Now()
	assignment := models.AssetAssignment{
		ID:                 primitive.NewObjectID(),
		AssetID:            assetID,
		UserID:             userID,
		VehicleID:          vehicleID,
		AssignedBy:         assignedBy,
		AssignmentType:     req.AssignmentType,
		AssignmentReason:   req.AssignmentReason,
		AssignmentPurpose:  req.AssignmentPurpose,
		ExpectedReturnDate: expectedReturn,
		ConditionAtAssign:  req.Condition,
		Status:             models.AssetAssignmentPending,
		Notes:              req.Notes,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := aa.DB.InsertOne(r.Context(), assignment); err != nil {
		config.ErrorStatus("failed to create asset assignment", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(assignment)
}

// ApproveAssignmentHandler moves a pending assignment to active and marks the asset assigned
func (aa AssetAssignment) ApproveAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	aa.reviewAssignment(w, r, models.AssetAssignmentActive)
}

// RejectAssignmentHandler moves a pending assignment to rejected
func (aa AssetAssignment) RejectAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	aa.reviewAssignment(w, r, models.AssetAssignmentRejected)
}

func (aa AssetAssignment) reviewAssignment(w http.ResponseWriter, r *http.Request, target models.AssetAssignmentStatus) {
	assignmentID := mux.Vars(r)["assignment_id"]

	aID, err := primitive.ObjectIDFromHex(assignmentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	assignment, err := aa.DB.FindOne(r.Context(), bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get asset assignment by ID", http.StatusNotFound, w, err)
		return
	}
	if assignment.Status != models.AssetAssignmentPending {
		config.ErrorStatus("assignment is not pending review", http.StatusConflict, w,
			fmt.Errorf("assignment %s has status %s", assignmentID, assignment.Status))
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		zap.S().Debugf("no review body for assignment %s: %v", assignmentID, err)
	}

	now := time.Now()
	set := bson.M{"assignmentStatus": target, "updatedAt": now}
	if body.Notes != "" {
		set["notes"] = body.Notes
	}
	if target == models.AssetAssignmentRejected {
		set["isActive"] = false
	}

	if _, err := aa.DB.UpdateOne(r.Context(), bson.M{"_id": aID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update asset assignment", http.StatusInternalServerError, w, err)
		return
	}

	if target == models.AssetAssignmentActive {
		if _, err := aa.AssetDB.UpdateOne(r.Context(), bson.M{"_id": assignment.AssetID},
			bson.M{"$set": bson.M{"status": models.AssetStatusAssigned, "updatedAt": now}}); err != nil {
			config.ErrorStatus("failed to update asset status", http.StatusInternalServerError, w, err)
			return
		}
	}

	updated, err := aa.DB.FindOne(r.Context(), bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get updated assignment", http.StatusInternalServerError, w, err)
		return
	}

	// tell the requesting user the outcome of their request
	sendNotificationToUser(assignment.UserID.Hex(), updated)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

type returnAssetRequest struct {
	ActualReturnDate  *time.Time             `json:"actualReturnDate"`
	ConditionAtReturn *models.AssetCondition `json:"assetConditionAtReturn"`
	Notes             string                 `json:"notes"`
}

// ReturnAssetHandler closes out an active assignment. When the client omits
// actualReturnDate the server stamps the current time.
func (aa AssetAssignment) ReturnAssetHandler(w http.ResponseWriter, r *http.Request) {
	assignmentID := mux.Vars(r)["assignment_id"]

	aID, err := primitive.ObjectIDFromHex(assignmentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req returnAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.ConditionAtReturn == nil || req.ConditionAtReturn.Description == "" {
		config.ErrorStatus("asset condition at return is required", http.StatusBadRequest, w,
			fmt.Errorf("missing assetConditionAtReturn.description"))
		return
	}

	assignment, err := aa.DB.FindOne(r.Context(), bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get asset assignment by ID", http.StatusNotFound, w, err)
		return
	}
	if assignment.Status != models.AssetAssignmentActive {
		config.ErrorStatus("assignment is not active", http.StatusConflict, w,
			fmt.Errorf("assignment %s has status %s", assignmentID, assignment.Status))
		return
	}

	now := time.Now()
	returnedAt := now
	if req.ActualReturnDate != nil {
		returnedAt = *req.ActualReturnDate
	}

	set := bson.M{
		"assignmentStatus":       models.AssetAssignmentReturned,
		"actualReturnDate":       returnedAt,
		"isActive":               false,
		"updatedAt":              now,
		"assetConditionAtReturn": req.ConditionAtReturn,
	}
	if req.Notes != "" {
		set["notes"] = req.Notes
	}

	if _, err := aa.DB.UpdateOne(r.Context(), bson.M{"_id": aID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("failed to update asset assignment", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := aa.AssetDB.UpdateOne(r.Context(), bson.M{"_id": assignment.AssetID},
		bson.M{"$set": bson.M{"status": models.AssetStatusAvailable, "updatedAt": now}}); err != nil {
		config.ErrorStatus("failed to update asset status", http.StatusInternalServerError, w, err)
		return
	}

	updated, err := aa.DB.FindOne(r.Context(), bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get updated assignment", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// AssetAssignmentHandler returns a paginated list of all asset assignments,
// newest first, with the computed overdue flag on each row
func (aa AssetAssignment) AssetAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	Page = getPage(Page, r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := aa.DB.FindPage(ctx, bson.M{}, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get asset assignments", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(assignmentViews(dbResp, time.Now()))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AssignmentsByUserIDHandler returns the asset assignments held by one user
func (aa AssetAssignment) AssignmentsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	Page = getPage(Page, r)

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := aa.DB.FindPage(ctx, bson.M{"userId": uID}, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get asset assignments by user id", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(assignmentViews(dbResp, time.Now()))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AssignmentsByVehicleIDHandler returns the asset assignments scoped to one vehicle
func (aa AssetAssignment) AssignmentsByVehicleIDHandler(w http.ResponseWriter, r *http.Request) {
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

	dbResp, err := aa.DB.FindPage(ctx, bson.M{"vehicleId": vID}, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get asset assignments by vehicle id", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(assignmentViews(dbResp, time.Now()))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StatisticsHandler returns aggregate assignment counts for the dashboard
func (aa AssetAssignment) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := aa.DB.Statistics(r.Context(), time.Now())
	if err != nil {
		config.ErrorStatus("failed to get asset assignment statistics", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

func assignmentViews(assignments []models.AssetAssignment, now time.Time) []models.AssetAssignmentView {
	views := make([]models.AssetAssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, models.AssetAssignmentView{AssetAssignment: a, Overdue: a.IsOverdue(now)})
	}
	return views
}
