package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltride/fleet-api/config"
	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/models"
)

// Rider exported for testing purposes
type Rider struct {
	DB databases.RiderDatabase
}

type createRiderRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	EmployeeID string `json:"employeeId"`
	Hub        string `json:"hub"`
}

// CreateRiderHandler registers a new rider with a bcrypt-hashed password
func (u Rider) CreateRiderHandler(w http.ResponseWriter, r *http.Request) {
	var req createRiderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		config.ErrorStatus("email and password are required", http.StatusBadRequest, w, fmt.Errorf("missing credentials"))
		return
	}

	if existing, err := u.DB.FindOne(r.Context(), bson.M{"email": req.Email}); err == nil && existing != nil {
		config.ErrorStatus("rider already exists", http.StatusConflict, w, fmt.Errorf("email %s is taken", req.Email))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()
	rider := models.Rider{
		ID:         primitive.NewObjectID(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   string(hash),
		EmployeeID: req.EmployeeID,
		Hub:        req.Hub,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := u.DB.InsertOne(r.Context(), rider); err != nil {
		config.ErrorStatus("failed to create rider", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rider)
}

// RiderByIDHandler returns a rider by ID
func (u Rider) RiderByIDHandler(w http.ResponseWriter, r *http.Request) {
	riderID := mux.Vars(r)["rider_id"]

	rID, err := primitive.ObjectIDFromHex(riderID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := u.DB.FindOne(r.Context(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get rider by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateRiderRequest struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	EmployeeID *string `json:"employeeId"`
	Hub        *string `json:"hub"`
	Active     *bool   `json:"active"`
}

// UpdateRiderHandler patches the mutable rider fields
func (u Rider) UpdateRiderHandler(w http.ResponseWriter, r *http.Request) {
	riderID := mux.Vars(r)["rider_id"]

	rID, err := primitive.ObjectIDFromHex(riderID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req updateRiderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.EmployeeID != nil {
		set["employeeId"] = *req.EmployeeID
	}
	if req.Hub != nil {
		set["hub"] = *req.Hub
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}

	matched, err := u.DB.UpdateOne(r.Context(), bson.M{"_id": rID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update rider", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("rider not found", http.StatusNotFound, w, fmt.Errorf("no rider with id %s", riderID))
		return
	}

	updated, err := u.DB.FindOne(r.Context(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get updated rider", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// RiderHandler returns a paginated list of riders
func (u Rider) RiderHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	Page = getPage(Page, r)

	dbResp, err := u.DB.FindPage(context.TODO(), bson.M{}, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get riders", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Rider{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RidersByNameSearchHandler returns riders whose name or employee ID matches
// the query, case-insensitively
func (u Rider) RidersByNameSearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		config.ErrorStatus("query parameter q is required", http.StatusBadRequest, w, fmt.Errorf("missing q"))
		return
	}

	pattern := primitive.Regex{Pattern: query, Options: "i"}
	dbResp, err := u.DB.Find(r.Context(), bson.M{"$or": []bson.M{
		{"name": pattern},
		{"employeeId": pattern},
	}})
	if err != nil {
		config.ErrorStatus("failed to search riders", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Rider{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
