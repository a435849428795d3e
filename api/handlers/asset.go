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

	"github.com/voltride/fleet-api/config"
	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/models"
)

// Asset exported for testing purposes
type Asset struct {
	DB databases.AssetDatabase
}

type createAssetRequest struct {
	AssetTag     string `json:"assetTag"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	SerialNumber string `json:"serialNumber"`
}

// CreateAssetHandler registers a new asset in available status
func (a Asset) CreateAssetHandler(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.AssetTag == "" {
		config.ErrorStatus("assetTag is required", http.StatusBadRequest, w, fmt.Errorf("missing assetTag"))
		return
	}
	if req.Name == "" {
		config.ErrorStatus("name is required", http.StatusBadRequest, w, fmt.Errorf("missing name"))
		return
	}

	if existing, err := a.DB.FindOne(r.Context(), bson.M{"assetTag": req.AssetTag}); err == nil && existing != nil {
		config.ErrorStatus("asset already exists", http.StatusConflict, w, fmt.Errorf("assetTag %s is taken", req.AssetTag))
		return
	}

	now := time.Now()
	asset := models.Asset{
		ID:           primitive.NewObjectID(),
		AssetTag:     req.AssetTag,
		Name:         req.Name,
		Category:     req.Category,
		SerialNumber: req.SerialNumber,
		Status:       models.AssetStatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := a.DB.InsertOne(r.Context(), asset); err != nil {
		config.ErrorStatus("failed to create asset", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(asset)
}

// AssetByIDHandler returns an asset by ID
func (a Asset) AssetByIDHandler(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["asset_id"]

	aID, err := primitive.ObjectIDFromHex(assetID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := a.DB.FindOne(r.Context(), bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get asset by ID", http.StatusNotFound, w, err)
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

// AssetHandler returns a paginated list of assets, optionally filtered by status
func (a Asset) AssetHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	Page = getPage(Page, r)

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	dbResp, err := a.DB.FindPage(context.TODO(), filter, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get assets", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Asset{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
