package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/voltride/fleet-api/config"
	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/models"
)

// Insurance exported for testing purposes
type Insurance struct {
	DB        databases.InsuranceDatabase
	VehicleDB databases.VehicleDatabase
}

type createInsuranceRequest struct {
	VehicleID    string     `json:"vehicleId"`
	PolicyNumber string     `json:"policyNumber"`
	Provider     string     `json:"provider"`
	StartDate    *time.Time `json:"startDate"`
	ExpiryDate   *time.Time `json:"expiryDate"`
	// Document is a URL or base64 data URI; when set it is pushed to
	// Cloudinary and only the hosted URL is stored
	Document     string `json:"document"`
	UploadedByID string `json:"uploadedById"`
}

// CreateInsuranceHandler records an insurance policy for a vehicle, uploading
// the policy document to Cloudinary when one is supplied
func (i Insurance) CreateInsuranceHandler(w http.ResponseWriter, r *http.Request) {
	var req createInsuranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.VehicleID == "" || req.PolicyNumber == "" || req.Provider == "" {
		config.ErrorStatus("vehicleId, policyNumber and provider are required", http.StatusBadRequest, w, fmt.Errorf("missing required fields"))
		return
	}
	if req.StartDate == nil || req.ExpiryDate == nil {
		config.ErrorStatus("startDate and expiryDate are required", http.StatusBadRequest, w, fmt.Errorf("missing policy dates"))
		return
	}
	if !req.ExpiryDate.After(*req.StartDate) {
		config.ErrorStatus("expiryDate must be after startDate", http.StatusBadRequest, w, fmt.Errorf("policy interval is empty"))
		return
	}

	vID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	if _, err := i.VehicleDB.FindOne(r.Context(), bson.M{"_id": vID}); err != nil {
		config.ErrorStatus("failed to get vehicle by ID", http.StatusNotFound, w, err)
		return
	}

	documentURL := ""
	if req.Document != "" {
		documentURL, err = uploadPolicyDocument(r, req.Document, req.PolicyNumber)
		if err != nil {
			config.ErrorStatus("failed to upload policy document", http.StatusInternalServerError, w, err)
			return
		}
	}

	var uploadedBy primitive.ObjectID
	if req.UploadedByID != "" {
		if id, err := primitive.ObjectIDFromHex(req.UploadedByID); err == nil {
			uploadedBy = id
		}
	}

	now := time.Now()
	doc := models.InsuranceDocument{
		ID:           primitive.NewObjectID(),
		VehicleID:    vID,
		PolicyNumber: req.PolicyNumber,
		Provider:     req.Provider,
		StartDate:    *req.StartDate,
		ExpiryDate:   *req.ExpiryDate,
		DocumentURL:  documentURL,
		UploadedBy:   uploadedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := i.DB.InsertOne(r.Context(), doc); err != nil {
		config.ErrorStatus("failed to create insurance document", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

func uploadPolicyDocument(r *http.Request, document, policyNumber string) (string, error) {
	// cloudinary.New reads CLOUDINARY_URL from the environment
	cld, err := cloudinary.New()
	if err != nil {
		return "", err
	}
	resp, err := cld.Upload.Upload(r.Context(), document, uploader.UploadParams{
		Folder:   "insurance-documents",
		PublicID: policyNumber,
	})
	if err != nil {
		return "", err
	}
	zap.S().Debugf("uploaded policy document %s to %s", policyNumber, resp.SecureURL)
	return resp.SecureURL, nil
}

// InsuranceByVehicleIDHandler returns all insurance documents for a vehicle
func (i Insurance) InsuranceByVehicleIDHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	vID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := i.DB.Find(r.Context(), bson.M{"vehicleId": vID})
	if err != nil {
		config.ErrorStatus("failed to get insurance documents by vehicle id", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.InsuranceDocument{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ExpiringInsuranceHandler returns policies lapsing within the next N days
// (query parameter days, default 30)
func (i Insurance) ExpiringInsuranceHandler(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 {
			config.ErrorStatus("days must be a positive integer", http.StatusBadRequest, w, fmt.Errorf("invalid days %q", d))
			return
		}
		days = parsed
	}

	now := time.Now()
	dbResp, err := i.DB.Find(r.Context(), bson.M{
		"expiryDate": bson.M{
			"$gt": now,
			"$lt": now.Add(time.Duration(days) * 24 * time.Hour),
		},
	})
	if err != nil {
		config.ErrorStatus("failed to get expiring insurance documents", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.InsuranceDocument{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
