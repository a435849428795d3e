package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/voltride/fleet-api/config"
	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/qrpdf"
)

// QRSheet exported for testing purposes
type QRSheet struct {
	VehicleDB databases.VehicleDatabase
}

type qrSheetRequest struct {
	// VehicleIDs limits the sheet to the given vehicles; empty means the
	// whole fleet
	VehicleIDs []string `json:"vehicleIds"`
}

// GenerateQRSheetHandler renders a printable A4 sheet of vehicle QR codes and
// streams it back as a PDF download
func (q QRSheet) GenerateQRSheetHandler(w http.ResponseWriter, r *http.Request) {
	var req qrSheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	filter := bson.M{}
	if len(req.VehicleIDs) > 0 {
		ids := make([]primitive.ObjectID, 0, len(req.VehicleIDs))
		for _, raw := range req.VehicleIDs {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
				return
			}
			ids = append(ids, id)
		}
		filter["_id"] = bson.M{"$in": ids}
	}

	vehicles, err := q.VehicleDB.Find(r.Context(), filter)
	if err != nil {
		config.ErrorStatus("failed to get vehicles", http.StatusNotFound, w, err)
		return
	}
	if len(vehicles) == 0 {
		config.ErrorStatus("no vehicles to print", http.StatusNotFound, w, fmt.Errorf("empty vehicle selection"))
		return
	}

	items := make([]qrpdf.Item, 0, len(vehicles))
	for _, v := range vehicles {
		items = append(items, qrpdf.Item{VehicleNumber: v.VehicleNumber, Model: v.Model})
	}

	pdf, err := qrpdf.BuildSheet(items, func(percent float64) {
		zap.S().Debugf("qr sheet progress: %.0f%%", percent)
	})
	if err != nil {
		config.ErrorStatus("failed to build qr sheet", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="vehicle-qr-codes.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
