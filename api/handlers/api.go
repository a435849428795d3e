package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/voltride/fleet-api/api"
	"github.com/voltride/fleet-api/api/scheduler"
	"github.com/voltride/fleet-api/config"
	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	DB       databases.CollectionHelper
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{
		Supervisors: databases.NewSupervisorDatabase(a.dbHelper),
		Riders:      databases.NewRiderDatabase(a.dbHelper),
	}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	rider := Rider{DB: databases.NewRiderDatabase(a.dbHelper)}
	supervisor := Supervisor{DB: databases.NewSupervisorDatabase(a.dbHelper)}
	v := Vehicle{DB: databases.NewVehicleDatabase(a.dbHelper)}
	va := VehicleAssignment{
		DB:        databases.NewVehicleAssignmentDatabase(a.dbHelper),
		VehicleDB: databases.NewVehicleDatabase(a.dbHelper),
		RiderDB:   databases.NewRiderDatabase(a.dbHelper),
	}
	asset := Asset{DB: databases.NewAssetDatabase(a.dbHelper)}
	aa := AssetAssignment{
		DB:      databases.NewAssetAssignmentDatabase(a.dbHelper),
		AssetDB: databases.NewAssetDatabase(a.dbHelper),
	}
	ins := Insurance{DB: databases.NewInsuranceDatabase(a.dbHelper), VehicleDB: databases.NewVehicleDatabase(a.dbHelper)}
	qr := QRSheet{VehicleDB: databases.NewVehicleDatabase(a.dbHelper)}
	billing := Billing{RiderDB: databases.NewRiderDatabase(a.dbHelper)}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// live assignment events for open back-office tabs
	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/login", http.HandlerFunc(supervisor.LoginHandler)).Methods("POST")

	apiCreate.Handle("/rider", api.Middleware(http.HandlerFunc(rider.CreateRiderHandler))).Methods("POST")
	apiCreate.Handle("/rider/{rider_id}", api.Middleware(http.HandlerFunc(rider.RiderByIDHandler))).Methods("GET")
	apiCreate.Handle("/rider/{rider_id}", api.Middleware(http.HandlerFunc(rider.UpdateRiderHandler))).Methods("PUT")
	apiCreate.Handle("/rider/create-checkout-session", api.Middleware(http.HandlerFunc(billing.CreateCheckoutSessionHandler))).Methods("POST")
	apiCreate.Handle("/riders", api.Middleware(http.HandlerFunc(rider.RiderHandler))).Methods("GET")
	apiCreate.Handle("/riders/search", api.Middleware(http.HandlerFunc(rider.RidersByNameSearchHandler))).Methods("GET")

	apiCreate.Handle("/supervisor", api.Middleware(http.HandlerFunc(supervisor.CreateSupervisorHandler))).Methods("POST")
	apiCreate.Handle("/supervisors", api.Middleware(http.HandlerFunc(supervisor.SupervisorHandler))).Methods("GET")

	apiCreate.Handle("/vehicle", api.Middleware(http.HandlerFunc(v.CreateVehicleHandler))).Methods("POST")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.VehicleByIDHandler))).Methods("GET")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.UpdateVehicleHandler))).Methods("PUT")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.DeleteVehicleHandler))).Methods("DELETE")
	apiCreate.Handle("/vehicles", api.Middleware(http.HandlerFunc(v.VehicleHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/available", api.Middleware(http.HandlerFunc(v.AvailableVehiclesHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/search", api.Middleware(http.HandlerFunc(v.VehiclesByNumberSearchHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/qr-sheet", api.Middleware(http.HandlerFunc(qr.GenerateQRSheetHandler))).Methods("POST")

	apiCreate.Handle("/vehicle-assignment/assign/admin", api.Middleware(http.HandlerFunc(va.AssignVehicleAdminHandler))).Methods("POST")
	apiCreate.Handle("/vehicle-assignment/assign", api.Middleware(http.HandlerFunc(va.AssignVehicleSelfHandler))).Methods("POST")
	apiCreate.Handle("/vehicle-assignment/unAssignVehical", api.Middleware(http.HandlerFunc(va.UnassignVehicleHandler))).Methods("PUT")
	apiCreate.Handle("/vehicle-assignment/vehicle-status/{vehicle_id}", api.Middleware(http.HandlerFunc(va.UpdateVehicleStatusHandler))).Methods("PUT")
	apiCreate.Handle("/vehicle-assignment/status-options/{vehicle_id}", api.Middleware(http.HandlerFunc(va.StatusOptionsHandler))).Methods("GET")
	apiCreate.Handle("/vehicle-assignment/rider/{user_id}", api.Middleware(http.HandlerFunc(va.AssignmentsByRiderIDHandler))).Methods("GET")
	apiCreate.Handle("/vehicle-assignment/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(va.AssignmentsByVehicleIDHandler))).Methods("GET")

	apiCreate.Handle("/asset", api.Middleware(http.HandlerFunc(asset.CreateAssetHandler))).Methods("POST")
	apiCreate.Handle("/asset/{asset_id}", api.Middleware(http.HandlerFunc(asset.AssetByIDHandler))).Methods("GET")
	apiCreate.Handle("/assets", api.Middleware(http.HandlerFunc(asset.AssetHandler))).Methods("GET")

	apiCreate.Handle("/asset-assignment/assign", api.Middleware(http.HandlerFunc(aa.AssignAssetHandler))).Methods("POST")
	apiCreate.Handle("/asset-assignment/statistics", api.Middleware(http.HandlerFunc(aa.StatisticsHandler))).Methods("GET")
	apiCreate.Handle("/asset-assignment/user/{user_id}", api.Middleware(http.HandlerFunc(aa.AssignmentsByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/asset-assignment/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(aa.AssignmentsByVehicleIDHandler))).Methods("GET")
	apiCreate.Handle("/asset-assignment/{assignment_id}/approve", api.Middleware(http.HandlerFunc(aa.ApproveAssignmentHandler))).Methods("PUT")
	apiCreate.Handle("/asset-assignment/{assignment_id}/reject", api.Middleware(http.HandlerFunc(aa.RejectAssignmentHandler))).Methods("PUT")
	apiCreate.Handle("/asset-assignment/{assignment_id}/return", api.Middleware(http.HandlerFunc(aa.ReturnAssetHandler))).Methods("PUT")
	apiCreate.Handle("/asset-assignments", api.Middleware(http.HandlerFunc(aa.AssetAssignmentHandler))).Methods("GET")

	apiCreate.Handle("/insurance", api.Middleware(http.HandlerFunc(ins.CreateInsuranceHandler))).Methods("POST")
	apiCreate.Handle("/insurance/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(ins.InsuranceByVehicleIDHandler))).Methods("GET")
	apiCreate.Handle("/insurance/expiring", api.Middleware(http.HandlerFunc(ins.ExpiringInsuranceHandler))).Methods("GET")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("fleet-api has connected to the database")

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// start background reminder jobs
	s := scheduler.NewScheduler(
		databases.NewAssetAssignmentDatabase(a.dbHelper),
		databases.NewRiderDatabase(a.dbHelper),
		databases.NewInsuranceDatabase(a.dbHelper),
		databases.NewVehicleDatabase(a.dbHelper),
	)
	s.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
