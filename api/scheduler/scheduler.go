package scheduler

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/voltride/fleet-api/databases"
	"github.com/voltride/fleet-api/models"
	templates "github.com/voltride/fleet-api/templates/html"
)

const insuranceReminderWindow = 30 * 24 * time.Hour

// Scheduler handles periodic background jobs for the fleet
type Scheduler struct {
	cron        *cron.Cron
	AssetAssign databases.AssetAssignmentDatabase
	Riders      databases.RiderDatabase
	Insurance   databases.InsuranceDatabase
	Vehicles    databases.VehicleDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	assetAssign databases.AssetAssignmentDatabase,
	riders databases.RiderDatabase,
	insurance databases.InsuranceDatabase,
	vehicles databases.VehicleDatabase,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		AssetAssign: assetAssign,
		Riders:      riders,
		Insurance:   insurance,
		Vehicles:    vehicles,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Remind holders of overdue assets daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.processOverdueAssets)
	if err != nil {
		zap.S().Errorw("failed to register overdue asset job", "error", err)
	}

	// Check for lapsing insurance policies daily at 2 AM UTC
	_, err = s.cron.AddFunc("0 2 * * *", s.processExpiringInsurance)
	if err != nil {
		zap.S().Errorw("failed to register insurance expiry job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Fleet scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Fleet scheduler stopped")
}

// processOverdueAssets emails each user holding an asset past its expected
// return date. The stored assignmentStatus is left untouched: overdue is a
// computed view, not a stored state.
func (s *Scheduler) processOverdueAssets() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	overdue, err := s.AssetAssign.Find(ctx, bson.M{
		"assignmentStatus":   models.AssetAssignmentActive,
		"expectedReturnDate": bson.M{"$lt": now},
	})
	if err != nil {
		zap.S().Errorw("failed to find overdue asset assignments", "error", err)
		return
	}

	sent := 0
	for _, assignment := range overdue {
		rider, err := s.Riders.FindOne(ctx, bson.M{"_id": assignment.UserID})
		if err != nil || rider.Email == "" {
			zap.S().Warnw("no email for overdue assignment holder",
				"assignmentId", assignment.ID.Hex(), "error", err)
			continue
		}

		subject := "Asset Return Overdue - VoltRide Fleet"
		htmlContent := templates.RenderOverdueAssetEmail(rider.Name, assignment.AssignmentReason, assignment.ExpectedReturnDate)
		plainText := "The asset assigned to you is past its expected return date. Please return it to your hub."

		if err := s.sendEmail(rider.Email, rider.Name, subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send overdue asset email", "error", err, "assignmentId", assignment.ID.Hex())
			continue
		}
		sent++
	}

	zap.S().Infow("Overdue asset processing complete",
		"overdueFound", len(overdue),
		"remindersSent", sent,
	)
}

// processExpiringInsurance emails operations about policies lapsing within the
// reminder window. remindedAt dedupes so each policy is flagged once.
func (s *Scheduler) processExpiringInsurance() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	opsEmail := os.Getenv("OPS_ALERT_EMAIL")
	if opsEmail == "" {
		zap.S().Warn("OPS_ALERT_EMAIL not set, skipping insurance expiry job")
		return
	}

	now := time.Now()
	expiring, err := s.Insurance.Find(ctx, bson.M{
		"expiryDate": bson.M{
			"$gt": now,
			"$lt": now.Add(insuranceReminderWindow),
		},
		"remindedAt": nil,
	})
	if err != nil {
		zap.S().Errorw("failed to find expiring insurance documents", "error", err)
		return
	}

	sent := 0
	for _, doc := range expiring {
		vehicleNumber := doc.VehicleID.Hex()
		if vehicle, err := s.Vehicles.FindOne(ctx, bson.M{"_id": doc.VehicleID}); err == nil {
			vehicleNumber = vehicle.VehicleNumber
		}

		subject := "Insurance Policy Expiring - VoltRide Fleet"
		htmlContent := templates.RenderInsuranceExpiryEmail(vehicleNumber, doc.PolicyNumber, doc.ExpiryDate)
		plainText := "An insurance policy is about to expire. Please renew it before the expiry date."

		if err := s.sendEmail(opsEmail, "Operations", subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send insurance expiry email", "error", err, "policyNumber", doc.PolicyNumber)
			continue
		}

		if _, err := s.Insurance.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{
			"$set": bson.M{"remindedAt": now, "updatedAt": now},
		}); err != nil {
			zap.S().Warnw("failed to mark policy as reminded", "error", err, "policyNumber", doc.PolicyNumber)
		}
		sent++
	}

	zap.S().Infow("Insurance expiry processing complete",
		"expiringFound", len(expiring),
		"remindersSent", sent,
	)
}

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("VoltRide Fleet", "no-reply@voltride.in")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}
