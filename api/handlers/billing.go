package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/voltride/fleet-api/config"
	"github.com/voltride/fleet-api/databases"
)

// Billing exported for testing purposes
type Billing struct {
	RiderDB databases.RiderDatabase
}

type createCheckoutSessionRequest struct {
	RiderID    string `json:"riderId"`
	PriceID    string `json:"priceId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type createCheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCheckoutSessionHandler starts a Stripe Checkout session for a rider's
// rental subscription, creating the Stripe customer on first use
func (b Billing) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.RiderID == "" || req.PriceID == "" {
		config.ErrorStatus("riderId and priceId are required", http.StatusBadRequest, w, fmt.Errorf("missing required fields"))
		return
	}

	rID, err := primitive.ObjectIDFromHex(req.RiderID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	rider, err := b.RiderDB.FindOne(r.Context(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get rider by ID", http.StatusNotFound, w, err)
		return
	}

	customerID := rider.StripeCustomer
	if customerID == "" {
		cust, err := customer.New(&stripe.CustomerParams{
			Email: stripe.String(rider.Email),
			Name:  stripe.String(rider.Name),
		})
		if err != nil {
			config.ErrorStatus("failed to create stripe customer", http.StatusInternalServerError, w, err)
			return
		}
		customerID = cust.ID
		if _, err := b.RiderDB.UpdateOne(r.Context(), bson.M{"_id": rID},
			bson.M{"$set": bson.M{"stripeCustomer": customerID, "updatedAt": time.Now()}}); err != nil {
			config.ErrorStatus("failed to save stripe customer", http.StatusInternalServerError, w, err)
			return
		}
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = "https://dashboard.voltride.in/billing/success"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = "https://dashboard.voltride.in/billing/cancel"
	}

	sess, err := session.New(&stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	})
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(createCheckoutSessionResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	})
}
