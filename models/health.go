package models

// HealthCheckResponse returns the response for the health check route
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
