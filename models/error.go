package models

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// ValidationErrorResponse is the field-keyed error map returned when form
// validation fails before any database work. The admin panel renders each
// entry inline next to its field instead of showing a single toast.
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}
