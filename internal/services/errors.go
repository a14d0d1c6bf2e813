package services

import "errors"

// ValidationError is the rejected-input body surfaced to the client, matching
// the {code, reason, message, location} shape of the API's 4xx responses.
type ValidationError struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

func (e *ValidationError) Error() string {
	return e.Message + " (" + e.Location + ")"
}

func newValidationError(code int, message, location string) *ValidationError {
	return &ValidationError{
		Code:     code,
		Reason:   "ValidationError",
		Message:  message,
		Location: location,
	}
}

var (
	// ErrNotFound covers user and entry lookup misses at the service level.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned when a password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOwnerZipMissing is returned when a listing is created without a
	// zipcode and the owner has none on file to inherit.
	ErrOwnerZipMissing = errors.New("owner has no zipcode on file")
)
