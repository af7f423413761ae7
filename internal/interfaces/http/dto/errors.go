package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeShipmentNotBooked is used when a shipment has no carrier order yet
	ErrCodeShipmentNotBooked = "ERR_SHIPMENT_NOT_BOOKED"
	// ErrCodeShipmentNoAWB is used when a shipment has no AWB number to track
	ErrCodeShipmentNoAWB = "ERR_SHIPMENT_NO_AWB"
	// ErrCodeShipmentNoParcels is used when a shipment carries no parcels
	ErrCodeShipmentNoParcels = "ERR_SHIPMENT_NO_PARCELS"
	// ErrCodeNoBilledItems is used when no delivery note line references an invoice
	ErrCodeNoBilledItems = "ERR_NO_BILLED_ITEMS"
	// ErrCodeParcelOverrideMissing is used when a parcel lacks an item assignment
	ErrCodeParcelOverrideMissing = "ERR_PARCEL_OVERRIDE_MISSING"
)

// Carrier integration error codes
const (
	// ErrCodeCarrierNotConfigured is used when the carrier API token is missing
	ErrCodeCarrierNotConfigured = "ERR_CARRIER_NOT_CONFIGURED"
	// ErrCodeCarrierDisabled is used when the carrier integration is switched off
	ErrCodeCarrierDisabled = "ERR_CARRIER_DISABLED"
	// ErrCodeCarrierRequestFailed is used when the carrier could not be reached
	ErrCodeCarrierRequestFailed = "ERR_CARRIER_REQUEST_FAILED"
	// ErrCodeCarrierBadResponse is used when the carrier returned an unusable response
	ErrCodeCarrierBadResponse = "ERR_CARRIER_BAD_RESPONSE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:          http.StatusUnprocessableEntity,
	ErrCodeShipmentNotBooked:     http.StatusConflict,
	ErrCodeShipmentNoAWB:         http.StatusConflict,
	ErrCodeShipmentNoParcels:     http.StatusUnprocessableEntity,
	ErrCodeNoBilledItems:         http.StatusUnprocessableEntity,
	ErrCodeParcelOverrideMissing: http.StatusBadRequest,

	// Carrier errors
	ErrCodeCarrierNotConfigured: http.StatusUnprocessableEntity,
	ErrCodeCarrierDisabled:      http.StatusUnprocessableEntity,
	ErrCodeCarrierRequestFailed: http.StatusBadGateway,
	ErrCodeCarrierBadResponse:   http.StatusBadGateway,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
	"SHIPMENT_NOT_BOOKED":     ErrCodeShipmentNotBooked,
	"SHIPMENT_NO_AWB":         ErrCodeShipmentNoAWB,
	"SHIPMENT_NO_PARCELS":     ErrCodeShipmentNoParcels,
	"NO_BILLED_ITEMS":         ErrCodeNoBilledItems,
	"PARCEL_OVERRIDE_MISSING": ErrCodeParcelOverrideMissing,
	"CARRIER_NOT_CONFIGURED":  ErrCodeCarrierNotConfigured,
	"CARRIER_DISABLED":        ErrCodeCarrierDisabled,
	"CARRIER_REQUEST_FAILED":  ErrCodeCarrierRequestFailed,
	"CARRIER_BAD_RESPONSE":    ErrCodeCarrierBadResponse,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
