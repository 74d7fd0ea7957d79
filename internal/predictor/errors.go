package predictor

import (
	"errors"
	"strconv"
)

// Wire-visible failure codes for the prediction taxonomy.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeMissingCredential  = "missing_credential"
	CodeTransportFailure   = "transport_failure"
	CodeRejectedByProvider = "rejected_by_provider"
	CodeEmptyResponse      = "empty_response"
	CodeUnknownModel       = "model_not_found"
	CodeInternal           = "internal_error"
)

// invalidRequestError signals a request that fails validation before any
// network activity (empty text, negative temperature).
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err indicates a validation failure (return 400).
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}

// missingCredentialError signals that no API key could be resolved from any
// configured source. No network call was attempted.
type missingCredentialError struct{}

func (missingCredentialError) Error() string {
	return "no API key available from any configured source"
}

// ErrMissingCredential constructs a missingCredentialError.
func ErrMissingCredential() error { return missingCredentialError{} }

// IsMissingCredential reports whether err indicates an absent credential.
func IsMissingCredential(err error) bool {
	var e missingCredentialError
	return errors.As(err, &e)
}

// transportError signals a network-level failure or timeout reaching the provider.
type transportError struct{ err error }

func (e transportError) Error() string { return "transport failure: " + e.err.Error() }
func (e transportError) Unwrap() error { return e.err }

// ErrTransportFailure wraps err as a transportError.
func ErrTransportFailure(err error) error { return transportError{err: err} }

// IsTransportFailure reports whether err indicates a network failure.
func IsTransportFailure(err error) bool {
	var e transportError
	return errors.As(err, &e)
}

// providerError signals a non-2xx response from the provider: auth failure,
// quota exhaustion, or a request the provider refused.
type providerError struct {
	status  int
	message string
}

func (e providerError) Error() string {
	return "provider rejected request (status " + strconv.Itoa(e.status) + "): " + e.message
}

// ErrRejectedByProvider constructs a providerError carrying the upstream status.
func ErrRejectedByProvider(status int, message string) error {
	return providerError{status: status, message: message}
}

// IsRejectedByProvider reports whether err indicates an upstream rejection.
func IsRejectedByProvider(err error) bool {
	var e providerError
	return errors.As(err, &e)
}

// ProviderStatus returns the upstream HTTP status carried by a providerError.
func ProviderStatus(err error) (int, bool) {
	var e providerError
	if errors.As(err, &e) {
		return e.status, true
	}
	return 0, false
}

// emptyResponseError signals a 2xx provider response with no usable candidates.
type emptyResponseError struct{ reason string }

func (e emptyResponseError) Error() string { return "empty response from provider: " + e.reason }

// ErrEmptyResponse constructs an emptyResponseError.
func ErrEmptyResponse(reason string) error { return emptyResponseError{reason: reason} }

// IsEmptyResponse reports whether err indicates a candidate-less response.
func IsEmptyResponse(err error) bool {
	var e emptyResponseError
	return errors.As(err, &e)
}

// unknownModelError signals a model profile id not present in the registry.
type unknownModelError struct{ id string }

func (e unknownModelError) Error() string { return "unknown model profile: " + e.id }

// ErrUnknownModel constructs an unknownModelError.
func ErrUnknownModel(id string) error { return unknownModelError{id: id} }

// IsUnknownModel reports whether err indicates a missing model profile.
func IsUnknownModel(err error) bool {
	var e unknownModelError
	return errors.As(err, &e)
}

// ErrorCode maps err to its taxonomy code for wire payloads, logs, and metrics.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidRequest(err):
		return CodeInvalidRequest
	case IsMissingCredential(err):
		return CodeMissingCredential
	case IsTransportFailure(err):
		return CodeTransportFailure
	case IsRejectedByProvider(err):
		return CodeRejectedByProvider
	case IsEmptyResponse(err):
		return CodeEmptyResponse
	case IsUnknownModel(err):
		return CodeUnknownModel
	default:
		return CodeInternal
	}
}
