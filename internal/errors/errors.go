package errors

import "fmt"

// Error codes
const (
	ErrCodeNotInitialized   = "NOT_INITIALIZED"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeLoadFailed       = "LOAD_FAILED"
	ErrCodeWriteFailed      = "WRITE_FAILED"
	ErrCodeQuotaExceeded    = "QUOTA_EXCEEDED"
	ErrCodeUnsupportedInput = "UNSUPPORTED_INPUT"
	ErrCodeDecodeFailed     = "DECODE_FAILED"
	ErrCodeEncodeFailed     = "ENCODE_FAILED"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeMalformedImport  = "MALFORMED_IMPORT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// AppError represents an application error with an error code and HTTP status
type AppError struct {
	Code    string // Error code (e.g., "QUOTA_EXCEEDED")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// NewNotInitializedError signals a store operation before Initialize completed
func NewNotInitializedError(op string) *AppError {
	return &AppError{
		Code:    ErrCodeNotInitialized,
		Message: fmt.Sprintf("store is not ready for %s", op),
		Status:  503,
	}
}

// NewStoreUnavailableError signals that the durable backend cannot be opened
func NewStoreUnavailableError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeStoreUnavailable,
		Message: "storage backend unavailable",
		Status:  503,
		Err:     err,
	}
}

// NewLoadFailedError signals a corrupt or unreadable stored collection
func NewLoadFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeLoadFailed,
		Message: "stored collection could not be read",
		Status:  500,
		Err:     err,
	}
}

// NewWriteFailedError signals a generic persistence failure
func NewWriteFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeWriteFailed,
		Message: "collection could not be persisted",
		Status:  500,
		Err:     err,
	}
}

// NewQuotaExceededError signals that the backend rejected a write for size
func NewQuotaExceededError(requestedBytes int64) *AppError {
	msg := "storage quota exceeded"
	if requestedBytes > 0 {
		msg = fmt.Sprintf("storage quota exceeded (%d bytes requested)", requestedBytes)
	}
	return &AppError{
		Code:    ErrCodeQuotaExceeded,
		Message: msg,
		Status:  507,
	}
}

// NewUnsupportedInputError signals a payload that is not a decodable image
func NewUnsupportedInputError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedInput,
		Message: "payload is not a decodable image",
		Status:  422,
		Err:     err,
	}
}

// NewDecodeFailedError signals a broken already-encoded payload
func NewDecodeFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeDecodeFailed,
		Message: "encoded payload could not be decoded",
		Status:  422,
		Err:     err,
	}
}

// NewEncodeFailedError signals an image re-encode failure
func NewEncodeFailedError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeEncodeFailed,
		Message: "image could not be re-encoded",
		Status:  500,
		Err:     err,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewMalformedImportError signals input that is not the selected import shape
func NewMalformedImportError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedImport,
		Message: fmt.Sprintf("import rejected: %s", reason),
		Status:  400,
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Status:  500,
		Err:     err,
	}
}
