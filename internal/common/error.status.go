package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP status code constants used across handlers and errors.
const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusAccepted  = 202
	StatusNoContent = 204

	StatusBadRequest         = 400
	StatusUnauthorized       = 401
	StatusForbidden          = 403
	StatusNotFound           = 404
	StatusMethodNotAllowed   = 405
	StatusConflict           = 409
	StatusGone               = 410
	StatusPreconditionFailed = 412
	StatusTooManyRequests    = 429

	StatusInternalServerError = 500
	StatusNotImplemented      = 501
	StatusBadGateway          = 502
	StatusServiceUnavailable  = 503
	StatusGatewayTimeout      = 504
)

// Response messages.
const (
	MsgSuccess = "operation successful"
	MsgCreated = "resource created"

	MsgBadRequest      = "invalid request"
	MsgUnauthorized    = "authentication required"
	MsgForbidden       = "access denied"
	MsgNotFound        = "resource not found"
	MsgValidationError = "invalid input data"
	MsgDatabaseError   = "database interaction failed"
	MsgInvalidFormat   = "invalid data format"

	MsgTokenMissing = "missing authentication token"
	MsgTokenInvalid = "invalid token"
	MsgTokenExpired = "token expired"
)

// ErrorCode identifies an error class in the hierarchical code scheme.
type ErrorCode struct {
	Code        string // machine code, e.g. MGR_003
	Category    string // top-level category, e.g. Manager
	SubCategory string // sub category, e.g. Iteration
	Description string
}

var (
	// System errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "internal system error",
	}

	// Authentication errors (AUTH_xxx)
	ErrCodeAuth = ErrorCode{
		Code:        "AUTH",
		Category:    "Authentication",
		SubCategory: "General",
		Description: "general authentication error",
	}
	ErrCodeAuthToken = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Token",
		Description: "token related error",
	}
	ErrCodeAuthCredentials = ErrorCode{
		Code:        "AUTH_002",
		Category:    "Authentication",
		SubCategory: "Credentials",
		Description: "credential error",
	}
	ErrCodeAuthPermission = ErrorCode{
		Code:        "AUTH_003",
		Category:    "Authentication",
		SubCategory: "Permission",
		Description: "missing permission",
	}

	// Validation errors (VAL_xxx)
	ErrCodeValidation = ErrorCode{
		Code:        "VAL",
		Category:    "Validation",
		SubCategory: "General",
		Description: "general validation error",
	}
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "invalid input data",
	}
	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "invalid data format",
	}

	// Database errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "general database error",
	}
	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "database connection error",
	}
	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "database query error",
	}

	// Manager errors (MGR_xxx) — the kind-specific wrappers the route
	// layer translates into HTTP statuses.
	ErrCodeManagerGet = ErrorCode{
		Code:        "MGR_001",
		Category:    "Manager",
		SubCategory: "Get",
		Description: "document retrieval failed",
	}
	ErrCodeManagerInsert = ErrorCode{
		Code:        "MGR_002",
		Category:    "Manager",
		SubCategory: "Insert",
		Description: "document insert failed",
	}
	ErrCodeManagerUpdate = ErrorCode{
		Code:        "MGR_003",
		Category:    "Manager",
		SubCategory: "Update",
		Description: "document update failed",
	}
	ErrCodeManagerDelete = ErrorCode{
		Code:        "MGR_004",
		Category:    "Manager",
		SubCategory: "Delete",
		Description: "document delete failed",
	}
	ErrCodeManagerIteration = ErrorCode{
		Code:        "MGR_005",
		Category:    "Manager",
		SubCategory: "Iteration",
		Description: "aggregation, count or deserialization failed",
	}
	ErrCodeAccessDenied = ErrorCode{
		Code:        "MGR_006",
		Category:    "Manager",
		SubCategory: "Access",
		Description: "ACL or precondition violated",
	}
)

// Error is the coded error carried through every layer. StatusCode is
// the HTTP status the route layer answers with.
type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    any
	Cause      error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the original cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two coded errors by code, so sentinel comparisons like
// errors.Is(err, common.ErrNotFound) work across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code.Code == t.Code.Code
}

// NewError builds a coded error. cause may be nil.
func NewError(code ErrorCode, message string, statusCode int, cause error) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// Sentinel errors. Managers wrap store failures into one of these kinds
// (chaining the cause); handlers map them onto HTTP statuses.
var (
	// Authentication
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "invalid credentials", StatusUnauthorized, nil)
	ErrTokenExpired       = NewError(ErrCodeAuthToken, MsgTokenExpired, StatusUnauthorized, nil)
	ErrTokenInvalid       = NewError(ErrCodeAuthToken, MsgTokenInvalid, StatusUnauthorized, nil)
	ErrTokenMissing       = NewError(ErrCodeAuthToken, MsgTokenMissing, StatusUnauthorized, nil)

	// Validation
	ErrInvalidInput  = NewError(ErrCodeValidationInput, MsgValidationError, StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, MsgInvalidFormat, StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "missing required field", StatusBadRequest, nil)

	// Database
	ErrNotFound    = NewError(ErrCodeDatabaseQuery, "document not found", StatusNotFound, nil)
	ErrDuplicate   = NewError(ErrCodeDatabaseQuery, "document already exists", StatusConflict, nil)
	ErrConnection  = NewError(ErrCodeDatabaseConnection, "database connection failed", StatusServiceUnavailable, nil)

	// Manager kinds
	ErrManagerGet       = NewError(ErrCodeManagerGet, "document retrieval failed", StatusNotFound, nil)
	ErrManagerInsert    = NewError(ErrCodeManagerInsert, "document insert failed", StatusBadRequest, nil)
	ErrManagerUpdate    = NewError(ErrCodeManagerUpdate, "document update failed", StatusBadRequest, nil)
	ErrManagerDelete    = NewError(ErrCodeManagerDelete, "document delete failed", StatusBadRequest, nil)
	ErrManagerIteration = NewError(ErrCodeManagerIteration, "iteration failed", StatusBadRequest, nil)
	ErrAccessDenied     = NewError(ErrCodeAccessDenied, MsgForbidden, StatusForbidden, nil)
	ErrTypeInactive     = NewError(ErrCodeAccessDenied, "type is deactivated, object mutation rejected", StatusForbidden, nil)
)

// WrapManagerError attaches a cause to one of the manager kind errors,
// preserving the kind's code and status.
func WrapManagerError(kind error, message string, cause error) error {
	k, ok := kind.(*Error)
	if !ok {
		return kind
	}
	if message == "" {
		message = k.Message
	}
	return &Error{
		Code:       k.Code,
		Message:    message,
		StatusCode: k.StatusCode,
		Cause:      cause,
	}
}

// ConvertMongoError maps a raw mongo-driver error onto the coded scheme.
// ErrNotFound passes through untouched.
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch {
		case cmdErr.Code >= 100 && cmdErr.Code < 200:
			return NewError(ErrCodeDatabaseConnection, "mongodb connection error", StatusServiceUnavailable, err)
		case cmdErr.Code >= 200 && cmdErr.Code < 300:
			return NewError(ErrCodeAuth, "mongodb authentication error", StatusUnauthorized, err)
		case cmdErr.Code >= 300 && cmdErr.Code < 500:
			return NewError(ErrCodeDatabaseQuery, "mongodb query error", StatusInternalServerError, err)
		case cmdErr.Code >= 500:
			return NewError(ErrCodeDatabase, "mongodb system error", StatusInternalServerError, err)
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return NewError(ErrCodeDatabaseQuery, "duplicate key", StatusConflict, err)
	}
	if mongo.IsNetworkError(err) {
		return NewError(ErrCodeDatabaseConnection, "mongodb network error", StatusServiceUnavailable, err)
	}
	if mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "mongodb timeout", StatusServiceUnavailable, err)
	}

	return NewError(ErrCodeDatabase, MsgDatabaseError, StatusInternalServerError, err)
}
