package srvcerror

import "net/http"

// Error is the service-level error carried across package boundaries.
// The user-facing message is what handlers render; the debug error stays
// in server logs.
type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

const ErrCodeInternalServerError = "internal_server_error"

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

// Validation constructs a bad-input error (4xx, no partial writes happened).
func Validation(errorCode string, msgToUser string) *Error {
	return New(errorCode, msgToUser).SetHttpStatusCode(http.StatusBadRequest)
}

// State constructs an error for an operation attempted in the wrong
// lifecycle state (contest not running, already submitted, ...).
func State(errorCode string, msgToUser string) *Error {
	return New(errorCode, msgToUser).SetHttpStatusCode(http.StatusBadRequest)
}

// NotFound constructs a missing-entity error.
func NotFound(errorCode string, msgToUser string) *Error {
	return New(errorCode, msgToUser).SetHttpStatusCode(http.StatusNotFound)
}

// DataIntegrity constructs an error for malformed stored data. These abort
// the whole operation rather than guessing at a score.
func DataIntegrity(errorCode string, msgToUser string) *Error {
	return New(errorCode, msgToUser).SetHttpStatusCode(http.StatusInternalServerError)
}
