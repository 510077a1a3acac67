/*
Package errs provides custom error types and application-level error code constants.

CustomError pairs a business error code with a client-facing message and the
HTTP status it maps to. Handlers construct errors by code through NewError and
hand them to the resp package unchanged.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"pulsegram/internal/pkg/logx"
)

// CustomError is the error structure used throughout the application. It
// implements the error interface and carries the code and HTTP status the
// response layer needs.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the client-facing error description.
	Message string

	// Status is the HTTP status code this error maps to.
	Status int
}

func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a predefined error code. Optional
// details act as printf arguments when the message template has placeholders.
// For ErrUnknown, a leading error detail is logged rather than exposed to the
// client. Unknown codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("error code %d missing from errorMap", code),
			"Unknown error code requested",
		)

		fallback := errorMap[ErrUnknown]
		return &fallback
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if len(details) == 0 {
		return &customErr
	}

	if code == ErrUnknown {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Handling ErrUnknown with underlying error")
		}
		return &customErr
	}

	if strings.Contains(customErr.Message, "%") {
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	} else {
		logx.Warn("Details provided for error without formatting placeholders. Details ignored.", "code", code)
	}

	return &customErr
}
