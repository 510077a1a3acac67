/*
Package resp provides helper functions for constructing and sending standardized HTTP JSON responses.

Every endpoint answers with the same envelope of business code, message, and
optional data. Error responses also echo the request id so client reports can
be matched against server logs.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"pulsegram/internal/pkg/errs"
	"pulsegram/internal/pkg/logx"
)

// JSONResponse is the envelope returned by every API endpoint.
type JSONResponse struct {
	// Code is the business status code. 0 means success; anything else is an
	// error code from the errs package.
	Code int `json:"code"`

	// Message is the client-facing status description.
	Message string `json:"message"`

	// Data carries the response payload on success.
	Data any `json:"data,omitempty"`

	// RequestID correlates error responses with server log lines.
	RequestID string `json:"requestId,omitempty"`
}

// RespondJSON sets response headers and writes the encoded payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends a successful HTTP response (HTTP 200 OK).
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	res := JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	}
	RespondJSON(w, r, http.StatusOK, res)
}

// RespondError sends an HTTP response carrying the custom error's code,
// message, and mapped HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Code:      customErr.Code,
		Message:   customErr.Message,
		RequestID: middleware.GetReqID(r.Context()),
	}
	RespondJSON(w, r, customErr.Status, res)
}
