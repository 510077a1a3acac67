/*
Package req provides helper functions for HTTP request parsing and data binding.

It covers strict JSON body binding and multipart form setup for avatar uploads,
translating parse failures into the application's error codes.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"pulsegram/internal/pkg/errs"
)

const (
	// MaxJSONBodySize caps JSON request bodies. Posts top out at a few
	// kilobytes, so 1 MB leaves generous headroom.
	MaxJSONBodySize int64 = 1 << 20 // 1 MB

	// MaxFormMemory is the in-memory budget ParseMultipartForm uses for
	// non-file fields before spilling to temporary files.
	MaxFormMemory int64 = 8 << 20 // 8 MB

	// MaxUploadBodySize caps the entire multipart request body. Avatar files
	// are limited separately; this bound covers the body as a whole.
	MaxUploadBodySize int64 = 4 << 20 // 4 MB
)

// BindJSON binds the JSON request body to dst. Unknown fields and trailing
// content are rejected so malformed clients fail loudly instead of silently
// losing data.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart bounds and parses a multipart form request ahead of reading
// the uploaded file.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBodySize)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
