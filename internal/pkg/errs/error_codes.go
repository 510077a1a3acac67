/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Content Business Logic Errors
const (
	// ErrPostNotFound indicates that the requested post does not exist.
	ErrPostNotFound = 2101

	// ErrCommentNotFound indicates that the requested comment does not exist.
	ErrCommentNotFound = 2102

	// ErrTitleRequired indicates that a post was submitted without a title.
	ErrTitleRequired = 2201

	// ErrContentRequired indicates that a post or comment was submitted without body text.
	ErrContentRequired = 2202

	// ErrContentTooLong indicates that submitted content exceeded the maximum length limit.
	ErrContentTooLong = 2203
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrAlreadyLoggedIn indicates that an authenticated user attempted to register or log in again.
	ErrAlreadyLoggedIn = 3001

	// ErrInvalidName indicates that the supplied display name failed validation.
	ErrInvalidName = 3002

	// ErrInvalidEmail indicates that the supplied email address failed validation.
	ErrInvalidEmail = 3003

	// ErrInvalidPassword indicates that the supplied password failed validation.
	ErrInvalidPassword = 3004

	// ErrUserAlreadyExists indicates that the email is already registered.
	ErrUserAlreadyExists = 3005

	// ErrInvalidCredentials indicates an email/password mismatch at login.
	ErrInvalidCredentials = 3006

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3007

	// ErrOAuthFailed indicates that the OAuth code exchange or profile fetch failed.
	ErrOAuthFailed = 3008

	// ErrUnauthorized indicates a missing or invalid identity on a protected route.
	ErrUnauthorized = 3009

	// ErrForbidden indicates the authenticated user lacks permission for the operation.
	ErrForbidden = 3010
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the avatar storage backend rejected an operation.
	ErrFileStorageFailed = 5001

	// ErrStorageDisabled indicates that avatar storage is not configured on this deployment.
	ErrStorageDisabled = 5002
)
