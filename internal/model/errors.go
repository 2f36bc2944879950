package model

import "errors"

// Failure categories surfaced to HTTP callers. Pipeline code wraps these with
// %w so the server can map them to status codes with errors.Is.
var (
	// ErrBadRequest indicates a missing required field in the request.
	ErrBadRequest = errors.New("bad request")

	// ErrUnsupportedMediaType indicates an image MIME type outside the allow-list.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrNotFound indicates an unknown processing identifier.
	ErrNotFound = errors.New("not found")

	// ErrServiceUnavailable indicates no provider credential is configured.
	ErrServiceUnavailable = errors.New("ai service unavailable")

	// ErrUnprocessableMedia indicates the provider permanently failed to
	// process the uploaded media.
	ErrUnprocessableMedia = errors.New("unprocessable media")

	// ErrMalformedUpstreamResponse indicates the provider reply could not be
	// parsed into the expected shape.
	ErrMalformedUpstreamResponse = errors.New("malformed upstream response")
)
