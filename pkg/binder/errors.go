package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrBodyTooLarge         = errors.New("request body too large")
	// ErrBinderNotApplicable is returned by a binder that has nothing to
	// read from the request, such as JSON on a GET without a body.
	ErrBinderNotApplicable = errors.New("binder not applicable")
)
