// Package binder binds HTTP request bodies into Go structs.
//
//	type LoginRequest struct {
//		Username   string `json:"username"`
//		Password   string `json:"password"`
//		TTLSeconds *int   `json:"ttl_seconds,omitempty"`
//	}
//
//	var req LoginRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		// ErrMissingContentType, ErrUnsupportedMediaType,
//		// ErrBodyTooLarge or ErrFailedToParseJSON
//	}
package binder
