// Package handler provides typed JSON HTTP handlers.
//
// A HandlerFunc receives its request already bound into a struct and returns
// a Response. Wrap adapts it to http.HandlerFunc:
//
//	type LoginRequest struct {
//		Username string `json:"username"`
//		Password string `json:"password"`
//	}
//
//	r.Post("/login", handler.Wrap(login,
//		handler.WithBinders[LoginRequest](binder.JSON()),
//		handler.WithErrorHandler[LoginRequest](handler.NewErrorHandler(log)),
//	))
//
// Errors are rendered as {"error":{"code":...,"message":...}}. Wrap an
// HTTPError into the returned error to choose the status; anything else is a
// 500 with a generic message.
package handler
