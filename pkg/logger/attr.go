package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// An empty id yields an empty Attr so anonymous callers do not add noise.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Username records the login name under the key "username".
func Username(name string) slog.Attr {
	return slog.String("username", name)
}

// SessionID records a shortened session identifier under the key "session_id".
// Only the first 8 characters are logged; the full value is a bearer secret.
func SessionID(id string) slog.Attr {
	return slog.String("session_id", Redact(id, 8))
}

// Scheme records the password hashing scheme under the key "scheme".
func Scheme(name string) slog.Attr {
	return slog.String("scheme", name)
}

// Strategy records the credential strategy under the key "strategy".
func Strategy(name string) slog.Attr {
	return slog.String("strategy", name)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Path records a filesystem path or URL path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Line records a 1-based line number under the key "line".
func Line(n int) slog.Attr {
	return slog.Int("line", n)
}

// Count records a number of affected items under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Redact keeps the first n characters of s and replaces the rest with "...".
func Redact(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
