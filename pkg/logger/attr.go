package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID records the publisher identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Package records the package name under the key "package".
func Package(name string) slog.Attr {
	return slog.String("package", name)
}

// Version records a package version under the key "version".
func Version(v string) slog.Attr {
	return slog.String("version", v)
}

// Pieces records the number of staged pieces under the key "pieces".
func Pieces(n int) slog.Attr {
	return slog.Int("pieces", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
