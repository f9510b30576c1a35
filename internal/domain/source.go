package domain

import (
	"errors"
	"fmt"
)

// Source identifies one remote notification domain. Each source gets its own
// synchronizer and its own path prefix on the backend.
type Source string

const (
	SourceAdmin Source = "admin"
	SourceUser  Source = "user"
)

var ErrUnknownSource = errors.New("unknown notification source")

// Sources lists every source in a stable order.
func Sources() []Source {
	return []Source{SourceAdmin, SourceUser}
}

func ParseSource(value string) (Source, error) {
	switch Source(value) {
	case SourceAdmin, SourceUser:
		return Source(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, value)
	}
}

// SupportsDelete reports whether the backend exposes a delete mutation for s.
func (s Source) SupportsDelete() bool {
	return s == SourceUser
}

func (s Source) String() string {
	return string(s)
}
