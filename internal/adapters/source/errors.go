package source

import "errors"

// Sentinel kinds for source loading errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrDecode            = errors.New("decode source")
	ErrNoSessions        = errors.New("activity file has no session message")
)
