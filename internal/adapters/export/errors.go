package export

import "errors"

// ErrUnknownFormat is returned for a format with no writer.
var ErrUnknownFormat = errors.New("unknown export format")
