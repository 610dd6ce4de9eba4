package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("no run recorded")
	ErrInvalidRange = errors.New("invalid date range")
	ErrInvalidLimit = errors.New("invalid run limit")
	ErrClosed       = errors.New("store closed")
)
