package config

import (
	"errors"

	"github.com/okian/trainlog/internal/domain/model"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = model.ErrConfiguration
	ErrLoadConfig    = errors.New("load config failed")
)
