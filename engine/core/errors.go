package core

import (
	"errors"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrNotInitialized  = errors.New("system not initialized")
	ErrAlreadyShutdown = errors.New("system already shut down")
	ErrUnknownAsset    = errors.New("asset not found")
	ErrNoLoader        = errors.New("no loader registered for resource type")
	ErrUnknown         = errors.New("unknown")
)
