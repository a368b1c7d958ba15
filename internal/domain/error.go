package domain

import "errors"

var (
	// Common domain errors
	ErrJobNotFound           = errors.New("ingestion job not found")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrGenerationUnavailable = errors.New("no generation provider configured")
)
