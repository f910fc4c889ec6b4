package diarize

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("diarize: model file not found")

	// ErrInvalidModel indicates the model file exists but is malformed.
	ErrInvalidModel = errors.New("diarize: invalid model format")

	// ErrEmptyAudio indicates no samples were provided.
	ErrEmptyAudio = errors.New("diarize: empty audio")
)
