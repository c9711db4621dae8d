package repository

import "errors"

var (
	// ErrWidthMismatch indicates a transformer whose output width differs from the model input
	ErrWidthMismatch = errors.New("transformer width does not match model input")

	// ErrEmptyArtifact indicates an artifact with no content
	ErrEmptyArtifact = errors.New("artifact is empty")
)
