package storage

import (
	"context"
	"errors"
	"io"
)

// ErrArtifactNotFound indicates the named artifact does not exist in the source
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactSource reads raw artifact bytes by name
type ArtifactSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Kind names the backend for logs and health output
	Kind() string
}
