// Package remote defines the adapter over the cloud file that holds the
// shared copy of the finance document, plus the error kinds transport
// failures surface as. Implementations live in the drive and gcs
// subpackages.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// Payload is one downloaded revision of the remote file. Text is the raw
// JSON blob; VersionTag identifies the revision so a later upload can
// detect that the remote moved in between.
type Payload struct {
	Text       []byte
	VersionTag string
}

// Adapter is the remote half of the sync pair.
type Adapter interface {
	// Download fetches the current remote content.
	Download(ctx context.Context, fileID string) (Payload, error)

	// Upload replaces the remote content and returns the new version tag.
	// When expectTag is non-empty the upload fails with ErrConflict if
	// the remote revision no longer matches it; an empty tag uploads
	// unconditionally, last writer wins.
	Upload(ctx context.Context, fileID string, text []byte, expectTag string) (string, error)
}

// ErrConflict reports that the remote file changed after it was downloaded
// and a version-checked upload refused to overwrite it.
var ErrConflict = errors.New("remote file changed since download")

// TransportError is an I/O failure talking to the remote store, carrying
// the HTTP-like status code of the failing call.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("remote %s failed (%d): %v", e.Op, e.StatusCode, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}
