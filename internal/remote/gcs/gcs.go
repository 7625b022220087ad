// Package gcs implements the remote adapter on a Google Cloud Storage
// object, addressed by a gs://bucket/path URI. The object generation is
// the version tag, which lets Upload use a real precondition instead of
// the read-then-write dance the Drive backend needs.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/finanzas-dev/finanzas/internal/remote"
)

// Client holds the storage connection.
type Client struct {
	client *storage.Client
}

// New creates a GCS-backed adapter using Application Default Credentials
// unless overridden via opts.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Download implements remote.Adapter. fileID is a gs:// URI.
func (c *Client) Download(ctx context.Context, fileID string) (remote.Payload, error) {
	bucket, object, err := parseURI(fileID)
	if err != nil {
		return remote.Payload{}, err
	}

	r, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return remote.Payload{}, wrapErr("download", err)
	}
	defer r.Close()

	text, err := io.ReadAll(r)
	if err != nil {
		return remote.Payload{}, wrapErr("download", err)
	}
	return remote.Payload{
		Text:       text,
		VersionTag: strconv.FormatInt(r.Attrs.Generation, 10),
	}, nil
}

// Upload implements remote.Adapter. A non-empty expectTag becomes a
// generation-match precondition; GCS rejects the write with 412 when the
// object moved, which surfaces as remote.ErrConflict.
func (c *Client) Upload(ctx context.Context, fileID string, text []byte, expectTag string) (string, error) {
	bucket, object, err := parseURI(fileID)
	if err != nil {
		return "", err
	}

	obj := c.client.Bucket(bucket).Object(object)
	if expectTag != "" {
		gen, err := strconv.ParseInt(expectTag, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid version tag %q: %w", expectTag, err)
		}
		obj = obj.If(storage.Conditions{GenerationMatch: gen})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json; charset=utf-8"
	if _, err := w.Write(text); err != nil {
		_ = w.Close()
		return "", wrapErr("upload", err)
	}
	if err := w.Close(); err != nil {
		return "", wrapErr("upload", err)
	}
	return strconv.FormatInt(w.Attrs().Generation, 10), nil
}

// parseURI splits "gs://bucket/path/to/object".
func parseURI(uri string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	bucket, object, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return bucket, object, nil
}

func wrapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("%w: %v", remote.ErrConflict, err)
		}
		return &remote.TransportError{Op: op, StatusCode: gerr.Code, Err: err}
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return &remote.TransportError{Op: op, StatusCode: http.StatusNotFound, Err: err}
	}
	return &remote.TransportError{Op: op, Err: err}
}

var _ remote.Adapter = (*Client)(nil)
