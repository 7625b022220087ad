// Package drive implements the remote adapter on a Google Drive file,
// the backend the dashboard was originally built around.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/finanzas-dev/finanzas/internal/remote"
)

// Client talks to a single user's Drive. The version tag is the file's
// head revision id.
type Client struct {
	svc *drivev3.Service
}

// New creates a Drive-backed adapter. Credentials come in through opts;
// with none given the service uses Application Default Credentials.
func New(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Download implements remote.Adapter.
func (c *Client) Download(ctx context.Context, fileID string) (remote.Payload, error) {
	tag, err := c.headRevision(ctx, fileID)
	if err != nil {
		return remote.Payload{}, wrapErr("download", err)
	}

	resp, err := c.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return remote.Payload{}, wrapErr("download", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.Payload{}, wrapErr("download", err)
	}
	return remote.Payload{Text: text, VersionTag: tag}, nil
}

// Upload implements remote.Adapter. Drive media updates carry no
// precondition header, so the version check is a separate metadata read
// just before the write; the window between the two is small but real.
func (c *Client) Upload(ctx context.Context, fileID string, text []byte, expectTag string) (string, error) {
	if expectTag != "" {
		tag, err := c.headRevision(ctx, fileID)
		if err != nil {
			return "", wrapErr("upload", err)
		}
		if tag != expectTag {
			return "", fmt.Errorf("drive file %s: %w", fileID, remote.ErrConflict)
		}
	}

	f, err := c.svc.Files.Update(fileID, &drivev3.File{}).
		SupportsAllDrives(true).
		Fields("headRevisionId").
		Media(bytes.NewReader(text), googleapi.ContentType("application/json; charset=utf-8")).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapErr("upload", err)
	}
	return f.HeadRevisionId, nil
}

func (c *Client) headRevision(ctx context.Context, fileID string) (string, error) {
	meta, err := c.svc.Files.Get(fileID).
		SupportsAllDrives(true).
		Fields("headRevisionId").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return meta.HeadRevisionId, nil
}

func wrapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &remote.TransportError{Op: op, StatusCode: gerr.Code, Err: err}
	}
	return &remote.TransportError{Op: op, Err: err}
}

var _ remote.Adapter = (*Client)(nil)
