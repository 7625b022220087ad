package gcs

import (
	"errors"
	"net/http"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/finanzas-dev/finanzas/internal/remote"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"simple", "gs://my-bucket/finanzas.json", "my-bucket", "finanzas.json", false},
		{"nested path", "gs://b/data/2024/finanzas.json", "b", "data/2024/finanzas.json", false},
		{"missing scheme", "my-bucket/finanzas.json", "", "", true},
		{"bucket only", "gs://my-bucket", "", "", true},
		{"bucket with trailing slash", "gs://my-bucket/", "", "", true},
		{"empty", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := parseURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestWrapErr(t *testing.T) {
	t.Run("precondition failed becomes conflict", func(t *testing.T) {
		err := wrapErr("upload", &googleapi.Error{Code: http.StatusPreconditionFailed})
		assert.ErrorIs(t, err, remote.ErrConflict)
	})

	t.Run("api error carries status code", func(t *testing.T) {
		err := wrapErr("download", &googleapi.Error{Code: http.StatusForbidden})
		var terr *remote.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, http.StatusForbidden, terr.StatusCode)
		assert.Equal(t, "download", terr.Op)
	})

	t.Run("missing object maps to 404", func(t *testing.T) {
		err := wrapErr("download", storage.ErrObjectNotExist)
		var terr *remote.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, http.StatusNotFound, terr.StatusCode)
	})

	t.Run("plain error wraps without code", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := wrapErr("upload", cause)
		var terr *remote.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Zero(t, terr.StatusCode)
		assert.ErrorIs(t, err, cause)
	})
}
