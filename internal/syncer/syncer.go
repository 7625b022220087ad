// Package syncer runs one synchronization of the local document against
// the remote file: download, merge, persist locally, upload. The steps are
// strictly sequential and nothing is retried here; retry policy belongs to
// whoever calls Sync.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finanzas-dev/finanzas/internal/document"
	"github.com/finanzas-dev/finanzas/internal/logger"
	"github.com/finanzas-dev/finanzas/internal/reconcile"
	"github.com/finanzas-dev/finanzas/internal/remote"
	"github.com/finanzas-dev/finanzas/internal/storage"
)

// Service wires the two adapters to the reconciler.
type Service struct {
	Store  storage.Store
	Remote remote.Adapter
	Merger *reconcile.Merger

	// Defaults seed the skeleton on a device with no local copy yet.
	Defaults document.Defaults

	// CheckRemoteVersion makes the upload carry the version tag obtained
	// at download time, so a remote that moved in between surfaces as
	// remote.ErrConflict instead of being silently overwritten.
	CheckRemoteVersion bool

	// Now supplies timestamps; nil means time.Now.
	Now func() time.Time
}

// Report summarizes a completed sync.
type Report struct {
	MergedDays  int
	LocalExists bool
	VersionTag  string
	FinishedAt  time.Time
}

// Sync performs the four-step flow against the remote file. The local copy
// is written before the upload, deliberately: if the upload then fails the
// local store already holds the merge result and the next sync carries it
// up. There is no rollback.
func (s *Service) Sync(ctx context.Context, fileID string) (*Report, error) {
	log := logger.FromContext(ctx)

	local, ok, err := s.Store.Read()
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info().Msg("no local document, starting from skeleton")
		local = document.SkeletonAt(s.Defaults, s.now(), uuid.New().String())
	}

	payload, err := s.Remote.Download(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("downloading remote document: %w", err)
	}
	log.Debug().
		Str("file_id", fileID).
		Str("version_tag", payload.VersionTag).
		Int("bytes", len(payload.Text)).
		Msg("downloaded remote document")

	rem, err := document.Decode(payload.Text)
	if err != nil {
		return nil, fmt.Errorf("remote document: %w", err)
	}

	merged := s.Merger.Merge(local, rem)

	if err := s.Store.Write(merged); err != nil {
		return nil, err
	}

	// Re-stamp before pushing, so the uploaded copy records the moment
	// it left this device.
	merged.Meta.UpdatedAt = document.FormatTimestamp(s.now())
	text, err := merged.Encode()
	if err != nil {
		return nil, err
	}

	expectTag := ""
	if s.CheckRemoteVersion {
		expectTag = payload.VersionTag
	}
	newTag, err := s.Remote.Upload(ctx, fileID, text, expectTag)
	if err != nil {
		// The local store already holds the merge result at this
		// point; see the method comment.
		return nil, fmt.Errorf("uploading merged document: %w", err)
	}

	report := &Report{
		MergedDays:  len(merged.Ledger.Days),
		LocalExists: ok,
		VersionTag:  newTag,
		FinishedAt:  s.now(),
	}
	log.Info().
		Str("file_id", fileID).
		Int("merged_days", report.MergedDays).
		Str("version_tag", newTag).
		Msg("sync completed")
	return report, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
