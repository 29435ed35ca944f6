package backup

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fdg312/calorie-diary/internal/blob"
	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/google/uuid"
)

var ErrArchiveUnavailable = errors.New("backup archive requires a blob store")

const defaultPresignTTL = 900

type Service struct {
	registry   *diary.Registry
	store      blob.Store
	presignTTL int
}

// NewService creates the backup service. store may be nil, which disables
// Archive.
func NewService(registry *diary.Registry, store blob.Store, presignTTLSeconds int) *Service {
	if presignTTLSeconds <= 0 {
		presignTTLSeconds = defaultPresignTTL
	}
	return &Service{registry: registry, store: store, presignTTL: presignTTLSeconds}
}

// Export returns the download filename and the full diary as JSON.
func (s *Service) Export(ctx context.Context, ownerID string) (string, []byte, error) {
	var data []byte
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		var err error
		data, err = st.Export()
		return err
	})
	if err != nil {
		return "", nil, err
	}
	return diary.BackupFilename(s.registry.Today(ctx)), data, nil
}

// Import replaces the owner's diary. A malformed backup changes nothing.
func (s *Service) Import(ctx context.Context, ownerID string, data []byte) (ImportResponse, error) {
	var resp ImportResponse
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		if err := st.Import(ctx, data); err != nil {
			return err
		}
		snap := st.Snapshot()
		resp.Days = len(snap.Days)
		for _, rec := range snap.Days {
			resp.Entries += len(rec.Entries)
		}
		resp.Templates = len(snap.Templates)
		resp.Goal = snap.Goals
		return nil
	})
	if err != nil {
		return ImportResponse{}, err
	}
	return resp, nil
}

// Archive stores an export under backups/{owner}/{date}-{uuid}.json and
// returns a presigned download URL.
func (s *Service) Archive(ctx context.Context, ownerID string) (ArchiveResponse, error) {
	if s.store == nil {
		return ArchiveResponse{}, ErrArchiveUnavailable
	}

	_, data, err := s.Export(ctx, ownerID)
	if err != nil {
		return ArchiveResponse{}, err
	}

	key := fmt.Sprintf("backups/%s/%s-%s.json", url.PathEscape(ownerID), s.registry.Today(ctx), uuid.NewString())
	size, err := s.store.PutObject(ctx, key, data, "application/json")
	if err != nil {
		return ArchiveResponse{}, fmt.Errorf("failed to upload backup: %w", err)
	}

	link, err := s.store.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		return ArchiveResponse{}, fmt.Errorf("failed to presign backup: %w", err)
	}

	return ArchiveResponse{ObjectKey: key, SizeBytes: size, URL: link, ExpiresIn: s.presignTTL}, nil
}
