package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nekogravitycat/lesson-booking-backend/internal/pkg/storage"
	"go.uber.org/zap"
)

type Service interface {
	Upload(ctx context.Context, header *multipart.FileHeader, sessionID string) (*Attachment, error)
	Get(ctx context.Context, id string) (*Attachment, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Attachment, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Attachment, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	log     *zap.Logger
}

func NewService(repo Repository, store storage.Storage, log *zap.Logger) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		log:     log,
	}
}

func (s *service) Upload(ctx context.Context, header *multipart.FileHeader, sessionID string) (*Attachment, error) {
	if header.Size > MaxSizeBytes {
		return nil, ErrTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file failed: %w", err)
	}
	defer src.Close()

	// Read one byte past the limit so an understated header size is still caught.
	content, err := io.ReadAll(io.LimitReader(src, MaxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read uploaded file failed: %w", err)
	}
	if len(content) > MaxSizeBytes {
		return nil, ErrTooLarge
	}
	if len(content) == 0 {
		return nil, ErrEmpty
	}

	// The client's declared type is ignored.
	contentType := mimetype.Detect(content).String()
	if !allowed(contentType) {
		return nil, ErrUnsupportedType
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	shard := id[:2]
	storagePath := fmt.Sprintf("attachments/%s/%s%s", shard, id, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("save attachment failed: %w", err)
	}

	var thumbnailPath *string
	if storage.IsImage(contentType) {
		thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(content), storage.ThumbnailMaxWidth, storage.ThumbnailMaxHeight)
		if err != nil {
			s.log.Warn("generate thumbnail failed", zap.String("attachment_id", id), zap.Error(err))
		} else {
			p := fmt.Sprintf("attachments/%s/%s_thumb.jpg", shard, id)
			if err := s.storage.Save(ctx, p, thumb); err != nil {
				s.log.Warn("save thumbnail failed", zap.String("attachment_id", id), zap.Error(err))
			} else {
				thumbnailPath = &p
			}
		}
	}

	a := &Attachment{
		ID:            id,
		SessionID:     sessionID,
		Filename:      filepath.Base(header.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		_ = s.storage.Delete(ctx, storagePath)
		if thumbnailPath != nil {
			_ = s.storage.Delete(ctx, *thumbnailPath)
		}
		return nil, err
	}
	return a, nil
}

func allowed(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return slices.Contains(AllowedTypes, mediaType)
}

func (s *service) Get(ctx context.Context, id string) (*Attachment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *Attachment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, a.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("retrieve attachment failed: %w", err)
	}
	return stream, a, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Attachment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if a.ThumbnailPath == nil {
		return nil, nil, ErrThumbnailNotFound
	}

	stream, err := s.storage.Get(ctx, *a.ThumbnailPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrThumbnailNotFound
		}
		return nil, nil, fmt.Errorf("retrieve thumbnail failed: %w", err)
	}
	return stream, a, nil
}
