package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

// sniffLen is how much of a file is read to detect its type.
const sniffLen = 3072

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// UploadService stores images referenced by news items and teacher profiles.
type UploadService interface {
	// UploadImage stores r. size is the declared size, or -1 when unknown.
	UploadImage(ctx context.Context, r io.Reader, size int64) (*dto.UploadResponse, error)
}

type uploadServiceImpl struct {
	storage filestorage.FileStorage
	maxSize int64
	folder  string
	logger  zerolog.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(storage filestorage.FileStorage, maxSize int64, folder string, logger zerolog.Logger) UploadService {
	return &uploadServiceImpl{
		storage: storage,
		maxSize: maxSize,
		folder:  folder,
		logger:  logger,
	}
}

func (s *uploadServiceImpl) UploadImage(ctx context.Context, r io.Reader, size int64) (*dto.UploadResponse, error) {
	if r == nil || size == 0 {
		return nil, apperrors.ErrNoFile
	}
	if size > s.maxSize {
		return nil, apperrors.ErrFileSizeExceeded
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUploadFailed, err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperrors.ErrNoFile
	}

	mtype := mimetype.Detect(head)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		s.logger.Info().Str("mime", mtype.String()).Msg("Rejected upload with unsupported type")
		return nil, apperrors.ErrInvalidFileType
	}

	// One byte over the limit is enough to tell an oversized stream.
	body := &limitedReader{r: io.MultiReader(bytes.NewReader(head), r), remaining: s.maxSize + 1}
	stored, err := s.storage.Save(ctx, body, s.folder, mtype.Extension())
	if body.exceeded() {
		return nil, apperrors.ErrFileSizeExceeded
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to store upload")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUploadFailed, err)
	}

	s.logger.Info().Str("publicId", stored.PublicID).Int64("size", stored.Size).Str("mime", mtype.String()).Msg("Image uploaded")
	return &dto.UploadResponse{URL: stored.URL, PublicID: stored.PublicID}, nil
}

// limitedReader fails once more than its budget is read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

var errTooLarge = errors.New("file too large")

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining <= 0 && err == nil {
		return n, errTooLarge
	}
	return n, err
}

func (l *limitedReader) exceeded() bool {
	return l.remaining <= 0
}
