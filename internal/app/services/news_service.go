package services

import (
	"context"
	"sync"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/models/dto"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// PublicNewsLimit caps the public news list.
const PublicNewsLimit = 100

// NewsService defines the news operations of the admin panel and the
// public site.
type NewsService interface {
	List(ctx context.Context, status models.ContentStatus) ([]*models.NewsItem, error)
	GetByID(ctx context.Context, id int64) (*models.NewsItem, error)
	Create(ctx context.Context, req *dto.CreateNewsRequest) (*models.NewsItem, error)
	Update(ctx context.Context, id int64, req *dto.UpdateNewsRequest) (*models.NewsItem, error)
	Delete(ctx context.Context, id int64) error

	ListPublic(ctx context.Context) ([]dto.PublicNewsItem, error)
	// GetPublic returns ErrNewsNotFound for drafts and items without a
	// publication date.
	GetPublic(ctx context.Context, id int64) (*dto.PublicNewsItem, error)

	// Subscribe registers l to be told about every successful update.
	Subscribe(l NewsListener)
}

type newsServiceImpl struct {
	newsRepo repositories.INewsRepository
	counts   CountsInvalidator
	logger   zerolog.Logger

	mu        sync.RWMutex
	listeners []NewsListener
}

// NewNewsService creates a new NewsService. counts may be nil.
func NewNewsService(newsRepo repositories.INewsRepository, counts CountsInvalidator, logger zerolog.Logger) NewsService {
	return &newsServiceImpl{
		newsRepo: newsRepo,
		counts:   counts,
		logger:   logger,
	}
}

func (s *newsServiceImpl) Subscribe(l NewsListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *newsServiceImpl) notify(item *models.NewsItem) {
	s.mu.RLock()
	listeners := append([]NewsListener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		copied := *item
		l.NewsUpdated(&copied)
	}
}

func (s *newsServiceImpl) invalidateCounts() {
	if s.counts != nil {
		s.counts.InvalidateCounts()
	}
}

func (s *newsServiceImpl) List(ctx context.Context, status models.ContentStatus) ([]*models.NewsItem, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status", dto.FieldMessage("status", "oneof", ""))
	}
	return s.newsRepo.List(ctx, status)
}

func (s *newsServiceImpl) GetByID(ctx context.Context, id int64) (*models.NewsItem, error) {
	return s.newsRepo.GetByID(ctx, id)
}

// applyPublishingRule stamps items published without a date.
func applyPublishingRule(item *models.NewsItem) {
	if item.Status == models.StatusPublished && item.PublishedAt == nil {
		now := helpers.NowUTC()
		item.PublishedAt = &now
	}
}

func (s *newsServiceImpl) Create(ctx context.Context, req *dto.CreateNewsRequest) (*models.NewsItem, error) {
	title, err := requiredText("title", req.Title, 200)
	if err != nil {
		return nil, err
	}
	content, err := requiredText("content", req.Content, 0)
	if err != nil {
		return nil, err
	}
	imageURL, err := optionalURL("imageUrl", req.ImageURL)
	if err != nil {
		return nil, err
	}
	status, err := resolveStatus(req.Status)
	if err != nil {
		return nil, err
	}
	publishedAt, err := optionalTimestamp("publishedAt", req.PublishedAt)
	if err != nil {
		return nil, err
	}

	item := &models.NewsItem{
		Title:       title,
		Content:     content,
		ImageURL:    imageURL,
		Status:      status,
		PublishedAt: publishedAt,
	}
	applyPublishingRule(item)

	if err := s.newsRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateCounts()
	s.logger.Info().Int64("newsID", item.ID).Str("status", string(item.Status)).Msg("News item created")
	return item, nil
}

func (s *newsServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateNewsRequest) (*models.NewsItem, error) {
	item, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if item.Title, err = requiredText("title", *req.Title, 200); err != nil {
			return nil, err
		}
	}
	if req.Content != nil {
		if item.Content, err = requiredText("content", *req.Content, 0); err != nil {
			return nil, err
		}
	}
	if req.ImageURL.Set {
		if item.ImageURL, err = optionalURL("imageUrl", req.ImageURL.Ptr()); err != nil {
			return nil, err
		}
	}
	if req.Status != "" {
		if item.Status, err = resolveStatus(req.Status); err != nil {
			return nil, err
		}
	}
	if req.PublishedAt.Set {
		if item.PublishedAt, err = optionalTimestamp("publishedAt", req.PublishedAt.Ptr()); err != nil {
			return nil, err
		}
	}
	applyPublishingRule(item)

	if err := s.newsRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateCounts()
	s.notify(item)
	s.logger.Info().Int64("newsID", item.ID).Str("status", string(item.Status)).Msg("News item updated")
	return item, nil
}

func (s *newsServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.newsRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCounts()
	s.logger.Info().Int64("newsID", id).Msg("News item deleted")
	return nil
}

func (s *newsServiceImpl) ListPublic(ctx context.Context) ([]dto.PublicNewsItem, error) {
	items, err := s.newsRepo.ListPublished(ctx, PublicNewsLimit)
	if err != nil {
		return nil, err
	}

	result := make([]dto.PublicNewsItem, 0, len(items))
	for _, item := range items {
		result = append(result, dto.NewPublicNewsItem(item))
	}
	return result, nil
}

func (s *newsServiceImpl) GetPublic(ctx context.Context, id int64) (*dto.PublicNewsItem, error) {
	item, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsPublic() {
		return nil, apperrors.ErrNewsNotFound
	}
	public := dto.NewPublicNewsItem(item)
	return &public, nil
}
