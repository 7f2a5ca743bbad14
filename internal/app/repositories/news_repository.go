package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
	"github.com/kindergarten-canvas/backend/internal/pkg/helpers"
	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
)

var newsColumns = []string{"id", "title", "content", "image_url", "status", "published_at", "created_at", "updated_at"}

// NewsRepository handles news item database operations
type NewsRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

var _ INewsRepository = (*NewsRepository)(nil)

// NewNewsRepository creates a new NewsRepository
func NewNewsRepository(db *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanNews(row pgx.Row) (*models.NewsItem, error) {
	n := &models.NewsItem{}
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.ImageURL, &n.Status, &n.PublishedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func newsListQuery(sb squirrel.StatementBuilderType, status models.ContentStatus) squirrel.SelectBuilder {
	q := sb.Select(newsColumns...).From("news_items")
	if status != "" {
		q = q.Where(squirrel.Eq{"status": status})
	}
	return q.OrderBy("created_at DESC", "id DESC")
}

func publishedNewsQuery(sb squirrel.StatementBuilderType, limit uint64) squirrel.SelectBuilder {
	return sb.Select(newsColumns...).
		From("news_items").
		Where(squirrel.Eq{"status": models.StatusPublished}).
		Where(squirrel.NotEq{"published_at": nil}).
		OrderBy("published_at DESC", "id DESC").
		Limit(limit)
}

// Create inserts item and fills its id and timestamps.
func (r *NewsRepository) Create(ctx context.Context, item *models.NewsItem) error {
	now := helpers.NowUTC()
	sql, args, err := r.sb.Insert("news_items").
		Columns("title", "content", "image_url", "status", "published_at", "created_at", "updated_at").
		Values(item.Title, item.Content, item.ImageURL, item.Status, item.PublishedAt, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create news SQL")
		return fmt.Errorf("failed to build create news query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create news query")
		return fmt.Errorf("error creating news item: %w", err)
	}
	return nil
}

// GetByID retrieves a news item by ID
func (r *NewsRepository) GetByID(ctx context.Context, id int64) (*models.NewsItem, error) {
	sql, args, err := r.sb.Select(newsColumns...).
		From("news_items").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get news by ID SQL")
		return nil, fmt.Errorf("failed to build get news query: %w", err)
	}

	item, err := scanNews(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNewsNotFound
		}
		logger.Error().Err(err).Int64("newsID", id).Msg("Error scanning news row")
		return nil, fmt.Errorf("error getting news item by ID: %w", err)
	}
	return item, nil
}

func (r *NewsRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]*models.NewsItem, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list news SQL")
		return nil, fmt.Errorf("failed to build list news query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list news query")
		return nil, fmt.Errorf("error querying news items: %w", err)
	}
	defer rows.Close()

	items := []*models.NewsItem{}
	for rows.Next() {
		item, err := scanNews(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning news row during list")
			return nil, fmt.Errorf("error scanning news row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating news rows")
		return nil, fmt.Errorf("error iterating news rows: %w", err)
	}
	return items, nil
}

// List implements INewsRepository.
func (r *NewsRepository) List(ctx context.Context, status models.ContentStatus) ([]*models.NewsItem, error) {
	return r.query(ctx, newsListQuery(r.sb, status))
}

// ListPublished implements INewsRepository.
func (r *NewsRepository) ListPublished(ctx context.Context, limit uint64) ([]*models.NewsItem, error) {
	return r.query(ctx, publishedNewsQuery(r.sb, limit))
}

// Update stores every editable column of item.
func (r *NewsRepository) Update(ctx context.Context, item *models.NewsItem) error {
	sql, args, err := r.sb.Update("news_items").
		SetMap(map[string]interface{}{
			"title":        item.Title,
			"content":      item.Content,
			"image_url":    item.ImageURL,
			"status":       item.Status,
			"published_at": item.PublishedAt,
			"updated_at":   helpers.NowUTC(),
		}).
		Where(squirrel.Eq{"id": item.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update news SQL")
		return fmt.Errorf("failed to build update news query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&item.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNewsNotFound
		}
		logger.Error().Err(err).Int64("newsID", item.ID).Msg("Error executing update news query")
		return fmt.Errorf("error updating news item: %w", err)
	}
	return nil
}

// Delete deletes a news item by ID
func (r *NewsRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "news_items", id, apperrors.ErrNewsNotFound)
}

// CountByStatus implements INewsRepository.
func (r *NewsRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	return countByStatus(ctx, r.db, r.sb, "news_items")
}
