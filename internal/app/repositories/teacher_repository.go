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

var teacherColumns = []string{
	"id", "first_name", "last_name", "position", "bio", "photo_url",
	"status", "display_order", "created_at", "updated_at",
}

// TeacherRepository handles teacher database operations
type TeacherRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

var _ ITeacherRepository = (*TeacherRepository)(nil)

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(db *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanTeacher(row pgx.Row) (*models.Teacher, error) {
	t := &models.Teacher{}
	err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Position, &t.Bio, &t.PhotoURL,
		&t.Status, &t.DisplayOrder, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func teacherListQuery(sb squirrel.StatementBuilderType, status models.ContentStatus) squirrel.SelectBuilder {
	q := sb.Select(teacherColumns...).From("teachers")
	if status != "" {
		q = q.Where(squirrel.Eq{"status": status})
	}
	return q.OrderBy("display_order ASC", "last_name ASC")
}

// Create inserts teacher and fills its id and timestamps.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	now := helpers.NowUTC()
	sql, args, err := r.sb.Insert("teachers").
		Columns("first_name", "last_name", "position", "bio", "photo_url", "status", "display_order", "created_at", "updated_at").
		Values(teacher.FirstName, teacher.LastName, teacher.Position, teacher.Bio, teacher.PhotoURL,
			teacher.Status, teacher.DisplayOrder, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create teacher SQL")
		return fmt.Errorf("failed to build create teacher query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&teacher.ID, &teacher.CreatedAt, &teacher.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create teacher query")
		return fmt.Errorf("error creating teacher: %w", err)
	}
	return nil
}

// GetByID retrieves a teacher by ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	sql, args, err := r.sb.Select(teacherColumns...).
		From("teachers").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get teacher by ID SQL")
		return nil, fmt.Errorf("failed to build get teacher query: %w", err)
	}

	teacher, err := scanTeacher(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTeacherNotFound
		}
		logger.Error().Err(err).Int64("teacherID", id).Msg("Error scanning teacher row")
		return nil, fmt.Errorf("error getting teacher by ID: %w", err)
	}
	return teacher, nil
}

// List implements ITeacherRepository.
func (r *TeacherRepository) List(ctx context.Context, status models.ContentStatus) ([]*models.Teacher, error) {
	sql, args, err := teacherListQuery(r.sb, status).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list teachers SQL")
		return nil, fmt.Errorf("failed to build list teachers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list teachers query")
		return nil, fmt.Errorf("error querying teachers: %w", err)
	}
	defer rows.Close()

	teachers := []*models.Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning teacher row during list")
			return nil, fmt.Errorf("error scanning teacher row: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating teacher rows")
		return nil, fmt.Errorf("error iterating teacher rows: %w", err)
	}
	return teachers, nil
}

// Update stores every editable column of teacher.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	sql, args, err := r.sb.Update("teachers").
		SetMap(map[string]interface{}{
			"first_name":    teacher.FirstName,
			"last_name":     teacher.LastName,
			"position":      teacher.Position,
			"bio":           teacher.Bio,
			"photo_url":     teacher.PhotoURL,
			"status":        teacher.Status,
			"display_order": teacher.DisplayOrder,
			"updated_at":    helpers.NowUTC(),
		}).
		Where(squirrel.Eq{"id": teacher.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update teacher SQL")
		return fmt.Errorf("failed to build update teacher query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&teacher.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrTeacherNotFound
		}
		logger.Error().Err(err).Int64("teacherID", teacher.ID).Msg("Error executing update teacher query")
		return fmt.Errorf("error updating teacher: %w", err)
	}
	return nil
}

// Delete deletes a teacher by ID
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "teachers", id, apperrors.ErrTeacherNotFound)
}

// CountByStatus implements ITeacherRepository.
func (r *TeacherRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	return countByStatus(ctx, r.db, r.sb, "teachers")
}
