package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
)

// Helpers shared by the news and teacher tables, which have the same id and
// status columns.

func countByStatusQuery(sb squirrel.StatementBuilderType, table string) squirrel.SelectBuilder {
	return sb.Select("status", "COUNT(*)").From(table).GroupBy("status")
}

func countByStatus(ctx context.Context, db *pgxpool.Pool, sb squirrel.StatementBuilderType, table string) (models.StatusCounts, error) {
	var counts models.StatusCounts

	sql, args, err := countByStatusQuery(sb, table).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error building count by status SQL")
		return counts, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error executing count by status query")
		return counts, fmt.Errorf("error counting %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.ContentStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("error scanning %s count: %w", table, err)
		}
		switch status {
		case models.StatusDraft:
			counts.Draft = n
		case models.StatusPublished:
			counts.Published = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("error iterating %s counts: %w", table, err)
	}
	return counts, nil
}

func deleteByID(ctx context.Context, db *pgxpool.Pool, sb squirrel.StatementBuilderType, table string, id int64, notFound error) error {
	sql, args, err := sb.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error building delete SQL")
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	cmdTag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Int64("id", id).Msg("Error executing delete query")
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
