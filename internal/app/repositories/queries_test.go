package repositories

import (
	"testing"
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsListQuery(t *testing.T) {
	sb := statementBuilder()

	sql, args, err := newsListQuery(sb, "").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, title, content, image_url, status, published_at, created_at, updated_at FROM news_items ORDER BY created_at DESC, id DESC", sql)
	assert.Empty(t, args)

	sql, args, err = newsListQuery(sb, models.StatusDraft).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE status = $1")
	assert.Equal(t, []interface{}{models.StatusDraft}, args)
}

func TestPublishedNewsQuery(t *testing.T) {
	sql, args, err := publishedNewsQuery(statementBuilder(), 100).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE status = $1 AND published_at IS NOT NULL")
	assert.Contains(t, sql, "ORDER BY published_at DESC, id DESC LIMIT 100")
	assert.Equal(t, []interface{}{models.StatusPublished}, args)
}

func TestTeacherListQuery(t *testing.T) {
	sql, args, err := teacherListQuery(statementBuilder(), models.StatusPublished).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM teachers WHERE status = $1")
	assert.Contains(t, sql, "ORDER BY display_order ASC, last_name ASC")
	assert.Equal(t, []interface{}{models.StatusPublished}, args)
}

func TestCountByStatusQuery(t *testing.T) {
	sql, _, err := countByStatusQuery(statementBuilder(), "news_items").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT status, COUNT(*) FROM news_items GROUP BY status", sql)
}

func TestCleanupTokensQuery(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := cleanupTokensQuery(statementBuilder(), now).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM refresh_tokens WHERE (expiry_date < $1 OR (is_revoked = $2 AND created_at < $3))", sql)
	require.Len(t, args, 3)
	assert.Equal(t, now, args[0])
	assert.Equal(t, true, args[1])
	assert.Equal(t, now.Add(-30*24*time.Hour), args[2])
}
