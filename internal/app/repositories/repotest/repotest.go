// Package repotest provides in-memory repositories for tests. They follow
// the ordering and error contracts of the PostgreSQL implementations.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kindergarten-canvas/backend/internal/app/models"
	"github.com/kindergarten-canvas/backend/internal/app/repositories"
	"github.com/kindergarten-canvas/backend/internal/pkg/apperrors"
)

var (
	_ repositories.IUserRepository    = (*UserRepository)(nil)
	_ repositories.INewsRepository    = (*NewsRepository)(nil)
	_ repositories.ITeacherRepository = (*TeacherRepository)(nil)
	_ repositories.ITokenRepository   = (*TokenRepository)(nil)
)

// clock hands out strictly increasing timestamps so ordering by creation
// time is deterministic.
type clock struct {
	last time.Time
}

func (c *clock) now() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// UserRepository is an in-memory IUserRepository.
type UserRepository struct {
	mu     sync.Mutex
	clock  clock
	nextID int64
	users  map[int64]models.User
	// Err, when set, is returned by every call.
	Err error
}

// NewUserRepository returns an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]models.User)}
}

func (r *UserRepository) emailTaken(email string, except int64) bool {
	for id, u := range r.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.emailTaken(user.Email, 0) {
		return apperrors.ErrEmailAlreadyExists
	}
	r.nextID++
	now := r.clock.now()
	user.ID, user.CreatedAt, user.UpdatedAt = r.nextID, now, now
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) CreateIfNotExists(ctx context.Context, user *models.User) (bool, error) {
	err := r.Create(ctx, user)
	if err == apperrors.ErrEmailAlreadyExists {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	return r.emailTaken(email, 0), nil
}

func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return apperrors.ErrEmailAlreadyExists
	}
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = r.clock.now()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// NewsRepository is an in-memory INewsRepository.
type NewsRepository struct {
	mu     sync.Mutex
	clock  clock
	nextID int64
	items  map[int64]models.NewsItem
	// Err, when set, is returned by every call.
	Err error
}

// NewNewsRepository returns an empty repository.
func NewNewsRepository() *NewsRepository {
	return &NewsRepository{items: make(map[int64]models.NewsItem)}
}

func (r *NewsRepository) Create(_ context.Context, item *models.NewsItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.nextID++
	now := r.clock.now()
	item.ID, item.CreatedAt, item.UpdatedAt = r.nextID, now, now
	r.items[item.ID] = *item
	return nil
}

func (r *NewsRepository) GetByID(_ context.Context, id int64) (*models.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	item, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNewsNotFound
	}
	return &item, nil
}

func (r *NewsRepository) List(_ context.Context, status models.ContentStatus) ([]*models.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	items := make([]*models.NewsItem, 0, len(r.items))
	for _, item := range r.items {
		if status != "" && item.Status != status {
			continue
		}
		item := item
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *NewsRepository) ListPublished(_ context.Context, limit uint64) ([]*models.NewsItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	items := make([]*models.NewsItem, 0, len(r.items))
	for _, item := range r.items {
		if !item.IsPublic() {
			continue
		}
		item := item
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].PublishedAt.Equal(*items[j].PublishedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].PublishedAt.After(*items[j].PublishedAt)
	})
	if uint64(len(items)) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *NewsRepository) Update(_ context.Context, item *models.NewsItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[item.ID]; !ok {
		return apperrors.ErrNewsNotFound
	}
	item.UpdatedAt = r.clock.now()
	r.items[item.ID] = *item
	return nil
}

func (r *NewsRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[id]; !ok {
		return apperrors.ErrNewsNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *NewsRepository) CountByStatus(_ context.Context) (models.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return models.StatusCounts{}, r.Err
	}
	var counts models.StatusCounts
	for _, item := range r.items {
		switch item.Status {
		case models.StatusDraft:
			counts.Draft++
		case models.StatusPublished:
			counts.Published++
		}
	}
	return counts, nil
}

// TeacherRepository is an in-memory ITeacherRepository.
type TeacherRepository struct {
	mu       sync.Mutex
	clock    clock
	nextID   int64
	teachers map[int64]models.Teacher
	// Err, when set, is returned by every call.
	Err error
}

// NewTeacherRepository returns an empty repository.
func NewTeacherRepository() *TeacherRepository {
	return &TeacherRepository{teachers: make(map[int64]models.Teacher)}
}

func (r *TeacherRepository) Create(_ context.Context, teacher *models.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.nextID++
	now := r.clock.now()
	teacher.ID, teacher.CreatedAt, teacher.UpdatedAt = r.nextID, now, now
	r.teachers[teacher.ID] = *teacher
	return nil
}

func (r *TeacherRepository) GetByID(_ context.Context, id int64) (*models.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	t, ok := r.teachers[id]
	if !ok {
		return nil, apperrors.ErrTeacherNotFound
	}
	return &t, nil
}

func (r *TeacherRepository) List(_ context.Context, status models.ContentStatus) ([]*models.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	teachers := make([]*models.Teacher, 0, len(r.teachers))
	for _, t := range r.teachers {
		if status != "" && t.Status != status {
			continue
		}
		t := t
		teachers = append(teachers, &t)
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].DisplayOrder != teachers[j].DisplayOrder {
			return teachers[i].DisplayOrder < teachers[j].DisplayOrder
		}
		return teachers[i].LastName < teachers[j].LastName
	})
	return teachers, nil
}

func (r *TeacherRepository) Update(_ context.Context, teacher *models.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.teachers[teacher.ID]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	teacher.UpdatedAt = r.clock.now()
	r.teachers[teacher.ID] = *teacher
	return nil
}

func (r *TeacherRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.teachers[id]; !ok {
		return apperrors.ErrTeacherNotFound
	}
	delete(r.teachers, id)
	return nil
}

func (r *TeacherRepository) CountByStatus(_ context.Context) (models.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return models.StatusCounts{}, r.Err
	}
	var counts models.StatusCounts
	for _, t := range r.teachers {
		switch t.Status {
		case models.StatusDraft:
			counts.Draft++
		case models.StatusPublished:
			counts.Published++
		}
	}
	return counts, nil
}

// TokenRepository is an in-memory ITokenRepository.
type TokenRepository struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
	// Now replaces time.Now when set.
	Now func() time.Time
}

// NewTokenRepository returns an empty repository.
func NewTokenRepository() *TokenRepository {
	return &TokenRepository{tokens: make(map[string]models.RefreshToken)}
}

func (r *TokenRepository) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *TokenRepository) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = models.RefreshToken{
		Token:      token,
		UserID:     userID,
		ExpiryDate: expiryDate,
		CreatedAt:  r.now(),
	}
	return nil
}

func (r *TokenRepository) GetTokenByValue(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	switch {
	case !ok:
		return nil, apperrors.ErrTokenNotFound
	case t.IsRevoked:
		return nil, apperrors.ErrTokenRevoked
	case !t.ExpiryDate.After(r.now()):
		return nil, apperrors.ErrTokenExpired
	}
	return &t, nil
}

func (r *TokenRepository) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	r.tokens[token] = t
	return nil
}

func (r *TokenRepository) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
			r.tokens[key] = t
		}
	}
	return nil
}

func (r *TokenRepository) CleanupExpiredTokens(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	now := r.now()
	for key, t := range r.tokens {
		if t.IsRevoked || !t.ExpiryDate.After(now) {
			delete(r.tokens, key)
			removed++
		}
	}
	return removed, nil
}
