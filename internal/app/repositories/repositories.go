package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    *UserRepository
	NewsRepository    *NewsRepository
	TeacherRepository *TeacherRepository
	TokenRepository   *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(db),
		NewsRepository:    NewNewsRepository(db),
		TeacherRepository: NewTeacherRepository(db),
		TokenRepository:   NewTokenRepository(db),
	}
}
