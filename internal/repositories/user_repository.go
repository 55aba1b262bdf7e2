package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"portal-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the portal's local user directory.
type UserRepository interface {
	GetUser(ctx context.Context, userID int) (models.User, error)
	BulkUsers(ctx context.Context, userIDs []int) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, email, full_name, role, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// BulkUsers fetches several users at once for response enrichment.
func (r *UserRepo) BulkUsers(ctx context.Context, userIDs []int) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, email, full_name, role, created_at FROM users WHERE id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	var users []models.User
	err = r.db.SelectContext(ctx, &users, query, args...)
	return users, err
}
