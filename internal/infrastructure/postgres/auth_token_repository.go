package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/delcom/foodshare/internal/domain/entity"
	"github.com/delcom/foodshare/internal/domain/repository"
)

type AuthTokenRepository struct {
	pool *pgxpool.Pool
}

func NewAuthTokenRepository(pool *pgxpool.Pool) *AuthTokenRepository {
	return &AuthTokenRepository{pool: pool}
}

func (r *AuthTokenRepository) Save(ctx context.Context, t *entity.AuthToken) error {
	if t == nil || t.UserID == "" || t.Token == "" {
		return repository.ErrInvalidArgument
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO auth_tokens (user_id, token)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, t.UserID, t.Token)

	return row.Scan(&t.ID, &t.CreatedAt)
}

// FindUserToken returns (nil, nil) when no row matches: a missing token is a
// normal revoked/logged-out condition, not a storage fault.
func (r *AuthTokenRepository) FindUserToken(ctx context.Context, userID, token string) (*entity.AuthToken, error) {
	t := &entity.AuthToken{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token, created_at
		FROM auth_tokens
		WHERE user_id = $1 AND token = $2
	`, userID, token)

	if err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return t, nil
}

func (r *AuthTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return repository.ErrInvalidArgument
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	return err
}

var _ repository.AuthTokenRepository = (*AuthTokenRepository)(nil)
