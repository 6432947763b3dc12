package repository

import (
	"context"
	"errors"

	"github.com/delcom/foodshare/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned when a store operation receives a
	// missing or malformed identifier. It is never swallowed silently.
	ErrInvalidArgument = errors.New("invalid argument")
)

// UserRepository persists account records.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail uses first-match semantics (LIMIT 1) for uniqueness.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthTokenRepository persists issued login tokens keyed by (user, token).
type AuthTokenRepository interface {
	// Save fails with ErrInvalidArgument when UserID or Token is empty.
	Save(ctx context.Context, t *entity.AuthToken) error
	// FindUserToken matches both user id and token string exactly. Absence
	// is a normal logged-out condition and yields (nil, nil), not an error.
	FindUserToken(ctx context.Context, userID, token string) (*entity.AuthToken, error)
	// DeleteByUserID bulk-invalidates every token a user holds.
	DeleteByUserID(ctx context.Context, userID string) error
}

// DonationFilter narrows donation listings.
type DonationFilter struct {
	Keyword string
	IsHalal *bool
}

// DonationRepository persists donation listings.
type DonationRepository interface {
	Create(ctx context.Context, d *entity.Donation) error
	GetByID(ctx context.Context, id string) (*entity.Donation, error)
	Update(ctx context.Context, d *entity.Donation) error
	UpdatePhotoURL(ctx context.Context, id, photoURL string) error
	Delete(ctx context.Context, id string) error
	// ClaimIfAvailable atomically transitions AVAILABLE -> BOOKED and sets
	// the claimer; the returned bool reports whether this caller won the
	// transition. Implementations must arbitrate at the storage layer
	// (conditional update on status), not with a read-then-write.
	ClaimIfAvailable(ctx context.Context, id, userID string) (bool, error)
	Search(ctx context.Context, f DonationFilter) ([]*entity.Donation, error)
	CountAll(ctx context.Context) (int64, error)
	CountByHalal(ctx context.Context, isHalal bool) (int64, error)
}
