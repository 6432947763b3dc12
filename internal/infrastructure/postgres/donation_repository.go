package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/delcom/foodshare/internal/domain/entity"
	"github.com/delcom/foodshare/internal/domain/repository"
)

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

const donationColumns = `
	id, name, location, latitude, longitude, category, is_halal, portion,
	expired_time, description, photo_url, status, user_id,
	COALESCE(claimed_by_user_id::text, ''), created_at, updated_at`

func scanDonation(row pgx.Row) (*entity.Donation, error) {
	d := &entity.Donation{}
	err := row.Scan(
		&d.ID, &d.Name, &d.Location, &d.Latitude, &d.Longitude, &d.Category,
		&d.IsHalal, &d.Portion, &d.ExpiredTime, &d.Description, &d.PhotoURL,
		&d.Status, &d.CreatedByID, &d.ClaimedByID, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *DonationRepository) Create(ctx context.Context, d *entity.Donation) error {
	if d.CreatedByID == "" {
		return repository.ErrInvalidArgument
	}
	if d.Status == "" {
		d.Status = entity.StatusAvailable
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO donations
			(name, location, latitude, longitude, category, is_halal, portion,
			 expired_time, description, photo_url, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, d.Name, d.Location, d.Latitude, d.Longitude, d.Category, d.IsHalal,
		d.Portion, d.ExpiredTime, d.Description, d.PhotoURL, d.Status, d.CreatedByID)

	return row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *DonationRepository) GetByID(ctx context.Context, id string) (*entity.Donation, error) {
	if id == "" {
		return nil, repository.ErrInvalidArgument
	}
	row := r.pool.QueryRow(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id)
	return scanDonation(row)
}

// Update overwrites the mutable fields. Ownership, status, and claimer are
// not touched here; claims go through ClaimIfAvailable.
func (r *DonationRepository) Update(ctx context.Context, d *entity.Donation) error {
	d.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE donations
		SET name = $1, location = $2, latitude = $3, longitude = $4,
		    category = $5, is_halal = $6, portion = $7, expired_time = $8,
		    description = $9, photo_url = $10, updated_at = $11
		WHERE id = $12
	`, d.Name, d.Location, d.Latitude, d.Longitude, d.Category, d.IsHalal,
		d.Portion, d.ExpiredTime, d.Description, d.PhotoURL, d.UpdatedAt, d.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DonationRepository) UpdatePhotoURL(ctx context.Context, id, photoURL string) error {
	if id == "" {
		return repository.ErrInvalidArgument
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE donations SET photo_url = $1, updated_at = now() WHERE id = $2
	`, photoURL, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return repository.ErrInvalidArgument
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM donations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClaimIfAvailable lets the database arbitrate concurrent claims: the status
// predicate and the write happen in one statement, so exactly one caller
// observes AVAILABLE and wins. Everyone else gets rows-affected == 0.
func (r *DonationRepository) ClaimIfAvailable(ctx context.Context, id, userID string) (bool, error) {
	if id == "" || userID == "" {
		return false, repository.ErrInvalidArgument
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE donations
		SET status = $1, claimed_by_user_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`, entity.StatusBooked, userID, id, entity.StatusAvailable)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *DonationRepository) Search(ctx context.Context, f repository.DonationFilter) ([]*entity.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE 1=1`
	args := []any{}

	if f.Keyword != "" {
		args = append(args, "%"+f.Keyword+"%")
		p := "$" + strconv.Itoa(len(args))
		query += ` AND (name ILIKE ` + p + ` OR location ILIKE ` + p +
			` OR description ILIKE ` + p + ` OR category ILIKE ` + p + `)`
	}
	if f.IsHalal != nil {
		args = append(args, *f.IsHalal)
		query += ` AND is_halal = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DonationRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations`).Scan(&n)
	return n, err
}

func (r *DonationRepository) CountByHalal(ctx context.Context, isHalal bool) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE is_halal = $1`, isHalal).Scan(&n)
	return n, err
}

var _ repository.DonationRepository = (*DonationRepository)(nil)
