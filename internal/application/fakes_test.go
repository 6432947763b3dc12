package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/delcom/foodshare/internal/domain/entity"
	"github.com/delcom/foodshare/internal/domain/repository"
)

// memUserRepo is an in-memory UserRepository mirroring the sql semantics:
// absence is ErrNotFound, never (nil, nil).
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = time.Now()
	return nil
}

// memTokenRepo is an in-memory AuthTokenRepository.
type memTokenRepo struct {
	mu   sync.Mutex
	rows []entity.AuthToken
}

func newMemTokenRepo() *memTokenRepo { return &memTokenRepo{} }

func (r *memTokenRepo) Save(_ context.Context, t *entity.AuthToken) error {
	if t.UserID == "" || t.Token == "" {
		return repository.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	r.rows = append(r.rows, *t)
	return nil
}

func (r *memTokenRepo) FindUserToken(_ context.Context, userID, token string) (*entity.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].Token == token {
			cp := r.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	if userID == "" {
		return repository.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *memTokenRepo) countFor(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.UserID == userID {
			n++
		}
	}
	return n
}

// memDonationRepo is an in-memory DonationRepository. ClaimIfAvailable holds
// the lock across check and write so it arbitrates concurrent claims the same
// way the conditional sql update does.
type memDonationRepo struct {
	mu        sync.Mutex
	donations map[string]*entity.Donation
}

func newMemDonationRepo() *memDonationRepo {
	return &memDonationRepo{donations: map[string]*entity.Donation{}}
}

func (r *memDonationRepo) Create(_ context.Context, d *entity.Donation) error {
	if d.CreatedByID == "" {
		return repository.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = uuid.NewString()
	if d.Status == "" {
		d.Status = entity.StatusAvailable
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	r.donations[d.ID] = &cp
	return nil
}

func (r *memDonationRepo) GetByID(_ context.Context, id string) (*entity.Donation, error) {
	if id == "" {
		return nil, repository.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.donations[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memDonationRepo) Update(_ context.Context, d *entity.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.donations[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name = d.Name
	cur.Location = d.Location
	cur.Latitude = d.Latitude
	cur.Longitude = d.Longitude
	cur.Category = d.Category
	cur.IsHalal = d.IsHalal
	cur.Portion = d.Portion
	cur.ExpiredTime = d.ExpiredTime
	cur.Description = d.Description
	cur.PhotoURL = d.PhotoURL
	cur.UpdatedAt = time.Now()
	d.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *memDonationRepo) UpdatePhotoURL(_ context.Context, id, photoURL string) error {
	if id == "" {
		return repository.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.PhotoURL = photoURL
	d.UpdatedAt = time.Now()
	return nil
}

func (r *memDonationRepo) Delete(_ context.Context, id string) error {
	if id == "" {
		return repository.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.donations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.donations, id)
	return nil
}

func (r *memDonationRepo) ClaimIfAvailable(_ context.Context, id, userID string) (bool, error) {
	if id == "" || userID == "" {
		return false, repository.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok || d.Status != entity.StatusAvailable {
		return false, nil
	}
	d.Status = entity.StatusBooked
	d.ClaimedByID = userID
	d.UpdatedAt = time.Now()
	return true, nil
}

func (r *memDonationRepo) Search(_ context.Context, f repository.DonationFilter) ([]*entity.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Donation
	kw := strings.ToLower(f.Keyword)
	for _, d := range r.donations {
		if f.IsHalal != nil && d.IsHalal != *f.IsHalal {
			continue
		}
		if kw != "" {
			hay := strings.ToLower(d.Name + " " + d.Location + " " + d.Description + " " + d.Category)
			if !strings.Contains(hay, kw) {
				continue
			}
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memDonationRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.donations)), nil
}

func (r *memDonationRepo) CountByHalal(_ context.Context, isHalal bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.donations {
		if d.IsHalal == isHalal {
			n++
		}
	}
	return n, nil
}

// stored returns the live record, bypassing the copy-out, for invariant checks.
func (r *memDonationRepo) stored(id string) *entity.Donation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.donations[id]
}

// memFileStore records stored blobs in memory. failStore makes Store fail so
// tests can assert nothing references a file that was never written.
type memFileStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	failStore bool
}

func newMemFileStore() *memFileStore { return &memFileStore{files: map[string][]byte{}} }

func (s *memFileStore) Store(_ context.Context, r io.Reader, ownerID, filename string) (string, error) {
	if s.failStore {
		return "", errors.New("store failed")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	name := ownerID + "_" + filename
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = b
	return name, nil
}

func (s *memFileStore) Load(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (s *memFileStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *memFileStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok, nil
}
