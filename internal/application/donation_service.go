package application

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/delcom/foodshare/internal/domain/entity"
	"github.com/delcom/foodshare/internal/domain/repository"
	"github.com/delcom/foodshare/pkg/filestore"
	"github.com/delcom/foodshare/pkg/helpers"
)

const statsCacheKey = "donations:stats"

// DonationService owns donation listings: creation, owner-guarded mutation,
// the AVAILABLE -> BOOKED claim transition, search, and dashboard counts.
type DonationService struct {
	Donations repository.DonationRepository
	Files     filestore.FileStore
	Redis     *redis.Client
	Logger    *logrus.Logger
	ES        *elasticsearch.Client
	ESIndex   string
	StatsTTL  time.Duration
}

func NewDonationService(donations repository.DonationRepository, files filestore.FileStore, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, statsTTL time.Duration) *DonationService {
	return &DonationService{
		Donations: donations,
		Files:     files,
		Redis:     rdb,
		Logger:    logger,
		ES:        es,
		ESIndex:   esIndex,
		StatsTTL:  statsTTL,
	}
}

// DonationInput carries the mutable donation fields from a form submission.
type DonationInput struct {
	Name        string
	Location    string
	Latitude    float64
	Longitude   float64
	Category    string
	IsHalal     bool
	Portion     int
	ExpiredTime *time.Time
	Description string
	Photo       io.Reader // optional
	PhotoName   string
}

// DashboardStats are the aggregate counts shown on the dashboard.
type DashboardStats struct {
	Total    int64 `json:"total"`
	Halal    int64 `json:"halal"`
	NonHalal int64 `json:"non_halal"`
}

// Create stores a new AVAILABLE donation owned by the caller. The photo, if
// any, is stored after the row exists so the file can be named by the
// donation; photo_url is persisted only once storage succeeded, so a failed
// upload never leaves a dangling reference.
func (s *DonationService) Create(ctx context.Context, in DonationInput, owner *entity.User) (*entity.Donation, error) {
	d := &entity.Donation{
		Name:        in.Name,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Category:    in.Category,
		IsHalal:     in.IsHalal,
		Portion:     in.Portion,
		ExpiredTime: in.ExpiredTime,
		Description: in.Description,
		Status:      entity.StatusAvailable,
		CreatedByID: owner.ID,
	}
	if err := s.Donations.Create(ctx, d); err != nil {
		return nil, err
	}

	if in.Photo != nil {
		name, err := s.Files.Store(ctx, in.Photo, d.ID, in.PhotoName)
		if err != nil {
			return nil, err
		}
		if err := s.Donations.UpdatePhotoURL(ctx, d.ID, name); err != nil {
			return nil, err
		}
		d.PhotoURL = name
	}

	s.invalidateStats(ctx)
	s.indexDonation(ctx, d)
	return d, nil
}

func (s *DonationService) GetByID(ctx context.Context, id string) (*entity.Donation, error) {
	return s.Donations.GetByID(ctx, id)
}

// Update overwrites the mutable fields. Only the creator may update; anyone
// else gets ErrUnauthorized and the record is left untouched.
func (s *DonationService) Update(ctx context.Context, id string, in DonationInput, user *entity.User) (*entity.Donation, error) {
	d, err := s.Donations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsOwner(user.ID) {
		return nil, ErrUnauthorized
	}

	d.Name = in.Name
	d.Location = in.Location
	d.Latitude = in.Latitude
	d.Longitude = in.Longitude
	d.Category = in.Category
	d.IsHalal = in.IsHalal
	d.Portion = in.Portion
	d.ExpiredTime = in.ExpiredTime
	d.Description = in.Description

	if in.Photo != nil {
		name, err := s.Files.Store(ctx, in.Photo, d.ID, in.PhotoName)
		if err != nil {
			return nil, err
		}
		d.PhotoURL = name
	}

	if err := s.Donations.Update(ctx, d); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	s.indexDonation(ctx, d)
	return d, nil
}

// Delete removes a donation. Non-owners get ErrUnauthorized; the same policy
// as Update rather than a silent no-op. The photo file is removed best
// effort after the row is gone.
func (s *DonationService) Delete(ctx context.Context, id string, user *entity.User) error {
	d, err := s.Donations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !d.IsOwner(user.ID) {
		return ErrUnauthorized
	}
	if err := s.Donations.Delete(ctx, id); err != nil {
		return err
	}

	if d.PhotoURL != "" && s.Files != nil {
		if err := s.Files.Delete(ctx, d.PhotoURL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("file", d.PhotoURL).Warn("failed to delete donation photo")
		}
	}

	s.invalidateStats(ctx)
	s.removeFromIndex(ctx, id)
	return nil
}

// Claim attempts the AVAILABLE -> BOOKED transition for the caller. The
// storage layer arbitrates, so under concurrent claims exactly one caller
// gets claimed=true. A donation that is already booked (or expired) is a
// no-op, not an error: claimed=false, nil. A missing donation is ErrNotFound.
func (s *DonationService) Claim(ctx context.Context, id string, user *entity.User) (bool, error) {
	won, err := s.Donations.ClaimIfAvailable(ctx, id, user.ID)
	if err != nil {
		return false, err
	}
	if won {
		if d, gerr := s.Donations.GetByID(ctx, id); gerr == nil {
			s.indexDonation(ctx, d)
		}
		return true, nil
	}
	// Distinguish "already booked" from "no such donation".
	if _, err := s.Donations.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (s *DonationService) Search(ctx context.Context, keyword string, isHalal *bool) ([]*entity.Donation, error) {
	return s.Donations.Search(ctx, repository.DonationFilter{Keyword: keyword, IsHalal: isHalal})
}

// Stats returns dashboard counts, cached in redis for a short TTL.
func (s *DonationService) Stats(ctx context.Context) (*DashboardStats, error) {
	if s.Redis != nil {
		var cached DashboardStats
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, statsCacheKey, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	total, err := s.Donations.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	halal, err := s.Donations.CountByHalal(ctx, true)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{Total: total, Halal: halal, NonHalal: total - halal}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, statsCacheKey, stats, s.StatsTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("failed to cache dashboard stats")
		}
	}
	return stats, nil
}

func (s *DonationService) invalidateStats(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, statsCacheKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("failed to invalidate stats cache")
	}
}

// indexDonation mirrors the donation into Elasticsearch, best effort: listing
// correctness never depends on the index.
func (s *DonationService) indexDonation(ctx context.Context, d *entity.Donation) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"location":    d.Location,
		"category":    d.Category,
		"description": d.Description,
		"is_halal":    d.IsHalal,
		"status":      d.Status,
		"created_at":  d.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  d.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: d.ID, Body: strings.NewReader(string(b))}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("donation_id", d.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("donation_id", d.ID).Warn("es index response error")
	}
}

func (s *DonationService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if res, err := req.Do(c, s.ES); err == nil {
		_ = res.Body.Close()
	}
}

// SearchIndexed queries the Elasticsearch index with a multi_match over the
// text fields. Returns the raw source documents; empty when the index is not
// configured.
func (s *DonationService) SearchIndexed(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "location", "description", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
