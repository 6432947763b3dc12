package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delcom/foodshare/internal/application"
	"github.com/delcom/foodshare/internal/domain/entity"
	"github.com/delcom/foodshare/internal/domain/repository"
	handlers "github.com/delcom/foodshare/internal/interface/http"
	"github.com/delcom/foodshare/internal/interface/middleware"
	"github.com/delcom/foodshare/internal/router"
	"github.com/delcom/foodshare/internal/router/modules"
	"github.com/delcom/foodshare/pkg/helpers"
	"github.com/delcom/foodshare/pkg/validation"
)

// In-memory stores backing the full HTTP stack under test.

type userStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func (s *userStore) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	u.ID = "user-" + strconv.Itoa(s.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return nil
}

func (s *userStore) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *userStore) Update(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = u
	return nil
}

func (s *userStore) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	return nil
}

type tokenStore struct {
	mu   sync.Mutex
	rows map[string][]string // userID -> tokens
}

func (s *tokenStore) Save(_ context.Context, t *entity.AuthToken) error {
	if t.UserID == "" || t.Token == "" {
		return repository.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.UserID] = append(s.rows[t.UserID], t.Token)
	return nil
}

func (s *tokenStore) FindUserToken(_ context.Context, userID, token string) (*entity.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range s.rows[userID] {
		if tok == token {
			return &entity.AuthToken{UserID: userID, Token: token}, nil
		}
	}
	return nil, nil
}

func (s *tokenStore) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, userID)
	return nil
}

type donationStore struct {
	mu        sync.Mutex
	seq       int
	donations map[string]*entity.Donation
}

func (s *donationStore) Create(_ context.Context, d *entity.Donation) error {
	if d.CreatedByID == "" {
		return repository.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	d.ID = "donation-" + strconv.Itoa(s.seq)
	if d.Status == "" {
		d.Status = entity.StatusAvailable
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	s.donations[d.ID] = d
	return nil
}

func (s *donationStore) GetByID(_ context.Context, id string) (*entity.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.donations[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *donationStore) Update(_ context.Context, d *entity.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[d.ID]; !ok {
		return repository.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	cp := *d
	s.donations[d.ID] = &cp
	return nil
}

func (s *donationStore) UpdatePhotoURL(_ context.Context, id, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.PhotoURL = photoURL
	return nil
}

func (s *donationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.donations, id)
	return nil
}

func (s *donationStore) ClaimIfAvailable(_ context.Context, id, userID string) (bool, error) {
	if id == "" || userID == "" {
		return false, repository.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donations[id]
	if !ok || d.Status != entity.StatusAvailable {
		return false, nil
	}
	d.Status = entity.StatusBooked
	d.ClaimedByID = userID
	d.UpdatedAt = time.Now()
	return true, nil
}

func (s *donationStore) Search(_ context.Context, f repository.DonationFilter) ([]*entity.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Donation
	for _, d := range s.donations {
		if f.IsHalal != nil && d.IsHalal != *f.IsHalal {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.Keyword)) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (s *donationStore) CountAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.donations)), nil
}

func (s *donationStore) CountByHalal(_ context.Context, isHalal bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, d := range s.donations {
		if d.IsHalal == isHalal {
			n++
		}
	}
	return n, nil
}

type blobStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *blobStore) Store(_ context.Context, r io.Reader, ownerID, filename string) (string, error) {
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

func (s *blobStore) Load(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *blobStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *blobStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[name]
	return ok, nil
}

// newTestAPI assembles the real router, middleware, handlers, and services on
// top of the in-memory stores.
func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	users := &userStore{users: map[string]*entity.User{}}
	tokens := &tokenStore{rows: map[string][]string{}}
	donations := &donationStore{donations: map[string]*entity.Donation{}}
	files := &blobStore{files: map[string][]byte{}}
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	userSvc := application.NewUserService(users, tokens, jwt, nil, logger)
	donationSvc := application.NewDonationService(donations, files, nil, logger, nil, "", 0)

	engine := gin.New()
	reg := router.NewRegistry(engine)
	reg.Use(middleware.Auth(jwt, tokens, users, router.PublicPrefixes))
	reg.Add(modules.NewAuthModule(handlers.NewAuthHandler(userSvc, logger)))
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger)))
	reg.Add(modules.NewDonationModule(handlers.NewDonationHandler(donationSvc, files, logger)))
	reg.Add(modules.NewDashboardModule(handlers.NewDashboardHandler(donationSvc, logger)))
	reg.RegisterAll()
	return engine
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(engine *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func doForm(engine *gin.Engine, method, path, token string, fields map[string]string) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func signUp(t *testing.T, engine *gin.Engine, name, email string) string {
	t.Helper()
	w, _ := doJSON(engine, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "password-123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := doJSON(engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": "password-123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

var donationFields = map[string]string{
	"name":        "Nasi Kotak",
	"location":    "Jakarta Selatan",
	"latitude":    "-6.26",
	"longitude":   "106.81",
	"category":    "rice",
	"is_halal":    "true",
	"portion":     "10",
	"description": "leftover from an office event",
}

func TestAPI_DonationLifecycle(t *testing.T) {
	engine := newTestAPI(t)

	tokenA := signUp(t, engine, "Alice", "alice@example.com")
	tokenB := signUp(t, engine, "Budi", "budi@example.com")
	tokenC := signUp(t, engine, "Citra", "citra@example.com")

	// A lists a donation.
	w, env := doForm(engine, http.MethodPost, "/api/donations", tokenA, donationFields)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "AVAILABLE", created.Status)

	// B claims it.
	w, env = doJSON(engine, http.MethodPost, "/api/donations/"+created.ID+"/claim", tokenB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "donation claimed", env.Message)

	var claim struct {
		Claimed bool `json:"claimed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &claim))
	assert.True(t, claim.Claimed)

	// The detail now shows BOOKED with B as claimer.
	w, env = doJSON(engine, http.MethodGet, "/api/donations/"+created.ID, tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Status    string `json:"status"`
		ClaimedBy string `json:"claimed_by"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "BOOKED", detail.Status)
	assert.NotEmpty(t, detail.ClaimedBy)

	// A second claim is a no-op, and B keeps the donation.
	w, env = doJSON(engine, http.MethodPost, "/api/donations/"+created.ID+"/claim", tokenC, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "donation is no longer available", env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &claim))
	assert.False(t, claim.Claimed)

	// C may not delete a donation C does not own.
	w, env = doJSON(engine, http.MethodDelete, "/api/donations/"+created.ID, tokenC, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "you are not the owner of this resource", env.Message)

	// The owner may, even after the claim.
	w, _ = doJSON(engine, http.MethodDelete, "/api/donations/"+created.ID, tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(engine, http.MethodGet, "/api/donations/"+created.ID, tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_UpdateOwnership(t *testing.T) {
	engine := newTestAPI(t)

	tokenA := signUp(t, engine, "Alice", "alice@example.com")
	tokenB := signUp(t, engine, "Budi", "budi@example.com")

	w, env := doForm(engine, http.MethodPost, "/api/donations", tokenA, donationFields)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	updated := map[string]string{}
	for k, v := range donationFields {
		updated[k] = v
	}
	updated["name"] = "Nasi Kotak (fresh batch)"

	// A non-owner is rejected.
	w, env = doForm(engine, http.MethodPut, "/api/donations/"+created.ID, tokenB, updated)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "you are not the owner of this resource", env.Message)

	// The owner succeeds.
	w, env = doForm(engine, http.MethodPut, "/api/donations/"+created.ID, tokenA, updated)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var d struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "Nasi Kotak (fresh batch)", d.Name)
}

func TestAPI_AuthGateOnProtectedRoutes(t *testing.T) {
	engine := newTestAPI(t)

	w, env := doJSON(engine, http.MethodGet, "/api/donations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication token not found", env.Message)

	w, env = doJSON(engine, http.MethodGet, "/api/error", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication required", env.Message)
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	engine := newTestAPI(t)
	token := signUp(t, engine, "Alice", "alice@example.com")

	w, _ := doJSON(engine, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(engine, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(engine, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication token expired", env.Message)
}

func TestAPI_PasswordChangeSignsOutEverywhere(t *testing.T) {
	engine := newTestAPI(t)
	token := signUp(t, engine, "Alice", "alice@example.com")

	w, _ := doJSON(engine, http.MethodPut, "/api/users/me/password", token, gin.H{
		"password": "password-123", "new_password": "password-456",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = doJSON(engine, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The new password logs in; the old one does not.
	w, _ = doJSON(engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password-123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = doJSON(engine, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password-456",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_RegisterValidation(t *testing.T) {
	engine := newTestAPI(t)

	w, env := doJSON(engine, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alice", "email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fail", env.Status)
}

func TestAPI_DashboardStats(t *testing.T) {
	engine := newTestAPI(t)
	token := signUp(t, engine, "Alice", "alice@example.com")

	w, _ := doForm(engine, http.MethodPost, "/api/donations", token, donationFields)
	require.Equal(t, http.StatusCreated, w.Code)

	nonHalal := map[string]string{}
	for k, v := range donationFields {
		nonHalal[k] = v
	}
	nonHalal["name"] = "Sate Campur"
	nonHalal["is_halal"] = "false"
	w, _ = doForm(engine, http.MethodPost, "/api/donations", token, nonHalal)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(engine, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		Total    int64 `json:"total"`
		Halal    int64 `json:"halal"`
		NonHalal int64 `json:"non_halal"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Halal)
	assert.Equal(t, int64(1), stats.NonHalal)
}

func TestAPI_ListFilters(t *testing.T) {
	engine := newTestAPI(t)
	token := signUp(t, engine, "Alice", "alice@example.com")

	w, _ := doForm(engine, http.MethodPost, "/api/donations", token, donationFields)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(engine, http.MethodGet, "/api/donations?keyword=nasi", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, env = doJSON(engine, http.MethodGet, "/api/donations?is_halal=false", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = nil
	_ = json.Unmarshal(env.Data, &list)
	assert.Empty(t, list)

	w, _ = doJSON(engine, http.MethodGet, "/api/donations?is_halal=banana", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
