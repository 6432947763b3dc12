package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/delcom/foodshare/internal/application"
	"github.com/delcom/foodshare/internal/domain/entity"
	"github.com/delcom/foodshare/internal/interface/middleware"
	"github.com/delcom/foodshare/pkg/filestore"
	"github.com/delcom/foodshare/pkg/response"
	"github.com/delcom/foodshare/pkg/validation"
)

type DonationHandler struct {
	Svc    *application.DonationService
	Files  filestore.FileStore
	Logger *logrus.Logger
}

func NewDonationHandler(svc *application.DonationService, files filestore.FileStore, logger *logrus.Logger) *DonationHandler {
	return &DonationHandler{Svc: svc, Files: files, Logger: logger}
}

// donationForm is bound from multipart form fields; the photo part is read
// separately.
type donationForm struct {
	Name        string  `form:"name" binding:"required"`
	Location    string  `form:"location" binding:"required"`
	Latitude    float64 `form:"latitude" binding:"omitempty,latitude"`
	Longitude   float64 `form:"longitude" binding:"omitempty,longitude"`
	Category    string  `form:"category" binding:"required"`
	IsHalal     bool    `form:"is_halal"`
	Portion     int     `form:"portion" binding:"required,gt=0"`
	ExpiredTime string  `form:"expired_time"` // RFC 3339 or yyyy-MM-ddTHH:mm
	Description string  `form:"description"`
}

func (f *donationForm) toInput(c *gin.Context) (application.DonationInput, error) {
	in := application.DonationInput{
		Name:        f.Name,
		Location:    f.Location,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		Category:    f.Category,
		IsHalal:     f.IsHalal,
		Portion:     f.Portion,
		Description: f.Description,
	}
	if f.ExpiredTime != "" {
		t, err := parseExpiry(f.ExpiredTime)
		if err != nil {
			return in, err
		}
		in.ExpiredTime = &t
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return in, nil // photo is optional
	}
	src, err := file.Open()
	if err != nil {
		return in, err
	}
	// gin keeps the part in memory/tempfile until the request ends, so the
	// reader stays valid for the handler's lifetime.
	in.Photo = src
	in.PhotoName = file.Filename
	c.Set("photoCloser", src)
	return in, nil
}

func parseExpiry(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", s)
}

func closePhoto(c *gin.Context) {
	if v, ok := c.Get("photoCloser"); ok {
		if closer, ok := v.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}

// List handles GET /api/donations?keyword=&is_halal=.
func (h *DonationHandler) List(c *gin.Context) {
	keyword := c.Query("keyword")
	var isHalal *bool
	if v := c.Query("is_halal"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "is_halal must be a boolean", nil)
			return
		}
		isHalal = &b
	}

	donations, err := h.Svc.Search(c.Request.Context(), keyword, isHalal)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	out := make([]gin.H, 0, len(donations))
	for _, d := range donations {
		out = append(out, donationJSON(d))
	}
	response.Success(c, http.StatusOK, out, "donations")
}

// SearchIndexed handles GET /api/donations/search?q=&size= against the
// Elasticsearch index.
func (h *DonationHandler) SearchIndexed(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchIndexed(c.Request.Context(), q, size)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}

// Detail handles GET /api/donations/:id.
func (h *DonationHandler) Detail(c *gin.Context) {
	d, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, donationJSON(d), "donation")
}

// Create handles POST /api/donations (multipart).
func (h *DonationHandler) Create(c *gin.Context) {
	u, _ := middleware.AuthUser(c)
	var form donationForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in, err := form.toInput(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"expired_time": "must be a valid timestamp"})
		return
	}
	defer closePhoto(c)

	d, err := h.Svc.Create(c.Request.Context(), in, u)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, donationJSON(d), "donation created")
}

// Update handles PUT /api/donations/:id (multipart, owner only).
func (h *DonationHandler) Update(c *gin.Context) {
	u, _ := middleware.AuthUser(c)
	var form donationForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in, err := form.toInput(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"expired_time": "must be a valid timestamp"})
		return
	}
	defer closePhoto(c)

	d, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in, u)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, donationJSON(d), "donation updated")
}

// Delete handles DELETE /api/donations/:id (owner only).
func (h *DonationHandler) Delete(c *gin.Context) {
	u, _ := middleware.AuthUser(c)
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), u); err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "donation deleted")
}

// Claim handles POST /api/donations/:id/claim. Claiming something already
// booked is not an error; claimed reports whether this caller won.
func (h *DonationHandler) Claim(c *gin.Context) {
	u, _ := middleware.AuthUser(c)
	claimed, err := h.Svc.Claim(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	msg := "donation claimed"
	if !claimed {
		msg = "donation is no longer available"
	}
	response.Success(c, http.StatusOK, gin.H{"claimed": claimed}, msg)
}

// Photo handles GET /api/donations/photos/:file, streaming a stored photo.
func (h *DonationHandler) Photo(c *gin.Context) {
	name := c.Param("file")
	rc, err := h.Files.Load(c.Request.Context(), name)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "photo not found", nil)
		return
	}
	defer func() { _ = rc.Close() }()
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func donationJSON(d *entity.Donation) gin.H {
	out := gin.H{
		"id":          d.ID,
		"name":        d.Name,
		"location":    d.Location,
		"latitude":    d.Latitude,
		"longitude":   d.Longitude,
		"category":    d.Category,
		"is_halal":    d.IsHalal,
		"portion":     d.Portion,
		"description": d.Description,
		"photo_url":   d.PhotoURL,
		"status":      d.Status,
		"created_by":  d.CreatedByID,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}
	if d.ExpiredTime != nil {
		out["expired_time"] = d.ExpiredTime
	}
	if d.ClaimedByID != "" {
		out["claimed_by"] = d.ClaimedByID
	}
	return out
}
