package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/delcom/foodshare/internal/application"
	"github.com/delcom/foodshare/pkg/response"
)

type DashboardHandler struct {
	Svc    *application.DonationService
	Logger *logrus.Logger
}

func NewDashboardHandler(svc *application.DonationService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Svc: svc, Logger: logger}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, stats, "dashboard stats")
}
