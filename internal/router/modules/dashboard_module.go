package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/delcom/foodshare/internal/interface/http"
)

// DashboardModule wires the aggregate-count endpoint.
type DashboardModule struct {
	Handler *handlers.DashboardHandler
}

func NewDashboardModule(h *handlers.DashboardHandler) *DashboardModule {
	return &DashboardModule{Handler: h}
}

func (m *DashboardModule) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", m.Handler.Stats)
}
