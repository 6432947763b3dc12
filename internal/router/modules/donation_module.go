package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/delcom/foodshare/internal/interface/http"
)

// DonationModule wires donation listing, CRUD, claim, photo serving, and the
// indexed search endpoint.
type DonationModule struct {
	Handler *handlers.DonationHandler
}

func NewDonationModule(h *handlers.DonationHandler) *DonationModule {
	return &DonationModule{Handler: h}
}

func (m *DonationModule) Register(rg *gin.RouterGroup) {
	rg.GET("/donations", m.Handler.List)
	rg.GET("/donations/search", m.Handler.SearchIndexed)
	rg.POST("/donations", m.Handler.Create)
	rg.GET("/donations/photos/:file", m.Handler.Photo)
	rg.GET("/donations/:id", m.Handler.Detail)
	rg.PUT("/donations/:id", m.Handler.Update)
	rg.DELETE("/donations/:id", m.Handler.Delete)
	rg.POST("/donations/:id/claim", m.Handler.Claim)
}
