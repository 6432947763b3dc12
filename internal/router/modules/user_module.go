package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/delcom/foodshare/internal/interface/http"
)

// UserModule wires the profile endpoints. All of them sit behind the auth
// gate applied at the /api group.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users/me", m.Handler.Me)
	rg.PUT("/users/me", m.Handler.UpdateMe)
	rg.PUT("/users/me/password", m.Handler.UpdatePassword)
}
