package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/delcom/foodshare/internal/interface/http"
)

// AuthModule wires registration, login, logout, and the error landing route.
// Register, login, and the error page sit on the gate's public allowlist;
// logout requires an authenticated caller.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.GET("/error", m.Handler.Error)
}
