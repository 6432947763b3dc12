package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/delcom/foodshare/internal/application"
	"github.com/delcom/foodshare/internal/interface/middleware"
	"github.com/delcom/foodshare/pkg/response"
	"github.com/delcom/foodshare/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": u.ID, "name": u.Name, "email": u.Email}, "user registered")
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": u.ID, "name": u.Name, "email": u.Email},
	}, "login successful")
}

// Logout handles POST /api/auth/logout: invalidates every token the caller
// holds, on all devices.
func (h *AuthHandler) Logout(c *gin.Context) {
	u, ok := middleware.AuthUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), u.ID); err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// Error handles GET /api/error, the allow-listed landing for rejected
// requests.
func (h *AuthHandler) Error(c *gin.Context) {
	response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
}
