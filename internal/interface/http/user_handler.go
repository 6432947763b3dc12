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

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type updatePasswordRequest struct {
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	u, _ := middleware.AuthUser(c)
	response.Success(c, http.StatusOK, gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}, "profile")
}

// UpdateMe handles PUT /api/users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	u, _ := middleware.AuthUser(c)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	updated, err := h.Svc.UpdateProfile(c.Request.Context(), u.ID, req.Name, req.Email)
	if err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":    updated.ID,
		"name":  updated.Name,
		"email": updated.Email,
	}, "profile updated")
}

// UpdatePassword handles PUT /api/users/me/password. On success every token
// the user holds is invalidated, so the client must log in again.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	u, _ := middleware.AuthUser(c)
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.UpdatePassword(c.Request.Context(), u.ID, req.Password, req.NewPassword); err != nil {
		respondServiceError(c, err, h.Logger)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "password updated")
}
