package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/delcom/foodshare/internal/application"
	"github.com/delcom/foodshare/internal/domain/repository"
	"github.com/delcom/foodshare/pkg/response"
)

// respondServiceError maps service-layer errors onto HTTP statuses. Unknown
// errors are logged and surfaced as a generic 500 so internal detail never
// reaches the client.
func respondServiceError(c *gin.Context, err error, logger *logrus.Logger) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, repository.ErrInvalidArgument):
		response.Error[any](c, http.StatusBadRequest, "invalid argument", nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error[any](c, http.StatusForbidden, "you are not the owner of this resource", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrWrongPassword):
		response.Error[any](c, http.StatusBadRequest, "wrong password", nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
