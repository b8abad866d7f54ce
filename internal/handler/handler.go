// Package handler wires the HTTP surface: request decoding, identity
// extraction and the mapping of service errors onto status codes. All
// business rules live in the service layer.
package handler

import (
	"errors"
	"net/http"

	"trainingforms/internal/middleware"
	"trainingforms/internal/service"
	"trainingforms/pkg/response"

	"github.com/gin-gonic/gin"
)

// currentIdentity reads the caller resolved by the auth middleware.
func currentIdentity(c *gin.Context) service.Identity {
	return service.Identity{
		Email:   c.GetString(middleware.ContextUserEmail),
		IsAdmin: c.GetBool(middleware.ContextIsAdmin),
	}
}

// respondServiceError translates service sentinel errors into HTTP codes.
// Validation failures carry their field errors; everything unexpected is a
// 500 with the bare message.
func respondServiceError(c *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(http.StatusBadRequest, ve.Result.Errors))
		return
	}

	switch {
	case errors.Is(err, service.ErrFormNotFound), errors.Is(err, service.ErrAdminNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrNotAllowed):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
	case errors.Is(err, service.ErrNeedsChanges):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, service.ErrNoMatchingForms):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrAdminExists):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}
