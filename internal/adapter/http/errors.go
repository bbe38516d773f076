package http

import (
	"errors"
	"net/http"

	"asset-custody/internal/domain/assignment"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Map domain errors → HTTP codes
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var (
		verr *assignment.ValidationError
		terr *assignment.InvalidTransitionError
		cerr *assignment.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    "validation",
			Details: []FieldError{{Field: verr.Field, Message: verr.Reason}},
		})
	case errors.Is(err, assignment.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, assignment.ErrIncidentNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "incident_not_found"})
	case errors.As(err, &cerr):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:          err.Error(),
			Code:           "version_conflict",
			CurrentVersion: cerr.Actual,
		})
	case errors.As(err, &terr):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error:         err.Error(),
			Code:          "invalid_transition",
			CurrentStatus: string(terr.Current),
		})
	default:
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
	}
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "validation",
		Details: ToFieldErrors(err),
	})
}
