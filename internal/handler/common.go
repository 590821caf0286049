package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
	"github.com/iliyamo/venue-seat-layout/internal/middleware"
	"github.com/iliyamo/venue-seat-layout/internal/repository"
	"github.com/iliyamo/venue-seat-layout/internal/service"
)

var errUnauthorized = errors.New("unauthorized")

// operatorID returns the authenticated operator or errUnauthorized.
func operatorID(c echo.Context) (uint64, error) {
	id, ok := middleware.OperatorID(c)
	if !ok {
		return 0, errUnauthorized
	}
	return id, nil
}

// roomID parses the :id path parameter.
func roomID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id != 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, layout.ErrOutOfBounds),
		errors.Is(err, layout.ErrInvalidGroupSize),
		errors.Is(err, layout.ErrNotAllSeats),
		errors.Is(err, service.ErrInvalidCellType),
		errors.Is(err, service.ErrUnknownPreset):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, layout.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, layout.ErrAlreadyGrouped),
		errors.Is(err, service.ErrSaveInProgress),
		errors.Is(err, service.ErrNoRoomSelected),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, layout.ErrCorruptLayout):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": msg}.  Unexpected errors are logged
// and hidden behind a generic message.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		msg = "internal error"
	}
	return c.JSON(status, map[string]string{"error": msg})
}

// positionBody is a {row, col} request body.
type positionBody struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p positionBody) position() layout.Position {
	return layout.Position{Row: p.Row, Col: p.Col}
}
