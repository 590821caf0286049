package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
	"github.com/iliyamo/venue-seat-layout/internal/service"
)

// RoomHandler serves rooms and the read-only views of their saved layouts.
type RoomHandler struct {
	svc    *service.LayoutService
	logger *zap.Logger
}

// NewRoomHandler constructs a RoomHandler and panics without a service.
func NewRoomHandler(svc *service.LayoutService, logger *zap.Logger) *RoomHandler {
	if svc == nil {
		panic("nil layout service passed to NewRoomHandler")
	}
	return &RoomHandler{svc: svc, logger: logger}
}

// CreateRoom handles POST /v1/rooms.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body struct {
		Name     string `json:"name"`
		SeatRows int    `json:"seat_rows"`
		SeatCols int    `json:"seat_cols"`
		Capacity int    `json:"capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}
	rm, err := h.svc.CreateRoom(c.Request().Context(), op, name, body.SeatRows, body.SeatCols, body.Capacity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, rm)
}

// ListRooms handles GET /v1/rooms.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	rooms, err := h.svc.ListRooms(c.Request().Context(), op)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"rooms": rooms, "limits": h.svc.Limits()})
}

// GetLayout handles GET /v1/rooms/:id/layout.
func (h *RoomHandler) GetLayout(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, ok := roomID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	v, err := h.svc.View(c.Request().Context(), op, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// PutLayout handles PUT /v1/rooms/:id/layout with a layout document body.
func (h *RoomHandler) PutLayout(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, ok := roomID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	var doc layout.Document
	if err := c.Bind(&doc); err != nil {
		return badRequest(c, "invalid layout document")
	}
	v, err := h.svc.ReplaceLayout(c.Request().Context(), op, id, doc)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Overlay handles GET /v1/rooms/:id/overlay?highlight=team-a,team-b.
func (h *RoomHandler) Overlay(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, ok := roomID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	var highlight []string
	for _, t := range strings.Split(c.QueryParam("highlight"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			highlight = append(highlight, t)
		}
	}
	v, err := h.svc.Overlay(c.Request().Context(), op, id, highlight)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Occupancy handles GET /v1/rooms/:id/occupancy.
func (h *RoomHandler) Occupancy(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, ok := roomID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	occ, err := h.svc.Occupancy(c.Request().Context(), op, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, occ)
}

// Dashboard handles GET /v1/rooms/occupancy.
func (h *RoomHandler) Dashboard(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	rooms, err := h.svc.Dashboard(c.Request().Context(), op)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"rooms": rooms})
}
