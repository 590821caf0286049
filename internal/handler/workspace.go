package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-seat-layout/internal/config"
	"github.com/iliyamo/venue-seat-layout/internal/layout"
	"github.com/iliyamo/venue-seat-layout/internal/service"
)

// WorkspaceHandler exposes the operator's in-memory layout editor.  Every
// mutating endpoint answers with the updated workspace view.
type WorkspaceHandler struct {
	ws     *service.Workspaces
	logger *zap.Logger
}

// NewWorkspaceHandler constructs a WorkspaceHandler.
func NewWorkspaceHandler(ws *service.Workspaces, logger *zap.Logger) *WorkspaceHandler {
	if ws == nil {
		panic("nil workspaces passed to NewWorkspaceHandler")
	}
	return &WorkspaceHandler{ws: ws, logger: logger}
}

// reply writes the result of a workspace operation.
func (h *WorkspaceHandler) reply(c echo.Context, v service.WorkspaceView, err error) error {
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, v)
}

// SelectRoom handles POST /v1/workspace/room {room_id}.
func (h *WorkspaceHandler) SelectRoom(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body struct {
		RoomID uint64 `json:"room_id"`
	}
	if err := c.Bind(&body); err != nil || body.RoomID == 0 {
		return badRequest(c, "room_id is required")
	}
	v, err := h.ws.Select(c.Request().Context(), op, body.RoomID)
	return h.reply(c, v, err)
}

// Get handles GET /v1/workspace.
func (h *WorkspaceHandler) Get(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	v, err := h.ws.View(op)
	return h.reply(c, v, err)
}

// BeginStroke handles POST /v1/workspace/stroke/begin {tool, row, col}.
func (h *WorkspaceHandler) BeginStroke(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body struct {
		Tool string `json:"tool"`
		positionBody
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	tool, err := layout.ParseTool(body.Tool)
	if err != nil {
		return badRequest(c, err.Error())
	}
	v, err := h.ws.BeginStroke(op, tool, body.position())
	return h.reply(c, v, err)
}

// MoveStroke handles POST /v1/workspace/stroke/move {row, col}.
func (h *WorkspaceHandler) MoveStroke(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body positionBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, err := h.ws.MoveStroke(op, body.position())
	return h.reply(c, v, err)
}

// EndStroke handles POST /v1/workspace/stroke/end.
func (h *WorkspaceHandler) EndStroke(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	v, err := h.ws.EndStroke(op)
	return h.reply(c, v, err)
}

// SetCell handles POST /v1/workspace/cells {row, col, type}.
func (h *WorkspaceHandler) SetCell(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body struct {
		positionBody
		Type layout.CellType `json:"type"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, err := h.ws.SetCell(op, body.position(), body.Type)
	return h.reply(c, v, err)
}

// ClearCell handles DELETE /v1/workspace/cells {row, col}.
func (h *WorkspaceHandler) ClearCell(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body positionBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, err := h.ws.ClearCell(op, body.position())
	return h.reply(c, v, err)
}

// AddSection handles POST /v1/workspace/sections.  The body names a preset
// or gives height, width and type; row and col locate the top-left corner.
func (h *WorkspaceHandler) AddSection(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body struct {
		positionBody
		Preset string          `json:"preset"`
		Height int             `json:"height"`
		Width  int             `json:"width"`
		Type   layout.CellType `json:"type"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, err := h.ws.AddSection(op, service.SectionRequest{
		Preset:  body.Preset,
		TopLeft: body.position(),
		Height:  body.Height,
		Width:   body.Width,
		Type:    body.Type,
	})
	return h.reply(c, v, err)
}

// ListPresets handles GET /v1/workspace/presets.
func (h *WorkspaceHandler) ListPresets(c echo.Context) error {
	presets := h.ws.Presets()
	out := make([]config.SectionPreset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return c.JSON(http.StatusOK, map[string]any{"presets": out})
}

// Resize handles POST /v1/workspace/resize {rows, cols}.
func (h *WorkspaceHandler) Resize(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body struct {
		Rows int `json:"rows"`
		Cols int `json:"cols"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	v, err := h.ws.Resize(op, body.Rows, body.Cols)
	return h.reply(c, v, err)
}

// Merge handles POST /v1/workspace/groups {positions, team_size}.
func (h *WorkspaceHandler) Merge(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var body struct {
		Positions []layout.Position `json:"positions"`
		TeamSize  int               `json:"team_size"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	id, v, err := h.ws.Merge(op, body.Positions, body.TeamSize)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"group_id": id, "workspace": v})
}

// Dissolve handles DELETE /v1/workspace/groups/:group_id.
func (h *WorkspaceHandler) Dissolve(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	v, err := h.ws.Dissolve(op, c.Param("group_id"))
	return h.reply(c, v, err)
}

// Save handles POST /v1/workspace/save.
func (h *WorkspaceHandler) Save(c echo.Context) error {
	op, err := operatorID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	v, err := h.ws.Save(c.Request().Context(), op)
	return h.reply(c, v, err)
}
