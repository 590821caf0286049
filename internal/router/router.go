package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/venue-seat-layout/internal/handler"    // layout and workspace handlers
	"github.com/iliyamo/venue-seat-layout/internal/middleware" // JWT, role, cache and rate-limit middlewares
)

// Middlewares groups the optional per-route middlewares.  Nil entries are
// skipped.
type Middlewares struct {
	Cache     echo.MiddlewareFunc // response cache for read-only views
	RateLimit echo.MiddlewareFunc // token bucket for layout writes
}

func (m Middlewares) cache() []echo.MiddlewareFunc {
	if m.Cache == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m.Cache}
}

func (m Middlewares) rateLimit() []echo.MiddlewareFunc {
	if m.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m.RateLimit}
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	// Load balancers and monitoring probe this endpoint.
	e.GET("/healthz", handler.Health(db))
}

// RegisterRooms registers room management and the read-only layout views
// under /v1.  Every route requires a valid JWT with the OPERATOR or ADMIN
// role.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string, mw Middlewares) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOperator, middleware.RoleAdmin),
	)

	// ---- Rooms ----
	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms", h.ListRooms, mw.cache()...)

	// ---- Views ----
	g.GET("/rooms/occupancy", h.Dashboard, mw.cache()...)
	g.GET("/rooms/:id/layout", h.GetLayout, mw.cache()...)
	g.GET("/rooms/:id/overlay", h.Overlay, mw.cache()...)
	g.GET("/rooms/:id/occupancy", h.Occupancy, mw.cache()...)

	// Whole-document replacement counts against the save budget.
	g.PUT("/rooms/:id/layout", h.PutLayout, mw.rateLimit()...)
}

// RegisterWorkspace registers the operator's editing workspace under
// /v1/workspace.  Workspace reads are never cached: they reflect unsaved
// edits.
func RegisterWorkspace(e *echo.Echo, h *handler.WorkspaceHandler, jwtSecret string, mw Middlewares) {
	g := e.Group(
		"/v1/workspace",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOperator, middleware.RoleAdmin),
	)

	g.POST("/room", h.SelectRoom)
	g.GET("", h.Get)
	g.GET("/presets", h.ListPresets)

	// ---- Drawing ----
	g.POST("/stroke/begin", h.BeginStroke)
	g.POST("/stroke/move", h.MoveStroke)
	g.POST("/stroke/end", h.EndStroke)
	g.POST("/cells", h.SetCell)
	g.DELETE("/cells", h.ClearCell)
	g.POST("/sections", h.AddSection)
	g.POST("/resize", h.Resize)

	// ---- Groups ----
	g.POST("/groups", h.Merge)
	g.DELETE("/groups/:group_id", h.Dissolve)

	g.POST("/save", h.Save, mw.rateLimit()...)
}
