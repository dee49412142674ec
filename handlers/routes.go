package handlers

import (
	"github.com/labstack/echo/v4"
)

// Register mounts the API under /api. auth guards every route but signin.
func (h *Handler) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	// Public
	e.POST("/api/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", auth)
	api.POST("/password-hash", h.PasswordHash)
	api.POST("/courses", h.CreateCourse)
	api.GET("/courses", h.Courses)
	api.GET("/courses/:id", h.Course)
	api.POST("/courses/:id/contents", h.AppendContents)
	api.PUT("/courses/:id", h.ReplaceCourse)
	api.PUT("/courses/:id/plan", h.UpdatePlan)
	api.GET("/courses/:id/export.ics", h.ExportICS)
	api.GET("/courses/:id/export.xlsx", h.ExportXLSX)
}
