package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/course"
	"github.com/tripjeju/courseapi/export"
	mw "github.com/tripjeju/courseapi/middleware"
)

type planRequest struct {
	Plan []course.DayPlan `json:"plan"`
}

type appendRequest struct {
	ContentIDs []int64 `json:"contentIds"`
}

type replaceRequest struct {
	CourseName    string   `json:"courseName"`
	PlanningDates []string `json:"planningDates"`
}

// httpError maps course and catalog errors onto HTTP statuses.
func (h *Handler) httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, course.ErrCourseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "course not found")
	case errors.Is(err, course.ErrDuplicateContent):
		return echo.NewHTTPError(http.StatusConflict, "duplicate")
	case errors.Is(err, course.ErrInvalidDate),
		errors.Is(err, catalog.ErrContentNotFound),
		errors.Is(err, catalog.ErrInvalidTargetTable):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.logger.Error("course request failed",
		zap.String("path", c.Path()),
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func userID(c echo.Context) (int64, error) {
	id, ok := mw.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func courseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid course id")
	}
	return id, nil
}

// owner extracts the authenticated user and the course id of a request.
func owner(c echo.Context) (int64, int64, error) {
	uid, err := userID(c)
	if err != nil {
		return 0, 0, err
	}
	cid, err := courseID(c)
	if err != nil {
		return 0, 0, err
	}
	return uid, cid, nil
}

// CreateCourse stores a new course laid out as the requested plan.
func (h *Handler) CreateCourse(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.courses.Create(c.Request().Context(), uid, req.Plan)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Courses lists the courses of the caller.
func (h *Handler) Courses(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	list, err := h.courses.List(c.Request().Context(), uid)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Course returns the assembled itinerary of one course.
func (h *Handler) Course(c echo.Context) error {
	uid, cid, err := owner(c)
	if err != nil {
		return err
	}

	it, err := h.courses.Get(c.Request().Context(), uid, cid)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, it)
}

// AppendContents adds content to a course.
func (h *Handler) AppendContents(c echo.Context) error {
	uid, cid, err := owner(c)
	if err != nil {
		return err
	}
	var req appendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.ContentIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "contentIds is required")
	}

	name, err := h.courses.Append(c.Request().Context(), uid, cid, req.ContentIDs)
	if err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"courseName": name})
}

// ReplaceCourse renames a course and spreads its content over new dates.
func (h *Handler) ReplaceCourse(c echo.Context) error {
	uid, cid, err := owner(c)
	if err != nil {
		return err
	}
	var req replaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.courses.Replace(c.Request().Context(), uid, cid, req.CourseName, req.PlanningDates); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
}

// UpdatePlan rewrites a course as the requested plan.
func (h *Handler) UpdatePlan(c echo.Context) error {
	uid, cid, err := owner(c)
	if err != nil {
		return err
	}
	var req planRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.courses.DiffUpdate(c.Request().Context(), uid, cid, req.Plan); err != nil {
		return h.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
}

// ExportICS downloads a course as an iCalendar file.
func (h *Handler) ExportICS(c echo.Context) error {
	uid, cid, err := owner(c)
	if err != nil {
		return err
	}

	it, err := h.courses.Get(c.Request().Context(), uid, cid)
	if err != nil {
		return h.httpError(c, err)
	}
	out, err := export.ICS(it, h.now())
	if err != nil {
		return h.httpError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename(cid, "ics")+`"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(out))
}

// ExportXLSX downloads a course as a spreadsheet.
func (h *Handler) ExportXLSX(c echo.Context) error {
	uid, cid, err := owner(c)
	if err != nil {
		return err
	}

	it, err := h.courses.Get(c.Request().Context(), uid, cid)
	if err != nil {
		return h.httpError(c, err)
	}
	buf, err := export.XLSX(it)
	if err != nil {
		return h.httpError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename(cid, "xlsx")+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
