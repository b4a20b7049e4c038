package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"luct-reporting/internal/auth"
	"luct-reporting/internal/search"
)

func searchRequest(c *gin.Context) search.Request {
	minRating, _ := strconv.Atoi(c.Query("minRating"))
	maxRating, _ := strconv.Atoi(c.Query("maxRating"))
	return search.Request{
		Q:         c.Query("q"),
		Stream:    c.Query("stream"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Status:    c.Query("status"),
		MinRating: minRating,
		MaxRating: maxRating,
	}
}

func (h *Handler) searchGlobal(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Global(c.Request.Context(), sc, c.Query("q"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchReports(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Reports(c.Request.Context(), sc, searchRequest(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchCourses(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Courses(c.Request.Context(), sc, searchRequest(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchStudents(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Students(c.Request.Context(), sc, searchRequest(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchLecturers(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Lecturers(c.Request.Context(), sc, searchRequest(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchClasses(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Classes(c.Request.Context(), sc, searchRequest(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchMonitoring(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Monitoring(c.Request.Context(), sc, searchRequest(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchRatings(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.search.Ratings(c.Request.Context(), sc, searchRequest(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
