package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"luct-reporting/internal/apperr"
	"luct-reporting/internal/attendance"
	"luct-reporting/internal/auth"
	"luct-reporting/internal/catalog"
	"luct-reporting/internal/rating"
	"luct-reporting/internal/report"
	"luct-reporting/internal/scope"
	"luct-reporting/internal/search"
	"luct-reporting/internal/user"
)

// Handler wires the services to gin routes.
type Handler struct {
	users      *user.Service
	catalog    *catalog.Service
	attendance *attendance.Service
	reports    *report.Service
	ratings    *rating.Service
	search     *search.Engine

	jwtIssuer string
	jwtKey    string
	accessTTL time.Duration
}

// New creates a handler.
func New(users *user.Service, cat *catalog.Service, att *attendance.Service,
	rep *report.Service, rat *rating.Service, se *search.Engine,
	jwtIssuer, jwtKey string, accessTTL time.Duration) *Handler {
	return &Handler{
		users:      users,
		catalog:    cat,
		attendance: att,
		reports:    rep,
		ratings:    rat,
		search:     se,
		jwtIssuer:  jwtIssuer,
		jwtKey:     jwtKey,
		accessTTL:  accessTTL,
	}
}

// Register mounts all API routes.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)

	authed := api.Group("", auth.Identity(h.jwtKey, h.jwtIssuer))

	// catalog
	authed.GET("/courses", h.listCourses)
	authed.POST("/courses", auth.RequireRole(scope.RolePL, scope.RolePRL), h.createCourse)
	authed.GET("/classes", h.listClasses)
	authed.POST("/classes", auth.RequireRole(scope.RolePL), h.createClass)
	authed.GET("/class-courses", h.listMappings)
	authed.POST("/class-courses", auth.RequireRole(scope.RolePL), h.createMapping)
	authed.GET("/lecturers", h.listLecturers)
	authed.GET("/lecturers/:id", h.lecturerByID)
	authed.GET("/students", auth.RequireRole(scope.RoleLecturer, scope.RolePRL, scope.RolePL), h.listStudents)

	// student surface
	authed.GET("/student/courses", auth.RequireRole(scope.RoleStudent), h.studentCourses)
	authed.POST("/attendance", auth.RequireRole(scope.RoleStudent), h.markAttendance)
	authed.GET("/attendance", h.currentAttendance)
	authed.POST("/rating", auth.RequireRole(scope.RoleStudent), h.rateLecturer)
	authed.GET("/student/ratings", auth.RequireRole(scope.RoleStudent), h.myRatings)

	// lecturer surface
	authed.GET("/lecturer/classes", auth.RequireRole(scope.RoleLecturer), h.lecturerClasses)
	authed.GET("/lecturer/courses", auth.RequireRole(scope.RoleLecturer), h.lecturerCourses)
	authed.POST("/class-rating", auth.RequireRole(scope.RoleLecturer), h.rateClass)
	authed.GET("/lecturer/class-ratings", auth.RequireRole(scope.RoleLecturer), h.myClassRatings)

	// reports and feedback
	authed.POST("/reports", auth.RequireRole(scope.RoleLecturer, scope.RolePRL, scope.RolePL), h.createReport)
	authed.GET("/reports", h.listReports)
	authed.GET("/prl/reports", auth.RequireRole(scope.RolePRL), h.listReports)
	authed.GET("/pl/reports", auth.RequireRole(scope.RolePL), h.listReports)
	authed.GET("/prl/reports/summary", auth.RequireRole(scope.RolePRL, scope.RolePL), h.reportSummary)
	authed.POST("/feedback", auth.RequireRole(scope.RolePRL), h.attachFeedback)

	// monitoring and rating reviews
	authed.GET("/monitoring", h.monitoring)
	authed.GET("/prl/ratings", auth.RequireRole(scope.RolePRL, scope.RolePL), h.studentRatings)
	authed.GET("/prl/class-ratings", auth.RequireRole(scope.RolePRL, scope.RolePL), h.classRatings)
	authed.GET("/ratings/average", auth.RequireRole(scope.RolePRL, scope.RolePL), h.ratingAverages)

	// search
	authed.GET("/search", h.searchGlobal)
	authed.GET("/search/global", h.searchGlobal)
	authed.GET("/search/reports", h.searchReports)
	authed.GET("/search/courses", h.searchCourses)
	authed.GET("/search/students", auth.RequireRole(scope.RoleLecturer, scope.RolePRL, scope.RolePL), h.searchStudents)
	authed.GET("/search/lecturers", h.searchLecturers)
	authed.GET("/search/classes", h.searchClasses)
	authed.GET("/search/monitoring", h.searchMonitoring)
	authed.GET("/search/ratings", h.searchRatings)
}

// writeErr maps the error taxonomy onto HTTP statuses. Storage failures
// stay generic so internals do not leak.
func writeErr(c *gin.Context, err error) {
	var v *apperr.ValidationError
	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Msg})
	case errors.Is(err, apperr.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found in this class"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperr.ErrScopeViolation):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
