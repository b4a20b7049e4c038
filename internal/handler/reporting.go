package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"luct-reporting/internal/auth"
	"luct-reporting/internal/rating"
	"luct-reporting/internal/report"
)

func (h *Handler) markAttendance(c *gin.Context) {
	var in struct {
		StudentID int64 `json:"student_id"`
		ClassID   int64 `json:"class_id"`
		Present   *int  `json:"present"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sc := auth.CallerScope(c)
	if in.StudentID == 0 {
		in.StudentID = sc.UserID
	}
	if err := sc.CheckSelf(in.StudentID); err != nil {
		writeErr(c, err)
		return
	}
	present := 0
	if in.Present != nil {
		present = *in.Present
	}
	if err := h.attendance.Mark(c.Request.Context(), in.StudentID, in.ClassID, present); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attendance recorded"})
}

func (h *Handler) currentAttendance(c *gin.Context) {
	studentID, _ := strconv.ParseInt(c.Query("studentId"), 10, 64)
	classID, _ := strconv.ParseInt(c.Query("classId"), 10, 64)
	if studentID == 0 || classID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studentId and classId are required"})
		return
	}
	sc := auth.CallerScope(c)
	if err := sc.CheckSelf(studentID); err != nil {
		writeErr(c, err)
		return
	}
	rec, err := h.attendance.Current(c.Request.Context(), studentID, classID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) monitoring(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.attendance.MonitoringFor(c.Request.Context(), sc)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) createReport(c *gin.Context) {
	var in struct {
		FacultyName           string  `json:"faculty_name"`
		ClassName             string  `json:"class_name"`
		WeekOfReporting       string  `json:"week_of_reporting"`
		DateOfLecture         string  `json:"date_of_lecture"`
		CourseName            string  `json:"course_name"`
		CourseCode            string  `json:"course_code"`
		LecturerName          string  `json:"lecturer_name"`
		ActualStudentsPresent int     `json:"actual_students_present"`
		TotalStudents         int     `json:"total_students"`
		Venue                 *string `json:"venue"`
		ScheduledTime         *string `json:"scheduled_time"`
		Topic                 *string `json:"topic"`
		LearningOutcomes      *string `json:"learning_outcomes"`
		Recommendations       *string `json:"recommendations"`
		Stream                string  `json:"stream"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	date, err := time.Parse("2006-01-02", in.DateOfLecture)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_of_lecture must be YYYY-MM-DD"})
		return
	}
	id, err := h.reports.Create(c.Request.Context(), report.Report{
		FacultyName:           in.FacultyName,
		ClassName:             in.ClassName,
		WeekOfReporting:       in.WeekOfReporting,
		DateOfLecture:         date,
		CourseName:            in.CourseName,
		CourseCode:            in.CourseCode,
		LecturerName:          in.LecturerName,
		ActualStudentsPresent: in.ActualStudentsPresent,
		TotalStudents:         in.TotalStudents,
		Venue:                 in.Venue,
		ScheduledTime:         in.ScheduledTime,
		Topic:                 in.Topic,
		LearningOutcomes:      in.LearningOutcomes,
		Recommendations:       in.Recommendations,
		Stream:                in.Stream,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Report submitted successfully", "id": id})
}

func dateRange(c *gin.Context) report.DateRange {
	return report.DateRange{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}

func (h *Handler) listReports(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.reports.ListFor(c.Request.Context(), sc, dateRange(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) reportSummary(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.reports.SummaryFor(c.Request.Context(), sc, dateRange(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) attachFeedback(c *gin.Context) {
	var in struct {
		ReportID int64  `json:"report_id"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sc := auth.CallerScope(c)
	if err := h.reports.AttachFeedback(c.Request.Context(), in.ReportID, sc.UserID, in.Feedback); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback saved"})
}

func (h *Handler) rateLecturer(c *gin.Context) {
	var in struct {
		LecturerID int64   `json:"lecturer_id"`
		Rating     int     `json:"rating"`
		Comment    *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sc := auth.CallerScope(c)
	res, err := h.ratings.RateLecturer(c.Request.Context(), rating.StudentRating{
		StudentID:  sc.UserID,
		LecturerID: in.LecturerID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	status := http.StatusOK
	if res.Action == "created" {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"message": "Rating saved", "id": res.ID, "action": res.Action})
}

func (h *Handler) myRatings(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.ratings.MyRatings(c.Request.Context(), sc.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) rateClass(c *gin.Context) {
	var in struct {
		ClassID  int64   `json:"class_id"`
		CourseID int64   `json:"course_id"`
		Rating   int     `json:"rating"`
		Comment  *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sc := auth.CallerScope(c)
	res, err := h.ratings.RateClass(c.Request.Context(), rating.ClassRating{
		LecturerID: sc.UserID,
		ClassID:    in.ClassID,
		CourseID:   in.CourseID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	status := http.StatusOK
	if res.Action == "created" {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"message": "Class rating saved", "id": res.ID, "action": res.Action})
}

func (h *Handler) myClassRatings(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.ratings.MyClassRatings(c.Request.Context(), sc.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func detailFilter(c *gin.Context) rating.DetailFilter {
	return rating.DetailFilter{
		Stream:    c.Query("stream"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}

func (h *Handler) studentRatings(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.ratings.StudentRatingsFor(c.Request.Context(), sc, detailFilter(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) classRatings(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.ratings.ClassRatingsFor(c.Request.Context(), sc, detailFilter(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ratingAverages(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.ratings.AveragesFor(c.Request.Context(), sc)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
