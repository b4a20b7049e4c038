package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"luct-reporting/internal/auth"
	"luct-reporting/internal/catalog"
)

func (h *Handler) listCourses(c *gin.Context) {
	res, err := h.catalog.Courses(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) createCourse(c *gin.Context) {
	var in struct {
		CourseCode    string  `json:"course_code"`
		CourseName    string  `json:"course_name"`
		Stream        string  `json:"stream"`
		Venue         *string `json:"venue"`
		ScheduledTime *string `json:"scheduled_time"`
		LecturerID    *int64  `json:"lecturer_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	id, err := h.catalog.CreateCourse(c.Request.Context(), catalog.Course{
		CourseCode:    in.CourseCode,
		CourseName:    in.CourseName,
		Stream:        in.Stream,
		Venue:         in.Venue,
		ScheduledTime: in.ScheduledTime,
		LecturerID:    in.LecturerID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Course added successfully", "id": id})
}

func (h *Handler) listClasses(c *gin.Context) {
	res, err := h.catalog.Classes(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) createClass(c *gin.Context) {
	var in struct {
		ClassName       string `json:"class_name"`
		TotalRegistered int    `json:"total_registered"`
		Faculty         string `json:"faculty"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	id, err := h.catalog.CreateClass(c.Request.Context(), catalog.Class{
		ClassName:       in.ClassName,
		TotalRegistered: in.TotalRegistered,
		Faculty:         in.Faculty,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Class added successfully", "id": id})
}

func (h *Handler) listMappings(c *gin.Context) {
	res, err := h.catalog.Mappings(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) createMapping(c *gin.Context) {
	var in struct {
		ClassID  int64 `json:"class_id"`
		CourseID int64 `json:"course_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	id, err := h.catalog.CreateMapping(c.Request.Context(), in.ClassID, in.CourseID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Course assigned to class", "id": id})
}

func (h *Handler) listLecturers(c *gin.Context) {
	res, err := h.users.Lecturers(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) lecturerByID(c *gin.Context) {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	u, err := h.users.Lecturer(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) listStudents(c *gin.Context) {
	res, err := h.users.Students(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// studentOffering is an offering annotated with the caller's current
// attendance flag for the class.
type studentOffering struct {
	catalog.Offering
	AttendancePresent *int `json:"attendance_present"`
}

// studentCourses resolves the caller's class and lists its offerings with
// the current attendance flag. A student without a class sees an empty
// list, not an error.
func (h *Handler) studentCourses(c *gin.Context) {
	sc := auth.CallerScope(c)
	classID, err := h.catalog.ClassIDOfStudent(c.Request.Context(), sc.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	if classID == 0 {
		c.JSON(http.StatusOK, []studentOffering{})
		return
	}
	offerings, err := h.catalog.CoursesForClass(c.Request.Context(), classID)
	if err != nil {
		writeErr(c, err)
		return
	}
	rec, err := h.attendance.Current(c.Request.Context(), sc.UserID, classID)
	if err != nil {
		writeErr(c, err)
		return
	}
	var present *int
	if rec != nil {
		present = &rec.Present
	}
	res := make([]studentOffering, 0, len(offerings))
	for _, o := range offerings {
		res = append(res, studentOffering{Offering: o, AttendancePresent: present})
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) lecturerClasses(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.catalog.ClassesForLecturer(c.Request.Context(), sc.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) lecturerCourses(c *gin.Context) {
	sc := auth.CallerScope(c)
	res, err := h.catalog.CoursesForLecturer(c.Request.Context(), sc.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
