package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/service/courses"
	"github.com/studysphere/studysphere-server/internal/store"
)

// CourseHandlers provides HTTP handlers for course endpoints.
type CourseHandlers struct {
	store   store.Store
	courses *courses.Service
	log     *zerolog.Logger
}

// NewCourseHandlers creates a new course handlers instance.
func NewCourseHandlers(st store.Store, svc *courses.Service, logger *zerolog.Logger) *CourseHandlers {
	return &CourseHandlers{
		store:   st,
		courses: svc,
		log:     logger,
	}
}

// CreateCourseRequest represents the create course request body.
type CreateCourseRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	BannerPath  string `json:"banner_path"`
}

// UpdateCourseRequest represents the course edit request body.
type UpdateCourseRequest struct {
	Name             string  `json:"name" binding:"required,min=1,max=100"`
	Description      string  `json:"description"`
	BannerPath       string  `json:"banner_path"`
	StudentsToRemove []int64 `json:"students_to_remove"`
}

// CourseResponse represents a course in API responses.
type CourseResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BannerPath  string `json:"banner_path"`
	TeacherID   int64  `json:"teacher_id"`
	CreatedAt   string `json:"created_at"`
}

// CourseDetailResponse is a course with its content and feedback.
type CourseDetailResponse struct {
	CourseResponse
	Content  []ContentResponse  `json:"content"`
	Feedback []FeedbackResponse `json:"feedback"`
}

// FeedbackResponse represents course feedback in API responses.
type FeedbackResponse struct {
	ID        int64  `json:"id"`
	CourseID  int64  `json:"course_id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// FeedbackRequest represents the leave feedback request body.
type FeedbackRequest struct {
	Text string `json:"text" binding:"required"`
}

// NotificationResponse represents a notification in API responses.
type NotificationResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	ActorID   *int64 `json:"actor_id,omitempty"`
	CourseID  *int64 `json:"course_id,omitempty"`
	ContentID *int64 `json:"content_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func courseToResponse(c *store.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		BannerPath:  c.BannerPath,
		TeacherID:   c.TeacherID,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

// parseIDParam reads an int64 path parameter, replying 400 on failure.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// CreateCourse handles course creation by a teacher.
// POST /api/courses
func (h *CourseHandlers) CreateCourse(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create course request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	course, err := h.store.CreateCourse(c.Request.Context(), &store.Course{
		Name:        req.Name,
		Description: req.Description,
		BannerPath:  req.BannerPath,
		TeacherID:   userID,
	})
	if err != nil {
		h.log.Error().Err(err).Str("course_name", req.Name).Msg("failed to create course")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("course_name", course.Name).Int64("course_id", course.ID).Int64("teacher_id", userID).Msg("course created")
	c.JSON(http.StatusCreated, courseToResponse(course))
}

// ListCourses lists courses. The filter query selects the view:
// "available" (default) excludes the caller's enrollments, "enrolled"
// returns them, "taught" returns courses the caller created.
// GET /api/courses?filter=
func (h *CourseHandlers) ListCourses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	var (
		list []*store.Course
		err  error
	)
	switch c.DefaultQuery("filter", "available") {
	case "enrolled":
		list, err = h.store.ListCoursesByStudent(ctx, userID)
	case "taught":
		list, err = h.store.ListCoursesByTeacher(ctx, userID)
	case "available":
		var all, enrolled []*store.Course
		all, err = h.store.ListCourses(ctx)
		if err == nil {
			enrolled, err = h.store.ListCoursesByStudent(ctx, userID)
		}
		if err == nil {
			taken := make(map[int64]struct{}, len(enrolled))
			for _, course := range enrolled {
				taken[course.ID] = struct{}{}
			}
			for _, course := range all {
				if _, ok := taken[course.ID]; !ok {
					list = append(list, course)
				}
			}
		}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid filter"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list courses")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]CourseResponse, 0, len(list))
	for _, course := range list {
		response = append(response, courseToResponse(course))
	}
	c.JSON(http.StatusOK, response)
}

// GetCourse returns a course with its content and feedback.
// GET /api/courses/:id
func (h *CourseHandlers) GetCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	course, err := h.store.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found"})
			return
		}
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to load course")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	content, err := h.store.ListContentByCourse(ctx, courseID)
	if err != nil {
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to list content")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	feedback, err := h.store.ListFeedbackByCourse(ctx, courseID)
	if err != nil {
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to list feedback")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	detail := CourseDetailResponse{
		CourseResponse: courseToResponse(course),
		Content:        make([]ContentResponse, 0, len(content)),
		Feedback:       make([]FeedbackResponse, 0, len(feedback)),
	}
	for _, item := range content {
		detail.Content = append(detail.Content, contentToResponse(item))
	}
	for _, f := range feedback {
		detail.Feedback = append(detail.Feedback, FeedbackResponse{
			ID:        f.ID,
			CourseID:  f.CourseID,
			UserID:    f.UserID,
			Text:      f.Text,
			CreatedAt: f.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateCourse edits a course the caller owns, optionally detaching students.
// PUT /api/courses/:id
func (h *CourseHandlers) UpdateCourse(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	ctx := c.Request.Context()

	course, err := h.store.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found"})
			return
		}
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to load course")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if course.TeacherID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
		return
	}

	course.Name = req.Name
	course.Description = req.Description
	if req.BannerPath != "" {
		course.BannerPath = req.BannerPath
	}
	if err := h.store.UpdateCourse(ctx, course); err != nil {
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to update course")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if len(req.StudentsToRemove) > 0 {
		if err := h.courses.RemoveStudents(ctx, userID, courseID, req.StudentsToRemove); err != nil {
			h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to remove students")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, courseToResponse(course))
}

// DeleteCourse removes a course.
// DELETE /api/courses/:id
func (h *CourseHandlers) DeleteCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteCourse(c.Request.Context(), courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found"})
			return
		}
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to delete course")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Enroll enrolls the calling student in a course.
// POST /api/courses/:id/enroll
func (h *CourseHandlers) Enroll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.courses.Enroll(c.Request.Context(), courseID, userID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, courses.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already enrolled"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found"})
	default:
		h.log.Error().Err(err).Int64("course_id", courseID).Int64("user_id", userID).Msg("failed to enroll")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// Unenroll removes the caller from a course.
// POST /api/courses/:id/unenroll
func (h *CourseHandlers) Unenroll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.courses.Unenroll(c.Request.Context(), courseID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found"})
			return
		}
		h.log.Error().Err(err).Int64("course_id", courseID).Int64("user_id", userID).Msg("failed to unenroll")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// LeaveFeedback records a student's feedback on a course.
// POST /api/courses/:id/feedback
func (h *CourseHandlers) LeaveFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found"})
			return
		}
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to load course")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	feedback, err := h.store.CreateFeedback(ctx, &store.CourseFeedback{
		CourseID: courseID,
		UserID:   userID,
		Text:     req.Text,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to create feedback")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, FeedbackResponse{
		ID:        feedback.ID,
		CourseID:  feedback.CourseID,
		UserID:    feedback.UserID,
		Text:      feedback.Text,
		CreatedAt: feedback.CreatedAt.Format(time.RFC3339),
	})
}

// ListNotifications returns the caller's notifications, newest first.
// GET /api/notifications
func (h *CourseHandlers) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	notifications, err := h.store.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list notifications")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, NotificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			ActorID:   n.ActorID,
			CourseID:  n.CourseID,
			ContentID: n.ContentID,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, response)
}
