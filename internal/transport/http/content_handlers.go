package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/service/courses"
	"github.com/studysphere/studysphere-server/internal/store"
)

// ContentHandlers provides HTTP handlers for course content and submissions.
type ContentHandlers struct {
	store   store.Store
	courses *courses.Service
	log     *zerolog.Logger
}

// NewContentHandlers creates a new content handlers instance.
func NewContentHandlers(st store.Store, svc *courses.Service, logger *zerolog.Logger) *ContentHandlers {
	return &ContentHandlers{
		store:   st,
		courses: svc,
		log:     logger,
	}
}

// AddContentRequest represents the add content request body.
type AddContentRequest struct {
	Title     string     `json:"title" binding:"required,min=1,max=200"`
	Body      string     `json:"body"`
	ImagePath string     `json:"image_path"`
	PDFPath   string     `json:"pdf_path"`
	Deadline  *time.Time `json:"deadline"`
}

// ContentResponse represents course content in API responses.
type ContentResponse struct {
	ID        int64  `json:"id"`
	CourseID  int64  `json:"course_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ImagePath string `json:"image_path,omitempty"`
	PDFPath   string `json:"pdf_path,omitempty"`
	Deadline  string `json:"deadline,omitempty"`
	CreatedAt string `json:"created_at"`
}

// SubmitRequest represents the submission upload request body.
type SubmitRequest struct {
	Text      string `json:"text"`
	ImagePath string `json:"image_path"`
	PDFPath   string `json:"pdf_path"`
}

// SubmissionResponse represents a submission in API responses.
type SubmissionResponse struct {
	ID          int64  `json:"id"`
	ContentID   int64  `json:"content_id"`
	StudentID   int64  `json:"student_id"`
	Text        string `json:"text"`
	ImagePath   string `json:"image_path,omitempty"`
	PDFPath     string `json:"pdf_path,omitempty"`
	SubmittedAt string `json:"submitted_at"`
}

func contentToResponse(ct *store.CourseContent) ContentResponse {
	resp := ContentResponse{
		ID:        ct.ID,
		CourseID:  ct.CourseID,
		Title:     ct.Title,
		Body:      ct.Body,
		ImagePath: ct.ImagePath,
		PDFPath:   ct.PDFPath,
		CreatedAt: ct.CreatedAt.Format(time.RFC3339),
	}
	if ct.Deadline != nil {
		resp.Deadline = ct.Deadline.Format(time.RFC3339)
	}
	return resp
}

func submissionToResponse(s *store.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          s.ID,
		ContentID:   s.ContentID,
		StudentID:   s.StudentID,
		Text:        s.Text,
		ImagePath:   s.ImagePath,
		PDFPath:     s.PDFPath,
		SubmittedAt: s.SubmittedAt.Format(time.RFC3339),
	}
}

// AddContent adds content to a course the caller teaches and notifies
// enrolled students.
// POST /api/courses/:id/content
func (h *ContentHandlers) AddContent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid add content request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	content, err := h.courses.AddContent(c.Request.Context(), userID, courses.ContentInput{
		CourseID:  courseID,
		Title:     req.Title,
		Body:      req.Body,
		ImagePath: req.ImagePath,
		PDFPath:   req.PDFPath,
		Deadline:  req.Deadline,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, contentToResponse(content))
	case errors.Is(err, courses.ErrNotCourseOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found"})
	default:
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to add content")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// ListContent lists content for a course.
// GET /api/courses/:id/content
func (h *ContentHandlers) ListContent(c *gin.Context) {
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	content, err := h.store.ListContentByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to list content")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ContentResponse, 0, len(content))
	for _, item := range content {
		response = append(response, contentToResponse(item))
	}
	c.JSON(http.StatusOK, response)
}

// GetContent returns a single content item.
// GET /api/content/:id
func (h *ContentHandlers) GetContent(c *gin.Context) {
	contentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	content, err := h.store.GetContent(c.Request.Context(), contentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "content not found"})
			return
		}
		h.log.Error().Err(err).Int64("content_id", contentID).Msg("failed to load content")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, contentToResponse(content))
}

// DeleteContent removes a content item from a course the caller teaches.
// DELETE /api/content/:id
func (h *ContentHandlers) DeleteContent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	contentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	content, err := h.store.GetContent(ctx, contentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "content not found"})
			return
		}
		h.log.Error().Err(err).Int64("content_id", contentID).Msg("failed to load content")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	course, err := h.store.GetCourse(ctx, content.CourseID)
	if err != nil {
		h.log.Error().Err(err).Int64("course_id", content.CourseID).Msg("failed to load course")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if course.TeacherID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
		return
	}

	if err := h.store.DeleteContent(ctx, contentID); err != nil {
		h.log.Error().Err(err).Int64("content_id", contentID).Msg("failed to delete content")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit records the calling student's submission for a content item.
// POST /api/content/:id/submissions
func (h *ContentHandlers) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	contentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" && req.ImagePath == "" && req.PDFPath == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "submission is empty"})
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.GetContent(ctx, contentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "content not found"})
			return
		}
		h.log.Error().Err(err).Int64("content_id", contentID).Msg("failed to load content")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	submission, err := h.store.CreateSubmission(ctx, &store.Submission{
		ContentID: contentID,
		StudentID: userID,
		Text:      req.Text,
		ImagePath: req.ImagePath,
		PDFPath:   req.PDFPath,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("content_id", contentID).Int64("student_id", userID).Msg("failed to create submission")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, submissionToResponse(submission))
}

// ListSubmissions lists all submissions for a content item (teacher view).
// GET /api/content/:id/submissions
func (h *ContentHandlers) ListSubmissions(c *gin.Context) {
	contentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submissions, err := h.store.ListSubmissionsByContent(c.Request.Context(), contentID)
	if err != nil {
		h.log.Error().Err(err).Int64("content_id", contentID).Msg("failed to list submissions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		response = append(response, submissionToResponse(s))
	}
	c.JSON(http.StatusOK, response)
}

// GetOwnSubmission returns the caller's submission for a content item,
// 404 when nothing was submitted yet.
// GET /api/content/:id/submission
func (h *ContentHandlers) GetOwnSubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	contentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submission, err := h.store.GetSubmissionForStudent(c.Request.Context(), contentID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "submission not found"})
			return
		}
		h.log.Error().Err(err).Int64("content_id", contentID).Msg("failed to load submission")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, submissionToResponse(submission))
}

// GetSubmission returns a submission by id. Readable by the student
// who made it and by any teacher.
// GET /api/submissions/:id
func (h *ContentHandlers) GetSubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submission, err := h.store.GetSubmission(c.Request.Context(), submissionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "submission not found"})
			return
		}
		h.log.Error().Err(err).Int64("submission_id", submissionID).Msg("failed to load submission")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if submission.StudentID != userID && currentRole(c) != store.RoleTeacher {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
		return
	}
	c.JSON(http.StatusOK, submissionToResponse(submission))
}

// ListDeadlines returns upcoming deadlines for the caller's enrolled courses.
// GET /api/deadlines
func (h *ContentHandlers) ListDeadlines(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	content, err := h.store.ListUpcomingDeadlines(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list deadlines")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ContentResponse, 0, len(content))
	for _, item := range content {
		response = append(response, contentToResponse(item))
	}
	c.JSON(http.StatusOK, response)
}
