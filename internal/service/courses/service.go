// Package courses implements the enrollment and content flows that fan
// out notifications and email on top of plain course CRUD.
package courses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/notify"
	"github.com/studysphere/studysphere-server/internal/store"
)

// Common errors for course operations.
var (
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrNotCourseOwner  = errors.New("not the course owner")
)

// Service provides course business logic.
type Service struct {
	store  store.Store
	mailer notify.Mailer
	log    *zerolog.Logger
}

// New creates a course service.
func New(st store.Store, mailer notify.Mailer, logger *zerolog.Logger) *Service {
	return &Service{
		store:  st,
		mailer: mailer,
		log:    logger,
	}
}

// Enroll adds a student to a course, records an enrollment notification
// for the teacher and enqueues an email to them. Email dispatch is
// fire-and-forget: a failed enqueue is logged, never surfaced.
func (s *Service) Enroll(ctx context.Context, courseID, studentID int64) error {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	student, err := s.store.GetUserByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}

	if err := s.store.Enroll(ctx, courseID, studentID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("enroll: %w", err)
	}

	if _, err := s.store.CreateNotification(ctx, &store.Notification{
		Kind:        store.NotificationEnroll,
		RecipientID: course.TeacherID,
		ActorID:     &student.ID,
		CourseID:    &course.ID,
	}); err != nil {
		s.log.Error().Err(err).Int64("course_id", courseID).Msg("failed to create enroll notification")
	}

	teacher, err := s.store.GetUserByID(ctx, course.TeacherID)
	if err != nil {
		s.log.Error().Err(err).Int64("teacher_id", course.TeacherID).Msg("failed to resolve teacher for email")
		return nil
	}

	subject := "A new student enrolled on one of your courses!"
	body := fmt.Sprintf("New student enrolled on course %s\nStudent: %s", course.Name, student.Username)
	if err := s.mailer.Enqueue(ctx, subject, body, []string{teacher.Email}); err != nil {
		s.log.Error().Err(err).Str("course", course.Name).Msg("failed to enqueue enrollment email")
	}

	return nil
}

// Unenroll removes a student from a course.
func (s *Service) Unenroll(ctx context.Context, courseID, studentID int64) error {
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	if err := s.store.Unenroll(ctx, courseID, studentID); err != nil {
		return fmt.Errorf("unenroll: %w", err)
	}
	return nil
}

// ContentInput carries the fields for new course content.
type ContentInput struct {
	CourseID  int64
	Title     string
	Body      string
	ImagePath string
	PDFPath   string
	Deadline  *time.Time
}

// AddContent creates a content item on a course the teacher owns,
// records one notification per enrolled student and enqueues a single
// email to all of them.
func (s *Service) AddContent(ctx context.Context, teacherID int64, in ContentInput) (*store.CourseContent, error) {
	course, err := s.store.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.TeacherID != teacherID {
		return nil, ErrNotCourseOwner
	}

	content, err := s.store.CreateContent(ctx, &store.CourseContent{
		CourseID:  in.CourseID,
		Title:     in.Title,
		Body:      in.Body,
		ImagePath: in.ImagePath,
		PDFPath:   in.PDFPath,
		Deadline:  in.Deadline,
	})
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	students, err := s.store.ListEnrolledStudents(ctx, course.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("course_id", course.ID).Msg("failed to list students for content fan-out")
		return content, nil
	}

	recipients := make([]string, 0, len(students))
	for _, student := range students {
		recipients = append(recipients, student.Email)
		if _, err := s.store.CreateNotification(ctx, &store.Notification{
			Kind:        store.NotificationContent,
			RecipientID: student.ID,
			CourseID:    &course.ID,
			ContentID:   &content.ID,
		}); err != nil {
			s.log.Error().Err(err).Int64("student_id", student.ID).Msg("failed to create content notification")
		}
	}

	if len(recipients) > 0 {
		deadline := "none"
		if content.Deadline != nil {
			deadline = content.Deadline.Format(time.RFC3339)
		}
		subject := "New course content added!"
		body := fmt.Sprintf("New content added on course %s\nContent: %s\nDescription: %s\nDeadline: %s",
			course.Name, content.Title, content.Body, deadline)
		if err := s.mailer.Enqueue(ctx, subject, body, recipients); err != nil {
			s.log.Error().Err(err).Str("course", course.Name).Msg("failed to enqueue content email")
		}
	}

	return content, nil
}

// RemoveStudents detaches students from a course the teacher owns.
// Used by the course edit flow.
func (s *Service) RemoveStudents(ctx context.Context, teacherID, courseID int64, studentIDs []int64) error {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	if course.TeacherID != teacherID {
		return ErrNotCourseOwner
	}

	for _, id := range studentIDs {
		if err := s.store.Unenroll(ctx, courseID, id); err != nil {
			return fmt.Errorf("remove student %d: %w", id, err)
		}
	}
	return nil
}
