package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate")
)

// Role defines the permission level of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// User represents a registered user.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	Role           Role
	Bio            string
	ProfilePicture string // storage path, blob handling is external
	IsActive       bool
	CreatedAt      time.Time
}

// Course represents a course created by a teacher.
type Course struct {
	ID          int64
	Name        string
	Description string
	BannerPath  string // storage path
	TeacherID   int64
	CreatedAt   time.Time
}

// CourseContent is one unit of material posted to a course.
type CourseContent struct {
	ID        int64
	CourseID  int64
	Title     string
	Body      string
	ImagePath string     // storage path
	PDFPath   string     // storage path
	Deadline  *time.Time // nil when the content has no deadline
	CreatedAt time.Time
}

// Submission is a student's answer to one content item.
type Submission struct {
	ID          int64
	ContentID   int64
	StudentID   int64
	Text        string
	ImagePath   string // storage path
	PDFPath     string // storage path
	SubmittedAt time.Time
}

// Post is a status update on the shared feed.
type Post struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// Comment is a reply to a feed post.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// CourseFeedback is free-text feedback a student leaves on a course.
type CourseFeedback struct {
	ID        int64
	CourseID  int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// NotificationKind discriminates what a notification is about.
type NotificationKind string

const (
	// NotificationContent tells a student new content was added.
	NotificationContent NotificationKind = "content"
	// NotificationEnroll tells a teacher a student enrolled.
	NotificationEnroll NotificationKind = "enroll"
)

// Notification is a persisted in-app notification.
type Notification struct {
	ID          int64
	Kind        NotificationKind
	RecipientID int64
	ActorID     *int64 // enrolling student for enroll notifications
	CourseID    *int64
	ContentID   *int64
	CreatedAt   time.Time
}

// ChatRoom is a named chat channel.
type ChatRoom struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// ChatMessage is a persisted chat message.
type ChatMessage struct {
	ID        int64
	RoomID    int64
	UserID    int64
	Body      string
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a user. Username and email must be unique.
	CreateUser(ctx context.Context, u *User) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// SearchUsers searches users by username substring.
	SearchUsers(ctx context.Context, query string) ([]*User, error)

	// ListActiveStudents lists active users with the student role.
	ListActiveStudents(ctx context.Context) ([]*User, error)
}

// CourseStore handles course and enrollment persistence.
type CourseStore interface {
	// CreateCourse inserts a course owned by a teacher.
	CreateCourse(ctx context.Context, c *Course) (*Course, error)

	// GetCourse retrieves a course by ID.
	GetCourse(ctx context.Context, id int64) (*Course, error)

	// UpdateCourse updates name, description and banner path.
	UpdateCourse(ctx context.Context, c *Course) error

	// DeleteCourse removes a course and its dependent rows.
	DeleteCourse(ctx context.Context, id int64) error

	// ListCourses lists all courses.
	ListCourses(ctx context.Context) ([]*Course, error)

	// ListCoursesByTeacher lists courses a teacher created.
	ListCoursesByTeacher(ctx context.Context, teacherID int64) ([]*Course, error)

	// ListCoursesByStudent lists courses a student is enrolled in.
	ListCoursesByStudent(ctx context.Context, studentID int64) ([]*Course, error)

	// Enroll adds a student to a course. Enrolling twice is ErrDuplicate.
	Enroll(ctx context.Context, courseID, studentID int64) error

	// Unenroll removes a student from a course.
	Unenroll(ctx context.Context, courseID, studentID int64) error

	// IsEnrolled reports whether a student is enrolled in a course.
	IsEnrolled(ctx context.Context, courseID, studentID int64) (bool, error)

	// ListEnrolledStudents lists students enrolled in a course.
	ListEnrolledStudents(ctx context.Context, courseID int64) ([]*User, error)
}

// ContentStore handles course content persistence.
type ContentStore interface {
	// CreateContent inserts a content item for a course.
	CreateContent(ctx context.Context, c *CourseContent) (*CourseContent, error)

	// GetContent retrieves a content item by ID.
	GetContent(ctx context.Context, id int64) (*CourseContent, error)

	// ListContentByCourse lists a course's content, oldest first.
	ListContentByCourse(ctx context.Context, courseID int64) ([]*CourseContent, error)

	// DeleteContent removes a content item.
	DeleteContent(ctx context.Context, id int64) error

	// ListUpcomingDeadlines lists content with a deadline across the
	// courses a student is enrolled in, ascending by deadline.
	ListUpcomingDeadlines(ctx context.Context, studentID int64) ([]*CourseContent, error)
}

// SubmissionStore handles submission persistence.
type SubmissionStore interface {
	// CreateSubmission inserts a submission by a student.
	CreateSubmission(ctx context.Context, s *Submission) (*Submission, error)

	// GetSubmission retrieves a submission by ID.
	GetSubmission(ctx context.Context, id int64) (*Submission, error)

	// ListSubmissionsByContent lists all submissions for a content item.
	ListSubmissionsByContent(ctx context.Context, contentID int64) ([]*Submission, error)

	// GetSubmissionForStudent retrieves a student's submission for a
	// content item, if any.
	GetSubmissionForStudent(ctx context.Context, contentID, studentID int64) (*Submission, error)
}

// FeedStore handles posts, comments and course feedback.
type FeedStore interface {
	// CreatePost inserts a status update.
	CreatePost(ctx context.Context, p *Post) (*Post, error)

	// GetPost retrieves a post by ID.
	GetPost(ctx context.Context, id int64) (*Post, error)

	// ListPosts lists all posts, oldest first.
	ListPosts(ctx context.Context) ([]*Post, error)

	// DeletePost removes a post and its comments.
	DeletePost(ctx context.Context, id int64) error

	// CreateComment inserts a comment on a post.
	CreateComment(ctx context.Context, c *Comment) (*Comment, error)

	// ListComments lists a post's comments, oldest first.
	ListComments(ctx context.Context, postID int64) ([]*Comment, error)

	// CreateFeedback inserts course feedback.
	CreateFeedback(ctx context.Context, f *CourseFeedback) (*CourseFeedback, error)

	// ListFeedbackByCourse lists feedback left on a course, oldest first.
	ListFeedbackByCourse(ctx context.Context, courseID int64) ([]*CourseFeedback, error)
}

// NotificationStore handles notification persistence.
type NotificationStore interface {
	// CreateNotification inserts a notification.
	CreateNotification(ctx context.Context, n *Notification) (*Notification, error)

	// ListNotifications lists a recipient's notifications, newest first.
	ListNotifications(ctx context.Context, recipientID int64) ([]*Notification, error)
}

// ChatStore handles chat room and message persistence.
type ChatStore interface {
	// CreateChatRoom inserts a room. Duplicate names are ErrDuplicate.
	CreateChatRoom(ctx context.Context, name string) (*ChatRoom, error)

	// GetChatRoomByName retrieves a room by exact name.
	GetChatRoomByName(ctx context.Context, name string) (*ChatRoom, error)

	// ListChatRooms lists all rooms.
	ListChatRooms(ctx context.Context) ([]*ChatRoom, error)

	// AppendMessage persists a message with a server-assigned timestamp.
	AppendMessage(ctx context.Context, roomID, userID int64, body string) (*ChatMessage, error)

	// ListMessages lists a room's messages ascending by creation time.
	ListMessages(ctx context.Context, roomID int64) ([]*ChatMessage, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	CourseStore
	ContentStore
	SubmissionStore
	FeedStore
	NotificationStore
	ChatStore

	// Close closes the underlying database connection.
	Close() error
}
