package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/studysphere/studysphere-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	username        TEXT NOT NULL UNIQUE,
	email           TEXT NOT NULL UNIQUE,
	password_hash   TEXT NOT NULL,
	first_name      TEXT NOT NULL DEFAULT '',
	last_name       TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL DEFAULT 'student',
	bio             TEXT NOT NULL DEFAULT '',
	profile_picture TEXT NOT NULL DEFAULT 'default_profile.jpg',
	is_active       BOOLEAN NOT NULL DEFAULT 1,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS courses (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	banner_path TEXT NOT NULL DEFAULT 'default_banner_image.jpg',
	teacher_id  INTEGER NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (teacher_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS enrollments (
	course_id   INTEGER NOT NULL,
	student_id  INTEGER NOT NULL,
	enrolled_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (course_id, student_id),
	FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
	FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS course_contents (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id  INTEGER NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	image_path TEXT NOT NULL DEFAULT '',
	pdf_path   TEXT NOT NULL DEFAULT '',
	deadline   DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS submissions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	content_id   INTEGER NOT NULL,
	student_id   INTEGER NOT NULL,
	text         TEXT NOT NULL DEFAULT '',
	image_path   TEXT NOT NULL DEFAULT '',
	pdf_path     TEXT NOT NULL DEFAULT '',
	submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (content_id) REFERENCES course_contents(id) ON DELETE CASCADE,
	FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS posts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	text       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id    INTEGER NOT NULL,
	user_id    INTEGER NOT NULL,
	text       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS course_feedback (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	course_id  INTEGER NOT NULL,
	user_id    INTEGER NOT NULL,
	text       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (course_id) REFERENCES courses(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notifications (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	kind         TEXT NOT NULL,
	recipient_id INTEGER NOT NULL,
	actor_id     INTEGER,
	course_id    INTEGER,
	content_id   INTEGER,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS chat_rooms (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id    INTEGER NOT NULL,
	user_id    INTEGER NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (room_id) REFERENCES chat_rooms(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_room ON chat_messages(room_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(student_id);
CREATE INDEX IF NOT EXISTS idx_course_contents_course ON course_contents(course_id);
`

// New creates a new SQLite store and ensures the schema exists.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to seed rows alongside the schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// mapErr converts driver errors into store sentinel errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		if se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return store.ErrDuplicate
		}
	}
	return err
}

// ==== UserStore implementation ====

const userColumns = `id, username, email, password_hash, first_name, last_name, role, bio, profile_picture, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var u store.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.Bio,
		&u.ProfilePicture,
		&u.IsActive,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *store.User) (*store.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role, bio, profile_picture)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	role := u.Role
	if role == "" {
		role = store.RoleStudent
	}
	picture := u.ProfilePicture
	if picture == "" {
		picture = "default_profile.jpg"
	}
	result, err := s.db.ExecContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, role, u.Bio, picture)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("query user: %w", mapErr(err))
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("query user: %w", mapErr(err))
	}
	return u, nil
}

// SearchUsers searches users by username substring.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query string) ([]*store.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username LIKE ? ORDER BY username LIMIT 50`
	rows, err := s.db.QueryContext(ctx, q, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users := []*store.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListActiveStudents lists active users with the student role.
func (s *SQLiteStore) ListActiveStudents(ctx context.Context) ([]*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = 1 AND role = ? ORDER BY username`
	rows, err := s.db.QueryContext(ctx, query, store.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	users := []*store.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ==== CourseStore implementation ====

const courseColumns = `id, name, description, banner_path, teacher_id, created_at`

func scanCourse(row interface{ Scan(...any) error }) (*store.Course, error) {
	var c store.Course
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.BannerPath, &c.TeacherID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCourse inserts a course owned by a teacher.
func (s *SQLiteStore) CreateCourse(ctx context.Context, c *store.Course) (*store.Course, error) {
	banner := c.BannerPath
	if banner == "" {
		banner = "default_banner_image.jpg"
	}
	query := `INSERT INTO courses (name, description, banner_path, teacher_id) VALUES (?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, c.Name, c.Description, banner, c.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.GetCourse(ctx, id)
}

// GetCourse retrieves a course by ID.
func (s *SQLiteStore) GetCourse(ctx context.Context, id int64) (*store.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`
	c, err := scanCourse(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("query course: %w", mapErr(err))
	}
	return c, nil
}

// UpdateCourse updates name, description and banner path.
func (s *SQLiteStore) UpdateCourse(ctx context.Context, c *store.Course) error {
	query := `UPDATE courses SET name = ?, description = ?, banner_path = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, c.Name, c.Description, c.BannerPath, c.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", mapErr(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteCourse removes a course and its dependent rows.
func (s *SQLiteStore) DeleteCourse(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) queryCourses(ctx context.Context, query string, args ...any) ([]*store.Course, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	courses := []*store.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListCourses lists all courses.
func (s *SQLiteStore) ListCourses(ctx context.Context) ([]*store.Course, error) {
	return s.queryCourses(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY id`)
}

// ListCoursesByTeacher lists courses a teacher created.
func (s *SQLiteStore) ListCoursesByTeacher(ctx context.Context, teacherID int64) ([]*store.Course, error) {
	return s.queryCourses(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE teacher_id = ? ORDER BY id`, teacherID)
}

// ListCoursesByStudent lists courses a student is enrolled in.
func (s *SQLiteStore) ListCoursesByStudent(ctx context.Context, studentID int64) ([]*store.Course, error) {
	query := `
		SELECT c.id, c.name, c.description, c.banner_path, c.teacher_id, c.created_at
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.student_id = ?
		ORDER BY c.id
	`
	return s.queryCourses(ctx, query, studentID)
}

// Enroll adds a student to a course.
func (s *SQLiteStore) Enroll(ctx context.Context, courseID, studentID int64) error {
	query := `INSERT INTO enrollments (course_id, student_id) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, courseID, studentID); err != nil {
		return fmt.Errorf("insert enrollment: %w", mapErr(err))
	}
	return nil
}

// Unenroll removes a student from a course.
func (s *SQLiteStore) Unenroll(ctx context.Context, courseID, studentID int64) error {
	query := `DELETE FROM enrollments WHERE course_id = ? AND student_id = ?`
	if _, err := s.db.ExecContext(ctx, query, courseID, studentID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// IsEnrolled reports whether a student is enrolled in a course.
func (s *SQLiteStore) IsEnrolled(ctx context.Context, courseID, studentID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE course_id = ? AND student_id = ?`
	var count int
	if err := s.db.QueryRowContext(ctx, query, courseID, studentID).Scan(&count); err != nil {
		return false, fmt.Errorf("query enrollment: %w", err)
	}
	return count > 0, nil
}

// ListEnrolledStudents lists students enrolled in a course.
func (s *SQLiteStore) ListEnrolledStudents(ctx context.Context, courseID int64) ([]*store.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name,
		       u.role, u.bio, u.profile_picture, u.is_active, u.created_at
		FROM users u
		JOIN enrollments e ON e.student_id = u.id
		WHERE e.course_id = ?
		ORDER BY u.username
	`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	defer rows.Close()

	users := []*store.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ==== ContentStore implementation ====

const contentColumns = `id, course_id, title, body, image_path, pdf_path, deadline, created_at`

func scanContent(row interface{ Scan(...any) error }) (*store.CourseContent, error) {
	var c store.CourseContent
	err := row.Scan(&c.ID, &c.CourseID, &c.Title, &c.Body, &c.ImagePath, &c.PDFPath, &c.Deadline, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContent inserts a content item for a course.
func (s *SQLiteStore) CreateContent(ctx context.Context, c *store.CourseContent) (*store.CourseContent, error) {
	query := `
		INSERT INTO course_contents (course_id, title, body, image_path, pdf_path, deadline)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, c.CourseID, c.Title, c.Body, c.ImagePath, c.PDFPath, c.Deadline)
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.GetContent(ctx, id)
}

// GetContent retrieves a content item by ID.
func (s *SQLiteStore) GetContent(ctx context.Context, id int64) (*store.CourseContent, error) {
	query := `SELECT ` + contentColumns + ` FROM course_contents WHERE id = ?`
	c, err := scanContent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("query content: %w", mapErr(err))
	}
	return c, nil
}

// ListContentByCourse lists a course's content, oldest first.
func (s *SQLiteStore) ListContentByCourse(ctx context.Context, courseID int64) ([]*store.CourseContent, error) {
	query := `SELECT ` + contentColumns + ` FROM course_contents WHERE course_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	contents := []*store.CourseContent{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

// DeleteContent removes a content item.
func (s *SQLiteStore) DeleteContent(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM course_contents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUpcomingDeadlines lists deadline-bearing content for a student's courses.
func (s *SQLiteStore) ListUpcomingDeadlines(ctx context.Context, studentID int64) ([]*store.CourseContent, error) {
	query := `
		SELECT cc.id, cc.course_id, cc.title, cc.body, cc.image_path, cc.pdf_path, cc.deadline, cc.created_at
		FROM course_contents cc
		JOIN enrollments e ON e.course_id = cc.course_id
		WHERE e.student_id = ? AND cc.deadline IS NOT NULL
		ORDER BY cc.deadline
	`
	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	defer rows.Close()

	contents := []*store.CourseContent{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

// ==== SubmissionStore implementation ====

const submissionColumns = `id, content_id, student_id, text, image_path, pdf_path, submitted_at`

func scanSubmission(row interface{ Scan(...any) error }) (*store.Submission, error) {
	var sub store.Submission
	err := row.Scan(&sub.ID, &sub.ContentID, &sub.StudentID, &sub.Text, &sub.ImagePath, &sub.PDFPath, &sub.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubmission inserts a submission by a student.
func (s *SQLiteStore) CreateSubmission(ctx context.Context, sub *store.Submission) (*store.Submission, error) {
	query := `
		INSERT INTO submissions (content_id, student_id, text, image_path, pdf_path)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, sub.ContentID, sub.StudentID, sub.Text, sub.ImagePath, sub.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.GetSubmission(ctx, id)
}

// GetSubmission retrieves a submission by ID.
func (s *SQLiteStore) GetSubmission(ctx context.Context, id int64) (*store.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = ?`
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("query submission: %w", mapErr(err))
	}
	return sub, nil
}

// ListSubmissionsByContent lists all submissions for a content item.
func (s *SQLiteStore) ListSubmissionsByContent(ctx context.Context, contentID int64) ([]*store.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE content_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := []*store.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetSubmissionForStudent retrieves a student's submission for a content item.
func (s *SQLiteStore) GetSubmissionForStudent(ctx context.Context, contentID, studentID int64) (*store.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE content_id = ? AND student_id = ? ORDER BY id DESC LIMIT 1`
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, contentID, studentID))
	if err != nil {
		return nil, fmt.Errorf("query submission: %w", mapErr(err))
	}
	return sub, nil
}

// ==== FeedStore implementation ====

// CreatePost inserts a status update.
func (s *SQLiteStore) CreatePost(ctx context.Context, p *store.Post) (*store.Post, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO posts (user_id, text) VALUES (?, ?)`, p.UserID, p.Text)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.GetPost(ctx, id)
}

// GetPost retrieves a post by ID.
func (s *SQLiteStore) GetPost(ctx context.Context, id int64) (*store.Post, error) {
	var p store.Post
	query := `SELECT id, user_id, text, created_at FROM posts WHERE id = ?`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Text, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query post: %w", mapErr(err))
	}
	return &p, nil
}

// ListPosts lists all posts, oldest first.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]*store.Post, error) {
	query := `SELECT id, user_id, text, created_at FROM posts ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []*store.Post{}
	for rows.Next() {
		var p store.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

// DeletePost removes a post and its comments.
func (s *SQLiteStore) DeletePost(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateComment inserts a comment on a post.
func (s *SQLiteStore) CreateComment(ctx context.Context, c *store.Comment) (*store.Comment, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, text) VALUES (?, ?, ?)`, c.PostID, c.UserID, c.Text)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var out store.Comment
	query := `SELECT id, post_id, user_id, text, created_at FROM comments WHERE id = ?`
	err = s.db.QueryRowContext(ctx, query, id).Scan(&out.ID, &out.PostID, &out.UserID, &out.Text, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query comment: %w", mapErr(err))
	}
	return &out, nil
}

// ListComments lists a post's comments, oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, postID int64) ([]*store.Comment, error) {
	query := `SELECT id, post_id, user_id, text, created_at FROM comments WHERE post_id = ? ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*store.Comment{}
	for rows.Next() {
		var c store.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// CreateFeedback inserts course feedback.
func (s *SQLiteStore) CreateFeedback(ctx context.Context, f *store.CourseFeedback) (*store.CourseFeedback, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO course_feedback (course_id, user_id, text) VALUES (?, ?, ?)`, f.CourseID, f.UserID, f.Text)
	if err != nil {
		return nil, fmt.Errorf("insert feedback: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var out store.CourseFeedback
	query := `SELECT id, course_id, user_id, text, created_at FROM course_feedback WHERE id = ?`
	err = s.db.QueryRowContext(ctx, query, id).Scan(&out.ID, &out.CourseID, &out.UserID, &out.Text, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", mapErr(err))
	}
	return &out, nil
}

// ListFeedbackByCourse lists feedback left on a course, oldest first.
func (s *SQLiteStore) ListFeedbackByCourse(ctx context.Context, courseID int64) ([]*store.CourseFeedback, error) {
	query := `SELECT id, course_id, user_id, text, created_at FROM course_feedback WHERE course_id = ? ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	feedback := []*store.CourseFeedback{}
	for rows.Next() {
		var f store.CourseFeedback
		if err := rows.Scan(&f.ID, &f.CourseID, &f.UserID, &f.Text, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		feedback = append(feedback, &f)
	}
	return feedback, rows.Err()
}

// ==== NotificationStore implementation ====

// CreateNotification inserts a notification.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *store.Notification) (*store.Notification, error) {
	query := `
		INSERT INTO notifications (kind, recipient_id, actor_id, course_id, content_id)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, n.Kind, n.RecipientID, n.ActorID, n.CourseID, n.ContentID)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var out store.Notification
	q := `SELECT id, kind, recipient_id, actor_id, course_id, content_id, created_at FROM notifications WHERE id = ?`
	err = s.db.QueryRowContext(ctx, q, id).Scan(
		&out.ID, &out.Kind, &out.RecipientID, &out.ActorID, &out.CourseID, &out.ContentID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query notification: %w", mapErr(err))
	}
	return &out, nil
}

// ListNotifications lists a recipient's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, recipientID int64) ([]*store.Notification, error) {
	query := `
		SELECT id, kind, recipient_id, actor_id, course_id, content_id, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*store.Notification{}
	for rows.Next() {
		var n store.Notification
		if err := rows.Scan(&n.ID, &n.Kind, &n.RecipientID, &n.ActorID, &n.CourseID, &n.ContentID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// ==== ChatStore implementation ====

// CreateChatRoom inserts a room.
func (s *SQLiteStore) CreateChatRoom(ctx context.Context, name string) (*store.ChatRoom, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO chat_rooms (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert chat room: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var room store.ChatRoom
	query := `SELECT id, name, created_at FROM chat_rooms WHERE id = ?`
	err = s.db.QueryRowContext(ctx, query, id).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query chat room: %w", mapErr(err))
	}
	return &room, nil
}

// GetChatRoomByName retrieves a room by exact name.
func (s *SQLiteStore) GetChatRoomByName(ctx context.Context, name string) (*store.ChatRoom, error) {
	var room store.ChatRoom
	query := `SELECT id, name, created_at FROM chat_rooms WHERE name = ?`
	err := s.db.QueryRowContext(ctx, query, name).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query chat room: %w", mapErr(err))
	}
	return &room, nil
}

// ListChatRooms lists all rooms.
func (s *SQLiteStore) ListChatRooms(ctx context.Context) ([]*store.ChatRoom, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM chat_rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list chat rooms: %w", err)
	}
	defer rows.Close()

	rooms := []*store.ChatRoom{}
	for rows.Next() {
		var room store.ChatRoom
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat room: %w", err)
		}
		rooms = append(rooms, &room)
	}
	return rooms, rows.Err()
}

// AppendMessage persists a message with a server-assigned timestamp.
func (s *SQLiteStore) AppendMessage(ctx context.Context, roomID, userID int64, body string) (*store.ChatMessage, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (room_id, user_id, body) VALUES (?, ?, ?)`, roomID, userID, body)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", mapErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var msg store.ChatMessage
	query := `SELECT id, room_id, user_id, body, created_at FROM chat_messages WHERE id = ?`
	err = s.db.QueryRowContext(ctx, query, id).Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.Body, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query chat message: %w", mapErr(err))
	}
	return &msg, nil
}

// ListMessages lists a room's messages ascending by creation time.
// Insertion order breaks timestamp ties.
func (s *SQLiteStore) ListMessages(ctx context.Context, roomID int64) ([]*store.ChatMessage, error) {
	query := `
		SELECT id, room_id, user_id, body, created_at
		FROM chat_messages
		WHERE room_id = ?
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []*store.ChatMessage{}
	for rows.Next() {
		var msg store.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
