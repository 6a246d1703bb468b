package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studysphere/studysphere-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func mustCreateUser(t *testing.T, st *SQLiteStore, username string, role store.Role) *store.User {
	t.Helper()

	u, err := st.CreateUser(context.Background(), &store.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	st := newTestStore(t)
	mustCreateUser(t, st, "alice", store.RoleStudent)

	_, err := st.CreateUser(context.Background(), &store.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "x",
		Role:         store.RoleStudent,
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestChatRoomDuplicateName(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateChatRoom(ctx, "lobby"); err != nil {
		t.Fatalf("create room: %v", err)
	}
	_, err := st.CreateChatRoom(ctx, "lobby")
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}

	// The duplicate attempt left exactly one room behind.
	rooms, err := st.ListChatRooms(ctx)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("got %d rooms, want 1", len(rooms))
	}
}

func TestChatRoomLookupIsExact(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateChatRoom(ctx, "math_help"); err != nil {
		t.Fatalf("create room: %v", err)
	}

	if _, err := st.GetChatRoomByName(ctx, "math"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("prefix lookup err = %v, want ErrNotFound", err)
	}
	room, err := st.GetChatRoomByName(ctx, "math_help")
	if err != nil {
		t.Fatalf("exact lookup: %v", err)
	}
	if room.Name != "math_help" {
		t.Fatalf("room name = %q", room.Name)
	}
}

func TestMessagesKeepInsertionOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, st, "alice", store.RoleStudent)

	room, err := st.CreateChatRoom(ctx, "lobby")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	bodies := []string{"one", "two", "three", "four"}
	for _, b := range bodies {
		if _, err := st.AppendMessage(ctx, room.ID, user.ID, b); err != nil {
			t.Fatalf("append %q: %v", b, err)
		}
	}

	msgs, err := st.ListMessages(ctx, room.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != len(bodies) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(bodies))
	}
	for i, b := range bodies {
		if msgs[i].Body != b {
			t.Fatalf("message %d = %q, want %q", i, msgs[i].Body, b)
		}
		if msgs[i].CreatedAt.IsZero() {
			t.Fatalf("message %d has zero timestamp", i)
		}
	}
}

func TestEnrollTwiceIsDuplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	teacher := mustCreateUser(t, st, "prof", store.RoleTeacher)
	student := mustCreateUser(t, st, "amy", store.RoleStudent)

	course, err := st.CreateCourse(ctx, &store.Course{Name: "Algebra", TeacherID: teacher.ID})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}

	if err := st.Enroll(ctx, course.ID, student.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if err := st.Enroll(ctx, course.ID, student.ID); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("second enroll err = %v, want ErrDuplicate", err)
	}

	ok, err := st.IsEnrolled(ctx, course.ID, student.ID)
	if err != nil {
		t.Fatalf("is enrolled: %v", err)
	}
	if !ok {
		t.Fatal("student should be enrolled")
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	teacher := mustCreateUser(t, st, "prof", store.RoleTeacher)
	student := mustCreateUser(t, st, "amy", store.RoleStudent)

	course, err := st.CreateCourse(ctx, &store.Course{Name: "Algebra", TeacherID: teacher.ID})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if err := st.Enroll(ctx, course.ID, student.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	content, err := st.CreateContent(ctx, &store.CourseContent{CourseID: course.ID, Title: "HW"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	if err := st.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}

	if _, err := st.GetCourse(ctx, course.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("course lookup err = %v, want ErrNotFound", err)
	}
	if _, err := st.GetContent(ctx, content.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("content lookup err = %v, want ErrNotFound", err)
	}
	ok, err := st.IsEnrolled(ctx, course.ID, student.ID)
	if err != nil {
		t.Fatalf("is enrolled: %v", err)
	}
	if ok {
		t.Fatal("enrollment should be gone after course delete")
	}
}

func TestNotificationsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := mustCreateUser(t, st, "prof", store.RoleTeacher)

	kinds := []store.NotificationKind{store.NotificationEnroll, store.NotificationContent, store.NotificationEnroll}
	for _, k := range kinds {
		if _, err := st.CreateNotification(ctx, &store.Notification{Kind: k, RecipientID: user.ID}); err != nil {
			t.Fatalf("create notification: %v", err)
		}
	}

	got, err := st.ListNotifications(ctx, user.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(got) != len(kinds) {
		t.Fatalf("got %d notifications, want %d", len(got), len(kinds))
	}
	// Same-second inserts fall back to id ordering, newest row first.
	for i := 1; i < len(got); i++ {
		if got[i-1].ID < got[i].ID {
			t.Fatalf("notifications out of order: %d before %d", got[i-1].ID, got[i].ID)
		}
	}
}

func TestUpcomingDeadlinesOnlyForEnrolledCourses(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	teacher := mustCreateUser(t, st, "prof", store.RoleTeacher)
	student := mustCreateUser(t, st, "amy", store.RoleStudent)

	enrolledCourse, err := st.CreateCourse(ctx, &store.Course{Name: "Algebra", TeacherID: teacher.ID})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	otherCourse, err := st.CreateCourse(ctx, &store.Course{Name: "Physics", TeacherID: teacher.ID})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if err := st.Enroll(ctx, enrolledCourse.ID, student.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	deadline := time.Now().Add(24 * time.Hour).UTC()
	if _, err := st.CreateContent(ctx, &store.CourseContent{CourseID: enrolledCourse.ID, Title: "HW", Deadline: &deadline}); err != nil {
		t.Fatalf("create content: %v", err)
	}
	if _, err := st.CreateContent(ctx, &store.CourseContent{CourseID: enrolledCourse.ID, Title: "Notes"}); err != nil {
		t.Fatalf("create content: %v", err)
	}
	if _, err := st.CreateContent(ctx, &store.CourseContent{CourseID: otherCourse.ID, Title: "Other HW", Deadline: &deadline}); err != nil {
		t.Fatalf("create content: %v", err)
	}

	got, err := st.ListUpcomingDeadlines(ctx, student.ID)
	if err != nil {
		t.Fatalf("list deadlines: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d deadline items, want 1", len(got))
	}
	if got[0].Title != "HW" {
		t.Fatalf("deadline item = %q, want %q", got[0].Title, "HW")
	}
	if got[0].Deadline == nil {
		t.Fatal("deadline should be set")
	}
}
