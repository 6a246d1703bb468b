package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/studysphere/studysphere-server/internal/store"
)

func TestCourseEnrollmentFlow(t *testing.T) {
	env := startTestServer(t)
	teacherToken, _ := env.registerUser(t, "prof", store.RoleTeacher)
	studentToken, _ := env.registerUser(t, "amy", store.RoleStudent)

	var course CourseResponse
	status := env.doJSON(t, stdhttp.MethodPost, "/api/courses", teacherToken,
		CreateCourseRequest{Name: "Algebra", Description: "intro"}, &course)
	if status != stdhttp.StatusCreated {
		t.Fatalf("create course status = %d, want %d", status, stdhttp.StatusCreated)
	}

	// Students cannot create courses.
	status = env.doJSON(t, stdhttp.MethodPost, "/api/courses", studentToken,
		CreateCourseRequest{Name: "Nope"}, nil)
	if status != stdhttp.StatusForbidden {
		t.Fatalf("student create course status = %d, want %d", status, stdhttp.StatusForbidden)
	}

	path := "/api/courses/" + itoa(course.ID) + "/enroll"
	if status := env.doJSON(t, stdhttp.MethodPost, path, studentToken, nil, nil); status != stdhttp.StatusNoContent {
		t.Fatalf("enroll status = %d, want %d", status, stdhttp.StatusNoContent)
	}
	if status := env.doJSON(t, stdhttp.MethodPost, path, studentToken, nil, nil); status != stdhttp.StatusConflict {
		t.Fatalf("second enroll status = %d, want %d", status, stdhttp.StatusConflict)
	}

	var enrolled []CourseResponse
	status = env.doJSON(t, stdhttp.MethodGet, "/api/courses?filter=enrolled", studentToken, nil, &enrolled)
	if status != stdhttp.StatusOK {
		t.Fatalf("list enrolled status = %d", status)
	}
	if len(enrolled) != 1 || enrolled[0].ID != course.ID {
		t.Fatalf("enrolled courses = %+v, want course %d", enrolled, course.ID)
	}

	// The enrolled course no longer shows up as available.
	var available []CourseResponse
	if status := env.doJSON(t, stdhttp.MethodGet, "/api/courses", studentToken, nil, &available); status != stdhttp.StatusOK {
		t.Fatalf("list available status = %d", status)
	}
	if len(available) != 0 {
		t.Fatalf("available courses = %+v, want none", available)
	}

	// The teacher got an in-app notification about the enrollment.
	var notifications []NotificationResponse
	if status := env.doJSON(t, stdhttp.MethodGet, "/api/notifications", teacherToken, nil, &notifications); status != stdhttp.StatusOK {
		t.Fatalf("list notifications status = %d", status)
	}
	if len(notifications) != 1 || notifications[0].Kind != string(store.NotificationEnroll) {
		t.Fatalf("notifications = %+v, want one enroll notification", notifications)
	}
}

func TestContentAndSubmissionFlow(t *testing.T) {
	env := startTestServer(t)
	teacherToken, _ := env.registerUser(t, "prof", store.RoleTeacher)
	studentToken, _ := env.registerUser(t, "amy", store.RoleStudent)

	var course CourseResponse
	if status := env.doJSON(t, stdhttp.MethodPost, "/api/courses", teacherToken,
		CreateCourseRequest{Name: "Physics"}, &course); status != stdhttp.StatusCreated {
		t.Fatalf("create course status = %d", status)
	}
	if status := env.doJSON(t, stdhttp.MethodPost, "/api/courses/"+itoa(course.ID)+"/enroll",
		studentToken, nil, nil); status != stdhttp.StatusNoContent {
		t.Fatalf("enroll status = %d", status)
	}

	deadline := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	var content ContentResponse
	status := env.doJSON(t, stdhttp.MethodPost, "/api/courses/"+itoa(course.ID)+"/content", teacherToken,
		AddContentRequest{Title: "Homework 1", Body: "solve it", Deadline: &deadline}, &content)
	if status != stdhttp.StatusCreated {
		t.Fatalf("add content status = %d, want %d", status, stdhttp.StatusCreated)
	}

	// The student sees the deadline.
	var deadlines []ContentResponse
	if status := env.doJSON(t, stdhttp.MethodGet, "/api/deadlines", studentToken, nil, &deadlines); status != stdhttp.StatusOK {
		t.Fatalf("list deadlines status = %d", status)
	}
	if len(deadlines) != 1 || deadlines[0].ID != content.ID {
		t.Fatalf("deadlines = %+v, want content %d", deadlines, content.ID)
	}

	// Submitting works once for the student, then is visible both ways.
	var submission SubmissionResponse
	status = env.doJSON(t, stdhttp.MethodPost, "/api/content/"+itoa(content.ID)+"/submissions", studentToken,
		SubmitRequest{Text: "42"}, &submission)
	if status != stdhttp.StatusCreated {
		t.Fatalf("submit status = %d, want %d", status, stdhttp.StatusCreated)
	}

	var own SubmissionResponse
	if status := env.doJSON(t, stdhttp.MethodGet, "/api/content/"+itoa(content.ID)+"/submission",
		studentToken, nil, &own); status != stdhttp.StatusOK {
		t.Fatalf("own submission status = %d", status)
	}
	if own.ID != submission.ID || own.Text != "42" {
		t.Fatalf("own submission = %+v, want %+v", own, submission)
	}

	var all []SubmissionResponse
	if status := env.doJSON(t, stdhttp.MethodGet, "/api/content/"+itoa(content.ID)+"/submissions",
		teacherToken, nil, &all); status != stdhttp.StatusOK {
		t.Fatalf("list submissions status = %d", status)
	}
	if len(all) != 1 {
		t.Fatalf("got %d submissions, want 1", len(all))
	}

	// An empty submission is rejected.
	status = env.doJSON(t, stdhttp.MethodPost, "/api/content/"+itoa(content.ID)+"/submissions", studentToken,
		SubmitRequest{}, nil)
	if status != stdhttp.StatusBadRequest {
		t.Fatalf("empty submit status = %d, want %d", status, stdhttp.StatusBadRequest)
	}
}

func TestFeedPostAndComment(t *testing.T) {
	env := startTestServer(t)
	aliceToken, aliceID := env.registerUser(t, "alice", store.RoleStudent)
	bobToken, _ := env.registerUser(t, "bob", store.RoleStudent)

	var post PostResponse
	if status := env.doJSON(t, stdhttp.MethodPost, "/api/posts", aliceToken,
		PostRequest{Text: "exam week"}, &post); status != stdhttp.StatusCreated {
		t.Fatalf("create post status = %d", status)
	}
	if post.UserID != aliceID {
		t.Fatalf("post user = %d, want %d", post.UserID, aliceID)
	}

	if status := env.doJSON(t, stdhttp.MethodPost, "/api/posts/"+itoa(post.ID)+"/comments", bobToken,
		CommentRequest{Text: "good luck"}, nil); status != stdhttp.StatusCreated {
		t.Fatalf("create comment status = %d", status)
	}

	var comments []CommentResponse
	if status := env.doJSON(t, stdhttp.MethodGet, "/api/posts/"+itoa(post.ID)+"/comments",
		aliceToken, nil, &comments); status != stdhttp.StatusOK {
		t.Fatalf("list comments status = %d", status)
	}
	if len(comments) != 1 || comments[0].Text != "good luck" {
		t.Fatalf("comments = %+v, want one %q", comments, "good luck")
	}

	// Only the author can delete a post.
	if status := env.doJSON(t, stdhttp.MethodDelete, "/api/posts/"+itoa(post.ID), bobToken, nil, nil); status != stdhttp.StatusForbidden {
		t.Fatalf("foreign delete status = %d, want %d", status, stdhttp.StatusForbidden)
	}
	if status := env.doJSON(t, stdhttp.MethodDelete, "/api/posts/"+itoa(post.ID), aliceToken, nil, nil); status != stdhttp.StatusNoContent {
		t.Fatalf("own delete status = %d, want %d", status, stdhttp.StatusNoContent)
	}
}
