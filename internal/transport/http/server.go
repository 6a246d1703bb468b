package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/auth"
	"github.com/studysphere/studysphere-server/internal/chat"
	"github.com/studysphere/studysphere-server/internal/config"
	"github.com/studysphere/studysphere-server/internal/service/courses"
	"github.com/studysphere/studysphere-server/internal/store"
)

// NewServer builds the HTTP server with all API and chat routes.
func NewServer(
	authSvc *auth.Service,
	courseSvc *courses.Service,
	pipeline *chat.Pipeline,
	broadcaster chat.Broadcaster,
	st store.Store,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(authSvc, st, logger)
	courseHandlers := NewCourseHandlers(st, courseSvc, logger)
	contentHandlers := NewContentHandlers(st, courseSvc, logger)
	feedHandlers := NewFeedHandlers(st, logger)
	roomHandlers := NewRoomHandlers(st, logger)
	wsHandler := NewWSHandler(authSvc, pipeline, broadcaster, cfg.MaxMessageBytes, cfg.MessageRateLimit, logger)

	api := router.Group("/api")
	{
		api.POST("/register", apiHandlers.Register)
		api.POST("/login", apiHandlers.Login)
	}

	authed := api.Group("")
	authed.Use(AuthMiddleware(authSvc, logger))
	{
		authed.GET("/users/me", apiHandlers.Me)
		authed.GET("/users/search", apiHandlers.SearchUsers)
		authed.GET("/users/students", RequireRole(store.RoleTeacher), apiHandlers.ListActiveStudents)

		authed.POST("/courses", RequireRole(store.RoleTeacher), courseHandlers.CreateCourse)
		authed.GET("/courses", courseHandlers.ListCourses)
		authed.GET("/courses/:id", courseHandlers.GetCourse)
		authed.PUT("/courses/:id", RequireRole(store.RoleTeacher), courseHandlers.UpdateCourse)
		authed.DELETE("/courses/:id", RequireRole(store.RoleTeacher), courseHandlers.DeleteCourse)
		authed.POST("/courses/:id/enroll", RequireRole(store.RoleStudent), courseHandlers.Enroll)
		authed.POST("/courses/:id/unenroll", RequireRole(store.RoleStudent), courseHandlers.Unenroll)
		authed.POST("/courses/:id/feedback", RequireRole(store.RoleStudent), courseHandlers.LeaveFeedback)
		authed.POST("/courses/:id/content", RequireRole(store.RoleTeacher), contentHandlers.AddContent)
		authed.GET("/courses/:id/content", contentHandlers.ListContent)

		authed.GET("/content/:id", contentHandlers.GetContent)
		authed.DELETE("/content/:id", RequireRole(store.RoleTeacher), contentHandlers.DeleteContent)
		authed.POST("/content/:id/submissions", RequireRole(store.RoleStudent), contentHandlers.Submit)
		authed.GET("/content/:id/submissions", RequireRole(store.RoleTeacher), contentHandlers.ListSubmissions)
		authed.GET("/content/:id/submission", RequireRole(store.RoleStudent), contentHandlers.GetOwnSubmission)
		authed.GET("/submissions/:id", contentHandlers.GetSubmission)
		authed.GET("/deadlines", RequireRole(store.RoleStudent), contentHandlers.ListDeadlines)

		authed.POST("/posts", feedHandlers.CreatePost)
		authed.GET("/posts", feedHandlers.ListPosts)
		authed.DELETE("/posts/:id", feedHandlers.DeletePost)
		authed.POST("/posts/:id/comments", feedHandlers.CreateComment)
		authed.GET("/posts/:id/comments", feedHandlers.ListComments)

		authed.GET("/notifications", courseHandlers.ListNotifications)

		authed.POST("/rooms", roomHandlers.CreateRoom)
		authed.GET("/rooms", roomHandlers.ListRooms)
		authed.GET("/rooms/:name/messages", roomHandlers.ListRoomMessages)
	}

	// The socket accepts anyone; identity only matters once they send.
	router.GET("/ws/chat/:room", wsHandler.Serve)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
