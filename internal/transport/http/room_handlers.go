package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/store"
	"github.com/studysphere/studysphere-server/internal/utils"
)

// RoomHandlers provides HTTP handlers for chat room management.
type RoomHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store: st,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// RoomResponse represents a chat room in API responses.
type RoomResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// MessageResponse represents a stored chat message in API responses.
type MessageResponse struct {
	ID        int64  `json:"id"`
	RoomID    int64  `json:"room_id"`
	UserID    int64  `json:"user_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func roomToResponse(r *store.ChatRoom) RoomResponse {
	return RoomResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

// CreateRoom creates a chat room. The name is normalized before storage
// so that "Math Help" and "math help" land in the same room.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	name := utils.SlugifyRoomName(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room name"})
		return
	}

	room, err := h.store.CreateChatRoom(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room already exists"})
			return
		}
		h.log.Error().Err(err).Str("room", name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room", room.Name).Int64("room_id", room.ID).Msg("room created")
	c.JSON(http.StatusCreated, roomToResponse(room))
}

// ListRooms lists all chat rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.store.ListChatRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		response = append(response, roomToResponse(r))
	}
	c.JSON(http.StatusOK, response)
}

// ListRoomMessages returns a room's message history, oldest first.
// GET /api/rooms/:name/messages
func (h *RoomHandlers) ListRoomMessages(c *gin.Context) {
	name := utils.SlugifyRoomName(c.Param("name"))
	ctx := c.Request.Context()

	room, err := h.store.GetChatRoomByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room", name).Msg("failed to load room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages, err := h.store.ListMessages(ctx, room.ID)
	if err != nil {
		h.log.Error().Err(err).Str("room", name).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, MessageResponse{
			ID:        m.ID,
			RoomID:    m.RoomID,
			UserID:    m.UserID,
			Body:      m.Body,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, response)
}
