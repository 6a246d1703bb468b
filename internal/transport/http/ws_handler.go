package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/auth"
	"github.com/studysphere/studysphere-server/internal/chat"
	"github.com/studysphere/studysphere-server/internal/proto"
	"github.com/studysphere/studysphere-server/internal/store"
)

// WSHandler upgrades HTTP connections into chat sessions. Each
// connection serves exactly one room, taken from the URL path.
type WSHandler struct {
	auth        *auth.Service
	pipeline    *chat.Pipeline
	broadcaster chat.Broadcaster
	maxBytes    int64
	rateLimit   int
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(authSvc *auth.Service, pipeline *chat.Pipeline, b chat.Broadcaster, maxBytes int64, rateLimit int, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		auth:        authSvc,
		pipeline:    pipeline,
		broadcaster: b,
		maxBytes:    maxBytes,
		rateLimit:   rateLimit,
		log:         logger,
	}
}

// Serve handles GET /ws/chat/:room.
//
// The upgrade is accepted before any identity or room check. A client
// with no valid token, or pointed at a room that does not exist, still
// gets a live socket; its first send fails and the connection closes
// abnormally. Broadcasts reach it either way.
func (h *WSHandler) Serve(c *gin.Context) {
	room := c.Param("room")
	ctx := c.Request.Context()
	println("DEBUG serve start", room)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		println("DEBUG accept err:", err.Error())
	}
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.maxBytes > 0 {
		conn.SetReadLimit(h.maxBytes)
	}

	var (
		userID   int64
		username string
	)
	if claims := h.claimsFromRequest(c); claims != nil {
		userID = claims.UserID
		username = claims.Username
	}
	println("DEBUG claims done", userID)

	session := chat.NewSession(uuid.NewString(), userID, username, room)
	group := chat.GroupName(room)
	h.broadcaster.Join(group, session)
	println("DEBUG joined", group)
	defer func() { println("DEBUG leaving", group) }()
	defer h.broadcaster.Leave(group, session)

	h.log.Info().
		Str("session_id", session.ID).
		Str("room", room).
		Int64("user_id", userID).
		Msg("chat session opened")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session, group)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("session_id", session.ID).Msg("chat session closed with error")
		}
	}

	conn.Close(status, reason)
}

// claimsFromRequest extracts JWT claims from the Authorization header
// or, for browser WebSocket clients that cannot set headers, from the
// token query parameter. Returns nil when no valid token is present.
func (h *WSHandler) claimsFromRequest(c *gin.Context) *auth.Claims {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
		if token == header {
			token = ""
		}
	}
	if token == "" {
		return nil
	}
	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws token rejected")
		return nil
	}
	return claims
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *chat.Session, group string) error {
	limiter := newRateLimiter(h.rateLimit)
	limiter.startReset(ctx.Done())

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil || inbound.Message == nil {
			// Malformed frames are dropped; the socket stays open.
			h.log.Debug().Str("session_id", session.ID).Msg("dropping malformed chat frame")
			continue
		}
		if !limiter.allow() {
			h.log.Warn().Str("session_id", session.ID).Msg("rate limit exceeded, dropping frame")
			continue
		}

		msg, err := h.pipeline.Post(ctx, session.Room, session.UserID, *inbound.Message)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.log.Warn().Err(err).Str("session_id", session.ID).Msg("chat send rejected")
				return err
			}
			h.log.Error().Err(err).Str("session_id", session.ID).Msg("chat send failed")
			continue
		}

		// Broadcast strictly after the row is durable.
		event := chat.Event{
			Room:      session.Room,
			From:      session.Username,
			Text:      msg.Body,
			CreatedAt: msg.CreatedAt,
		}
		if err := h.broadcaster.Send(ctx, group, event); err != nil {
			h.log.Error().Err(err).Str("session_id", session.ID).Msg("chat broadcast failed")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *chat.Session) error {
	for {
		select {
		case event := <-session.Events:
			out := proto.Outbound{Message: event.From + ": " + event.Text}
			if err := wsjson.Write(ctx, conn, out); err != nil {
				h.log.Error().Err(err).Str("session_id", session.ID).Msg("write chat event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
