package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/studysphere/studysphere-server/internal/store"
)

// Pipeline validates and persists one inbound chat message. A single
// attempt, no retry; the caller owns failure handling.
type Pipeline struct {
	store store.Store
}

// NewPipeline creates a pipeline over the given store.
func NewPipeline(st store.Store) *Pipeline {
	return &Pipeline{store: st}
}

// Post resolves the room by exact name and the sender by ID, persists
// the message with a server-assigned timestamp, and returns the
// persisted row. Missing room or sender surfaces store.ErrNotFound.
func (p *Pipeline) Post(ctx context.Context, roomName string, senderID int64, text string) (*store.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty message: %w", ErrEmptyMessage)
	}

	room, err := p.store.GetChatRoomByName(ctx, roomName)
	if err != nil {
		return nil, fmt.Errorf("resolve room %q: %w", roomName, err)
	}

	sender, err := p.store.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("resolve sender %d: %w", senderID, err)
	}

	msg, err := p.store.AppendMessage(ctx, room.ID, sender.ID, text)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}
