package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisChannelPrefix namespaces pub/sub channels so one Redis instance
// can serve several deployments.
const redisChannelPrefix = "studysphere:"

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return client, nil
}

// RedisBroadcaster is a Broadcaster backed by Redis pub/sub, for
// deployments running more than one process. Group membership stays
// local to each process; Send publishes to Redis and every process
// (including the sender's) delivers to its own members from the
// subscription loop.
type RedisBroadcaster struct {
	local *Hub
	rdb   *redis.Client
	log   *zerolog.Logger
}

// NewRedisBroadcaster wraps a local hub with Redis fan-out.
func NewRedisBroadcaster(rdb *redis.Client, logger *zerolog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		local: NewHub(),
		rdb:   rdb,
		log:   logger,
	}
}

// Join adds a session to the local membership set.
func (b *RedisBroadcaster) Join(group string, s *Session) {
	b.local.Join(group, s)
}

// Leave removes a session from the local membership set.
func (b *RedisBroadcaster) Leave(group string, s *Session) {
	b.local.Leave(group, s)
}

// Send publishes the event to the group's Redis channel. Local delivery
// happens when the subscription loop receives it back.
func (b *RedisBroadcaster) Send(ctx context.Context, group string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, redisChannelPrefix+group, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Run subscribes to all group channels and delivers inbound events to
// local members until the context is cancelled.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	sub := b.rdb.PSubscribe(ctx, redisChannelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			group := strings.TrimPrefix(msg.Channel, redisChannelPrefix)

			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("bad broadcast payload")
				continue
			}
			b.local.deliver(group, ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
