package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventType represents the type of audit event being broadcast
type EventType string

const (
	EventTypeSessionStarted  EventType = "session.started"
	EventTypeActionExecuted  EventType = "session.action_executed"
	EventTypeActionSuggested EventType = "advisor.action_suggested"
	EventTypeSessionDeleted  EventType = "session.deleted"
)

// AllEventsChannel receives every event; per-session channels receive their own.
const AllEventsChannel = "advisor:events"

// SessionChannel returns the channel name for one session's events
func SessionChannel(sessionID string) string {
	return "advisor:session:" + sessionID
}

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Publisher sends audit events. Publishing is best-effort; callers log and move on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Subscriber opens a Redis subscription to one session's channel.
type Subscriber interface {
	SubscribeSession(ctx context.Context, sessionID string) *redis.PubSub
}

// Broadcaster publishes events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Dial parses a redis:// URL, verifies the connection, and returns a Broadcaster.
func Dial(ctx context.Context, redisURL string, logger *slog.Logger) (*Broadcaster, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewBroadcaster(client, logger), nil
}

// Publish writes the event to the shared channel and, when it has one, the session channel
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channels := []string{AllEventsChannel}
	if event.SessionID != "" {
		channels = append(channels, SessionChannel(event.SessionID))
	}

	pipe := b.redisClient.Pipeline()
	for _, ch := range channels {
		pipe.Publish(ctx, ch, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"event_type", event.Type,
		"session_id", event.SessionID,
	)
	return nil
}

func (b *Broadcaster) SubscribeSession(ctx context.Context, sessionID string) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, SessionChannel(sessionID))
}

func (b *Broadcaster) Close() error {
	return b.redisClient.Close()
}

// Noop discards events. Used when Redis is not configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
