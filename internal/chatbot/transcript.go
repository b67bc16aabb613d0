package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix = "chatbot_transcript:"

	defaultTranscriptTTL         = 24 * time.Hour
	defaultTranscriptMaxMessages = 200
)

// TranscriptEntry is one side of a chatbot exchange.
type TranscriptEntry struct {
	ID           string       `json:"id"`
	Role         string       `json:"role"` // "user" or "assistant"
	Text         string       `json:"text"`
	ResponseType ResponseType `json:"response_type,omitempty"`
	Staff        string       `json:"staff,omitempty"` // token subject, when the chatbot is behind StaffJWT
	Timestamp    time.Time    `json:"timestamp"`
}

// TranscriptStore keeps a capped, expiring per-session log in Redis.
type TranscriptStore struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
	ttl         time.Duration
}

// NewTranscriptStore returns nil when redisClient is nil; a nil store
// silently drops writes.
func NewTranscriptStore(redisClient *redis.Client, maxMessages int64, ttl time.Duration) *TranscriptStore {
	if redisClient == nil {
		return nil
	}
	if maxMessages <= 0 {
		maxMessages = defaultTranscriptMaxMessages
	}
	if ttl <= 0 {
		ttl = defaultTranscriptTTL
	}
	return &TranscriptStore{
		redis:       redisClient,
		tracer:      otel.Tracer("dental.internal.chatbot.transcript"),
		maxMessages: maxMessages,
		ttl:         ttl,
	}
}

func (s *TranscriptStore) Append(ctx context.Context, sessionID string, entry TranscriptEntry) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if sessionID == "" {
		return errors.New("chatbot: transcript sessionID required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("chatbot: marshal transcript entry: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "chatbot.transcript.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.ttl)
	pipe.LTrim(ctx, key, -s.maxMessages, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: append transcript entry: %w", err)
	}
	return nil
}

// List returns the most recent limit entries, oldest first. limit <= 0 returns all.
func (s *TranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]TranscriptEntry, error) {
	if s == nil || s.redis == nil {
		return []TranscriptEntry{}, nil
	}
	if sessionID == "" {
		return nil, errors.New("chatbot: transcript sessionID required")
	}

	ctx, span := s.tracer.Start(ctx, "chatbot.transcript.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []TranscriptEntry{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chatbot: list transcript: %w", err)
	}

	out := make([]TranscriptEntry, 0, len(raw))
	for _, item := range raw {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}
