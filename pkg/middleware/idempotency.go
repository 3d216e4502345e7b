package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kristofaser/eagle-golf-app-sub006/pkg/response"
)

const (
	// IdempotencyKeyHeader carries the client-chosen idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"

	keyPrefix = "idempotency:"
)

// Record is the stored state of an idempotent request
type Record struct {
	Status       string     `json:"status"` // processing | completed
	RequestHash  string     `json:"request_hash"`
	ResponseCode int        `json:"response_code"`
	ResponseBody string     `json:"response_body"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RedisClient is the slice of redis used by the middleware
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Config holds idempotency middleware configuration
type Config struct {
	Redis RedisClient
	// TTL for completed records
	TTL time.Duration
	// ProcessingTTL bounds how long a concurrent duplicate is rejected while
	// the first request is still in flight
	ProcessingTTL time.Duration
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated mutating request
// carrying the same X-Idempotency-Key, making at-least-once client retries
// safe. Requests without the header pass through untouched.
func Idempotency(cfg *Config) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	processingTTL := cfg.ProcessingTTL
	if processingTTL <= 0 {
		processingTTL = time.Minute
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Redis == nil {
			c.Next()
			return
		}

		redisKey := keyPrefix + c.Request.Method + ":" + c.FullPath() + ":" + key
		hash := hashRequest(c)

		// Replay a finished request or reject a concurrent duplicate
		if raw, err := cfg.Redis.Get(c.Request.Context(), redisKey).Result(); err == nil {
			var rec Record
			if json.Unmarshal([]byte(raw), &rec) == nil {
				if rec.RequestHash != hash {
					response.Error(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
						"idempotency key was used with a different request payload", "")
					c.Abort()
					return
				}
				if rec.Status == "completed" {
					c.Header("X-Idempotent-Replay", "true")
					c.Data(rec.ResponseCode, "application/json", []byte(rec.ResponseBody))
					c.Abort()
					return
				}
				response.Conflict(c, "REQUEST_IN_PROGRESS", "an identical request is still being processed")
				c.Abort()
				return
			}
		}

		rec := Record{Status: "processing", RequestHash: hash, CreatedAt: time.Now().UTC()}
		payload, _ := json.Marshal(rec)
		ok, err := cfg.Redis.SetNX(c.Request.Context(), redisKey, payload, processingTTL).Result()
		if err == nil && !ok {
			response.Conflict(c, "REQUEST_IN_PROGRESS", "an identical request is still being processed")
			c.Abort()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			// Let the client retry server failures with the same key
			_ = cfg.Redis.Del(context.WithoutCancel(c.Request.Context()), redisKey).Err()
			return
		}

		now := time.Now().UTC()
		rec.Status = "completed"
		rec.ResponseCode = status
		rec.ResponseBody = recorder.body.String()
		rec.CompletedAt = &now
		if payload, err := json.Marshal(rec); err == nil {
			_ = cfg.Redis.Set(context.WithoutCancel(c.Request.Context()), redisKey, payload, ttl).Err()
		}
	}
}

func hashRequest(c *gin.Context) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err == nil {
			h.Write(body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
