package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/ariachat/server/internal/port/outbound"
	apperrors "github.com/ariachat/server/internal/utils/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks replayed responses.
	IdempotentReplayHeader = "Idempotent-Replayed"

	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyLockTTL    = 30 * time.Second
	maxIdempotencyKeyLen  = 255
)

// storedResponse is a replayable response.
type storedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	BodyHash    string `json:"body_hash"`
	Body        []byte `json:"body"`
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped to the method, route and account. Reusing a key with a
// different body is rejected. Requests without the header pass through.
func Idempotency(store outbound.IdempotencyStorePort, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		idemKey := c.GetHeader(IdempotencyKeyHeader)
		if store == nil || idemKey == "" {
			c.Next()
			return
		}
		if len(idemKey) > maxIdempotencyKeyLen {
			abortWithError(c, apperrors.BadRequest("INVALID_IDEMPOTENCY_KEY", "Idempotency-Key is too long"))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, apperrors.BadRequest("", "unreadable request body"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		bodyHash := hashHex(body)

		ctx := c.Request.Context()
		key := hashHex([]byte(c.Request.Method + ":" + c.FullPath() + ":" + ByAccountOrIP(c) + ":" + idemKey))

		if data, err := store.Load(ctx, key); err != nil {
			log.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		} else if data != nil {
			var resp storedResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				if resp.BodyHash != bodyHash {
					abortWithError(c, apperrors.NewUnprocessable("IDEMPOTENCY_KEY_REUSED",
						"Idempotency-Key was already used with a different request body"))
					return
				}
				c.Header(IdempotentReplayHeader, "true")
				c.Data(resp.StatusCode, resp.ContentType, resp.Body)
				c.Abort()
				return
			}
		}

		acquired, err := store.Acquire(ctx, key, idempotencyLockTTL)
		if err != nil {
			log.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			abortWithError(c, apperrors.Conflict("REQUEST_IN_PROGRESS",
				"A request with this idempotency key is already being processed"))
			return
		}
		defer func() {
			if err := store.Release(ctx, key); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
		}()

		w := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		// Server errors are not stored so the client can retry.
		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		data, err := json.Marshal(storedResponse{
			StatusCode:  status,
			ContentType: w.Header().Get("Content-Type"),
			BodyHash:    bodyHash,
			Body:        w.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Save(ctx, key, data, ttl); err != nil {
			log.Warn("failed to store idempotent response", zap.Error(err))
		}
	}
}

func hashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
