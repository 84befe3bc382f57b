package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-hrms/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	idempotencyLockTTL   = 30 * time.Second
)

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST that carried the same
// Idempotency-Key for the same caller and request path. A concurrent duplicate
// gets 409 while the first request is still running.
func Idempotency(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	logger := zap.L().Named("middleware.idempotency")

	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost || rdb == nil {
			c.Next()
			return
		}

		employeeID, _ := EmployeeID(c)
		// The concrete path, so /leaves/1/approve and /leaves/2/approve differ.
		cacheKey := fmt.Sprintf("idemp:%s:%d:%s", c.Request.URL.Path, employeeID, idempKey)
		lockKey := cacheKey + ":lock"
		ctx := c.Request.Context()

		if val, err := rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			status, body := decodeStoredResponse(val)
			c.Header("Idempotent-Replay", "true")
			c.Data(status, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			logger.Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			abortWith(c, http.StatusConflict, apperror.CodeConflict, "A request with this idempotency key is still being processed")
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		// The request context may already be cancelled here.
		bg := context.WithoutCancel(ctx)
		status := recorder.Status()
		if status >= 200 && status < 300 {
			if err := rdb.Set(bg, cacheKey, encodeStoredResponse(status, recorder.body.Bytes()), ttl).Err(); err != nil {
				logger.Warn("store idempotent response failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
		if err := rdb.Del(bg, lockKey).Err(); err != nil {
			logger.Warn("release idempotency lock failed", zap.String("key", lockKey), zap.Error(err))
		}
	}
}

// Stored responses are "<status>\n<body>".
func encodeStoredResponse(status int, body []byte) []byte {
	out := make([]byte, 0, len(body)+4)
	out = strconv.AppendInt(out, int64(status), 10)
	out = append(out, '\n')
	return append(out, body...)
}

func decodeStoredResponse(val []byte) (int, []byte) {
	head, body, found := bytes.Cut(val, []byte{'\n'})
	if !found {
		return http.StatusOK, val
	}
	status, err := strconv.Atoi(string(head))
	if err != nil {
		return http.StatusOK, val
	}
	return status, body
}
