package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-hrms/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const (
		cacheKey = "idemp:/leaves:7:key-1"
		lockKey  = cacheKey + ":lock"
		ttl      = time.Hour
	)

	newRouter := func(t *testing.T) (*gin.Engine, redismock.ClientMock, *int) {
		rdb, mock := redismock.NewClientMock()
		calls := 0
		r := gin.New()
		r.POST("/leaves", withIdentity(7, "employee"), middleware.Idempotency(rdb, ttl), func(c *gin.Context) {
			calls++
			c.Data(http.StatusCreated, "application/json", []byte(`{"ok":true}`))
		})
		return r, mock, &calls
	}

	post := func(r *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
		req.Header.Set(middleware.HeaderIdempotencyKey, "key-1")
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("first request stores response", func(t *testing.T) {
		r, mock, calls := newRouter(t)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(cacheKey, []byte("201\n{\"ok\":true}"), ttl).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		w := post(r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay returns stored response", func(t *testing.T) {
		r, mock, calls := newRouter(t)

		mock.ExpectGet(cacheKey).SetVal("201\n{\"ok\":true}")

		w := post(r)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replay"))
		assert.Equal(t, 0, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative concurrent duplicate", func(t *testing.T) {
		r, mock, calls := newRouter(t)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		w := post(r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 0, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("same key on another application is not replayed", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		calls := 0
		r := gin.New()
		r.POST("/leaves/:id/approve", withIdentity(7, "manager"), middleware.Idempotency(rdb, ttl), func(c *gin.Context) {
			calls++
			c.Data(http.StatusOK, "application/json", []byte(`{"id":`+c.Param("id")+`}`))
		})

		const secondKey = "idemp:/leaves/2/approve:7:key-1"
		mock.ExpectGet(secondKey).RedisNil()
		mock.ExpectSetNX(secondKey+":lock", "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(secondKey, []byte("200\n{\"id\":2}"), ttl).SetVal("OK")
		mock.ExpectDel(secondKey + ":lock").SetVal(1)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves/2/approve", nil)
		req.Header.Set(middleware.HeaderIdempotencyKey, "key-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":2}`, w.Body.String())
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without key passes through", func(t *testing.T) {
		r, mock, calls := newRouter(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
