package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mini-ecommerce/internal/cache"
	"mini-ecommerce/internal/database"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestPingHandler(t *testing.T) {
	e := echo.New()

	t.Run("db unhealthy", func(t *testing.T) {
		db := &database.FakeDB{
			PingFn: func(ctx context.Context) error { return errors.New("fail") },
		}
		cch := &cache.FakeCache{}
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		err := PingHandler(db, cch)(ctx)
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "database unhealthy")
	})

	t.Run("cache unhealthy", func(t *testing.T) {
		dbCalled := false
		db := &database.FakeDB{
			PingFn: func(ctx context.Context) error { dbCalled = true; return nil },
		}
		cch := &cache.FakeCache{GetFn: func(ctx context.Context, key string) *redis.StringCmd {
			return redis.NewStringResult("", errors.New("down"))
		}}
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		err := PingHandler(db, cch)(ctx)
		require.NoError(t, err)
		require.True(t, dbCalled)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "cache unhealthy")
	})

	t.Run("ok on cache miss", func(t *testing.T) {
		// redis.Nil 只代表鍵不存在，連線本身正常
		db := &database.FakeDB{
			PingFn: func(ctx context.Context) error { return nil },
		}
		cch := &cache.FakeCache{GetFn: func(ctx context.Context, key string) *redis.StringCmd {
			return redis.NewStringResult("", redis.Nil)
		}}
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		err := PingHandler(db, cch)(ctx)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "pong")
	})

	t.Run("ok", func(t *testing.T) {
		cacheCalled := false
		db := &database.FakeDB{
			PingFn: func(ctx context.Context) error { return nil },
		}
		cch := &cache.FakeCache{GetFn: func(ctx context.Context, key string) *redis.StringCmd {
			cacheCalled = true
			return redis.NewStringResult("1", nil)
		}}
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		ctx := e.NewContext(req, rec)
		err := PingHandler(db, cch)(ctx)
		require.NoError(t, err)
		require.True(t, cacheCalled)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "pong")
	})
}
