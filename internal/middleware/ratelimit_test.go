package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// fakeLimiterStore counts increments across all keys so a test is not
// sensitive to the window key ticking over mid-run.
type fakeLimiterStore struct {
	count   int64
	incrErr error
	expired []string
}

func (f *fakeLimiterStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "incr", key)
	if f.incrErr != nil {
		cmd.SetErr(f.incrErr)
		return cmd
	}
	f.count++
	cmd.SetVal(f.count)
	return cmd
}

func (f *fakeLimiterStore) PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expired = append(f.expired, key)
	cmd := redis.NewBoolCmd(ctx, "pexpire", key)
	cmd.SetVal(true)
	return cmd
}

func limiterRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/get-answer", mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hitAnswer(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/get-answer", nil)
	req.RemoteAddr = "192.0.2.1:50000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitNilClientPassesThrough(t *testing.T) {
	r := limiterRouter(RateLimit(nil))

	for i := 0; i < rateLimitMax*2; i++ {
		if w := hitAnswer(r); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 with limiter disabled", i+1, w.Code)
		}
	}
}

func TestRateLimitUnderAndOverLimit(t *testing.T) {
	store := &fakeLimiterStore{}
	r := limiterRouter(rateLimitWith(store))

	for i := 0; i < rateLimitMax; i++ {
		if w := hitAnswer(r); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 under the limit", i+1, w.Code)
		}
	}

	w := hitAnswer(r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("request %d: status = %d, want 429 over the limit", rateLimitMax+1, w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}

	// The window key gets a TTL exactly once, on its first increment.
	if len(store.expired) != 1 {
		t.Errorf("PExpire called %d times, want 1", len(store.expired))
	}
}

func TestRateLimitFailsOpenOnRedisError(t *testing.T) {
	store := &fakeLimiterStore{incrErr: errors.New("connection refused")}
	r := limiterRouter(rateLimitWith(store))

	for i := 0; i < rateLimitMax*2; i++ {
		if w := hitAnswer(r); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 when Redis is down", i+1, w.Code)
		}
	}
}
