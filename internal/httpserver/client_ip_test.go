package httpserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/quickcart/internal/ratelimit"
	"github.com/Skotchmaster/quickcart/pkg/logging"
)

func newLimitedEcho(t *testing.T, limit int) *echo.Echo {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := New(logging.NewWithWriter("error", io.Discard))
	l := ratelimit.New(rdb, limit, time.Minute)
	e.POST("/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware)
	return e
}

func postLogin(e *echo.Echo, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestLoginLimit_IgnoresForwardedForByDefault(t *testing.T) {
	e := newLimitedEcho(t, 2)

	blocked := 0
	for i := 0; i < 20; i++ {
		if postLogin(e, "198.51.100.7:4000", "203.0.113."+itoa(uint(i))) == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Equal(t, 18, blocked)
}

func TestLoginLimit_TrustedProxy(t *testing.T) {
	e := newLimitedEcho(t, 1)
	require.NoError(t, TrustProxies(e, []string{"10.0.0.0/8"}))

	// distinct clients behind the proxy get their own budget
	assert.Equal(t, http.StatusOK, postLogin(e, "10.0.0.1:4000", "203.0.113.1"))
	assert.Equal(t, http.StatusOK, postLogin(e, "10.0.0.1:4000", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, postLogin(e, "10.0.0.1:4000", "203.0.113.1"))

	// an untrusted peer cannot pick its own address
	assert.Equal(t, http.StatusOK, postLogin(e, "198.51.100.7:4000", "203.0.113.50"))
	assert.Equal(t, http.StatusTooManyRequests, postLogin(e, "198.51.100.7:4000", "203.0.113.51"))
}

func TestTrustProxies_InvalidCIDR(t *testing.T) {
	e := New(logging.NewWithWriter("error", io.Discard))
	assert.Error(t, TrustProxies(e, []string{"not-a-cidr"}))
}
