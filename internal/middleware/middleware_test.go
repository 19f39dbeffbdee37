package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func fixedLimiter(rps float64, burst int, at time.Time) *RateLimiter {
	rl := NewRateLimiter(rps, burst)
	rl.now = func() time.Time { return at }
	return rl
}

func TestRateLimiter_PerKeyBurst(t *testing.T) {
	rl := fixedLimiter(1, 2, time.Unix(1000, 0))

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	at := time.Unix(1000, 0)
	rl := fixedLimiter(1, 1, at)
	rl.Allow("old")

	rl.now = func() time.Time { return at.Add(staleAfter + time.Second) }
	rl.Allow("new")

	assert.Equal(t, 1, rl.cleanup())
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "new")
}

func TestRateLimit_GRPCOnlyLimitsBooking(t *testing.T) {
	rl := fixedLimiter(1, 1, time.Unix(1000, 0))
	icpt := RateLimit(rl)
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5000}})
	ok := func(context.Context, any) (any, error) { return "ok", nil }

	book := &grpc.UnaryServerInfo{FullMethod: "/booking.v1.BookingService/BookAppointment"}
	list := &grpc.UnaryServerInfo{FullMethod: "/booking.v1.BookingService/ListDoctors"}

	_, err := icpt(ctx, nil, book, ok)
	require.NoError(t, err)
	_, err = icpt(ctx, nil, book, ok)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	for i := 0; i < 5; i++ {
		_, err = icpt(ctx, nil, list, ok)
		require.NoError(t, err)
	}
}

func TestRateLimitHTTP(t *testing.T) {
	e := echo.New()
	rl := fixedLimiter(1, 1, time.Unix(1000, 0))
	e.POST("/submit", func(c echo.Context) error { return c.NoContent(http.StatusAccepted) }, RateLimitHTTP(rl))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusAccepted, do().Code)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID(), Logger(logger))
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	rid := rec.Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, rid)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["message"])
	assert.Equal(t, "/missing", line["path"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
	assert.Equal(t, rid, line["request_id"])
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(Recovery(zerolog.New(&buf)))
	e.GET("/boom", func(c echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestUnaryLogger(t *testing.T) {
	var buf bytes.Buffer
	icpt := UnaryLogger(zerolog.New(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: "/booking.v1.BookingService/GetDoctor"}

	_, err := icpt(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "doctor not found")
	})
	require.Error(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "NotFound", line["code"])
	assert.Equal(t, info.FullMethod, line["method"])
}

func TestUnaryRecovery(t *testing.T) {
	icpt := UnaryRecovery(zerolog.Nop())
	info := &grpc.UnaryServerInfo{FullMethod: "/x"}

	_, err := icpt(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic(errors.New("boom"))
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}
