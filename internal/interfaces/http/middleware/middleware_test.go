package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bizconsole/backend/internal/infrastructure/auth"
	"github.com/bizconsole/backend/internal/infrastructure/config"
	"github.com/bizconsole/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://localhost:5173"}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", ok)

	w := serve(r, http.MethodGet, "/x", nil, map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(r, http.MethodGet, "/x", nil, map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/x", nil, map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))

	w = serve(r, http.MethodOptions, "/x", nil, map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, http.MethodGet, "/x", nil, map[string]string{RequestIDHeader: "abc"})
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/x", nil, map[string]string{RequestIDHeader: strings.Repeat("a", MaxRequestIDLength+1)})
	assert.Len(t, w.Body.String(), 36)

	w = serve(r, http.MethodGet, "/x", nil, nil)
	assert.NotEmpty(t, w.Body.String())
}

func newJWTRouter(t *testing.T, blacklist auth.TokenBlacklist) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	svc := auth.NewJWTService(config.JWTConfig{Secret: "middleware-test-secret", AccessTokenExpiration: time.Minute, Issuer: "test"})
	r := gin.New()
	r.Use(RequestID(), JWTAuth(JWTConfig{JWTService: svc, Blacklist: blacklist, SkipPaths: DefaultSkipPaths}), ReadOnlyFor(RoleViewer))
	r.GET("/health", ok)
	r.GET("/api/v1/crm/customers", func(c *gin.Context) { c.String(http.StatusOK, GetJWTUsername(c)) })
	r.POST("/api/v1/crm/customers", ok)
	r.GET("/logistics/api/v1/products/search", ok)
	return r, svc
}

func TestJWTAuth(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	r, svc := newJWTRouter(t, blacklist)

	admin, err := svc.Generate("ana", "admin")
	require.NoError(t, err)
	bearer := map[string]string{AuthHeaderKey: BearerPrefix + admin.AccessToken}

	t.Run("public path", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil, nil).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/v1/crm/customers", nil, bearer)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ana", w.Body.String())
	})

	t.Run("missing token uses crm envelope", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/api/v1/crm/customers", nil, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("bad token uses logistics envelope", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/logistics/api/v1/products/search", nil, map[string]string{AuthHeaderKey: "Bearer nope"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		var env dto.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, http.StatusUnauthorized, env.Code)
		assert.Equal(t, dto.StatusError, env.Status)
		assert.Equal(t, "Invalid token", env.Message)
	})

	t.Run("viewer cannot write", func(t *testing.T) {
		viewer, err := svc.Generate("bo", RoleViewer)
		require.NoError(t, err)
		h := map[string]string{AuthHeaderKey: BearerPrefix + viewer.AccessToken}
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/crm/customers", nil, h).Code)
		assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/v1/crm/customers", nil, h).Code)
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/crm/customers", nil, bearer).Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		claims, err := svc.Validate(admin.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Minute))
		w := serve(r, http.MethodGet, "/api/v1/crm/customers", nil, bearer)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "revoked")
	})
}

func TestRateLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	now := time.Now()
	limiter.now = func() time.Time { return now }

	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/x", ok)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil, nil).Code)
	w := serve(r, http.MethodGet, "/x", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	w = serve(r, http.MethodGet, "/x", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil, nil).Code)
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)
	limiter := NewRateLimiter(1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/logistics/api/v1/products/create", ok)

	w := serve(r, http.MethodPost, "/logistics/api/v1/products/create", []byte("0123456789"), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/logistics/api/v1/products/create", []byte("0123"), nil).Code)
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []string
}

func (o *recordingObserver) ObserveHTTP(method, route, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, method+" "+route+" "+status)
}

func TestHTTPMetrics(t *testing.T) {
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(HTTPMetrics(obs))
	r.GET("/items/:id", ok)

	serve(r, http.MethodGet, "/items/42", nil, nil)
	serve(r, http.MethodGet, "/nope", nil, nil)

	assert.Equal(t, []string{"GET /items/:id 200", "GET unmatched 404"}, obs.seen)
}

func TestDecimalValidation(t *testing.T) {
	v := validator.New()
	RegisterValidations(v)

	type req struct {
		Price decimal.Decimal  `json:"price" validate:"decimal_gte0"`
		Cost  *decimal.Decimal `json:"cost" validate:"omitempty,decimal_gte0"`
	}
	neg := decimal.NewFromInt(-1)
	pos := decimal.RequireFromString("12.50")

	assert.NoError(t, v.Struct(req{Price: pos}))
	assert.NoError(t, v.Struct(req{Price: decimal.Zero, Cost: &pos}))

	err := v.Struct(req{Price: neg})
	require.Error(t, err)
	details := ValidationDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "price", details[0].Field)
	assert.Equal(t, "Must be a non-negative amount", details[0].Message)

	assert.Error(t, v.Struct(req{Price: pos, Cost: &neg}))
}
