package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"huntx-client/internal/observability"
	"huntx-client/internal/telemetry"
)

func setupRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), BridgeAuth(token))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": telemetry.RequestIDFromContext(c.Request.Context())})
	})
	return r
}

func TestBridgeAuthDisabledWithoutToken(t *testing.T) {
	router := setupRouter("")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBridgeAuthRejectsMissingAndWrongToken(t *testing.T) {
	router := setupRouter("s3cret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestBridgeAuthAcceptsHeaderOrQueryToken(t *testing.T) {
	router := setupRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session?token=s3cret", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzSkipsAuth(t *testing.T) {
	router := setupRouter("s3cret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	router := setupRouter("")

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(observability.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(observability.RequestIDHeader))
	assert.JSONEq(t, `{"request_id":"req-1"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.NotEmpty(t, rec.Header().Get(observability.RequestIDHeader))
}
