package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ctrlroom/models"
	"ctrlroom/services/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubVerifier map[string]auth.Principal

func (v stubVerifier) Verify(_ context.Context, token string) (auth.Principal, error) {
	p, ok := v[token]
	if !ok {
		return auth.Principal{}, auth.ErrInvalidToken
	}
	return p, nil
}

func router(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := auth.FromContext(c.Request.Context())
		c.String(http.StatusOK, p.UserID)
	})
	r.GET("/x", handlers...)
	return r
}

func get(r http.Handler, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	v := stubVerifier{"good": {UserID: "u1", Role: models.RoleClient}}
	r := router(AuthMiddleware(v))

	w := get(r, "good", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "bad", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "", nil).Code)
}

func TestRequireRole(t *testing.T) {
	v := stubVerifier{
		"client": {UserID: "u1", Role: models.RoleClient},
		"admin":  {UserID: "a1", Role: models.RoleAdmin},
	}
	r := router(AuthMiddleware(v), RequireRole(models.RoleAdmin))

	assert.Equal(t, http.StatusOK, get(r, "admin", nil).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "client", nil).Code)

	bare := router(RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, get(bare, "", nil).Code)
}

func TestRateLimiter(t *testing.T) {
	r := router(NewRateLimiter(2).Middleware())
	h := map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}

	assert.Equal(t, http.StatusOK, get(r, "", h).Code)
	assert.Equal(t, http.StatusOK, get(r, "", h).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "", h).Code)

	other := map[string]string{"X-Forwarded-For": "10.0.0.9"}
	assert.Equal(t, http.StatusOK, get(r, "", other).Code)
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Equal(t, "192.0.2.1", getClientIP(c))

	c.Request.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(c))
}
