package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/erp/pos-gateway/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubGuard struct {
	err  error
	seen access.Identity
}

func (s *stubGuard) Authorize(_ context.Context, id access.Identity) error {
	s.seen = id
	return s.err
}

func guardRouter(guard AccessGuard) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Guard(guard))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestGuard(t *testing.T) {
	t.Run("passes allowed request through", func(t *testing.T) {
		w := httptest.NewRecorder()
		guardRouter(&stubGuard{}).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("denied request maps to 403", func(t *testing.T) {
		guard := &stubGuard{err: shared.NewDomainError("ACCESS_DENIED", "role not allowed")}
		w := httptest.NewRecorder()
		guardRouter(guard).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
		assert.Contains(t, w.Body.String(), "role not allowed")
	})

	t.Run("policy failure maps to 503", func(t *testing.T) {
		guard := &stubGuard{err: shared.NewDomainError("DEPENDENCY_UNAVAILABLE", "policy store unreachable")}
		w := httptest.NewRecorder()
		guardRouter(guard).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_DEPENDENCY_UNAVAILABLE")
	})

	t.Run("unexpected error maps to 500", func(t *testing.T) {
		guard := &stubGuard{err: errors.New("boom")}
		w := httptest.NewRecorder()
		guardRouter(guard).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}
