package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// pingRegistrar registers a single route, standing in for a real handler
type pingRegistrar struct {
	prefix string
}

func (p *pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(p.prefix)
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(&pingRegistrar{prefix: "/batches"})

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	r.Register(&pingRegistrar{prefix: "/batches"})
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/batches/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterSetup_VersionPrefix(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	r.Register(&pingRegistrar{prefix: "/invoices"})
	r.Setup()

	// v1 path is not registered under a v2 router
	req := httptest.NewRequest("GET", "/api/v1/invoices/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest("GET", "/api/v2/invoices/ping", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRegisterMultiple(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(&pingRegistrar{prefix: "/batches"}).
		Register(&pingRegistrar{prefix: "/invoices"})
	r.Setup()

	for _, path := range []string{"/api/v1/batches/ping", "/api/v1/invoices/ping"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
