package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.GET("/public/tenants/:slug", rl.Middleware(), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/health", rl.Middleware(), func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func doGet(router *gin.Engine, path, remoteAddr string) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	defer rl.Stop()
	router := limitedRouter(rl)

	if code := doGet(router, "/public/tenants/demo-hotel", "192.168.1.1:12345"); code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	router := limitedRouter(rl)

	// Burst of 2, so the fifth rapid request must be rejected
	var lastCode int
	for i := 0; i < 5; i++ {
		lastCode = doGet(router, "/public/tenants/demo-hotel", "10.0.0.1:12345")
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected status %d after burst exceeded, got %d", http.StatusTooManyRequests, lastCode)
	}
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	router := limitedRouter(rl)

	if code := doGet(router, "/public/tenants/demo-hotel", "10.0.0.1:12345"); code != http.StatusOK {
		t.Errorf("IP1 first request: expected %d, got %d", http.StatusOK, code)
	}

	// A second IP keeps its own bucket for the same tenant
	if code := doGet(router, "/public/tenants/demo-hotel", "10.0.0.2:12345"); code != http.StatusOK {
		t.Errorf("IP2 first request: expected %d, got %d", http.StatusOK, code)
	}
}

func TestRateLimit_IndependentPerTenantSlug(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	router := limitedRouter(rl)

	// Exhaust one tenant's budget from a single caller
	doGet(router, "/public/tenants/acme-inn", "10.0.0.1:12345")
	if code := doGet(router, "/public/tenants/acme-inn", "10.0.0.1:12345"); code != http.StatusTooManyRequests {
		t.Errorf("same slug second request: expected %d, got %d", http.StatusTooManyRequests, code)
	}

	// Another tenant is unaffected, even from the same IP
	if code := doGet(router, "/public/tenants/beach-house", "10.0.0.1:12345"); code != http.StatusOK {
		t.Errorf("other slug: expected %d, got %d", http.StatusOK, code)
	}
}

func TestRateLimit_FallsBackToIPWithoutSlug(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	router := limitedRouter(rl)

	doGet(router, "/health", "10.0.0.9:12345")
	if code := doGet(router, "/health", "10.0.0.9:12345"); code != http.StatusTooManyRequests {
		t.Errorf("expected IP-keyed limit on slugless route, got %d", code)
	}
}
