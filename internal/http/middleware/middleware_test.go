package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"pdf2image/internal/config"
	"pdf2image/internal/tokens"
)

func resetLimiterState() {
	tokenLimiterCache.Lock()
	tokenLimiterCache.handlers = nil
	tokenLimiterCache.Unlock()
	rateLimitStore = nil
}

func baseCfg() config.Config {
	var cfg config.Config
	cfg.RateLimiter.Interval = config.Duration(time.Hour)
	return cfg
}

func TestRegister_AddsHealthAndRequestID(t *testing.T) {
	resetLimiterState()
	app := fiber.New()
	Register(app, baseCfg(), nil)
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	healthReq, _ := http.NewRequest(http.MethodGet, "/livez", nil)
	healthResp, err := app.Test(healthReq)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	if healthResp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected health endpoint 200, got %d", healthResp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("ping request failed: %v", err)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id to be present")
	}
}

func TestTokenRateLimitMiddleware(t *testing.T) {
	resetLimiterState()
	token := "test-token"
	limit := 2

	cache := tokens.NewCache()
	cache.Replace(map[string]tokens.Entry{token: {RateLimit: limit}})

	cfg := baseCfg()
	cfg.Auth.Enabled = true

	app := fiber.New()
	Register(app, cfg, cache)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	makeReq := func() *http.Request {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-API-Key", token)
		return req
	}

	for i := 0; i < limit; i++ {
		resp, err := app.Test(makeReq(), -1)
		if err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 but got %d", resp.StatusCode)
		}
	}

	resp, err := app.Test(makeReq(), -1)
	if err != nil {
		t.Fatalf("exceed request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 but got %d", resp.StatusCode)
	}
}

func TestKeyAuth_InvalidKeyAndNotReady(t *testing.T) {
	resetLimiterState()
	cfg := baseCfg()
	cfg.Auth.Enabled = true

	// Cache never loaded: authenticated requests get 503.
	notReady := tokens.NewCache()
	app1 := fiber.New()
	Register(app1, cfg, notReady)
	app1.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Key", "whatever")
	resp, err := app1.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first token load, got %d", resp.StatusCode)
	}

	// Loaded cache without the key: 401.
	resetLimiterState()
	loaded := tokens.NewCache()
	loaded.Replace(map[string]tokens.Entry{"known": {RateLimit: 0}})
	app2 := fiber.New()
	Register(app2, cfg, loaded)
	app2.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req2 := httptest.NewRequest("GET", "/", nil)
	req2.Header.Set("X-API-Key", "unknown")
	resp2, err := app2.Test(req2, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp2.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown key, got %d", resp2.StatusCode)
	}
}

func TestUserRateLimitMiddleware(t *testing.T) {
	resetLimiterState()
	cfg := baseCfg()
	cfg.RateLimiter.UserLimit = 2

	app := fiber.New()
	Register(app, cfg, nil)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
		if err != nil {
			t.Fatalf("request %d failed: %v", i+1, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 but got %d", resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatalf("exceed request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 but got %d", resp.StatusCode)
	}
}
