package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-corps/internal/config"
	"github.com/iliyamo/fantasy-corps/internal/utils"
)

const secret = "test-secret"

func protected() *echo.Echo {
	e := echo.New()
	g := e.Group("/v1", JWTAuth(secret))
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c)+":"+c.Get(CtxRole).(string))
	})
	g.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireRole(RoleAdmin))
	return e
}

func do(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := protected()
	tok, err := utils.NewAccessToken(secret, "user-42", RoleParticipant, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	if rec := do(e, "/v1/me", tok.Token); rec.Code != http.StatusOK || rec.Body.String() != "user-42:PARTICIPANT" {
		t.Fatalf("valid token: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, "/v1/me", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: %d", rec.Code)
	}
	other, _ := utils.NewAccessToken("other-secret", "user-42", RoleAdmin, time.Hour)
	if rec := do(e, "/v1/me", other.Token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token: %d", rec.Code)
	}
	expired, _ := utils.NewAccessToken(secret, "user-42", RoleAdmin, -time.Minute)
	if rec := do(e, "/v1/me", expired.Token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	e := protected()
	p, _ := utils.NewAccessToken(secret, "u1", RoleParticipant, time.Hour)
	a, _ := utils.NewAccessToken(secret, "u2", RoleAdmin, time.Hour)
	if rec := do(e, "/v1/admin", p.Token); rec.Code != http.StatusForbidden {
		t.Fatalf("participant on admin route: %d", rec.Code)
	}
	if rec := do(e, "/v1/admin", a.Token); rec.Code != http.StatusNoContent {
		t.Fatalf("admin on admin route: %d", rec.Code)
	}
}

func TestLocalTokenBucket(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 5 * time.Hour, Prefix: "rl",
	}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, nil, zerolog.Nop()))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := do(e, "/x", "")
		codes = append(codes, rec.Code)
		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Fatal("missing Retry-After on limited response")
		}
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: []string{"GET"}, TTL: time.Minute, Prefix: "cache"}
	e := echo.New()
	calls := 0
	e.GET("/r/:id", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, c.Param("id"))
	}, NewRedisCache(cfg, nil))
	do(e, "/r/a", "")
	do(e, "/r/a", "")
	if calls != 2 {
		t.Fatalf("calls = %d, want passthrough", calls)
	}
}

func TestBucketKeyByCaller(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/admin/seasons/s1/prelims", nil), httptest.NewRecorder())
	c.SetPath("/v1/admin/seasons/:id/prelims")
	if got := bucketKey("rl", c); got != "rl:ip:192.0.2.1:POST:/v1/admin/seasons/:id/prelims" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(CtxUserID, "u7")
	if got := bucketKey("rl", c); got != "rl:user:u7:POST:/v1/admin/seasons/:id/prelims" {
		t.Fatalf("user key = %q", got)
	}
}

func TestResultKeyPerSeasonAndResult(t *testing.T) {
	e := echo.New()
	key := func(season, result string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/seasons/"+season+"/results/"+result, nil), httptest.NewRecorder())
		c.SetPath("/v1/seasons/:id/results/:resultId")
		c.SetParamNames("id", "resultId")
		c.SetParamValues(season, result)
		return resultKey("results", c)
	}
	if got := key("s1", "prelims"); got != "results:season:s1:result:prelims" {
		t.Fatalf("key = %q", got)
	}
	if key("s1", "finals") == key("s2", "finals") {
		t.Fatal("seasons share a cache key")
	}
}

func TestReplayWritesStoredResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if !replay(c, []byte(`{"status":200,"content_type":"application/json","body":"eyJvayI6dHJ1ZX0="}`)) {
		t.Fatal("replay rejected a valid entry")
	}
	if rec.Body.String() != `{"ok":true}` || rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("body %q headers %v", rec.Body.String(), rec.Header())
	}
	if replay(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()), []byte("junk")) {
		t.Fatal("replay accepted junk")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Header().Get(echo.HeaderXRequestID) != "rid-1" {
		t.Fatalf("request id not echoed: %v", rec.Header())
	}
	out := buf.String()
	for _, want := range []string{`"request_id":"rid-1"`, `"status":200`, `"component":"http"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log %q missing %s", out, want)
		}
	}
}
