package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/quizmaster/quizmaster-backend/internal/service"
)

func sessionRouter(tokens *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sessions/:session_id", RequireSessionToken(tokens), func(c *gin.Context) {
		response.Success(c, http.StatusOK, GetClaims(c).Subject)
	})
	return r
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func TestRequireSessionToken(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	good, _, _ := tokens.Issue("s-1", "q")
	other, _, _ := tokens.Issue("s-2", "q")
	r := sessionRouter(tokens)

	tests := []struct {
		name   string
		url    string
		header string
		status int
		code   response.ErrCode
	}{
		{"bearer header", "/sessions/s-1", "Bearer " + good, http.StatusOK, ""},
		{"query token", "/sessions/s-1?token=" + good, "", http.StatusOK, ""},
		{"missing", "/sessions/s-1", "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"garbage", "/sessions/s-1", "Bearer nope", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"other session", "/sessions/s-1", "Bearer " + other, http.StatusForbidden, response.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if got := errorCode(t, w); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/a", CacheControl(60), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a", nil))
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Errorf("Cache-Control = %q", got)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/b", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
}
