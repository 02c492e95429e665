package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFailEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"quiz_id": "required"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "8a3c5cb4-8f5f-4a53-9a4b-8b1e2f7a6d10")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.Code != ErrValidation || body.Error.Fields["quiz_id"] != "required" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
	if body.Error.Message != GetMessage(ErrValidation) {
		t.Errorf("message = %q", body.Error.Message)
	}
	if body.Metadata.RequestID != "8a3c5cb4-8f5f-4a53-9a4b-8b1e2f7a6d10" {
		t.Errorf("request id not propagated: %q", body.Metadata.RequestID)
	}
}

func TestRequestIDRejectsGarbage(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { Success(c, http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(HeaderRequestID); got == "<script>" || got == "" {
		t.Errorf("expected generated id, got %q", got)
	}
}

func TestEveryCodeHasMessage(t *testing.T) {
	codes := []ErrCode{
		ErrTokenRequired, ErrTokenInvalid, ErrTokenExpired, ErrForbidden,
		ErrValidation, ErrInvalidID, ErrInvalidPayload,
		ErrNotFound, ErrCategoryNotFound, ErrQuizNotFound,
		ErrSessionNotFound, ErrSessionNotComplete, ErrUnknownAction,
		ErrRateLimitExceeded, ErrInternal, ErrServiceUnavailable,
	}
	fallback := GetMessage("SOMETHING_ELSE")
	for _, code := range codes {
		if GetMessage(code) == fallback {
			t.Errorf("%s uses the fallback message", code)
		}
	}
}
