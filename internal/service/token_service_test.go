package service

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	tok, exp, err := s.Issue("sess-1", "quiz-1")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry in the past: %v", exp)
	}
	claims, err := s.Validate(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "sess-1" || claims.QuizID != "quiz-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	tok, _, _ := s.Issue("sess-1", "quiz-1")

	other := NewTokenService("another-secret", time.Hour)
	if _, err := other.Validate(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("wrong key: expected ErrTokenInvalid, got %v", err)
	}
	if _, err := s.Validate("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage: expected ErrTokenInvalid, got %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := s.Validate(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
