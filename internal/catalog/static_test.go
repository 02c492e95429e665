package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	s, err := NewStatic()
	if err != nil {
		t.Fatalf("embedded catalog invalid: %v", err)
	}

	cats, _ := s.GetCategories(context.Background())
	if len(cats) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(cats))
	}
	for _, id := range []string{"hist-ww2-timeline", "sci-physics-fundamentals", "prog-javascript-fundamentals"} {
		q, err := s.GetQuizByID(context.Background(), id)
		if err != nil {
			t.Fatalf("quiz %s: %v", id, err)
		}
		if len(q.Questions) == 0 {
			t.Errorf("quiz %s has no questions", id)
		}
	}
}

func TestGetQuizzesByCategory(t *testing.T) {
	s, err := NewStatic()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		key  string
		want int
	}{
		{"history", 4},
		{"History", 4},
		{"SCIENCE", 3},
		{"geography", 0},
		{"Unknown", 0},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := s.GetQuizzesByCategory(ctx, tt.key)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.key, err)
			continue
		}
		if got == nil {
			t.Errorf("%q: expected empty slice, got nil", tt.key)
		}
		if len(got) != tt.want {
			t.Errorf("%q: got %d quizzes, want %d", tt.key, len(got), tt.want)
		}
	}
}

func TestGetCategoryNotFound(t *testing.T) {
	s, _ := NewStatic()

	c, err := s.GetCategory(context.Background(), "Programming")
	if err != nil || c.ID != "programming" {
		t.Fatalf("lookup by name failed: %+v, %v", c, err)
	}

	_, err = s.GetCategory(context.Background(), "astrology")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetQuizByIDNotFound(t *testing.T) {
	s, _ := NewStatic()
	_, err := s.GetQuizByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseDocumentRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad correct index": `
categories: [{id: a, name: A}]
quizzes:
  - id: q1
    title: T
    category: a
    difficulty: easy
    questions:
      - {id: x, prompt: P, options: [a, b], correct_option_index: 2, difficulty: easy, points: 10}
`,
		"unknown difficulty": `
categories: [{id: a, name: A}]
quizzes:
  - id: q1
    title: T
    category: a
    difficulty: extreme
    questions:
      - {id: x, prompt: P, options: [a, b], correct_option_index: 0, difficulty: easy, points: 10}
`,
		"listing for missing category": `
categories: [{id: a, name: A}]
listings:
  b: []
`,
		"no questions": `
categories: [{id: a, name: A}]
quizzes:
  - {id: q1, title: T, category: a, difficulty: easy, questions: []}
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseDocument([]byte(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s, _ := NewStatic()
	doc := s.Document()
	if len(doc.Quizzes) != 3 || doc.Quizzes[0].ID != "hist-ww2-timeline" {
		t.Fatalf("unexpected document order: %d quizzes", len(doc.Quizzes))
	}
	if len(doc.Listings["history"]) != 4 {
		t.Errorf("history listing lost")
	}
}
