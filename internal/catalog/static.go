package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/quizmaster/quizmaster-backend/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Document is the YAML layout of a catalog file.
type Document struct {
	Categories []model.Category               `yaml:"categories"`
	Listings   map[string][]model.QuizSummary `yaml:"listings"`
	Quizzes    []model.Quiz                   `yaml:"quizzes"`
}

// Static is an immutable in-memory catalog.
type Static struct {
	categories []model.Category
	listings   map[string][]model.QuizSummary
	quizzes    map[string]*model.Quiz
	order      []string
}

// NewStatic returns the catalog bundled with the binary.
func NewStatic() (*Static, error) {
	return ParseStatic(embeddedCatalog)
}

// LoadStaticFile reads a catalog document from disk.
func LoadStaticFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseStatic(data)
}

// ParseDocument decodes and validates a YAML catalog document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	ids := make(map[string]struct{}, len(doc.Categories))
	for _, c := range doc.Categories {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("category requires id and name")
		}
		ids[strings.ToLower(c.ID)] = struct{}{}
	}
	for key := range doc.Listings {
		if _, ok := ids[strings.ToLower(key)]; !ok {
			return nil, fmt.Errorf("listing for unknown category %q", key)
		}
	}
	seen := make(map[string]struct{}, len(doc.Quizzes))
	for i := range doc.Quizzes {
		if err := doc.Quizzes[i].Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[doc.Quizzes[i].ID]; dup {
			return nil, fmt.Errorf("duplicate quiz id %s", doc.Quizzes[i].ID)
		}
		seen[doc.Quizzes[i].ID] = struct{}{}
	}
	return &doc, nil
}

// ParseStatic builds a Static catalog from a YAML document.
func ParseStatic(data []byte) (*Static, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}

	s := &Static{
		categories: doc.Categories,
		listings:   make(map[string][]model.QuizSummary, len(doc.Listings)),
		quizzes:    make(map[string]*model.Quiz, len(doc.Quizzes)),
	}
	for key, list := range doc.Listings {
		s.listings[strings.ToLower(key)] = list
	}
	for i := range doc.Quizzes {
		q := doc.Quizzes[i]
		s.quizzes[q.ID] = &q
		s.order = append(s.order, q.ID)
	}
	return s, nil
}

// Document returns the catalog contents, e.g. for seeding a database.
func (s *Static) Document() *Document {
	doc := &Document{
		Categories: append([]model.Category(nil), s.categories...),
		Listings:   make(map[string][]model.QuizSummary, len(s.listings)),
		Quizzes:    make([]model.Quiz, 0, len(s.order)),
	}
	for key, list := range s.listings {
		doc.Listings[key] = append([]model.QuizSummary(nil), list...)
	}
	for _, id := range s.order {
		doc.Quizzes = append(doc.Quizzes, *s.quizzes[id])
	}
	return doc
}

func (s *Static) GetCategories(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Static) GetCategory(_ context.Context, categoryKey string) (*model.Category, error) {
	c := s.findCategory(categoryKey)
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", categoryKey, ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (s *Static) GetQuizzesByCategory(_ context.Context, categoryKey string) ([]model.QuizSummary, error) {
	c := s.findCategory(categoryKey)
	if c == nil {
		return []model.QuizSummary{}, nil
	}
	list := s.listings[strings.ToLower(c.ID)]
	out := make([]model.QuizSummary, len(list))
	copy(out, list)
	return out, nil
}

// GetQuizByID returns the shared quiz definition. Callers must not modify it.
func (s *Static) GetQuizByID(_ context.Context, quizID string) (*model.Quiz, error) {
	q, ok := s.quizzes[quizID]
	if !ok {
		return nil, fmt.Errorf("quiz %q: %w", quizID, ErrNotFound)
	}
	return q, nil
}

func (s *Static) findCategory(key string) *model.Category {
	for i := range s.categories {
		if strings.EqualFold(s.categories[i].ID, key) || strings.EqualFold(s.categories[i].Name, key) {
			return &s.categories[i]
		}
	}
	return nil
}
