package model

import (
	"fmt"
	"strings"
)

// Difficulty is the closed set of difficulty levels used by quizzes and questions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty converts a raw string into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	_, err := ParseDifficulty(string(d))
	return err == nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown difficulty %q", string(d))
	}
	return []byte(d), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by both the JSON
// and YAML decoders.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Question is a single multiple-choice question.
type Question struct {
	ID                 string     `json:"id" yaml:"id"`
	Prompt             string     `json:"prompt" yaml:"prompt"`
	Options            []string   `json:"options" yaml:"options"`
	CorrectOptionIndex int        `json:"correct_option_index" yaml:"correct_option_index"`
	Explanation        string     `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Difficulty         Difficulty `json:"difficulty" yaml:"difficulty"`
	Points             int        `json:"points" yaml:"points"`
}

// Validate checks the question invariants.
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s: at least 2 options required, got %d", q.ID, len(q.Options))
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return fmt.Errorf("question %s: correct option index %d out of range", q.ID, q.CorrectOptionIndex)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("question %s: unknown difficulty %q", q.ID, string(q.Difficulty))
	}
	if q.Points <= 0 {
		return fmt.Errorf("question %s: points must be positive", q.ID)
	}
	return nil
}

// HasOption reports whether i indexes one of the question's options.
func (q *Question) HasOption(i int) bool {
	return i >= 0 && i < len(q.Options)
}

// QuestionForPlayer is a question without its answer key.
type QuestionForPlayer struct {
	ID         string     `json:"id"`
	Prompt     string     `json:"prompt"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
	Points     int        `json:"points"`
}

// ForPlayer strips the correct option and the explanation.
func (q *Question) ForPlayer() QuestionForPlayer {
	return QuestionForPlayer{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Points:     q.Points,
	}
}
