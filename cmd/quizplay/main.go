// Command quizplay runs a quiz from the catalog in the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/quizmaster/quizmaster-backend/internal/catalog"
	"github.com/quizmaster/quizmaster-backend/internal/logger"
	"github.com/quizmaster/quizmaster-backend/internal/model"
	"github.com/quizmaster/quizmaster-backend/internal/quiz"
	"golang.org/x/term"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 80

func main() {
	var quizID, category, file, logLevel string
	flag.StringVar(&quizID, "quiz", "", "Quiz ID to play")
	flag.StringVar(&category, "category", "", "List the quizzes of a category and exit")
	flag.StringVar(&file, "catalog", "", "Catalog YAML file (defaults to the bundled catalog)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level")
	flag.Parse()

	log := logger.SetupTo(os.Stderr, logLevel, "pretty")

	var (
		provider *catalog.Static
		err      error
	)
	if file != "" {
		provider, err = catalog.LoadStaticFile(file)
	} else {
		provider, err = catalog.NewStatic()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}

	ctx := context.Background()
	p := newPlayer(os.Stdin, os.Stdout, termWidth())

	switch {
	case category != "":
		quizzes, _ := provider.GetQuizzesByCategory(ctx, category)
		p.listQuizzes(category, quizzes)
		return
	case quizID == "":
		categories, _ := provider.GetCategories(ctx)
		p.listCategories(categories)
		return
	}

	q, err := provider.GetQuizByID(ctx, quizID)
	if errors.Is(err, catalog.ErrNotFound) {
		log.Fatal().Str("quiz_id", quizID).Msg("Quiz not found")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load quiz")
	}

	sess, err := quiz.New(q, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start quiz")
	}
	if !p.play(sess) {
		return
	}
	res, _ := sess.ComputeResult()
	p.showResult(res)
}

func termWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

type player struct {
	in    *bufio.Scanner
	out   io.Writer
	width int
}

func newPlayer(in io.Reader, out io.Writer, width int) *player {
	return &player{in: bufio.NewScanner(in), out: out, width: width}
}

func (p *player) listCategories(categories []model.Category) {
	fmt.Fprintln(p.out, "Categories:")
	for _, c := range categories {
		fmt.Fprintf(p.out, "  %-12s %s (%d quizzes)\n", c.ID, c.Name, c.QuizCount)
	}
	fmt.Fprintln(p.out, "Use -category <id> to list quizzes, -quiz <id> to play.")
}

func (p *player) listQuizzes(category string, quizzes []model.QuizSummary) {
	if len(quizzes) == 0 {
		fmt.Fprintf(p.out, "No quizzes in %q.\n", category)
		return
	}
	for _, q := range quizzes {
		fmt.Fprintf(p.out, "  %-32s %-8s %2d questions  %s\n", q.ID, q.Difficulty, q.QuestionCount, q.Title)
	}
}

// play drives the session from stdin. It returns false if the player quit
// before finishing.
func (p *player) play(sess *quiz.Session) bool {
	p.render(sess)
	for !sess.IsComplete() {
		fmt.Fprint(p.out, "> ")
		if !p.in.Scan() {
			return false
		}
		cmd := strings.ToLower(strings.TrimSpace(p.in.Text()))

		var applied bool
		switch cmd {
		case "q", "quit":
			return false
		case "s", "submit":
			applied = sess.SubmitAnswer()
		case "n", "next", "":
			applied = sess.Advance()
		case "p", "prev":
			applied = sess.GoToPrevious()
		default:
			n, err := strconv.Atoi(cmd)
			if err != nil {
				fmt.Fprintln(p.out, "Commands: <option number>, s(ubmit), n(ext), p(rev), q(uit)")
				continue
			}
			applied = sess.SelectOption(n - 1)
		}
		if !applied {
			fmt.Fprintln(p.out, "Not available right now.")
			continue
		}
		if !sess.IsComplete() {
			p.render(sess)
		}
	}
	return true
}

func (p *player) render(sess *quiz.Session) {
	v := sess.View("")
	fmt.Fprintf(p.out, "\n%s  [%d/%d, %d%%]\n", v.QuizTitle, v.CurrentIndex+1, v.TotalQuestions, v.ProgressPercent)
	fmt.Fprintln(p.out, strings.Repeat("─", min(p.width, 60)))
	fmt.Fprintln(p.out, wrap(v.Question.Prompt, p.width))

	for i, opt := range v.Question.Options {
		marker := " "
		switch {
		case v.Submitted != nil && i == v.Submitted.CorrectOptionIndex:
			marker = "✓"
		case v.Submitted != nil && i == v.Submitted.SelectedOptionIndex:
			marker = "✗"
		case v.PendingSelection != nil && i == *v.PendingSelection:
			marker = ">"
		}
		fmt.Fprintf(p.out, " %s %d. %s\n", marker, i+1, opt)
	}

	if v.Submitted != nil {
		if v.Submitted.IsCorrect {
			fmt.Fprintln(p.out, "Correct!")
		} else {
			fmt.Fprintln(p.out, "Incorrect.")
		}
		if v.Submitted.Explanation != "" {
			fmt.Fprintln(p.out, wrap(v.Submitted.Explanation, p.width))
		}
	}
}

func (p *player) showResult(res model.QuizResult) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Score:  %d/%d (%d%%, %s)\n", res.CorrectCount, res.TotalAnswered, res.ScorePercent, res.Band)
	fmt.Fprintf(p.out, "Points: %d\n", res.PointsEarned)
	fmt.Fprintf(p.out, "Time:   %s\n", res.TotalTime)
}

// wrap breaks text on spaces so no line exceeds width.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 {
		return text
	}
	var b strings.Builder
	line := 0
	for i, w := range words {
		if i > 0 {
			if line+1+len(w) > width {
				b.WriteByte('\n')
				line = 0
			} else {
				b.WriteByte(' ')
				line++
			}
		}
		b.WriteString(w)
		line += len(w)
	}
	return b.String()
}
