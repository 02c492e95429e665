package quiz

import (
	"fmt"
	"time"

	"github.com/quizmaster/quizmaster-backend/internal/model"
)

// FormatDuration renders d as minutes and zero-padded seconds, e.g. "2:05".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// BandFor maps a score percentage to its band.
func BandFor(percent int) model.ScoreBand {
	switch {
	case percent >= 80:
		return model.ScoreBandExcellent
	case percent >= 60:
		return model.ScoreBandGood
	default:
		return model.ScoreBandKeepPracticing
	}
}
