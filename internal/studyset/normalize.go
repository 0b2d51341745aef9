package studyset

import (
	"time"

	"github.com/google/uuid"
)

// Millis converts t to milliseconds since the Unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// NewID returns a fresh study-set identifier.
func NewID() string {
	return uuid.NewString()
}

// Prepare makes a study set ready to become active: it assigns an id and
// creation time when absent and refreshes LastAccessed. Calling it twice
// is harmless.
func Prepare(s *StudySet, now time.Time) {
	if s.ID == "" {
		s.ID = NewID()
		s.CreatedAt = Millis(now)
	}
	if s.CreatedAt == 0 {
		s.CreatedAt = Millis(now)
	}
	s.LastAccessed = Millis(now)
}

// ResetProgress clears the recorded answer of every question.
func ResetProgress(s *StudySet) {
	for _, q := range s.Questions {
		Clear(q)
	}
}

// FirstUnanswered returns the index of the first unanswered question, or
// len(s.Questions) when every question has an answer.
func FirstUnanswered(s *StudySet) int {
	for i, q := range s.Questions {
		if StateOf(q) == StateUnanswered {
			return i
		}
	}
	return len(s.Questions)
}

// MostRecent returns the set with the greatest LastAccessed, or nil.
func MostRecent(sets []*StudySet) *StudySet {
	var best *StudySet
	for _, s := range sets {
		if best == nil || s.LastAccessed > best.LastAccessed {
			best = s
		}
	}
	return best
}
