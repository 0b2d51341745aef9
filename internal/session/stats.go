package session

import "github.com/abhisek/studybuddy/internal/studyset"

// PassingAccuracy is the accuracy percentage shown as a pass.
const PassingAccuracy = 70

// Stats summarizes progress through a study set.
type Stats struct {
	Total    int
	Answered int // includes revealed questions
	Correct  int

	// Accuracy is Correct/Answered as a rounded percentage.
	Accuracy int

	// Progress is Answered/Total as a rounded percentage.
	Progress int

	Complete bool
}

// Passing reports whether accuracy reaches PassingAccuracy.
func (s Stats) Passing() bool {
	return s.Accuracy >= PassingAccuracy
}

// Stats returns the progress summary of the active set.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StatsOf(c.active)
}

// StatsOf summarizes progress through s. A nil set yields zero Stats.
func StatsOf(s *studyset.StudySet) Stats {
	var st Stats
	if s == nil {
		return st
	}
	st.Total = len(s.Questions)
	for _, q := range s.Questions {
		if studyset.StateOf(q) != studyset.StateUnanswered {
			st.Answered++
		}
		if q.Meta().Verdict == studyset.VerdictCorrect {
			st.Correct++
		}
	}
	if st.Answered > 0 {
		st.Accuracy = percent(st.Correct, st.Answered)
	}
	if st.Total > 0 {
		st.Progress = percent(st.Answered, st.Total)
		st.Complete = st.Answered == st.Total
	}
	return st
}

func percent(n, d int) int {
	return (n*100 + d/2) / d
}
