package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// Mood selects which buddy art to display.
type Mood int

const (
	MoodIdle     Mood = iota // Nothing open
	MoodStudying             // A set is in progress
	MoodProud                // The open set is finished with a passing score
)

const buddyIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ▤▤▤ │
└─────┘`

const buddyStudying = `┌─────┐
│ ◔ ◔ │
│  ─  │
│ ▤▤▤ │ ✎
└─────┘`

const buddyProud = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ▤▤▤ │
└─╥═╥─┘
  ╚═╝`

// MoodFor derives the buddy mood from the active set's progress.
func MoodFor(stats session.Stats, active bool) Mood {
	switch {
	case !active:
		return MoodIdle
	case stats.Complete && stats.Passing():
		return MoodProud
	default:
		return MoodStudying
	}
}

// RenderBuddy returns the buddy art for the given mood.
func RenderBuddy(m Mood) string {
	art, fg := buddyIdle, theme.Primary
	switch m {
	case MoodStudying:
		art, fg = buddyStudying, theme.Secondary
	case MoodProud:
		art, fg = buddyProud, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
