package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/ui/theme"
)

const bannerArt = `
 ┏━┓╺┳╸╻ ╻╺┳┓╻ ╻┏┓ ╻ ╻╺┳┓╺┳┓╻ ╻
 ┗━┓ ┃ ┃ ┃ ┃┃┗┳┛┣┻┓┃ ┃ ┃┃ ┃┃┗┳┛
 ┗━┛ ╹ ┗━┛╺┻┛ ╹ ┗━┛┗━┛╺┻┛╺┻┛ ╹ `

const bannerCompact = "S T U D Y B U D D Y"

// RenderBanner returns the StudyBuddy banner, falling back to spaced
// letters below 34 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 34 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
