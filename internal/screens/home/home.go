package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/screens/generate"
	"github.com/abhisek/studybuddy/internal/screens/quiz"
	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/studyset"
	"github.com/abhisek/studybuddy/internal/ui/components"
	"github.com/abhisek/studybuddy/internal/ui/layout"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeConfirmDelete
)

// HomeScreen lists the stored study sets and manages the library.
type HomeScreen struct {
	ctx  context.Context
	ctrl *session.Controller
	gen  generate.Options

	sets []*studyset.StudySet
	menu components.Menu
	mood Mood

	mode   mode
	rename components.TextInput
	status string
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)
var _ screen.EscapeHandler = (*HomeScreen)(nil)

// New creates a HomeScreen. gen configures the generation screens opened
// from here; its Prior field is ignored.
func New(ctx context.Context, ctrl *session.Controller, gen generate.Options) *HomeScreen {
	gen.Prior = nil
	h := &HomeScreen{ctx: ctx, ctrl: ctrl, gen: gen}
	h.reload()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Refresh() tea.Cmd {
	h.reload()
	return nil
}

func (h *HomeScreen) Title() string {
	return "Library"
}

// HandlesEscape reports whether an inline prompt is open.
func (h *HomeScreen) HandlesEscape() bool {
	return h.mode != modeBrowse
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	switch h.mode {
	case modeRename:
		return []layout.KeyHint{{Key: "Enter", Description: "Save"}, {Key: "Esc", Description: "Cancel"}}
	case modeConfirmDelete:
		return []layout.KeyHint{{Key: "y", Description: "Delete"}, {Key: "n", Description: "Keep"}}
	}
	hints := []layout.KeyHint{{Key: "g", Description: "Generate"}}
	if len(h.sets) > 0 {
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Study"},
			layout.KeyHint{Key: "e", Description: "Edit"},
			layout.KeyHint{Key: "p", Description: "Pin"},
			layout.KeyHint{Key: "r", Description: "Rename"},
			layout.KeyHint{Key: "x", Description: "Reset"},
			layout.KeyHint{Key: "d", Description: "Delete"},
		)
	} else {
		hints = append(hints, layout.KeyHint{Key: "s", Description: "Samples"})
	}
	return append(hints, layout.KeyHint{Key: "q", Description: "Quit"})
}

// reload re-reads the library from the controller.
func (h *HomeScreen) reload() {
	h.sets = h.ctrl.List(h.ctx)
	snap := h.ctrl.Snapshot()
	activeID := ""
	if snap.Set != nil {
		activeID = snap.Set.ID
	}
	h.mood = MoodFor(snap.Stats, snap.Set != nil)

	items := make([]components.MenuItem, len(h.sets))
	for i, set := range h.sets {
		item := components.MenuItem{
			Label:  set.Title,
			Detail: describe(set, time.Now()),
		}
		if set.IsPinned {
			item.Marker = "★"
		}
		if set.ID == activeID {
			item.Detail += " · open"
		}
		id := set.ID
		item.Action = func() tea.Cmd { return h.open(id) }
		items[i] = item
	}
	h.menu.SetItems(items)
}

// describe summarizes a set for its library row.
func describe(set *studyset.StudySet, now time.Time) string {
	answered := 0
	for _, q := range set.Questions {
		if q.Meta().Answer.IsSet() {
			answered++
		}
	}
	return fmt.Sprintf("%d/%d answered · %s", answered, len(set.Questions), ago(set.LastAccessed, now))
}

func ago(millis int64, now time.Time) string {
	if millis == 0 {
		return "never opened"
	}
	d := now.Sub(time.UnixMilli(millis))
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func (h *HomeScreen) selected() *studyset.StudySet {
	if len(h.sets) == 0 || h.menu.Selected >= len(h.sets) {
		return nil
	}
	return h.sets[h.menu.Selected]
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if h.mode == modeRename {
			var cmd tea.Cmd
			h.rename, cmd = h.rename.Update(msg)
			return h, cmd
		}
		return h, nil
	}

	switch h.mode {
	case modeRename:
		return h.updateRename(kmsg)
	case modeConfirmDelete:
		return h.updateConfirm(kmsg)
	}

	h.status, h.errMsg = "", ""
	sel := h.selected()
	switch kmsg.String() {
	case "q":
		return h, tea.Quit
	case "g":
		return h, h.push(generate.New(h.ctx, h.ctrl, h.gen))
	case "s":
		h.loadSamples()
		return h, nil
	}
	if sel == nil {
		return h, nil
	}

	switch kmsg.String() {
	case "e":
		opts := h.gen
		opts.Prior = sel
		return h, h.push(generate.New(h.ctx, h.ctrl, opts))
	case "p":
		pinned, err := h.ctrl.TogglePin(h.ctx, sel.ID)
		if err != nil {
			h.errMsg = err.Error()
			return h, nil
		}
		h.status = "Unpinned."
		if pinned {
			h.status = "Pinned."
		}
		h.reload()
		return h, nil
	case "x":
		if err := h.ctrl.ResetProgress(h.ctx, sel.ID); err != nil {
			h.errMsg = err.Error()
			return h, nil
		}
		h.status = fmt.Sprintf("Progress cleared for %q.", sel.Title)
		h.reload()
		return h, nil
	case "d":
		h.mode = modeConfirmDelete
		return h, nil
	case "r":
		h.mode = modeRename
		h.rename = components.NewTextInput("New title", 200)
		h.rename.SetValue(sel.Title)
		return h, h.rename.Init()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) updateRename(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		h.mode = modeBrowse
		return h, nil
	case "enter":
		sel := h.selected()
		if sel == nil {
			h.mode = modeBrowse
			return h, nil
		}
		if err := h.ctrl.Rename(h.ctx, sel.ID, h.rename.Value()); err != nil {
			h.errMsg = err.Error()
			return h, nil
		}
		h.mode = modeBrowse
		h.errMsg = ""
		h.status = "Renamed."
		h.reload()
		return h, nil
	}
	var cmd tea.Cmd
	h.rename, cmd = h.rename.Update(msg)
	return h, cmd
}

func (h *HomeScreen) updateConfirm(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if sel := h.selected(); sel != nil {
			h.ctrl.DeleteStudySet(h.ctx, sel.ID)
			h.status = fmt.Sprintf("Deleted %q.", sel.Title)
		}
		h.mode = modeBrowse
		h.reload()
	case "n", "N", "esc":
		h.mode = modeBrowse
	}
	return h, nil
}

// open activates the set and starts the quiz.
func (h *HomeScreen) open(id string) tea.Cmd {
	if err := h.ctrl.Open(h.ctx, id); err != nil {
		h.errMsg = err.Error()
		h.reload()
		return nil
	}
	return h.push(quiz.New(h.ctx, h.ctrl))
}

func (h *HomeScreen) push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

// loadSamples stores the bundled sets. The last one becomes active.
func (h *HomeScreen) loadSamples() {
	samples, err := studyset.Samples()
	if err != nil {
		h.errMsg = err.Error()
		return
	}
	for _, s := range samples {
		h.ctrl.LoadStudySet(h.ctx, s)
	}
	h.status = fmt.Sprintf("Loaded %d sample sets.", len(samples))
	h.reload()
}

func (h *HomeScreen) View(width, height int) string {
	cw := max(min(width-8, 80), 20)
	var sections []string

	if height >= 24 {
		sections = append(sections, RenderBuddy(h.mood))
	}

	if len(h.sets) == 0 {
		sections = append(sections,
			theme.Title.Render("Your library is empty"),
			theme.Subtitle.Render("Press g to generate a study set with AI, or s to load samples."),
		)
	} else {
		listHeight := max(height-len(sections)*7-6, 3)
		sections = append(sections, lipgloss.NewStyle().Width(cw).Render(h.menu.View(cw, listHeight)))
	}

	switch h.mode {
	case modeRename:
		sections = append(sections, "Rename: "+h.rename.View())
	case modeConfirmDelete:
		if sel := h.selected(); sel != nil {
			sections = append(sections, theme.Incorrect.Render(fmt.Sprintf("Delete %q? (y/n)", sel.Title)))
		}
	}

	if h.status != "" {
		sections = append(sections, theme.Hint.Render(h.status))
	}
	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(h.errMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.TrimRight(content, "\n"))
}
