package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/studybuddy/internal/logger"
	"github.com/abhisek/studybuddy/internal/studyset"
)

var (
	ErrNoActiveSet      = errors.New("no active study set")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrNotFound         = errors.New("study set not found")
	ErrEmptyTitle       = errors.New("title must not be empty")
)

// Store is the persistence the controller writes through.
type Store interface {
	Save(ctx context.Context, doc *studyset.StudySet)
	Load(ctx context.Context, id string) (*studyset.StudySet, bool)
	LoadAll(ctx context.Context) []*studyset.StudySet
	Remove(ctx context.Context, id string)
}

// Snapshot is a copy of the controller state handed to subscribers.
type Snapshot struct {
	// Set is a deep copy of the active study set, nil when none is active.
	Set *studyset.StudySet

	// Cursor is the current question index. len(Set.Questions) means the
	// set is complete.
	Cursor int

	Stats Stats
}

// Current returns the question under the cursor, or nil past the end.
func (s Snapshot) Current() studyset.Question {
	if s.Set == nil || s.Cursor < 0 || s.Cursor >= len(s.Set.Questions) {
		return nil
	}
	return s.Set.Questions[s.Cursor]
}

// Options configures a Controller.
type Options struct {
	Logger *logger.Logger

	// Now overrides the clock. Used by tests.
	Now func() time.Time
}

// Controller owns the active study set and the question cursor. Every
// mutation is written to the store before the call returns.
type Controller struct {
	mu     sync.Mutex
	store  Store
	log    *logger.Logger
	now    func() time.Time
	active *studyset.StudySet
	cursor int

	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a Controller over st with no active set.
func New(st Store, opts Options) *Controller {
	c := &Controller{
		store: st,
		log:   opts.Logger,
		now:   opts.Now,
		subs:  make(map[int]func(Snapshot)),
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func unregisters it.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Set:    c.active.Clone(),
		Cursor: c.cursor,
		Stats:  StatsOf(c.active),
	}
}

// mutate runs fn under the lock and notifies subscribers when fn reports
// a change. Subscribers run after the lock is released.
func (c *Controller) mutate(fn func() (changed bool, err error)) error {
	c.mu.Lock()
	changed, err := fn()
	var (
		snap Snapshot
		subs []func(Snapshot)
	)
	if changed {
		snap = c.snapshotLocked()
		for _, s := range c.subs {
			subs = append(subs, s)
		}
	}
	c.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
	return err
}

func (c *Controller) touch(s *studyset.StudySet) {
	s.LastAccessed = studyset.Millis(c.now())
}

// target returns the set with the given id: the active set when it
// matches, otherwise the stored copy.
func (c *Controller) target(ctx context.Context, id string) (*studyset.StudySet, bool) {
	if c.active != nil && c.active.ID == id {
		return c.active, true
	}
	return c.store.Load(ctx, id)
}

func (c *Controller) isActive(id string) bool {
	return c.active != nil && c.active.ID == id
}

// Init activates the most recently accessed stored set, if any. Nothing
// is written.
func (c *Controller) Init(ctx context.Context) {
	_ = c.mutate(func() (bool, error) {
		c.active = studyset.MostRecent(c.store.LoadAll(ctx))
		c.cursor = 0
		if c.active != nil {
			c.cursor = studyset.FirstUnanswered(c.active)
			c.log.Info("resumed study set", "id", c.active.ID, "cursor", c.cursor)
		}
		return true, nil
	})
}

// LoadStudySet makes doc the active set and persists it. A nil doc clears
// the active state without touching the store.
func (c *Controller) LoadStudySet(ctx context.Context, doc *studyset.StudySet) {
	_ = c.mutate(func() (bool, error) {
		c.loadLocked(ctx, doc)
		return true, nil
	})
}

func (c *Controller) loadLocked(ctx context.Context, doc *studyset.StudySet) {
	if doc == nil {
		c.active, c.cursor = nil, 0
		return
	}
	doc = doc.Clone()
	studyset.Prepare(doc, c.now())
	c.active = doc
	c.cursor = studyset.FirstUnanswered(doc)
	c.store.Save(ctx, doc)
	c.log.Debug("study set loaded", "id", doc.ID, "questions", len(doc.Questions))
}

// SubmitAnswer records an answer for a question of the active set. A nil
// answer gives up and reveals the correct answer. Questions that already
// hold an answer are rejected with ErrAlreadyAnswered.
func (c *Controller) SubmitAnswer(ctx context.Context, questionID string, answer *string) (studyset.Verdict, error) {
	verdict := studyset.VerdictUnknown
	err := c.mutate(func() (bool, error) {
		if c.active == nil {
			return false, ErrNoActiveSet
		}
		q, _ := c.active.Find(questionID)
		if q == nil {
			return false, ErrQuestionNotFound
		}
		if studyset.StateOf(q) != studyset.StateUnanswered {
			return false, ErrAlreadyAnswered
		}
		verdict = studyset.Record(q, answer)
		c.touch(c.active)
		c.store.Save(ctx, c.active)
		return true, nil
	})
	return verdict, err
}

// RetryQuestion returns an answered or revealed question to unanswered.
func (c *Controller) RetryQuestion(ctx context.Context, questionID string) error {
	return c.mutate(func() (bool, error) {
		if c.active == nil {
			return false, ErrNoActiveSet
		}
		q, _ := c.active.Find(questionID)
		if q == nil {
			return false, ErrQuestionNotFound
		}
		if studyset.StateOf(q) == studyset.StateUnanswered {
			return false, nil
		}
		studyset.Clear(q)
		c.touch(c.active)
		c.store.Save(ctx, c.active)
		return true, nil
	})
}

// NextQuestion advances the cursor. It reports whether the cursor moved.
func (c *Controller) NextQuestion(ctx context.Context) bool {
	var moved bool
	_ = c.mutate(func() (bool, error) {
		if c.active == nil {
			return false, nil
		}
		moved = c.moveLocked(ctx, c.cursor+1)
		return moved, nil
	})
	return moved
}

// PreviousQuestion moves the cursor back. From past the end it lands on
// the last question.
func (c *Controller) PreviousQuestion(ctx context.Context) bool {
	var moved bool
	_ = c.mutate(func() (bool, error) {
		if c.active == nil {
			return false, nil
		}
		moved = c.moveLocked(ctx, c.cursor-1)
		return moved, nil
	})
	return moved
}

// GoToQuestion jumps to question i when it is in range.
func (c *Controller) GoToQuestion(ctx context.Context, i int) bool {
	var moved bool
	_ = c.mutate(func() (bool, error) {
		if c.active == nil {
			return false, nil
		}
		moved = c.moveLocked(ctx, i)
		return moved, nil
	})
	return moved
}

func (c *Controller) moveLocked(ctx context.Context, i int) bool {
	if i < 0 || i >= len(c.active.Questions) {
		return false
	}
	c.cursor = i
	c.touch(c.active)
	c.store.Save(ctx, c.active)
	return true
}

// ResetSession clears every answer of the active set and rewinds the cursor.
func (c *Controller) ResetSession(ctx context.Context) bool {
	var ok bool
	_ = c.mutate(func() (bool, error) {
		if c.active == nil {
			return false, nil
		}
		studyset.ResetProgress(c.active)
		c.cursor = 0
		c.touch(c.active)
		c.store.Save(ctx, c.active)
		ok = true
		return true, nil
	})
	return ok
}

// ResetProgress clears every answer of the set with the given id, which
// need not be active.
func (c *Controller) ResetProgress(ctx context.Context, id string) error {
	return c.mutate(func() (bool, error) {
		doc, ok := c.target(ctx, id)
		if !ok {
			return false, ErrNotFound
		}
		studyset.ResetProgress(doc)
		if c.isActive(id) {
			c.cursor = 0
		}
		c.store.Save(ctx, doc)
		return c.isActive(id), nil
	})
}

// Rename sets the title of the set with the given id.
func (c *Controller) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	return c.mutate(func() (bool, error) {
		doc, ok := c.target(ctx, id)
		if !ok {
			return false, ErrNotFound
		}
		doc.Title = title
		c.touch(doc)
		c.store.Save(ctx, doc)
		return c.isActive(id), nil
	})
}

// TogglePin flips the pinned flag and returns its new value.
func (c *Controller) TogglePin(ctx context.Context, id string) (bool, error) {
	var pinned bool
	err := c.mutate(func() (bool, error) {
		doc, ok := c.target(ctx, id)
		if !ok {
			return false, ErrNotFound
		}
		doc.IsPinned = !doc.IsPinned
		pinned = doc.IsPinned
		c.touch(doc)
		c.store.Save(ctx, doc)
		return c.isActive(id), nil
	})
	return pinned, err
}

// DeleteStudySet removes a set from the store. Deleting the active set
// leaves no set active.
func (c *Controller) DeleteStudySet(ctx context.Context, id string) {
	_ = c.mutate(func() (bool, error) {
		c.store.Remove(ctx, id)
		if !c.isActive(id) {
			return false, nil
		}
		c.active, c.cursor = nil, 0
		return true, nil
	})
}

// ReplaceStudySet removes oldID and then loads doc. The two store calls
// are independent.
func (c *Controller) ReplaceStudySet(ctx context.Context, oldID string, doc *studyset.StudySet) {
	_ = c.mutate(func() (bool, error) {
		if oldID != "" {
			c.store.Remove(ctx, oldID)
		}
		c.loadLocked(ctx, doc)
		return true, nil
	})
}

// SaveCurrentSession writes the active set. It reports whether one was active.
func (c *Controller) SaveCurrentSession(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return false
	}
	c.touch(c.active)
	c.store.Save(ctx, c.active)
	return true
}

// StartAutosave saves the active set every interval until ctx ends or the
// returned stop func is called. stop waits for the saver to exit.
func (c *Controller) StartAutosave(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.SaveCurrentSession(ctx) {
					c.log.Debug("autosaved study set")
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
