package session

import (
	"cmp"
	"context"
	"slices"

	"github.com/abhisek/studybuddy/internal/studyset"
)

// List returns every known study set, pinned sets first and then by most
// recent access. The active set is included even when it is not
// persisted. The returned sets are copies.
func (c *Controller) List(ctx context.Context) []*studyset.StudySet {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := c.store.LoadAll(ctx)
	out := make([]*studyset.StudySet, 0, len(stored)+1)
	for _, s := range stored {
		if c.isActive(s.ID) {
			continue
		}
		out = append(out, s)
	}
	if c.active != nil {
		out = append(out, c.active.Clone())
	}
	SortForDisplay(out)
	return out
}

// SortForDisplay orders sets pinned first, then by descending LastAccessed.
func SortForDisplay(sets []*studyset.StudySet) {
	slices.SortStableFunc(sets, func(a, b *studyset.StudySet) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.LastAccessed, a.LastAccessed)
	})
}

// Open activates the stored set with the given id. Opening the active set
// only refreshes its access time.
func (c *Controller) Open(ctx context.Context, id string) error {
	return c.mutate(func() (bool, error) {
		doc, ok := c.target(ctx, id)
		if !ok {
			return false, ErrNotFound
		}
		c.loadLocked(ctx, doc)
		return true, nil
	})
}
