package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studybuddy/internal/studyset"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type testStore struct {
	*Store
	primary  *MemoryBackend
	fallback *MemoryBackend
	clock    *fakeClock
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	primary := NewMemoryBackend("cookie", DefaultPrimaryLimit, clock.Now)
	fallback := NewMemoryBackend("local", 0, clock.Now)
	s := New(Options{Primary: primary, Fallback: fallback})
	t.Cleanup(func() { s.Close() })
	return &testStore{Store: s, primary: primary, fallback: fallback, clock: clock}
}

func makeSet(id string, questions int) *studyset.StudySet {
	qs := make([]studyset.Question, questions)
	for i := range qs {
		qs[i] = &studyset.TextInput{
			Common:         studyset.Common{ID: fmt.Sprintf("q%d", i+1), Text: []string{fmt.Sprintf("Question %d?", i+1)}},
			CorrectAnswers: []string{"yes"},
		}
	}
	set := studyset.New("Set "+id, qs...)
	set.ID = id
	set.CreatedAt = 1000
	set.LastAccessed = 2000
	return set
}

func jsonOf(t *testing.T, s *studyset.StudySet) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	set := makeSet("a", 2)
	studyset.Record(set.Questions[0], ptr("yes"))
	studyset.Record(set.Questions[1], nil)
	s.Save(ctx, set)

	got, ok := s.Load(ctx, "a")
	require.True(t, ok)
	assert.JSONEq(t, jsonOf(t, set), jsonOf(t, got))
	assert.Equal(t, studyset.StateRevealed, studyset.StateOf(got.Questions[1]))

	_, err := s.primary.Get(ctx, "session:a")
	assert.NoError(t, err, "small documents go to the primary medium")
	assert.Equal(t, []string{"a"}, s.IDs(ctx))
}

func TestSave_LargeDocumentUsesFallback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	big := makeSet("big", 80)
	s.Save(ctx, big)

	_, err := s.primary.Get(ctx, "session:big")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.fallback.Get(ctx, "session:big")
	assert.NoError(t, err)

	got, ok := s.Load(ctx, "big")
	require.True(t, ok)
	assert.Len(t, got.Questions, 80)
}

func TestSave_RemovesStaleCopyFromOtherMedium(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, makeSet("x", 80))
	s.Save(ctx, makeSet("x", 1))

	_, err := s.fallback.Get(ctx, "session:x")
	assert.ErrorIs(t, err, ErrNotFound, "shrunk document must not leave a stale fallback copy")

	got, ok := s.Load(ctx, "x")
	require.True(t, ok)
	assert.Len(t, got.Questions, 1)
}

func TestSave_PrimaryCapacitySignalFallsBack(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	primary := NewMemoryBackend("tiny", 10, clock.Now)
	fallback := NewMemoryBackend("local", 0, clock.Now)
	s := New(Options{Primary: primary, Fallback: fallback, PrimaryLimit: 100000})
	ctx := context.Background()

	s.Save(ctx, makeSet("a", 1))

	_, ok := s.Load(ctx, "a")
	assert.True(t, ok)
	_, err := primary.Get(ctx, "session:a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_PersistSessionFalseRemoves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	set := makeSet("p", 1)
	s.Save(ctx, set)
	set.Settings.PersistSession = false
	s.Save(ctx, set)

	_, ok := s.Load(ctx, "p")
	assert.False(t, ok)
	assert.Empty(t, s.IDs(ctx))
}

func TestSave_MissingIDIsIgnored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, makeSet("", 1))
	s.Save(ctx, nil)

	assert.Equal(t, 0, s.primary.Len()+s.fallback.Len())
}

func TestSave_NoMediumFits(t *testing.T) {
	primary := NewMemoryBackend("cookie", DefaultPrimaryLimit, nil)
	s := New(Options{Primary: primary})
	ctx := context.Background()

	s.Save(ctx, makeSet("huge", 80))

	_, ok := s.Load(ctx, "huge")
	assert.False(t, ok)
	assert.Empty(t, s.IDs(ctx), "lost writes are not indexed")
}

func TestLoadAll_IndexOrderWithoutDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b", "a", "c"} {
		s.Save(ctx, makeSet(id, 1))
	}

	docs := s.LoadAll(ctx)
	require.Len(t, docs, 3)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)
	assert.Equal(t, "b", docs[2].ID)
}

func TestLoad_CorruptEntryIsEvicted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, makeSet("good", 1))
	s.Save(ctx, makeSet("bad", 1))
	require.NoError(t, s.fallback.Set(ctx, "session:bad", "{not json", 0))
	require.NoError(t, s.primary.Set(ctx, "session:bad", `{"title":""}`, 0))

	_, ok := s.Load(ctx, "bad")
	assert.False(t, ok)

	_, err := s.fallback.Get(ctx, "session:bad")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.primary.Get(ctx, "session:bad")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"good"}, s.IDs(ctx))
}

func TestLoadAll_SkipsMissingAndPrunesIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, makeSet("a", 1))
	s.Save(ctx, makeSet("b", 1))
	require.NoError(t, s.primary.Delete(ctx, "session:a"))

	docs := s.LoadAll(ctx)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, []string{"b"}, s.IDs(ctx))
}

func TestLoad_CorruptIndexIsDiscarded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.primary.Set(ctx, "sessions:index", "[oops", 0))
	assert.Empty(t, s.LoadAll(ctx))
	_, err := s.primary.Get(ctx, "sessions:index")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveAndClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		s.Save(ctx, makeSet(id, 1))
	}
	s.Save(ctx, makeSet("big", 80))

	s.Remove(ctx, "b")
	s.Remove(ctx, "b")
	assert.Equal(t, []string{"a", "c", "big"}, s.IDs(ctx))

	s.ClearAll(ctx)
	assert.Empty(t, s.LoadAll(ctx))
	assert.Equal(t, 0, s.primary.Len()+s.fallback.Len())
}

func TestSessionExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, makeSet("a", 1))
	s.clock.Advance(6 * 24 * time.Hour)
	_, ok := s.Load(ctx, "a")
	assert.True(t, ok)

	s.clock.Advance(2 * 24 * time.Hour)
	_, ok = s.Load(ctx, "a")
	assert.False(t, ok)
	assert.Empty(t, s.LoadAll(ctx))
}

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok := s.LastAPIKey(ctx)
	assert.False(t, ok)

	s.SaveAPIKey(ctx, "AIza-secret")
	s.SaveModel(ctx, "gemini-2.0-flash")
	s.SaveModel(ctx, "")

	key, ok := s.LastAPIKey(ctx)
	assert.True(t, ok)
	assert.Equal(t, "AIza-secret", key)
	model, _ := s.LastModel(ctx)
	assert.Equal(t, "gemini-2.0-flash", model)

	// Preferences outlive study sessions.
	s.clock.Advance(20 * 24 * time.Hour)
	_, ok = s.LastModel(ctx)
	assert.True(t, ok)
	s.clock.Advance(11 * 24 * time.Hour)
	_, ok = s.LastModel(ctx)
	assert.False(t, ok)

	// Preferences are not study sets.
	assert.Empty(t, s.IDs(ctx))
}

func TestStoreString(t *testing.T) {
	s := newTestStore(t)
	assert.True(t, strings.Contains(s.String(), "cookie -> local"))
}

func ptr(s string) *string { return &s }
