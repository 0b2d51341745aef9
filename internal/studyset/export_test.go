package studyset

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFileName(t *testing.T) {
	tests := []struct {
		title        string
		withProgress bool
		want         string
	}{
		{"Algebra: Basics!", false, "algebra-basics-fresh.json"},
		{"Algebra: Basics!", true, "algebra-basics-with-progress.json"},
		{"  Spanish   Verbs ", false, "-spanish-verbs--fresh.json"},
		{"Café 101", false, "caf-101-fresh.json"},
		{"pre-calc", true, "pre-calc-with-progress.json"},
	}

	for _, tc := range tests {
		got := ExportFileName(tc.title, tc.withProgress)
		if got != tc.want {
			t.Errorf("ExportFileName(%q, %v) = %q, want %q", tc.title, tc.withProgress, got, tc.want)
		}
	}
}

func TestExport_ProgressHandling(t *testing.T) {
	set, err := Decode([]byte(mixedDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	fresh, err := Export(set, false)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	reloaded, err := Decode(fresh)
	if err != nil {
		t.Fatalf("decode fresh export: %v", err)
	}
	for _, q := range reloaded.Questions {
		if StateOf(q) != StateUnanswered {
			t.Fatalf("fresh export kept progress on %s", q.Meta().ID)
		}
	}

	// The source set is not modified by a fresh export.
	if StateOf(set.Questions[0]) != StateAnswered {
		t.Fatal("export mutated the source study set")
	}

	kept, err := Export(set, true)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	reloaded, err = Decode(kept)
	if err != nil {
		t.Fatalf("decode progress export: %v", err)
	}
	if StateOf(reloaded.Questions[0]) != StateAnswered || StateOf(reloaded.Questions[2]) != StateRevealed {
		t.Fatal("progress export lost recorded answers")
	}
}

func TestPrepare(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	set := New("T")

	Prepare(set, now)
	if set.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if set.CreatedAt != now.UnixMilli() || set.LastAccessed != now.UnixMilli() {
		t.Fatalf("unexpected timestamps: created=%d accessed=%d", set.CreatedAt, set.LastAccessed)
	}

	id := set.ID
	later := now.Add(time.Minute)
	Prepare(set, later)
	if set.ID != id {
		t.Fatal("prepare must keep an existing id")
	}
	if set.CreatedAt != now.UnixMilli() {
		t.Fatal("prepare must keep createdAt")
	}
	if set.LastAccessed != later.UnixMilli() {
		t.Fatal("prepare must refresh lastAccessed")
	}
}

func TestFirstUnanswered(t *testing.T) {
	set, err := Decode([]byte(mixedDoc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := FirstUnanswered(set); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}

	a := "x"
	Record(set.Questions[1], &a)
	if got := FirstUnanswered(set); got != len(set.Questions) {
		t.Fatalf("expected past-the-end, got %d", got)
	}
}

func TestSamples(t *testing.T) {
	sets, err := Samples()
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if len(sets) < 2 {
		t.Fatalf("expected at least 2 samples, got %d", len(sets))
	}
	for _, s := range sets {
		if s.ID != "" {
			t.Errorf("sample %q should not carry an id", s.Title)
		}
		if !s.Settings.PersistSession {
			t.Errorf("sample %q should persist", s.Title)
		}
	}
}

func TestTemplate_DropsIdentityAndProgress(t *testing.T) {
	set, err := Decode([]byte(mixedDoc))
	require.NoError(t, err)
	set.ID = "abc"
	set.CreatedAt, set.LastAccessed = 10, 20
	set.IsPinned = true

	data, err := Template(set)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "id")
	assert.NotContains(t, raw, "createdAt")
	assert.NotContains(t, raw, "lastAccessed")
	assert.Equal(t, false, raw["isPinned"])
	for _, q := range raw["questions"].([]any) {
		assert.Nil(t, q.(map[string]any)["answer"])
		assert.Nil(t, q.(map[string]any)["isUserCorrect"])
	}
	assert.Equal(t, "abc", set.ID, "source set is not modified")
}
