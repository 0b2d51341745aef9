package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/abhisek/studybuddy/internal/logger"
	"github.com/abhisek/studybuddy/internal/studyset"
)

// Key namespace.
const (
	sessionPrefix = "session:"
	indexKey      = "sessions:index"
	apiKeyKey     = "ai:last-api-key"
	modelKey      = "ai:last-model"
)

// Defaults for Options.
const (
	DefaultPrimaryLimit = 4000
	DefaultSessionTTL   = 7 * 24 * time.Hour
	DefaultPrefTTL      = 30 * 24 * time.Hour
)

// Options configures a Store.
type Options struct {
	// Primary is the size-bounded medium tried first.
	Primary Backend

	// Fallback receives values too large for Primary. Optional.
	Fallback Backend

	// PrimaryLimit is the largest serialized size written to Primary.
	PrimaryLimit int

	SessionTTL time.Duration
	PrefTTL    time.Duration

	Logger *logger.Logger
}

// Store persists study sets and AI form preferences over a primary
// medium with a size-based fallback. Write failures are logged, never
// returned.
type Store struct {
	primary  Backend
	fallback Backend
	limit    int
	ttl      time.Duration
	prefTTL  time.Duration
	log      *logger.Logger
	closers  []io.Closer
}

// New creates a Store. Zero option values take the package defaults.
func New(opts Options) *Store {
	s := &Store{
		primary:  opts.Primary,
		fallback: opts.Fallback,
		limit:    opts.PrimaryLimit,
		ttl:      opts.SessionTTL,
		prefTTL:  opts.PrefTTL,
		log:      opts.Logger,
	}
	if s.limit <= 0 {
		s.limit = DefaultPrimaryLimit
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.prefTTL <= 0 {
		s.prefTTL = DefaultPrefTTL
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// Close releases the backends and any resources the Store was opened with.
func (s *Store) Close() error {
	var errs []error
	for _, b := range s.media() {
		errs = append(errs, b.Close())
	}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (s *Store) media() []Backend {
	if s.fallback == nil {
		return []Backend{s.primary}
	}
	return []Backend{s.primary, s.fallback}
}

func sessionKey(id string) string { return sessionPrefix + id }

// Save writes doc under its id. Sets that opt out of persistence are
// removed instead.
func (s *Store) Save(ctx context.Context, doc *studyset.StudySet) {
	if doc == nil || doc.ID == "" {
		s.log.Error("save skipped: study set has no id")
		return
	}
	if !doc.Settings.PersistSession {
		s.Remove(ctx, doc.ID)
		return
	}

	data, err := json.Marshal(doc)
	if err != nil {
		s.log.Error("serialize study set", "id", doc.ID, "error", err)
		return
	}
	if !s.put(ctx, sessionKey(doc.ID), string(data), s.ttl) {
		s.log.Error("study set write lost", "id", doc.ID, "bytes", len(data))
		return
	}
	s.addToIndex(ctx, doc.ID)
}

// put writes value to the primary medium when it fits, otherwise to the
// fallback, and removes any stale copy from the other medium.
func (s *Store) put(ctx context.Context, key, value string, ttl time.Duration) bool {
	var written Backend
	if len(value) <= s.limit {
		err := s.primary.Set(ctx, key, value, ttl)
		if err == nil {
			written = s.primary
		} else {
			s.log.Warn("primary medium rejected write", "key", key, "medium", s.primary.Name(), "error", err)
		}
	} else {
		s.log.Warn("value exceeds primary medium limit", "key", key, "bytes", len(value), "limit", s.limit)
	}

	if written == nil {
		if s.fallback == nil {
			return false
		}
		if err := s.fallback.Set(ctx, key, value, ttl); err != nil {
			s.log.Error("fallback medium rejected write", "key", key, "medium", s.fallback.Name(), "error", err)
			return false
		}
		written = s.fallback
	}

	for _, b := range s.media() {
		if b == written {
			continue
		}
		if err := b.Delete(ctx, key); err != nil {
			s.log.Warn("delete stale copy", "key", key, "medium", b.Name(), "error", err)
		}
	}
	return true
}

// get reads key from the primary medium, then the fallback.
func (s *Store) get(ctx context.Context, key string) (string, bool) {
	for _, b := range s.media() {
		v, err := b.Get(ctx, key)
		if err == nil {
			return v, true
		}
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("read failed", "key", key, "medium", b.Name(), "error", err)
		}
	}
	return "", false
}

func (s *Store) del(ctx context.Context, key string) {
	for _, b := range s.media() {
		if err := b.Delete(ctx, key); err != nil {
			s.log.Warn("delete failed", "key", key, "medium", b.Name(), "error", err)
		}
	}
}

// Load returns the study set stored under id. Entries that no longer
// decode are evicted and reported as absent.
func (s *Store) Load(ctx context.Context, id string) (*studyset.StudySet, bool) {
	raw, ok := s.get(ctx, sessionKey(id))
	if !ok {
		return nil, false
	}
	doc, err := studyset.Decode([]byte(raw))
	if err != nil {
		s.log.Warn("evicting corrupt study set", "id", id, "error", err)
		s.Remove(ctx, id)
		return nil, false
	}
	return doc, true
}

// LoadAll returns every indexed study set in index order. Ids whose
// documents are gone are dropped from the index.
func (s *Store) LoadAll(ctx context.Context) []*studyset.StudySet {
	ids := s.index(ctx)
	docs := make([]*studyset.StudySet, 0, len(ids))
	live := make([]string, 0, len(ids))
	for _, id := range ids {
		doc, ok := s.Load(ctx, id)
		if !ok {
			continue
		}
		docs = append(docs, doc)
		live = append(live, id)
	}
	if len(live) != len(ids) {
		s.writeIndex(ctx, live)
	}
	return docs
}

// IDs returns the indexed study-set ids.
func (s *Store) IDs(ctx context.Context) []string {
	return s.index(ctx)
}

// Remove deletes id from both media and the index.
func (s *Store) Remove(ctx context.Context, id string) {
	s.del(ctx, sessionKey(id))

	ids := s.index(ctx)
	if i := slices.Index(ids, id); i >= 0 {
		s.writeIndex(ctx, slices.Delete(ids, i, i+1))
	}
}

// ClearAll removes every indexed study set and the index itself.
func (s *Store) ClearAll(ctx context.Context) {
	for _, id := range s.index(ctx) {
		s.del(ctx, sessionKey(id))
	}
	s.del(ctx, indexKey)
}

func (s *Store) index(ctx context.Context) []string {
	raw, ok := s.get(ctx, indexKey)
	if !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.log.Warn("discarding corrupt index", "error", err)
		s.del(ctx, indexKey)
		return nil
	}
	return ids
}

func (s *Store) addToIndex(ctx context.Context, id string) {
	ids := s.index(ctx)
	if slices.Contains(ids, id) {
		// Refresh the expiry alongside the document.
		s.writeIndex(ctx, ids)
		return
	}
	s.writeIndex(ctx, append(ids, id))
}

func (s *Store) writeIndex(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		s.del(ctx, indexKey)
		return
	}
	data, err := json.Marshal(ids)
	if err != nil {
		s.log.Error("serialize index", "error", err)
		return
	}
	if !s.put(ctx, indexKey, string(data), s.ttl) {
		s.log.Error("index write lost", "entries", len(ids))
	}
}

// SaveAPIKey remembers the last API key used for generation.
func (s *Store) SaveAPIKey(ctx context.Context, key string) {
	s.savePref(ctx, apiKeyKey, key)
}

// LastAPIKey returns the remembered API key.
func (s *Store) LastAPIKey(ctx context.Context) (string, bool) {
	return s.get(ctx, apiKeyKey)
}

// SaveModel remembers the last model used for generation.
func (s *Store) SaveModel(ctx context.Context, model string) {
	s.savePref(ctx, modelKey, model)
}

// LastModel returns the remembered model name.
func (s *Store) LastModel(ctx context.Context) (string, bool) {
	return s.get(ctx, modelKey)
}

func (s *Store) savePref(ctx context.Context, key, value string) {
	if value == "" {
		return
	}
	if !s.put(ctx, key, value, s.prefTTL) {
		s.log.Warn("preference write lost", "key", key)
	}
}

// String describes the configured media.
func (s *Store) String() string {
	if s.fallback == nil {
		return fmt.Sprintf("store(%s)", s.primary.Name())
	}
	return fmt.Sprintf("store(%s -> %s)", s.primary.Name(), s.fallback.Name())
}
