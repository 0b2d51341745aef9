package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studybuddy/internal/logger"
)

// Config selects and sizes the storage media.
type Config struct {
	// DBPath is the SQLite database holding the local media.
	DBPath string

	// Primary is "sqlite", "redis" or "memory".
	Primary      string
	PrimaryLimit int
	SessionTTL   time.Duration
	PrefTTL      time.Duration

	Redis RedisOptions

	// Now overrides the clock used for expiry. Used by tests.
	Now func() time.Time
}

// Open builds a Store whose fallback medium is the local_kv table of the
// SQLite database at cfg.DBPath. The primary medium is chosen by cfg.Primary.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	limit := cfg.PrimaryLimit
	if limit <= 0 {
		limit = DefaultPrimaryLimit
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	fallback, err := NewSQLiteBackend(ctx, db, LocalTable, 0, cfg.Now)
	if err != nil {
		db.Close()
		return nil, err
	}

	var primary Backend
	switch cfg.Primary {
	case "", "sqlite":
		primary, err = NewSQLiteBackend(ctx, db, CookieTable, limit, cfg.Now)
	case "redis":
		redisOpts := cfg.Redis
		redisOpts.Limit = limit
		primary, err = NewRedisBackend(ctx, redisOpts)
	case "memory":
		primary = NewMemoryBackend("memory", limit, cfg.Now)
	default:
		err = fmt.Errorf("unknown storage medium %q", cfg.Primary)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open primary medium: %w", err)
	}

	purgeExpired(ctx, log, primary, fallback)

	s := New(Options{
		Primary:      primary,
		Fallback:     fallback,
		PrimaryLimit: limit,
		SessionTTL:   cfg.SessionTTL,
		PrefTTL:      cfg.PrefTTL,
		Logger:       log.With("component", "store"),
	})
	s.closers = append(s.closers, db)
	log.Debug("store opened", "db", cfg.DBPath, "media", s.String())
	return s, nil
}

func purgeExpired(ctx context.Context, log *logger.Logger, media ...Backend) {
	for _, b := range media {
		sb, ok := b.(*SQLiteBackend)
		if !ok {
			continue
		}
		n, err := sb.PurgeExpired(ctx)
		if err != nil {
			log.Warn("purge expired entries", "medium", sb.Name(), "error", err)
			continue
		}
		if n > 0 {
			log.Debug("purged expired entries", "medium", sb.Name(), "count", n)
		}
	}
}
