package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studybuddy/internal/config"
	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/llm"
	"github.com/abhisek/studybuddy/internal/logger"
	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "studybuddy",
	Short:        "Study with question sets in the terminal",
	Long:         "StudyBuddy: import or generate study sets, answer questions, and pick up where you left off.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYBUDDY_DB)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Mirror logs to stderr (ignored by the TUI)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(versionCmd)
}

// env holds the dependencies shared by every command.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
	ctrl  *session.Controller
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", "error", err)
	}
	e.log.Sync()
}

// setup loads configuration and opens the store. console mirrors logs to
// stderr when --verbose is set.
func setup(cmd *cobra.Command, console bool) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
	}

	logOpts := cfg.LoggerOptions()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && console {
		logOpts.Console = true
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(cmd.Context(), cfg.StoreConfig(dbPath), log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	log.Debug("configuration loaded", "config_file", cfg.ConfigFile, "env_file", cfg.EnvFileLoaded, "db", dbPath)
	return &env{
		cfg:   cfg,
		log:   log,
		store: st,
		ctrl:  session.New(st, session.Options{Logger: log.With("component", "session")}),
	}, nil
}

// pipeline builds the ingestion pipeline over the configured provider.
// Per-run credentials override the configured ones.
func (e *env) pipeline() *ingest.Pipeline {
	fetcher := ingest.NewFetcher()
	fetcher.Relay = e.cfg.AI.Relay
	if e.cfg.AI.FetchTimeout > 0 {
		fetcher.Timeout = e.cfg.AI.FetchTimeout
	}
	if e.cfg.AI.URLTextLimit > 0 {
		fetcher.Limit = e.cfg.AI.URLTextLimit
	}

	log := e.log.With("component", "ingest")
	return ingest.New(ingest.Options{
		Providers: func(ctx context.Context, apiKey, model string) (llm.Provider, error) {
			lc, err := e.cfg.LLMConfig()
			if err != nil {
				return nil, err
			}
			lc = lc.WithCredentials(apiKey, model)
			if err := lc.Validate(); err != nil {
				return nil, err
			}
			return llm.NewProvider(ctx, lc, log)
		},
		Fetcher: fetcher,
		Prefs:   e.store,
		Logger:  log,
	})
}

// defaultModel is the model shown when no preference is remembered.
func (e *env) defaultModel() string {
	lc, err := e.cfg.LLMConfig()
	if err != nil {
		return ""
	}
	return lc.Model()
}
