package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studypath/internal/conceptgraph"
	"github.com/abhisek/studypath/internal/config"
	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/mastery"
	"github.com/abhisek/studypath/internal/progress"
	"github.com/abhisek/studypath/internal/quiz"
	"github.com/abhisek/studypath/internal/recommend"
	"github.com/abhisek/studypath/internal/retrieval"
	"github.com/abhisek/studypath/internal/store"
)

// env is everything a command needs, built from config.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store

	provider  llm.Provider
	backend   retrieval.Backend
	cache     *recommend.RedisCache
	progress  *progress.Service
	recommend *recommend.Service
	quiz      *quiz.Service
	extractor *conceptgraph.Extractor
	ingester  *retrieval.Ingester
}

// loadConfig applies the --config and --db flags on top of config.Load.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		if cfg.Database.Driver == store.DriverSQLite {
			if err := store.EnsureDir(dsn); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		cfg.Database.DSN = dsn
	}
	return cfg, nil
}

// openStore opens only the database, for commands that need nothing else.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	st, err := store.OpenDriver(cmd.Context(), cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openEnv builds the full service graph. A missing or broken LLM setup is
// not fatal: model-backed operations then fail with llm_unavailable.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	st, err := store.OpenDriver(ctx, cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e := &env{cfg: cfg, log: log, store: st}

	emb, err := llm.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	e.backend, err = retrieval.New(cfg.Retrieval, st, emb, log)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("init retrieval: %w", err)
	}

	e.provider = buildProvider(ctx, cfg, st, log)

	var recOpts []recommend.Option
	if cfg.Redis.URL != "" {
		e.cache, err = recommend.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			log.Warn("recommendation cache disabled", "error", err)
		} else {
			recOpts = append(recOpts, recommend.WithCache(e.cache))
		}
	}

	engine := mastery.NewEngine()
	engine.SimilaritySignal = cfg.Mastery.SimilaritySignal

	e.progress = progress.NewService(st, log)
	e.recommend = recommend.NewService(st, log, recOpts...)
	e.quiz = quiz.NewService(quiz.Deps{
		Store:     st,
		Provider:  e.provider,
		Retriever: e.backend,
		Mastery:   mastery.NewService(engine, log),
		Progress:  e.progress,
		Cache:     e.recommend,
		Log:       log,
	}, quiz.DefaultConfig())
	e.extractor = conceptgraph.NewExtractor(e.provider, emb, log)
	e.ingester = retrieval.NewIngester(st, emb, e.backend, log)
	return e, nil
}

func buildProvider(ctx context.Context, cfg *config.Config, st *store.Store, log *logger.Logger) llm.Provider {
	if err := cfg.LLM.Validate(); err != nil {
		log.Warn("LLM provider not configured, AI features unavailable", "error", err)
		return llm.Unavailable(err)
	}
	p, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
	if err != nil {
		log.Warn("LLM provider failed to initialize, AI features unavailable", "error", err)
		return llm.Unavailable(err)
	}
	return p
}

func (e *env) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
	if e.store != nil {
		e.store.Close()
	}
	if e.log != nil {
		e.log.Sync()
	}
}
