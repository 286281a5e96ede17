package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/analysis"
	"github.com/clearleaf/greenwash-cli/internal/evidence"
	"github.com/clearleaf/greenwash-cli/internal/store"
	"github.com/clearleaf/greenwash-cli/internal/tools"
	"github.com/clearleaf/greenwash-cli/pkg/newsfeed"
	"github.com/clearleaf/greenwash-cli/pkg/oracle"
	"github.com/clearleaf/greenwash-cli/pkg/wikirate"
)

// env holds the wired collaborators shared by the subcommands.
type env struct {
	Store    store.Store
	Gate     *oracle.Gate
	Pipeline *analysis.Pipeline

	pgPool *pgxpool.Pool
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
	if e.pgPool != nil {
		e.pgPool.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initGate() *oracle.Gate {
	inner := oracle.NewClient(cfg.Oracle.Key,
		oracle.WithModel(cfg.Oracle.Model),
		oracle.WithMaxTokens(int64(cfg.Oracle.MaxTokens)),
	)
	return oracle.NewGate(inner, cfg.Oracle.RPM, time.Duration(cfg.Oracle.TimeoutSecs)*time.Second)
}

// initEnv wires the store, the gated oracle, the evidence tools, and the
// pipeline for one process.
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	gate := initGate()
	feed := newsfeed.NewClient(newsfeed.WithBaseURL(cfg.News.BaseURL))
	registry := wikirate.NewClient(cfg.Registry.Key, wikirate.WithBaseURL(cfg.Registry.BaseURL))

	deps := analysis.Deps{
		Oracle:        gate,
		News:          tools.NewNewsTool(feed, gate, cfg.News.MaxArticles),
		Registry:      tools.NewRegistryTool(registry, gate),
		Whitelist:     cfg.Pipeline.WhitelistSet(),
		Workers:       cfg.Pipeline.Workers,
		SearchTimeout: time.Duration(cfg.Pipeline.SearchTimeoutSecs) * time.Second,
	}

	e := &env{
		Store:    st,
		Gate:     gate,
		Pipeline: analysis.New(deps, st),
	}

	if cfg.Evidence.Backend == "pgvector" {
		pool, err := pgxpool.New(ctx, cfg.Evidence.DatabaseURL)
		if err != nil {
			e.Close()
			return nil, eris.Wrap(err, "connect evidence database")
		}
		e.pgPool = pool
	}

	return e, nil
}

// newSearcher builds the session-scoped evidence searcher for one
// document. The memory backend chunks the file in-process; the pgvector
// backend searches passages already ingested under the given session.
func (e *env) newSearcher(path, sessionID string) (evidence.Searcher, error) {
	if cfg.Evidence.Backend == "pgvector" {
		if sessionID == "" {
			return nil, eris.New("pgvector backend needs --session referencing ingested passages")
		}
		zap.L().Info("using pgvector evidence backend", zap.String("session_id", sessionID))
		return evidence.NewPgSearcher(e.pgPool, evidence.NewHashEmbedder(0), sessionID), nil
	}

	if path == "" {
		return nil, eris.New("the memory evidence backend needs --file")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read document %s", path)
	}
	chunks := evidence.ChunkText(string(raw), cfg.Evidence.ChunkMaxLen)
	if len(chunks) == 0 {
		return nil, eris.Errorf("document %s is empty", path)
	}
	zap.L().Info("document ingested",
		zap.String("path", path),
		zap.Int("chunks", len(chunks)),
	)
	return evidence.NewMemorySearcher(chunks), nil
}
