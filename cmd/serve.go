package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/analysis"
	"github.com/clearleaf/greenwash-cli/internal/evidence"
	"github.com/clearleaf/greenwash-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(e),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", handleHealth)
	r.Post("/v1/analyze", handleAnalyze(e))
	r.Get("/v1/runs", handleListRuns(e))
	r.Get("/v1/runs/{id}", handleGetRun(e))
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeRequest is the API request body. The document travels inline;
// with the pgvector backend a session id referencing ingested passages
// may be sent instead.
type analyzeRequest struct {
	Subject   string `json:"subject"`
	Document  string `json:"document"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
	RulesMode string `json:"rules_mode"`
}

func handleAnalyze(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Subject == "" {
			writeError(w, http.StatusBadRequest, "subject is required")
			return
		}

		searcher, err := requestSearcher(e, req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := e.Pipeline.Run(r.Context(), analysis.Request{
			Subject:       req.Subject,
			Evidence:      searcher,
			Language:      req.Language,
			RulesMode:     req.RulesMode,
			MaxIterations: cfg.Pipeline.MaxIterations,
		})
		if err != nil {
			zap.L().Error("analysis request failed",
				zap.String("subject", req.Subject),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func requestSearcher(e *env, req analyzeRequest) (evidence.Searcher, error) {
	if cfg.Evidence.Backend == "pgvector" && req.SessionID != "" {
		return evidence.NewPgSearcher(e.pgPool, evidence.NewHashEmbedder(0), req.SessionID), nil
	}
	chunks := evidence.ChunkText(req.Document, cfg.Evidence.ChunkMaxLen)
	if len(chunks) == 0 {
		return nil, eris.New("document is required")
	}
	return evidence.NewMemorySearcher(chunks), nil
}

func handleListRuns(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status:  r.URL.Query().Get("status"),
			Subject: r.URL.Query().Get("subject"),
			Limit:   50,
		}
		runs, err := e.Store.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		run, err := e.Store.GetRun(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}

		resp := map[string]any{"run": run}
		if result, err := e.Store.GetResult(r.Context(), id); err == nil {
			resp["result"] = result
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
