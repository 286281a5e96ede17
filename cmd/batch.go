package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clearleaf/greenwash-cli/internal/analysis"
	"github.com/clearleaf/greenwash-cli/internal/metrics"
	"github.com/clearleaf/greenwash-cli/internal/model"
	"github.com/clearleaf/greenwash-cli/internal/resilience"
	"github.com/clearleaf/greenwash-cli/pkg/oracle"
)

var (
	batchManifest string
	batchLimit    int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze a batch of documents from a manifest",
	Long:  "Reads a manifest of \"subject,path\" lines and analyzes each document. Once the oracle reports an invalid API key, remaining items short-circuit to placeholder results instead of burning calls.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f, err := os.Open(batchManifest)
		if err != nil {
			return eris.Wrap(err, "open manifest")
		}
		items, err := parseManifest(f)
		_ = f.Close()
		if err != nil {
			return err
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		results := processBatch(ctx, items, batchLimit, cfg.Pipeline.Workers, e.Gate.Unavailable,
			func(ctx context.Context, item batchItem) (*model.AnalysisResult, error) {
				searcher, err := e.newSearcher(item.Path, "")
				if err != nil {
					return nil, err
				}
				return e.Pipeline.Run(ctx, analysis.Request{
					Subject:       item.Subject,
					Evidence:      searcher,
					Language:      cfg.Pipeline.Language,
					RulesMode:     cfg.Pipeline.RulesMode,
					MaxIterations: cfg.Pipeline.MaxIterations,
				})
			})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchManifest, "manifest", "", "manifest file of subject,path lines (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of items to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(batchCmd)
}

// batchItem is one manifest line.
type batchItem struct {
	Subject string
	Path    string
}

// parseManifest reads "subject,path" lines, skipping blanks and comments.
func parseManifest(r io.Reader) ([]batchItem, error) {
	var items []batchItem
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		subject, path, ok := strings.Cut(line, ",")
		subject = strings.TrimSpace(subject)
		path = strings.TrimSpace(path)
		if !ok || subject == "" || path == "" {
			return nil, eris.Errorf("malformed manifest line: %q", line)
		}
		items = append(items, batchItem{Subject: subject, Path: path})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read manifest")
	}
	return items, nil
}

// runFunc runs the analysis for one manifest item.
type runFunc func(ctx context.Context, item batchItem) (*model.AnalysisResult, error)

// processBatch runs the items under the worker pool, in manifest order in
// the output. An item's failure becomes a placeholder result, never an
// aborted batch; once the oracle is flagged unavailable, remaining items
// short-circuit to placeholders without running.
func processBatch(ctx context.Context, items []batchItem, limit, concurrency int, unavailable func() bool, run runFunc) []*model.AnalysisResult {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("items", len(items)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]*model.AnalysisResult, len(items))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			log := zap.L().With(zap.String("subject", item.Subject))

			if unavailable != nil && unavailable() {
				log.Warn("oracle unavailable, skipping item")
				failed.Add(1)
				results[i] = placeholderResult(item.Subject, oracle.ErrUnavailable)
				return nil
			}

			result, err := run(gctx, item)
			if err != nil {
				log.Error("analysis failed", zap.Error(err))
				failed.Add(1)
				results[i] = placeholderResult(item.Subject, err)
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("analysis complete",
				zap.String("engine", result.Engine),
				zap.Float64("overall", result.Metrics.Overall),
				zap.String("risk", result.Summary.RiskRating),
			)
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results
}

// placeholderResult is the envelope for an item that never produced an
// analysis: schema-valid, zeroed metrics, the failure carried as data.
func placeholderResult(subject string, err error) *model.AnalysisResult {
	return &model.AnalysisResult{
		Subject: subject,
		Metrics: metrics.Zero("error", err.Error()),
		Error: &model.ErrorInfo{
			Kind:    string(resilience.KindOf(err)),
			Message: err.Error(),
		},
		Engine: "skipped",
	}
}
