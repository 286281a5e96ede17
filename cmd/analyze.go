package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clearleaf/greenwash-cli/internal/analysis"
)

var (
	analyzeSubject   string
	analyzeFile      string
	analyzeSession   string
	analyzeLanguage  string
	analyzeRulesMode string
	analyzeIters     int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single document for greenwashing risk",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		searcher, err := e.newSearcher(analyzeFile, analyzeSession)
		if err != nil {
			return err
		}

		result, err := e.Pipeline.Run(ctx, analysis.Request{
			Subject:       analyzeSubject,
			Evidence:      searcher,
			Language:      language(),
			RulesMode:     rulesMode(),
			MaxIterations: iterations(),
		})
		if err != nil {
			return eris.Wrap(err, "analysis run")
		}

		zap.L().Info("analysis complete",
			zap.String("subject", result.Subject),
			zap.String("engine", result.Engine),
			zap.Float64("overall", result.Metrics.Overall),
			zap.String("risk", result.Summary.RiskRating),
			zap.Duration("duration", result.Duration),
		)

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func language() string {
	if analyzeLanguage != "" {
		return analyzeLanguage
	}
	return cfg.Pipeline.Language
}

func rulesMode() string {
	if analyzeRulesMode != "" {
		return analyzeRulesMode
	}
	return cfg.Pipeline.RulesMode
}

func iterations() int {
	if analyzeIters > 0 {
		return analyzeIters
	}
	return cfg.Pipeline.MaxIterations
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSubject, "subject", "", "company the document was published by (required)")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "path to the document text")
	analyzeCmd.Flags().StringVar(&analyzeSession, "session", "", "evidence session id (pgvector backend)")
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "report language ISO code (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeRulesMode, "rules-mode", "", "scoring engine: rules_llm or legacy (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeIters, "iterations", 0, "max pipeline iterations (default from config)")
	_ = analyzeCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(analyzeCmd)
}
