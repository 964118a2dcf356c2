package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/StreetLamp05/glassgov-be/internal/bootstrap"
	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

var errThresholdRange = errors.New("--threshold must be within [0, 1]")

func newAnalyzeCommand() *cobra.Command {
	var (
		threshold float64
		topK      int
		explain   bool
	)
	cmd := &cobra.Command{
		Use:   "analyze TEXT...",
		Short: "Classify text and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			opts := bootstrap.ClassifierOptions(cfg)
			if cmd.Flags().Changed("threshold") {
				if threshold < 0 || threshold > 1 {
					return errThresholdRange
				}
				opts.Threshold = threshold
			}
			if topK > 0 {
				opts.TopK = topK
			}
			opts.Debug = opts.Debug || explain

			sem := bootstrap.SetupSemantic(cfg, logger, nil)
			engine, matcher := bootstrap.NewClassifier(cfg, sem.Scorer, logger, nil)

			text := strings.Join(args, " ")
			result := engine.Analyze(cmd.Context(), text, opts)
			if !explain {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				*domain.ClassificationResult
				RuleHits []classifier.RuleHit `json:"rule_hits"`
			}{result, matcher.Explain(text)})
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "selection threshold in [0, 1]")
	cmd.Flags().IntVar(&topK, "top-k", 0, "labels kept when none clears the threshold")
	cmd.Flags().BoolVar(&explain, "explain", false, "include raw scores and rule hits")
	return cmd
}
