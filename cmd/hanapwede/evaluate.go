package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hanapwede/job-recommender/internal/logger"
	"github.com/hanapwede/job-recommender/internal/observability"
	"github.com/hanapwede/job-recommender/internal/ranking"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score recommendations against the jobs users applied to",
	Long: `Computes precision, recall and F1 of each user's recommendations, counting a
recommended job as relevant when its text is similar enough to a job the user
applied to.`,
	RunE: runEvaluate,
}

var (
	evaluateUserIDs     []int64
	evaluateApplied     []int64
	evaluateThreshold   float64
	evaluateConcurrency int
	evaluateOutput      string
	evaluateVerbose     bool
)

func init() {
	evaluateCmd.Flags().Int64SliceVarP(&evaluateUserIDs, "user-id", "u", nil, "User ids to evaluate (repeatable; default every snapshot candidate)")
	evaluateCmd.Flags().Int64SliceVar(&evaluateApplied, "applied", nil, "Applied post ids (default the users' stored applications)")
	evaluateCmd.Flags().Float64Var(&evaluateThreshold, "threshold", ranking.DefaultRelevanceThreshold, "Similarity above which a recommendation counts as relevant")
	evaluateCmd.Flags().IntVar(&evaluateConcurrency, "concurrency", 4, "Users evaluated in parallel")
	evaluateCmd.Flags().StringVarP(&evaluateOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	evaluateCmd.Flags().BoolVarP(&evaluateVerbose, "verbose", "v", false, "Print human-readable metrics to stderr")

	rootCmd.AddCommand(evaluateCmd)
}

// evaluation is the outcome for one user. Error is set instead of the metrics
// when the user could not be evaluated.
type evaluation struct {
	UserID int64 `json:"user_id"`
	ranking.Metrics
	Recommended int    `json:"recommended"`
	Applied     int    `json:"applied"`
	Error       string `json:"error,omitempty"`
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	if evaluateConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}
	ctx := cmd.Context()
	threshold := appConfig.Recommender.RelevanceThreshold

	src, err := openSource(ctx, appConfig)
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck // read-only source

	userIDs := evaluateUserIDs
	if len(userIDs) == 0 {
		lister, ok := src.(candidateLister)
		if !ok {
			return fmt.Errorf("--user-id is required when reading from PostgreSQL")
		}
		if userIDs, err = lister.ListCandidateIDs(ctx); err != nil {
			return err
		}
	}

	engine, err := ranking.NewEngine(src, src, appConfig.Recommender.Options(), ranking.WithLogger(appLogger))
	if err != nil {
		return err
	}

	results, err := evaluateUsers(ctx, engine, src, userIDs, evaluateApplied, threshold, evaluateConcurrency)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation results: %w", err)
	}
	if err := writeOutput(evaluateOutput, data, cmd.OutOrStdout()); err != nil {
		return err
	}

	if evaluateVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		for _, r := range results {
			if r.Error == "" {
				printer.PrintMetrics(r.UserID, r.Metrics)
			}
		}
	}
	return nil
}

// evaluateUsers evaluates users concurrently. Results keep the order of userIDs.
func evaluateUsers(
	ctx context.Context,
	engine *ranking.Engine,
	src dataSource,
	userIDs, applied []int64,
	threshold float64,
	concurrency int,
) ([]evaluation, error) {
	results := make([]evaluation, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, userID := range userIDs {
		g.Go(func() error {
			r, err := evaluateUser(gctx, engine, src, userID, applied, threshold)
			if err != nil {
				return fmt.Errorf("user %d: %w", userID, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func evaluateUser(
	ctx context.Context,
	engine *ranking.Engine,
	src dataSource,
	userID int64,
	applied []int64,
	threshold float64,
) (evaluation, error) {
	log := appLogger.With(zap.Int64(logger.FieldUserID, userID))
	out := evaluation{UserID: userID}

	result, err := engine.Recommend(ctx, ranking.Request{UserID: userID})
	if err != nil {
		if errors.Is(err, ranking.ErrCandidateNotFound) || errors.Is(err, ranking.ErrEmptyCorpus) {
			log.Warn("user skipped", zap.Error(err))
			out.Error = err.Error()
			return out, nil
		}
		return out, err
	}
	out.Recommended = len(result.Recommendations)

	jobs, err := src.AppliedJobs(ctx, userID, applied)
	if err != nil {
		if errors.Is(err, ranking.ErrInsufficientData) {
			log.Warn("user skipped", zap.Error(err))
			out.Error = err.Error()
			return out, nil
		}
		return out, err
	}
	out.Applied = len(jobs)

	metrics, err := ranking.EvaluateJobs(result.Recommendations, jobs, threshold)
	if err != nil {
		if errors.Is(err, ranking.ErrInsufficientData) {
			log.Warn("user skipped", zap.Error(err))
			out.Error = err.Error()
			return out, nil
		}
		return out, err
	}
	out.Metrics = metrics

	log.Info("user evaluated",
		zap.Float64("precision", metrics.Precision),
		zap.Float64("recall", metrics.Recall),
		zap.Float64("f1", metrics.F1),
	)
	return out, nil
}
