package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanapwede/job-recommender/internal/logger"
	"github.com/hanapwede/job-recommender/internal/observability"
	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/schemas"
	"github.com/hanapwede/job-recommender/internal/types"
	embedded "github.com/hanapwede/job-recommender/schemas"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend jobs for one candidate",
	Long: `Ranks job postings for a candidate and prints the recommendations as JSON.

Either pass --corpus and --candidate JSON files, or --user-id together with
--snapshot or --database-url to load the data.`,
	RunE: runRecommend,
}

var (
	recommendCorpus     string
	recommendCandidate  string
	recommendUserID     int64
	recommendEmployerID int64
	recommendJobFairID  int64
	recommendTopK       int
	recommendDebug      bool
	recommendOutput     string
	recommendVerbose    bool
)

func init() {
	recommendCmd.Flags().StringVar(&recommendCorpus, "corpus", "", "Path to a job corpus JSON file")
	recommendCmd.Flags().StringVar(&recommendCandidate, "candidate", "", "Path to a candidate profile JSON file")
	recommendCmd.Flags().Int64VarP(&recommendUserID, "user-id", "u", 0, "Candidate user id to load from the data source")
	recommendCmd.Flags().Int64Var(&recommendEmployerID, "employer-id", 0, "Only rank postings of this employer")
	recommendCmd.Flags().Int64Var(&recommendJobFairID, "job-fair-id", 0, "Only rank postings of this job fair")
	recommendCmd.Flags().IntVarP(&recommendTopK, "top-k", "k", 0, "Maximum number of recommendations (default from config)")
	recommendCmd.Flags().BoolVar(&recommendDebug, "debug", false, "Include the eligibility trace for every job")
	recommendCmd.Flags().StringVarP(&recommendOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	recommendCmd.Flags().BoolVarP(&recommendVerbose, "verbose", "v", false, "Print human-readable summaries to stderr")

	recommendCmd.MarkFlagsRequiredTogether("corpus", "candidate")
	recommendCmd.MarkFlagsMutuallyExclusive("corpus", "user-id")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	opts := appConfig.Recommender.Options()
	opts.Debug = recommendDebug

	var (
		profile *types.CandidateProfile
		result  *ranking.Result
		err     error
	)

	if recommendCorpus != "" {
		var jobs []types.JobPosting
		if err := loadJSONFile(recommendCorpus, embedded.Corpus, &jobs); err != nil {
			return err
		}
		profile = &types.CandidateProfile{}
		if err := loadJSONFile(recommendCandidate, embedded.Candidate, profile); err != nil {
			return err
		}
		result, err = ranking.RecommendFor(profile, jobs, opts)
	} else {
		if recommendUserID <= 0 {
			return fmt.Errorf("--user-id is required unless --corpus and --candidate are given")
		}
		src, err := openSource(ctx, appConfig)
		if err != nil {
			return err
		}
		defer src.Close() //nolint:errcheck // read-only source

		engine, err := ranking.NewEngine(src, src, opts, ranking.WithLogger(appLogger))
		if err != nil {
			return err
		}
		result, err = engine.Recommend(ctx, ranking.Request{
			UserID: recommendUserID,
			Scope:  scopeFromFlags(recommendEmployerID, recommendJobFairID),
			Debug:  recommendDebug,
		})
		if err != nil {
			return fmt.Errorf("failed to recommend jobs: %w", err)
		}
		if recommendVerbose {
			profile = verboseProfile(ctx, src, recommendUserID, appLogger)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to recommend jobs: %w", err)
	}

	data, err := json.MarshalIndent(result.Body(recommendDebug), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations to JSON: %w", err)
	}
	if err := schemas.ValidateDocument(embedded.Recommendations, data); err != nil {
		return fmt.Errorf("recommendations failed schema validation: %w", err)
	}

	if err := writeOutput(recommendOutput, data, cmd.OutOrStdout()); err != nil {
		return err
	}

	appLogger.Info("recommendations written",
		zap.Int64(logger.FieldUserID, profileUserID(profile, recommendUserID)),
		zap.Int("evaluated", result.Evaluated),
		zap.Int("recommended", len(result.Recommendations)),
	)

	if recommendVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintCandidate(profile)
		printer.PrintRecommendations(result)
		printer.PrintDebugInfo(result.DebugInfo)
	}
	return nil
}

func scopeFromFlags(employerID, jobFairID int64) ranking.Scope {
	var scope ranking.Scope
	if employerID > 0 {
		scope.EmployerID = &employerID
	}
	if jobFairID > 0 {
		scope.JobFairID = &jobFairID
	}
	return scope
}

func profileUserID(profile *types.CandidateProfile, fallback int64) int64 {
	if profile != nil {
		return profile.UserID
	}
	return fallback
}

// verboseProfile loads the profile printed by --verbose. The recommendation
// has already been written, so a failed lookup is only logged.
func verboseProfile(ctx context.Context, profiles ranking.ProfileReader, userID int64, log *zap.Logger) *types.CandidateProfile {
	profile, err := profiles.GetCandidateProfile(ctx, userID)
	if err != nil {
		log.Debug("candidate profile unavailable for verbose output",
			zap.Int64(logger.FieldUserID, userID), zap.Error(err))
		return nil
	}
	return profile
}
