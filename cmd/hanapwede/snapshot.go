package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanapwede/job-recommender/internal/snapshot"
	"github.com/hanapwede/job-recommender/internal/types"
	embedded "github.com/hanapwede/job-recommender/schemas"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage offline SQLite snapshots of the job board",
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Build a snapshot from corpus and candidate JSON files",
	Long:  "Replaces the contents of a SQLite snapshot with the given job corpus and candidate profiles.",
	RunE:  runSnapshotImport,
}

var (
	snapshotCorpus     string
	snapshotCandidates string
	snapshotDB         string
)

func init() {
	snapshotImportCmd.Flags().StringVar(&snapshotCorpus, "corpus", "", "Path to a job corpus JSON file (required)")
	snapshotImportCmd.Flags().StringVar(&snapshotCandidates, "candidates", "", "Path to a candidate profiles JSON file")
	snapshotImportCmd.Flags().StringVar(&snapshotDB, "db", "", "Path to the SQLite snapshot to write (required)")

	if err := snapshotImportCmd.MarkFlagRequired("corpus"); err != nil {
		panic(fmt.Sprintf("failed to mark corpus flag as required: %v", err))
	}
	if err := snapshotImportCmd.MarkFlagRequired("db"); err != nil {
		panic(fmt.Sprintf("failed to mark db flag as required: %v", err))
	}

	snapshotCmd.AddCommand(snapshotImportCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotImport(cmd *cobra.Command, _ []string) error {
	var jobs []types.JobPosting
	if err := loadJSONFile(snapshotCorpus, embedded.Corpus, &jobs); err != nil {
		return err
	}

	var candidates []types.CandidateProfile
	if snapshotCandidates != "" {
		if err := loadJSONFile(snapshotCandidates, embedded.Candidates, &candidates); err != nil {
			return err
		}
	}

	store, err := snapshot.Open(cmd.Context(), snapshotDB)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // closed after the import transaction committed

	stats, err := store.Import(cmd.Context(), jobs, candidates)
	if err != nil {
		return err
	}

	appLogger.Info("snapshot imported",
		zap.String("path", snapshotDB),
		zap.Int("jobs", stats.Jobs),
		zap.Int("candidates", stats.Candidates),
	)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d jobs and %d candidates into %s\n", stats.Jobs, stats.Candidates, snapshotDB)
	return err
}
