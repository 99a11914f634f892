package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/hanapwede/job-recommender/internal/config"
	"github.com/hanapwede/job-recommender/internal/db"
	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/schemas"
	"github.com/hanapwede/job-recommender/internal/snapshot"
	"github.com/hanapwede/job-recommender/internal/types"
)

// dataSource is the read side shared by the offline commands: PostgreSQL or
// a SQLite snapshot.
type dataSource interface {
	ranking.CorpusReader
	ranking.ProfileReader
	// AppliedJobs returns the postings a user applied to. postIDs overrides
	// the stored applications when non-empty.
	AppliedJobs(ctx context.Context, userID int64, postIDs []int64) ([]types.JobPosting, error)
	Close() error
}

// candidateLister is implemented by sources that can enumerate candidates.
type candidateLister interface {
	ListCandidateIDs(ctx context.Context) ([]int64, error)
}

func openSource(ctx context.Context, cfg *config.Config) (dataSource, error) {
	switch {
	case cfg.Snapshot != "":
		store, err := snapshot.Open(ctx, cfg.Snapshot)
		if err != nil {
			return nil, err
		}
		return &snapshotSource{Store: store}, nil
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &postgresSource{db: database}, nil
	default:
		return nil, fmt.Errorf("either --snapshot or --database-url (DATABASE_URL) is required")
	}
}

type postgresSource struct {
	db *db.DB
}

func (s *postgresSource) ListJobPostings(ctx context.Context, scope ranking.Scope) ([]types.JobPosting, error) {
	return s.db.ListJobPostings(ctx, scope)
}

func (s *postgresSource) GetCandidateProfile(ctx context.Context, userID int64) (*types.CandidateProfile, error) {
	return s.db.GetCandidateProfile(ctx, userID)
}

func (s *postgresSource) AppliedJobs(ctx context.Context, userID int64, postIDs []int64) ([]types.JobPosting, error) {
	if len(postIDs) == 0 {
		ids, err := s.db.ListAppliedJobIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		postIDs = ids
	}
	return s.db.ListJobPostingsByIDs(ctx, postIDs)
}

func (s *postgresSource) Close() error {
	s.db.Close()
	return nil
}

type snapshotSource struct {
	*snapshot.Store
}

func (s *snapshotSource) AppliedJobs(ctx context.Context, userID int64, postIDs []int64) ([]types.JobPosting, error) {
	if len(postIDs) == 0 {
		return nil, fmt.Errorf("%w: snapshot has no applications for user %d: pass --applied", ranking.ErrInsufficientData, userID)
	}
	jobs, err := s.ListJobPostings(ctx, ranking.Scope{})
	if err != nil {
		return nil, err
	}
	var applied []types.JobPosting
	for _, j := range jobs {
		if slices.Contains(postIDs, j.PostID) {
			applied = append(applied, j)
		}
	}
	return applied, nil
}

// loadJSONFile validates path against an embedded schema and decodes it into v.
func loadJSONFile(path, schemaName string, v any) error {
	if err := schemas.ValidateFile(schemaName, path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}
