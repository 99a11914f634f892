package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/types"
)

// -----------------------------------------------------------------------------
// Job Post Methods
// -----------------------------------------------------------------------------

// jobPostColumns selects a job post with its employer name and both tag
// lists. Tags are ordered by id so labels render in insertion order.
const jobPostColumns = `
	jp.post_id, jp.job_title, COALESCE(jp.job_desc, ''), COALESCE(jp.skills_req, ''),
	COALESCE(jp.category, ''), COALESCE(jp.location, ''), COALESCE(jp.job_type, ''),
	COALESCE(jp.salary_range, ''), jp.posted_by, COALESCE(emp.comp_name, ''), jp.job_fair_id,
	(SELECT COALESCE(array_agg(t.name ORDER BY t.id), '{}')
	   FROM job_post_tags jpt JOIN tags t ON t.id = jpt.tag_id
	  WHERE jpt.job_post_id = jp.post_id),
	(SELECT COALESCE(array_agg(dt.name ORDER BY dt.id), '{}')
	   FROM job_post_disability_tags jpd JOIN disability_tags dt ON dt.id = jpd.disability_tag_id
	  WHERE jpd.job_post_id = jp.post_id)`

const jobPostFrom = `
	FROM job_posts jp
	LEFT JOIN employer_profiles emp ON emp.user_id = jp.posted_by`

func scanJobPosting(row pgx.Row) (*types.JobPosting, error) {
	var j types.JobPosting
	err := row.Scan(&j.PostID, &j.Title, &j.Description, &j.SkillsRequired,
		&j.Category, &j.Location, &j.JobType, &j.SalaryRange, &j.EmployerID,
		&j.CompanyName, &j.JobFairID, &j.Tags, &j.DisabilityTags)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// scopeArgs converts a scope into the positional arguments of the list query.
// Nil pointers become SQL NULL, which disables the corresponding filter.
func scopeArgs(scope ranking.Scope) []any {
	return []any{scope.EmployerID, scope.JobFairID}
}

// ListJobPostings returns every job post in scope ordered by post_id.
func (db *DB) ListJobPostings(ctx context.Context, scope ranking.Scope) ([]types.JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT`+jobPostColumns+jobPostFrom+`
		 WHERE ($1::bigint IS NULL OR jp.posted_by = $1)
		   AND ($2::bigint IS NULL OR jp.job_fair_id = $2)
		 ORDER BY jp.post_id`,
		scopeArgs(scope)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobPosting
	for rows.Next() {
		j, err := scanJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job postings: %w", err)
	}
	return jobs, nil
}

// ListJobPostingsByIDs returns the job posts with the given ids ordered by post_id.
// Unknown ids are skipped.
func (db *DB) ListJobPostingsByIDs(ctx context.Context, ids []int64) ([]types.JobPosting, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT`+jobPostColumns+jobPostFrom+`
		 WHERE jp.post_id = ANY($1)
		 ORDER BY jp.post_id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings by id: %w", err)
	}
	defer rows.Close()

	var jobs []types.JobPosting
	for rows.Next() {
		j, err := scanJobPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job postings: %w", err)
	}
	return jobs, nil
}

// GetJobPosting retrieves a job post by id. It returns nil, nil when absent.
func (db *DB) GetJobPosting(ctx context.Context, postID int64) (*types.JobPosting, error) {
	j, err := scanJobPosting(db.pool.QueryRow(ctx,
		`SELECT`+jobPostColumns+jobPostFrom+`
		 WHERE jp.post_id = $1`,
		postID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	return j, nil
}

// GetJobFair retrieves a job fair by id. It returns nil, nil when absent.
func (db *DB) GetJobFair(ctx context.Context, id int64) (*types.JobFair, error) {
	var f types.JobFair
	err := db.pool.QueryRow(ctx,
		`SELECT id, title FROM job_fairs WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job fair: %w", err)
	}
	return &f, nil
}
