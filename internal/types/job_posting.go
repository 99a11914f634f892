// Package types provides type definitions for structured data used throughout the job recommender.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// JobPosting is a read-only snapshot of a job post as seen by the recommender.
type JobPosting struct {
	PostID         int64    `json:"post_id"`
	Title          string   `json:"job_title"`
	Description    string   `json:"job_description"`
	SkillsRequired string   `json:"skills_required"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	DisabilityTags []string `json:"disability_tags"`
	EmployerID     int64    `json:"posted_by"`
	CompanyName    string   `json:"comp_name"`
	Location       string   `json:"location"`
	JobType        string   `json:"job_type,omitempty"`
	SalaryRange    string   `json:"salary_range,omitempty"`
	JobFairID      *int64   `json:"job_fair_id,omitempty"`
}

// TagsLabel returns the tag labels joined the way the dashboard renders them.
func (j *JobPosting) TagsLabel() string {
	return strings.Join(j.Tags, ", ")
}

// DisabilityTagsLabel returns the disability tag labels joined with ", ".
func (j *JobPosting) DisabilityTagsLabel() string {
	return strings.Join(j.DisabilityTags, ", ")
}

// Tag is a catalogue entry for preference or disability tags.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// JobFair groups job postings under a single event.
type JobFair struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
