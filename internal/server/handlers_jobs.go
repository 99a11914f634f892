package server

import (
	"net/http"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/types"
)

// handleGetJob retrieves a job posting by its ID
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePathID(r, "post_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job post ID")
		return
	}

	job, err := s.store.GetJobPosting(r.Context(), postID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if job == nil {
		s.errorFor(w, r, &ErrNotFound{Resource: "job posting", ID: postID})
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleListAllJobs lists the whole corpus ordered by post id.
func (s *Server) handleListAllJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListJobPostings(r.Context(), ranking.Scope{})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []types.JobPosting{}
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}
