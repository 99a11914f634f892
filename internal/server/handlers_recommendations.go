package server

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hanapwede/job-recommender/internal/logger"
	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/server/middleware"
	"github.com/hanapwede/job-recommender/internal/types"
)

// parseRecommendQuery reads user_id, top_k and debug from the query string.
// userID overrides the query parameter when positive (authenticated routes).
func parseRecommendQuery(r *http.Request, userID int64) (*types.RecommendQuery, error) {
	q := r.URL.Query()
	query := &types.RecommendQuery{UserID: userID, Debug: parseBool(q.Get("debug"))}

	if query.UserID <= 0 {
		raw := q.Get("user_id")
		if raw == "" {
			return nil, &ErrValidation{Field: "user_id", Message: "user_id is required"}
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ErrValidation{Field: "user_id", Message: "user_id must be an integer"}
		}
		query.UserID = id
	}

	if raw := q.Get("top_k"); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ErrValidation{Field: "top_k", Message: "top_k must be an integer"}
		}
		query.TopK = topK
	}

	if err := query.Validate(); err != nil {
		return nil, &ErrValidation{Field: "query", Message: err.Error()}
	}
	return query, nil
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true") || s == "1"
}

// parsePathID parses a positive integer path value.
func parsePathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// handleRecommendJobs ranks the whole corpus for ?user_id=.
func (s *Server) handleRecommendJobs(w http.ResponseWriter, r *http.Request) {
	s.recommend(w, r, 0, ranking.Scope{})
}

// handleRecommendJobFairJobs ranks the postings of one job fair.
func (s *Server) handleRecommendJobFairJobs(w http.ResponseWriter, r *http.Request) {
	fairID, err := parsePathID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job fair ID")
		return
	}

	fair, err := s.store.GetJobFair(r.Context(), fairID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if fair == nil {
		s.errorFor(w, r, &ErrNotFound{Resource: "job fair", ID: fairID})
		return
	}

	s.recommend(w, r, 0, ranking.Scope{JobFairID: &fairID})
}

// handleRecommendEmployerJobs ranks the postings of one employer.
func (s *Server) handleRecommendEmployerJobs(w http.ResponseWriter, r *http.Request) {
	employerID, err := parsePathID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid employer ID")
		return
	}
	s.recommend(w, r, 0, ranking.Scope{EmployerID: &employerID})
}

// handleRecommendMyJobs ranks the whole corpus for the authenticated user.
func (s *Server) handleRecommendMyJobs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.recommend(w, r, userID, ranking.Scope{})
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, userID int64, scope ranking.Scope) {
	query, err := parseRecommendQuery(r, userID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Recommend(r.Context(), ranking.Request{
		UserID: query.UserID,
		Scope:  scope,
		TopK:   query.TopK,
		Debug:  query.Debug,
	})
	if err != nil {
		s.errorFor(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result.Body(query.Debug))
}

// errorFor writes the status and message mapped from err. Internal errors are
// logged and answered with a generic 500.
func (s *Server) errorFor(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.internalError(w, r, err)
		return
	}
	s.errorResponse(w, status, errorMessage(err))
}

// internalError logs err and writes a generic 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String(logger.FieldRequestID, middleware.GetRequestID(r.Context())),
		zap.Error(err),
	)
	s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
}
