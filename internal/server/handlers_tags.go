package server

import (
	"net/http"

	"github.com/hanapwede/job-recommender/internal/types"
)

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, nonNilTags(tags))
}

func (s *Server) handleListDisabilityTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListDisabilityTags(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, nonNilTags(tags))
}

// handleGetUserPreferences returns the preference tag labels saved by a user.
func (s *Server) handleGetUserPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	prefs, err := s.store.GetUserPreferences(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, prefs)
}

func nonNilTags(tags []types.Tag) []types.Tag {
	if tags == nil {
		return []types.Tag{}
	}
	return tags
}
