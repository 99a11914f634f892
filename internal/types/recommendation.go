package types

import "github.com/go-playground/validator/v10"

// Match status values reported in debug output.
const (
	MatchStatusIncluded = "Included"
	MatchStatusExcluded = "Excluded"
)

// RecommendedJob is one entry of the ranked recommendation list.
type RecommendedJob struct {
	PostID          int64   `json:"post_id"`
	JobTitle        string  `json:"job_title"`
	JobDescription  string  `json:"job_description"`
	SkillsRequired  string  `json:"skills_required"`
	CompanyName     string  `json:"comp_name"`
	Category        string  `json:"category"`
	Location        string  `json:"location"`
	PostedBy        int64   `json:"posted_by"`
	Tags            string  `json:"tags"`
	DisabilityTags  string  `json:"disabilitytag"`
	SimilarityScore float64 `json:"similarity_score"`
}

// DebugEntry records the verdict for every evaluated job, included or not.
type DebugEntry struct {
	PostID          int64   `json:"post_id"`
	JobTitle        string  `json:"job_title"`
	MatchStatus     string  `json:"match_status"`
	Reason          string  `json:"reason"`
	SimilarityScore float64 `json:"similarity_score"`
	DisabilityMatch bool    `json:"disability_match"`
	SkillMatch      bool    `json:"skill_match"`
	PreferenceMatch bool    `json:"preference_match"`
}

// RecommendationsResponse is the debug-mode response body.
type RecommendationsResponse struct {
	Recommendations []RecommendedJob `json:"recommendations"`
	DebugInfo       []DebugEntry     `json:"debug_info,omitempty"`
}

// NoRecommendationsResponse signals that the corpus was non-empty but no job
// passed the eligibility filter.
type NoRecommendationsResponse struct {
	Message   string       `json:"message"`
	DebugInfo []DebugEntry `json:"debug_info,omitempty"`
}

// NoRecommendationsMessage is the message returned when nothing was eligible.
const NoRecommendationsMessage = "No suitable job recommendations found."

// RecommendQuery holds the query parameters of a recommendation request.
type RecommendQuery struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	TopK   int   `json:"top_k,omitempty" validate:"gte=0,lte=50"`
	Debug  bool  `json:"debug,omitempty"`
}

// Validate validates the RecommendQuery using the validator.
func (q *RecommendQuery) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}
