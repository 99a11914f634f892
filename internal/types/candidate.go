package types

// CandidateProfile is the job seeker data used to personalize recommendations.
// DisabilityType and Skills may legitimately be empty.
type CandidateProfile struct {
	UserID         int64    `json:"user_id"`
	Preferences    []string `json:"preferences"`
	DisabilityType string   `json:"disability_type"`
	Skills         string   `json:"skills"`
}

// UserPreferences lists the preference tag labels saved by a user.
type UserPreferences struct {
	UserID int64    `json:"user_id"`
	Tags   []string `json:"tags"`
}
