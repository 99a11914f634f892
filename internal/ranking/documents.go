package ranking

import (
	"strings"

	"github.com/hanapwede/job-recommender/internal/textvec"
	"github.com/hanapwede/job-recommender/internal/types"
)

// JobDocument builds the weighted document for a job posting. With the default
// weights it is equivalent to
//
//	description + " " + skills + " " + tags + " " + category + ", " + (disability_tags + " ") * 2
func JobDocument(job *types.JobPosting, w JobWeights) textvec.Document {
	return textvec.Document{
		{Text: job.Description, Weight: w.Description},
		{Text: job.SkillsRequired, Weight: w.Skills},
		{Text: strings.Join(job.Tags, " "), Weight: w.Tags},
		{Text: job.Category, Weight: w.Category},
		{Text: strings.Join(job.DisabilityTags, " "), Weight: w.Disability},
	}
}

// QueryDocument builds the weighted query document for a candidate. With the
// default weights it is equivalent to
//
//	prefs + " " + prefs + ", " + disability + " " + (skills + " ") * 2
//
// Empty disability or skills text contributes nothing.
func QueryDocument(p *types.CandidateProfile, w QueryWeights) textvec.Document {
	return textvec.Document{
		{Text: strings.Join(p.Preferences, " "), Weight: w.Preferences},
		{Text: p.DisabilityType, Weight: w.Disability},
		{Text: p.Skills, Weight: w.Skills},
	}
}

// RelevanceText is the description-plus-skills text used for offline evaluation.
func RelevanceText(job *types.JobPosting) string {
	if job.SkillsRequired == "" {
		return strings.TrimSpace(job.Description)
	}
	return strings.TrimSpace(job.Description + " " + job.SkillsRequired)
}
