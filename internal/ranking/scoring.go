// Package ranking recommends job postings to a candidate: TF-IDF similarity,
// an accessibility-first eligibility filter, and top-K ranking.
package ranking

import (
	"strings"

	"github.com/hanapwede/job-recommender/internal/textvec"
)

// Exclusion reasons, checked in this order.
const (
	ReasonNoDisabilityMatch        = "No disability match"
	ReasonNoSkillOrPreferenceMatch = "No skill or preference match"
	ReasonIncluded                 = "Included"
)

// Verdict is the eligibility outcome for one job.
type Verdict struct {
	Included        bool
	Reason          string
	DisabilityMatch bool
	SkillMatch      bool
	PreferenceMatch bool
}

// mutualSubstring reports whether a contains b or b contains a, ignoring case.
// Empty strings never match.
func mutualSubstring(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// DisabilityMatch reports whether the candidate's disability label and any of
// the job's disability tags contain one another.
func DisabilityMatch(label string, jobTags []string) bool {
	for _, tag := range jobTags {
		if mutualSubstring(label, tag) {
			return true
		}
	}
	return false
}

// PreferenceMatch reports whether any candidate preference and any job tag
// contain one another.
func PreferenceMatch(preferences, jobTags []string) bool {
	for _, pref := range preferences {
		for _, tag := range jobTags {
			if mutualSubstring(pref, tag) {
				return true
			}
		}
	}
	return false
}

// SkillMatch splits both comma-separated skill lists, fits a model over the
// pair, and reports whether the best pairwise similarity exceeds threshold.
// The model is refit for every call so vocabulary is local to the pair.
func SkillMatch(vz *textvec.Vectorizer, candidateSkills, jobSkills string, threshold float64) bool {
	cand := textvec.SplitList(candidateSkills)
	job := textvec.SplitList(jobSkills)
	if len(cand) == 0 || len(job) == 0 {
		return false
	}
	return vz.MaxPairwiseCosine(cand, job) > threshold
}

// Judge applies the eligibility policy. The disability gate always wins.
func Judge(disability, skill, preference bool) Verdict {
	v := Verdict{
		DisabilityMatch: disability,
		SkillMatch:      skill,
		PreferenceMatch: preference,
	}
	switch {
	case !disability:
		v.Reason = ReasonNoDisabilityMatch
	case !skill && !preference:
		v.Reason = ReasonNoSkillOrPreferenceMatch
	default:
		v.Included = true
		v.Reason = ReasonIncluded
	}
	return v
}
