package ranking

import "fmt"

// Defaults for recommendation options.
const (
	DefaultTopK                 = 5
	DefaultSkillMatchThreshold  = 0.5
	DefaultDisabilityWeight     = 2.0
	DefaultPreferenceWeight     = 2.0
	DefaultCandidateSkillWeight = 2.0
)

// JobWeights weights the fields of a job document.
type JobWeights struct {
	Description float64 `json:"description" mapstructure:"description"`
	Skills      float64 `json:"skills" mapstructure:"skills"`
	Tags        float64 `json:"tags" mapstructure:"tags"`
	Category    float64 `json:"category" mapstructure:"category"`
	Disability  float64 `json:"disability" mapstructure:"disability"`
}

// QueryWeights weights the fields of a candidate query document.
type QueryWeights struct {
	Preferences float64 `json:"preferences" mapstructure:"preferences"`
	Disability  float64 `json:"disability" mapstructure:"disability"`
	Skills      float64 `json:"skills" mapstructure:"skills"`
}

// Options controls scoring, filtering and truncation.
type Options struct {
	TopK                int          `json:"top_k" mapstructure:"top_k"`
	SkillMatchThreshold float64      `json:"skill_match_threshold" mapstructure:"skill_match_threshold"`
	JobWeights          JobWeights   `json:"job_weights" mapstructure:"job_weights"`
	QueryWeights        QueryWeights `json:"query_weights" mapstructure:"query_weights"`
	Debug               bool         `json:"debug" mapstructure:"debug"`
}

// DefaultJobWeights returns weight 1 for every field except disability tags.
func DefaultJobWeights() JobWeights {
	return JobWeights{
		Description: 1,
		Skills:      1,
		Tags:        1,
		Category:    1,
		Disability:  DefaultDisabilityWeight,
	}
}

// DefaultQueryWeights doubles preferences and skills relative to the disability label.
func DefaultQueryWeights() QueryWeights {
	return QueryWeights{
		Preferences: DefaultPreferenceWeight,
		Disability:  1,
		Skills:      DefaultCandidateSkillWeight,
	}
}

// DefaultOptions returns the standard recommendation options.
func DefaultOptions() Options {
	return Options{
		TopK:                DefaultTopK,
		SkillMatchThreshold: DefaultSkillMatchThreshold,
		JobWeights:          DefaultJobWeights(),
		QueryWeights:        DefaultQueryWeights(),
	}
}

// orDefault returns DefaultOptions for the zero Options, which can never be
// valid, and o otherwise. Individual zero fields are kept: TopK 0 keeps every
// included job and a threshold of 0 accepts any skill overlap.
func (o Options) orDefault() Options {
	if o == (Options{}) {
		return DefaultOptions()
	}
	return o
}

// Validate checks that option values are in range.
func (o Options) Validate() error {
	if o.TopK < 0 {
		return fmt.Errorf("%w: top_k must be non-negative, got %d", ErrMalformedInput, o.TopK)
	}
	if o.SkillMatchThreshold < 0 || o.SkillMatchThreshold > 1 {
		return fmt.Errorf("%w: skill_match_threshold must be within [0, 1], got %v", ErrMalformedInput, o.SkillMatchThreshold)
	}
	weights := []struct {
		name  string
		value float64
	}{
		{"job_weights.description", o.JobWeights.Description},
		{"job_weights.skills", o.JobWeights.Skills},
		{"job_weights.tags", o.JobWeights.Tags},
		{"job_weights.category", o.JobWeights.Category},
		{"job_weights.disability", o.JobWeights.Disability},
		{"query_weights.preferences", o.QueryWeights.Preferences},
		{"query_weights.disability", o.QueryWeights.Disability},
		{"query_weights.skills", o.QueryWeights.Skills},
	}
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrMalformedInput, w.name, w.value)
		}
	}
	if o.JobWeights == (JobWeights{}) {
		return fmt.Errorf("%w: at least one job weight must be positive", ErrMalformedInput)
	}
	if o.QueryWeights == (QueryWeights{}) {
		return fmt.Errorf("%w: at least one query weight must be positive", ErrMalformedInput)
	}
	return nil
}
