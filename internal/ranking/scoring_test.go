package ranking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanapwede/job-recommender/internal/textvec"
	"github.com/hanapwede/job-recommender/internal/types"
)

func TestDisabilityMatch(t *testing.T) {
	tests := []struct {
		name  string
		label string
		tags  []string
		want  bool
	}{
		{name: "exact", label: "Visual Impairment", tags: []string{"Visual Impairment"}, want: true},
		{name: "case insensitive", label: "visual impairment", tags: []string{"VISUAL IMPAIRMENT"}, want: true},
		{name: "label inside tag", label: "Visual", tags: []string{"Visual Impairment"}, want: true},
		{name: "tag inside label", label: "Severe Visual Impairment", tags: []string{"Visual Impairment"}, want: true},
		{name: "any tag", label: "Mobility", tags: []string{"Hearing", "Mobility"}, want: true},
		{name: "no overlap", label: "Visual Impairment", tags: []string{"Mobility"}, want: false},
		{name: "empty label", label: "", tags: []string{"Mobility"}, want: false},
		{name: "empty tag", label: "Mobility", tags: []string{""}, want: false},
		{name: "no tags", label: "Mobility", tags: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisabilityMatch(tt.label, tt.tags))
		})
	}
}

func TestPreferenceMatch(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		tags  []string
		want  bool
	}{
		{name: "exact", prefs: []string{"finance"}, tags: []string{"finance"}, want: true},
		{name: "substring either way", prefs: []string{"IT"}, tags: []string{"it support"}, want: true},
		{name: "second preference", prefs: []string{"design", "Logistics"}, tags: []string{"logistics"}, want: true},
		{name: "no overlap", prefs: []string{"finance"}, tags: []string{"logistics"}, want: false},
		{name: "no preferences", prefs: nil, tags: []string{"finance"}, want: false},
		{name: "no tags", prefs: []string{"finance"}, tags: nil, want: false},
		{name: "blank preference", prefs: []string{"  "}, tags: []string{"finance"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreferenceMatch(tt.prefs, tt.tags))
		})
	}
}

func TestSkillMatch(t *testing.T) {
	vz := textvec.NewVectorizer()

	tests := []struct {
		name      string
		candidate string
		job       string
		want      bool
	}{
		{name: "shared skill", candidate: "excel, accounting", job: "excel, bookkeeping", want: true},
		{name: "disjoint", candidate: "excel, accounting", job: "lifting, stamina", want: false},
		{name: "partial phrase below threshold", candidate: "data entry clerk work", job: "data analysis statistics modeling", want: false},
		{name: "empty candidate", candidate: "", job: "excel", want: false},
		{name: "empty job", candidate: "excel", job: " , ", want: false},
		{name: "stop words only", candidate: "the, and", job: "of, a", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SkillMatch(vz, tt.candidate, tt.job, DefaultSkillMatchThreshold))
		})
	}
}

func TestJudge(t *testing.T) {
	tests := []struct {
		name                    string
		disability, skill, pref bool
		wantIncluded            bool
		wantReason              string
	}{
		{name: "all match", disability: true, skill: true, pref: true, wantIncluded: true, wantReason: ReasonIncluded},
		{name: "skill only", disability: true, skill: true, wantIncluded: true, wantReason: ReasonIncluded},
		{name: "preference only", disability: true, pref: true, wantIncluded: true, wantReason: ReasonIncluded},
		{name: "disability only", disability: true, wantReason: ReasonNoSkillOrPreferenceMatch},
		{name: "disability gate wins", skill: true, pref: true, wantReason: ReasonNoDisabilityMatch},
		{name: "nothing", wantReason: ReasonNoDisabilityMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Judge(tt.disability, tt.skill, tt.pref)
			assert.Equal(t, tt.wantIncluded, v.Included)
			assert.Equal(t, tt.wantReason, v.Reason)
			assert.Equal(t, tt.disability, v.DisabilityMatch)
			assert.Equal(t, tt.skill, v.SkillMatch)
			assert.Equal(t, tt.pref, v.PreferenceMatch)
		})
	}
}

// literalJobText and literalQueryText spell out the concatenated documents the
// weighted builders must reproduce under the default weights.
func literalJobText(j *types.JobPosting) string {
	dtags := strings.Join(j.DisabilityTags, " ")
	return j.Description + " " + j.SkillsRequired + " " + strings.Join(j.Tags, " ") + " " + j.Category + ", " +
		strings.Repeat(dtags+" ", 2)
}

func literalQueryText(p *types.CandidateProfile) string {
	prefs := strings.Join(p.Preferences, " ")
	return prefs + " " + prefs + ", " + p.DisabilityType + " " + strings.Repeat(p.Skills+" ", 2)
}

func TestDocuments_MatchConcatenatedText(t *testing.T) {
	jobs := []types.JobPosting{
		{
			PostID:         1,
			Description:    "Accounting clerk for a busy finance office",
			SkillsRequired: "excel, bookkeeping, data entry",
			Category:       "Finance",
			Tags:           []string{"finance", "office work", "remote"},
			DisabilityTags: []string{"Visual Impairment", "Hearing"},
		},
		{
			PostID:         2,
			Description:    "Warehouse packer on the night shift",
			SkillsRequired: "lifting, stamina",
			Tags:           []string{"logistics", "warehouse"},
			DisabilityTags: []string{"Mobility"},
		},
		{
			PostID:         3,
			Description:    "Customer support agent answering chat tickets",
			SkillsRequired: "typing, communication",
			Category:       "Support",
			Tags:           []string{"remote", "customer service"},
			DisabilityTags: []string{"Hearing", "Mobility", "Visual Impairment"},
		},
	}

	tests := []struct {
		name      string
		candidate *types.CandidateProfile
	}{
		{
			name: "several preferences",
			candidate: &types.CandidateProfile{
				Preferences:    []string{"finance", "remote", "office work"},
				DisabilityType: "Visual Impairment",
				Skills:         "excel, typing, accounting",
			},
		},
		{
			name:      "disability only",
			candidate: &types.CandidateProfile{DisabilityType: "Mobility"},
		},
		{
			name: "no disability",
			candidate: &types.CandidateProfile{
				Preferences: []string{"warehouse", "logistics"},
				Skills:      "lifting",
			},
		},
	}

	opts := DefaultOptions()
	weighted := make([]textvec.Document, len(jobs))
	literal := make([]textvec.Document, len(jobs))
	for i := range jobs {
		weighted[i] = JobDocument(&jobs[i], opts.JobWeights)
		literal[i] = textvec.Text(literalJobText(&jobs[i]))
	}

	vz := textvec.NewVectorizer()
	wModel, wVecs, err := vz.FitTransform(weighted)
	require.NoError(t, err)
	lModel, lVecs, err := vz.FitTransform(literal)
	require.NoError(t, err)
	require.Equal(t, lModel.Terms(), wModel.Terms())

	for i := range jobs {
		require.Equal(t, lVecs[i].Indices, wVecs[i].Indices, "job %d", jobs[i].PostID)
		assert.InDeltaSlice(t, lVecs[i].Values, wVecs[i].Values, 1e-12, "job %d", jobs[i].PostID)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wQuery := wModel.Transform(QueryDocument(tt.candidate, opts.QueryWeights))
			lQuery := lModel.Transform(textvec.Text(literalQueryText(tt.candidate)))
			require.Equal(t, lQuery.Indices, wQuery.Indices)
			assert.InDeltaSlice(t, lQuery.Values, wQuery.Values, 1e-12)
			assert.InDeltaSlice(t, textvec.CosineAll(lQuery, lVecs), textvec.CosineAll(wQuery, wVecs), 1e-12)
		})
	}
}

func TestSkillMatch_ThresholdZero(t *testing.T) {
	vz := textvec.NewVectorizer()

	// The pair shares only "data", well below the default threshold.
	assert.False(t, SkillMatch(vz, "data entry", "data analysis, forklift", DefaultSkillMatchThreshold))
	assert.True(t, SkillMatch(vz, "data entry", "data analysis, forklift", 0))

	// No shared term is never a match, whatever the threshold.
	assert.False(t, SkillMatch(vz, "typing", "forklift", 0))
}
