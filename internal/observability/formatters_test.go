package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/types"
)

func TestPrintCandidate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCandidate(&types.CandidateProfile{
		UserID:         19,
		Preferences:    []string{"finance", "remote"},
		DisabilityType: "Visual Impairment",
	})
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE PROFILE")
	assert.Contains(t, output, "19")
	assert.Contains(t, output, "Visual Impairment")
	assert.Contains(t, output, "finance, remote")
	assert.Contains(t, output, "(none)")
}

func TestPrintCandidate_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCandidate(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecommendations(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecommendations(&ranking.Result{
		Evaluated: 2,
		Recommendations: []types.RecommendedJob{
			{PostID: 1, JobTitle: "Accounting Clerk", CompanyName: "Ledger Co", DisabilityTags: "Visual Impairment", SimilarityScore: 0.4321},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "RECOMMENDED JOBS")
	assert.Contains(t, output, "Evaluated 2 jobs, recommending 1")
	assert.Contains(t, output, "#1  Accounting Clerk (post 1)")
	assert.Contains(t, output, "0.4321")
	assert.Contains(t, output, "Ledger Co")
}

func TestPrintRecommendations_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	recs := make([]types.RecommendedJob, 8)
	for i := range recs {
		recs[i] = types.RecommendedJob{PostID: int64(i + 1), JobTitle: fmt.Sprintf("Job %d", i+1)}
	}
	p.PrintRecommendations(&ranking.Result{Evaluated: 8, Recommendations: recs})
	output := buf.String()

	assert.Contains(t, output, "#5  Job 5")
	assert.NotContains(t, output, "#6")
	assert.Contains(t, output, "... and 3 more jobs")
}

func TestPrintRecommendations_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecommendations(&ranking.Result{Evaluated: 3, NoEligibleCandidates: true})
	output := buf.String()

	assert.Contains(t, output, types.NoRecommendationsMessage)
	assert.Contains(t, output, "3 jobs evaluated")
}

func TestPrintDebugInfo(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDebugInfo([]types.DebugEntry{
		{PostID: 1, JobTitle: "Accounting Clerk", MatchStatus: types.MatchStatusIncluded, Reason: ranking.ReasonIncluded,
			DisabilityMatch: true, SkillMatch: true, PreferenceMatch: true, SimilarityScore: 0.5},
		{PostID: 2, JobTitle: "Warehouse Packer", MatchStatus: types.MatchStatusExcluded, Reason: ranking.ReasonNoDisabilityMatch},
	})
	output := buf.String()

	assert.Contains(t, output, "ELIGIBILITY TRACE")
	assert.Contains(t, output, "✓ 1  Accounting Clerk")
	assert.Contains(t, output, "✗ 2  Warehouse Packer")
	assert.Contains(t, output, "No disability match")
	assert.Contains(t, output, "-disability")
}

func TestPrintDebugInfo_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDebugInfo(nil)
	assert.Empty(t, buf.String())
}

func TestPrintMetrics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMetrics(19, ranking.Metrics{Precision: 1, Recall: 0.5, F1: 2.0 / 3.0})
	output := buf.String()

	assert.Contains(t, output, "EVALUATION (user 19)")
	assert.Contains(t, output, "Precision: 1.0000")
	assert.Contains(t, output, "F1 score:  0.6667")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[3], "...")
}
