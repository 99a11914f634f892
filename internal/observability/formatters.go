// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/hanapwede/job-recommender/internal/ranking"
	"github.com/hanapwede/job-recommender/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func shorten(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// PrintCandidate outputs the profile the recommendations are computed for.
func (p *Printer) PrintCandidate(profile *types.CandidateProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User:        %d\n", profile.UserID))
	sb.WriteString(fmt.Sprintf("Disability:  %s\n", orNone(profile.DisabilityType)))
	sb.WriteString(fmt.Sprintf("Skills:      %s\n", shorten(orNone(profile.Skills), 40)))
	sb.WriteString(fmt.Sprintf("Preferences: %s", shorten(orNone(strings.Join(profile.Preferences, ", ")), 40)))

	p.printBox("CANDIDATE PROFILE", sb.String())
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

// PrintRecommendations outputs the top ranked jobs with scores.
func (p *Printer) PrintRecommendations(result *ranking.Result) {
	if result == nil {
		return
	}

	if len(result.Recommendations) == 0 {
		p.printBox("RECOMMENDED JOBS", fmt.Sprintf("%s\n(%d jobs evaluated)",
			types.NoRecommendationsMessage, result.Evaluated))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Evaluated %d jobs, recommending %d:\n\n",
		result.Evaluated, len(result.Recommendations)))

	count := min(len(result.Recommendations), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := result.Recommendations[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (post %d)\n", i+1, shorten(rec.JobTitle, 36), rec.PostID))
		sb.WriteString(fmt.Sprintf("    Score: %.4f", rec.SimilarityScore))
		if rec.CompanyName != "" {
			sb.WriteString(fmt.Sprintf("  %s", shorten(rec.CompanyName, 25)))
		}
		sb.WriteString("\n")
		if rec.DisabilityTags != "" {
			sb.WriteString(fmt.Sprintf("    Accessible: %s\n", shorten(rec.DisabilityTags, 38)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(result.Recommendations) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more jobs", len(result.Recommendations)-maxItemsToShow))
	}

	p.printBox("RECOMMENDED JOBS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDebugInfo outputs the verdict for every evaluated job.
func (p *Printer) PrintDebugInfo(entries []types.DebugEntry) {
	if len(entries) == 0 {
		return
	}

	var sb strings.Builder
	for i, e := range entries {
		mark := "✗"
		if e.MatchStatus == types.MatchStatusIncluded {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %d  %s\n", mark, e.PostID, shorten(e.JobTitle, 40)))
		sb.WriteString(fmt.Sprintf("  %.4f  %s  [%s %s %s]",
			e.SimilarityScore, e.Reason,
			flag("disability", e.DisabilityMatch),
			flag("skill", e.SkillMatch),
			flag("pref", e.PreferenceMatch)))
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ELIGIBILITY TRACE", sb.String())
}

func flag(name string, ok bool) string {
	if ok {
		return "+" + name
	}
	return "-" + name
}

// PrintMetrics outputs offline evaluation metrics for one user.
func (p *Printer) PrintMetrics(userID int64, m ranking.Metrics) {
	content := fmt.Sprintf("Precision: %.4f\nRecall:    %.4f\nF1 score:  %.4f", m.Precision, m.Recall, m.F1)
	p.printBox(fmt.Sprintf("EVALUATION (user %d)", userID), content)
}
