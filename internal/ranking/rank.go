package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hanapwede/job-recommender/internal/textvec"
	"github.com/hanapwede/job-recommender/internal/types"
)

// ScoredJob is a job with its similarity score and eligibility verdict.
type ScoredJob struct {
	Job     *types.JobPosting
	Score   float64
	Verdict Verdict
}

// Result is the outcome of one recommendation call.
type Result struct {
	Recommendations []types.RecommendedJob
	// DebugInfo covers every evaluated job and is only set in debug mode.
	DebugInfo []types.DebugEntry
	// NoEligibleCandidates is set when the corpus was non-empty but every job
	// failed the eligibility filter.
	NoEligibleCandidates bool
	Evaluated            int
	// Vocabulary is the number of terms indexed from the corpus.
	Vocabulary int
}

// Scoring is the outcome of ScoreJobs.
type Scoring struct {
	Jobs       []ScoredJob // corpus order
	Vocabulary int
}

// Body returns the wire representation of the result: the no-match message,
// the debug envelope, or the bare ranked list.
func (r *Result) Body(debug bool) any {
	if r.NoEligibleCandidates {
		return types.NoRecommendationsResponse{
			Message:   types.NoRecommendationsMessage,
			DebugInfo: r.DebugInfo,
		}
	}
	recs := r.Recommendations
	if recs == nil {
		recs = []types.RecommendedJob{}
	}
	if debug {
		return types.RecommendationsResponse{Recommendations: recs, DebugInfo: r.DebugInfo}
	}
	return recs
}

// ScoreJobs computes similarity and eligibility for every job in corpus order.
func ScoreJobs(profile *types.CandidateProfile, jobs []types.JobPosting, opts Options) (*Scoring, error) {
	if len(jobs) == 0 {
		return nil, ErrEmptyCorpus
	}

	vz := textvec.NewVectorizer()
	docs := make([]textvec.Document, len(jobs))
	for i := range jobs {
		docs[i] = JobDocument(&jobs[i], opts.JobWeights)
	}

	model, vectors, err := vz.FitTransform(docs)
	if err != nil {
		if errors.Is(err, textvec.ErrEmptyVocabulary) {
			return nil, fmt.Errorf("%w: %v", ErrEmptyCorpus, err)
		}
		return nil, fmt.Errorf("failed to vectorize job corpus: %w", err)
	}

	query := model.Transform(QueryDocument(profile, opts.QueryWeights))
	scores := textvec.CosineAll(query, vectors)

	scored := make([]ScoredJob, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		scored[i] = ScoredJob{
			Job:   job,
			Score: scores[i],
			Verdict: Judge(
				DisabilityMatch(profile.DisabilityType, job.DisabilityTags),
				SkillMatch(vz, profile.Skills, job.SkillsRequired, opts.SkillMatchThreshold),
				PreferenceMatch(profile.Preferences, job.Tags),
			),
		}
	}
	return &Scoring{Jobs: scored, Vocabulary: model.VocabularySize()}, nil
}

// RankIncluded keeps included jobs, sorts them by score descending (ties keep
// corpus order) and truncates to topK. topK <= 0 keeps every included job.
func RankIncluded(scored []ScoredJob, topK int) []ScoredJob {
	included := make([]ScoredJob, 0, len(scored))
	for _, s := range scored {
		if s.Verdict.Included {
			included = append(included, s)
		}
	}

	sort.SliceStable(included, func(i, j int) bool {
		return included[i].Score > included[j].Score
	})

	if topK > 0 && len(included) > topK {
		included = included[:topK]
	}
	return included
}

// RecommendFor scores, filters and ranks jobs for an already-loaded profile.
func RecommendFor(profile *types.CandidateProfile, jobs []types.JobPosting, opts Options) (*Result, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: candidate profile is required", ErrMalformedInput)
	}
	opts = opts.orDefault()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	scoring, err := ScoreJobs(profile, jobs, opts)
	if err != nil {
		return nil, err
	}

	return buildResult(scoring, opts), nil
}

func buildResult(scoring *Scoring, opts Options) *Result {
	scored := scoring.Jobs
	ranked := RankIncluded(scored, opts.TopK)
	result := &Result{
		Recommendations:      make([]types.RecommendedJob, 0, len(ranked)),
		NoEligibleCandidates: len(ranked) == 0,
		Evaluated:            len(scored),
		Vocabulary:           scoring.Vocabulary,
	}
	for _, s := range ranked {
		result.Recommendations = append(result.Recommendations, toRecommendedJob(s))
	}

	if opts.Debug {
		result.DebugInfo = make([]types.DebugEntry, 0, len(scored))
		for _, s := range scored {
			result.DebugInfo = append(result.DebugInfo, toDebugEntry(s))
		}
	}
	return result
}

func toRecommendedJob(s ScoredJob) types.RecommendedJob {
	return types.RecommendedJob{
		PostID:          s.Job.PostID,
		JobTitle:        s.Job.Title,
		JobDescription:  s.Job.Description,
		SkillsRequired:  s.Job.SkillsRequired,
		CompanyName:     s.Job.CompanyName,
		Category:        s.Job.Category,
		Location:        s.Job.Location,
		PostedBy:        s.Job.EmployerID,
		Tags:            s.Job.TagsLabel(),
		DisabilityTags:  s.Job.DisabilityTagsLabel(),
		SimilarityScore: s.Score,
	}
}

func toDebugEntry(s ScoredJob) types.DebugEntry {
	status := types.MatchStatusExcluded
	if s.Verdict.Included {
		status = types.MatchStatusIncluded
	}
	return types.DebugEntry{
		PostID:          s.Job.PostID,
		JobTitle:        s.Job.Title,
		MatchStatus:     status,
		Reason:          s.Verdict.Reason,
		SimilarityScore: s.Score,
		DisabilityMatch: s.Verdict.DisabilityMatch,
		SkillMatch:      s.Verdict.SkillMatch,
		PreferenceMatch: s.Verdict.PreferenceMatch,
	}
}
