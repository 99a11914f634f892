package ranking

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanapwede/job-recommender/internal/logger"
	"github.com/hanapwede/job-recommender/internal/telemetry"
	"github.com/hanapwede/job-recommender/internal/types"
)

// Scope narrows the job corpus. Nil fields mean no filter.
type Scope struct {
	EmployerID *int64
	JobFairID  *int64
}

// CorpusReader loads the job postings to rank against.
type CorpusReader interface {
	ListJobPostings(ctx context.Context, scope Scope) ([]types.JobPosting, error)
}

// ProfileReader loads a candidate profile. Implementations return an error
// wrapping ErrCandidateNotFound when the user or profile is missing.
type ProfileReader interface {
	GetCandidateProfile(ctx context.Context, userID int64) (*types.CandidateProfile, error)
}

// Request is a single recommendation request.
type Request struct {
	UserID int64
	Scope  Scope
	// TopK overrides the engine default when positive.
	TopK  int
	Debug bool
}

// Engine loads data through its readers and ranks jobs for candidates.
type Engine struct {
	corpus   CorpusReader
	profiles ProfileReader
	opts     Options
	logger   *zap.Logger
	tracer   trace.Tracer
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger.OrNop(l) }
}

// WithTracer sets the tracer used for recommendation spans.
func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// NewEngine creates an engine. The zero Options means DefaultOptions.
func NewEngine(corpus CorpusReader, profiles ProfileReader, opts Options, engineOpts ...EngineOption) (*Engine, error) {
	if corpus == nil || profiles == nil {
		return nil, fmt.Errorf("corpus and profile readers are required")
	}
	opts = opts.orDefault()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		corpus:   corpus,
		profiles: profiles,
		opts:     opts,
		logger:   zap.NewNop(),
		tracer:   telemetry.Tracer(),
	}
	for _, o := range engineOpts {
		o(e)
	}
	return e, nil
}

// Options returns the options the engine ranks with.
func (e *Engine) Options() Options {
	return e.opts
}

// Recommend loads the candidate and the scoped corpus, then ranks.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "ranking.Recommend",
		trace.WithAttributes(attribute.Int64("user.id", req.UserID)))
	defer span.End()

	result, err := e.recommend(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("corpus.size", result.Evaluated),
		attribute.Int("corpus.vocabulary", result.Vocabulary),
		attribute.Int("included.count", len(result.Recommendations)),
	)
	return result, nil
}

func (e *Engine) recommend(ctx context.Context, req Request, span trace.Span) (*Result, error) {
	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id is required", ErrMalformedInput)
	}
	if req.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must be non-negative, got %d", ErrMalformedInput, req.TopK)
	}

	log := e.logger.With(zap.Int64(logger.FieldUserID, req.UserID))

	profile, err := e.profiles.GetCandidateProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: user %d", ErrCandidateNotFound, req.UserID)
	}

	jobs, err := e.corpus.ListJobPostings(ctx, req.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load job postings: %w", err)
	}
	span.SetAttributes(attribute.Int("corpus.size", len(jobs)))
	if len(jobs) == 0 {
		log.Info("no jobs in scope")
		return nil, ErrEmptyCorpus
	}

	opts := e.opts
	opts.Debug = req.Debug
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}

	scoring, err := ScoreJobs(profile, jobs, opts)
	if err != nil {
		return nil, err
	}
	if log.Core().Enabled(zap.DebugLevel) {
		for _, s := range scoring.Jobs {
			log.Debug("job evaluated",
				zap.Int64(logger.FieldPostID, s.Job.PostID),
				zap.Float64("score", s.Score),
				zap.Bool("disability_match", s.Verdict.DisabilityMatch),
				zap.Bool("skill_match", s.Verdict.SkillMatch),
				zap.Bool("preference_match", s.Verdict.PreferenceMatch),
				zap.String("reason", s.Verdict.Reason),
			)
		}
	}

	result := buildResult(scoring, opts)
	log.Info("recommendations computed",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("vocabulary", result.Vocabulary),
		zap.Int("returned", len(result.Recommendations)),
	)
	return result, nil
}
