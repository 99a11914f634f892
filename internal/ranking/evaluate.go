package ranking

import (
	"fmt"

	"github.com/hanapwede/job-recommender/internal/textvec"
	"github.com/hanapwede/job-recommender/internal/types"
)

// DefaultRelevanceThreshold is the similarity above which a recommended job is
// considered relevant to a job the candidate applied for.
const DefaultRelevanceThreshold = 0.2

// Metrics are binary classification scores for one evaluated candidate.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// EvaluateRelevance compares recommended job texts against the texts of jobs
// the candidate actually applied for. A recommendation is labelled relevant
// when any ground-truth job is more similar than threshold, and predicted
// relevant when its best match is. Scores with an empty denominator are 1.
func EvaluateRelevance(recommended, groundTruth []string, threshold float64) (Metrics, error) {
	if len(recommended) == 0 || len(groundTruth) == 0 {
		return Metrics{}, ErrInsufficientData
	}

	docs := make([]textvec.Document, 0, len(groundTruth)+len(recommended))
	for _, t := range groundTruth {
		docs = append(docs, textvec.Text(t))
	}
	for _, t := range recommended {
		docs = append(docs, textvec.Text(t))
	}

	_, vectors, err := textvec.NewVectorizer().FitTransform(docs)
	if err != nil {
		return Metrics{}, fmt.Errorf("%w: %v", ErrInsufficientData, err)
	}
	truthVecs := vectors[:len(groundTruth)]
	recVecs := vectors[len(groundTruth):]

	sims := textvec.CosineMatrix(recVecs, truthVecs)
	yTrue := make([]bool, len(sims))
	yPred := make([]bool, len(sims))
	for i, row := range sims {
		best := 0.0
		for _, s := range row {
			if s > threshold {
				yTrue[i] = true
			}
			if s > best {
				best = s
			}
		}
		yPred[i] = best > threshold
	}

	return binaryMetrics(yTrue, yPred), nil
}

// EvaluateJobs is EvaluateRelevance over job postings, using description plus
// required skills as the compared text.
func EvaluateJobs(recommended []types.RecommendedJob, applied []types.JobPosting, threshold float64) (Metrics, error) {
	recTexts := make([]string, 0, len(recommended))
	for _, r := range recommended {
		recTexts = append(recTexts, RelevanceText(&types.JobPosting{
			Description:    r.JobDescription,
			SkillsRequired: r.SkillsRequired,
		}))
	}
	truthTexts := make([]string, 0, len(applied))
	for i := range applied {
		truthTexts = append(truthTexts, RelevanceText(&applied[i]))
	}
	return EvaluateRelevance(recTexts, truthTexts, threshold)
}

func binaryMetrics(yTrue, yPred []bool) Metrics {
	var tp, fp, fn int
	for i := range yTrue {
		switch {
		case yTrue[i] && yPred[i]:
			tp++
		case !yTrue[i] && yPred[i]:
			fp++
		case yTrue[i] && !yPred[i]:
			fn++
		}
	}
	return Metrics{
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
		F1:        ratio(2*tp, 2*tp+fp+fn),
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 1
	}
	return float64(num) / float64(den)
}
