// Package schemas embeds the JSON Schemas that describe the recommender's
// input and output files.
package schemas

import "embed"

// Schema file names.
const (
	Corpus          = "corpus.schema.json"
	Candidate       = "candidate.schema.json"
	Candidates      = "candidates.schema.json"
	Recommendations = "recommendations.schema.json"
)

// All lists every embedded schema.
var All = []string{Corpus, Candidate, Candidates, Recommendations}

// Files holds the schema documents.
//
//go:embed *.schema.json
var Files embed.FS
