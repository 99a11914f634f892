package ranking

import "errors"

var (
	// ErrCandidateNotFound means the user or its employee profile does not exist.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrEmptyCorpus means there are no job postings to rank against.
	ErrEmptyCorpus = errors.New("no jobs found")

	// ErrMalformedInput means the request is missing a usable user id or has
	// out-of-range options.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInsufficientData means an evaluation had nothing to compare.
	ErrInsufficientData = errors.New("insufficient job descriptions for comparison")
)
