package textvec

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyVocabulary is returned by Fit when the documents yield no terms,
// either because there are no documents or because every document is empty
// or made only of stop words.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no indexable terms")

// Field is one weighted piece of a document. A field with weight w contributes
// its term counts multiplied by w, which for integer weights is identical to
// repeating its text w times.
type Field struct {
	Text   string
	Weight float64
}

// Document is an ordered list of weighted fields.
type Document []Field

// Text returns a single-field document with weight 1.
func Text(s string) Document {
	return Document{{Text: s, Weight: 1}}
}

// Vector is a sparse vector with strictly increasing indices.
type Vector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// IsZero reports whether the vector has no non-zero entries.
func (v Vector) IsZero() bool {
	return len(v.Indices) == 0
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Vectorizer fits TF-IDF models. The zero value uses no stop words; use
// NewVectorizer for the English defaults.
type Vectorizer struct {
	StopWords StopWords
}

// NewVectorizer returns a Vectorizer that removes English stop words.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{StopWords: EnglishStopWords()}
}

// Model is a fitted vocabulary with smoothed inverse document frequencies.
type Model struct {
	stopWords StopWords
	index     map[string]int
	terms     []string
	idf       []float64
}

// Fit builds a model over docs. Terms are indexed in lexicographic order so
// that identical input always produces identical vectors.
func (vz *Vectorizer) Fit(docs []Document) (*Model, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyVocabulary
	}

	df := make(map[string]int)
	for _, doc := range docs {
		for term := range vz.counts(doc) {
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	m := &Model{
		stopWords: vz.StopWords,
		index:     make(map[string]int, len(terms)),
		terms:     terms,
		idf:       make([]float64, len(terms)),
	}
	for i, term := range terms {
		m.index[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return m, nil
}

// FitTransform fits a model over docs and returns it with every document's vector.
func (vz *Vectorizer) FitTransform(docs []Document) (*Model, []Vector, error) {
	m, err := vz.Fit(docs)
	if err != nil {
		return nil, nil, err
	}
	vectors := make([]Vector, len(docs))
	for i, doc := range docs {
		vectors[i] = m.Transform(doc)
	}
	return m, vectors, nil
}

// counts returns weighted term counts for doc, skipping stop words and
// fields with non-positive weight.
func (vz *Vectorizer) counts(doc Document) map[string]float64 {
	return countTerms(doc, vz.StopWords)
}

func countTerms(doc Document, stop StopWords) map[string]float64 {
	counts := make(map[string]float64)
	for _, f := range doc {
		if f.Weight <= 0 {
			continue
		}
		for _, tok := range Tokenize(f.Text) {
			if stop.Contains(tok) {
				continue
			}
			counts[tok] += f.Weight
		}
	}
	return counts
}

// VocabularySize returns the number of indexed terms.
func (m *Model) VocabularySize() int {
	return len(m.terms)
}

// Terms returns the vocabulary in index order.
func (m *Model) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// IDF returns the inverse document frequency of term, or 0 if it is not in
// the vocabulary.
func (m *Model) IDF(term string) float64 {
	if i, ok := m.index[term]; ok {
		return m.idf[i]
	}
	return 0
}

// Transform projects doc into the model's space as an L2-normalized TF-IDF
// vector. Terms outside the vocabulary are dropped.
func (m *Model) Transform(doc Document) Vector {
	counts := countTerms(doc, m.stopWords)

	indices := make([]int, 0, len(counts))
	for term := range counts {
		if i, ok := m.index[term]; ok {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)

	v := Vector{Indices: indices, Values: make([]float64, len(indices))}
	for k, i := range indices {
		v.Values[k] = counts[m.terms[i]] * m.idf[i]
	}

	norm := v.Norm()
	if norm == 0 {
		return Vector{}
	}
	for k := range v.Values {
		v.Values[k] /= norm
	}
	return v
}
