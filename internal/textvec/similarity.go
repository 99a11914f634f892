package textvec

// Dot returns the inner product of two sparse vectors.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of a and b clamped to [0, 1].
// A zero vector has similarity 0 with everything.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(Dot(a, b) / (na * nb))
}

// CosineAll returns the cosine similarity between query and each vector.
func CosineAll(query Vector, vectors []Vector) []float64 {
	scores := make([]float64, len(vectors))
	for i, v := range vectors {
		scores[i] = Cosine(query, v)
	}
	return scores
}

// CosineMatrix returns the pairwise similarities rows[i] x cols[j].
func CosineMatrix(rows, cols []Vector) [][]float64 {
	m := make([][]float64, len(rows))
	for i, r := range rows {
		m[i] = CosineAll(r, cols)
	}
	return m
}

// MaxPairwiseCosine fits an independent model over the union of a and b,
// vectorizes each entry and returns the highest similarity between any entry
// of a and any entry of b. It returns 0 when either list is empty or the
// combined entries contain no indexable terms.
func (vz *Vectorizer) MaxPairwiseCosine(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	docs := make([]Document, 0, len(a)+len(b))
	for _, s := range a {
		docs = append(docs, Text(s))
	}
	for _, s := range b {
		docs = append(docs, Text(s))
	}

	_, vectors, err := vz.FitTransform(docs)
	if err != nil {
		return 0
	}

	best := 0.0
	for _, row := range CosineMatrix(vectors[:len(a)], vectors[len(a):]) {
		for _, s := range row {
			if s > best {
				best = s
			}
		}
	}
	return best
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
