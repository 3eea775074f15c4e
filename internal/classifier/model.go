/*
Package classifier decides whether a food suits a health condition. Known pairs are
answered from the dataset; unseen pairs get a label from a tf-idf nearest-centroid model
trained on the same records.
*/
package classifier

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"

	"FoodAdvisor_V0.1/internal/dataset"
)

var (
	ErrNoTrainingData = errors.New("no usable training records")
	ErrModelNotLoaded = errors.New("expert model is not loaded")
)

// Result is the verdict for one food/condition pair.
type Result struct {
	Label       string `json:"label"`
	Explanation string `json:"explanation,omitempty"`
	Impacts     string `json:"impacts,omitempty"`
}

// HasDetails reports whether an explanation is attached to the verdict.
func (r Result) HasDetails() bool {
	return r.Explanation != ""
}

type pairKey struct {
	food, condition string
}

type vector map[string]float64

// Model is immutable after Train and safe for concurrent use.
type Model struct {
	details   map[pairKey]Result
	idf       map[string]float64
	centroids map[string]vector
	labels    []string
	fallback  string
}

// Train builds a model from dataset records. Records missing a food, a condition or a
// recommendation are skipped. When a pair appears more than once the first record wins.
func Train(records []dataset.Record) (*Model, error) {
	m := &Model{
		details:   make(map[pairKey]Result),
		idf:       make(map[string]float64),
		centroids: make(map[string]vector),
	}

	type doc struct {
		label  string
		tokens []string
	}
	var docs []doc
	labelCounts := make(map[string]int)
	docFreq := make(map[string]int)

	for _, raw := range records {
		r := raw.Normalized()
		if r.FoodItem == "" || r.Condition == "" || r.Recommendation == "" {
			continue
		}

		key := pairKey{r.FoodItem, r.Condition}
		if _, seen := m.details[key]; !seen {
			m.details[key] = Result{Label: r.Recommendation, Explanation: r.Explanation, Impacts: r.Biomarkers}
		}

		tokens := tokenize(r.FoodItem + " " + r.Condition)
		docs = append(docs, doc{label: r.Recommendation, tokens: tokens})
		labelCounts[r.Recommendation]++
		for term := range termCounts(tokens) {
			docFreq[term]++
		}
	}

	if len(docs) == 0 {
		return nil, ErrNoTrainingData
	}

	// Smoothed idf: ln((1+n)/(1+df)) + 1.
	n := float64(len(docs))
	for term, df := range docFreq {
		m.idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}

	for _, d := range docs {
		c, ok := m.centroids[d.label]
		if !ok {
			c = make(vector)
			m.centroids[d.label] = c
		}
		for term, w := range m.weigh(d.tokens) {
			c[term] += w
		}
	}
	for _, c := range m.centroids {
		normalize(c)
	}

	for label := range labelCounts {
		m.labels = append(m.labels, label)
	}
	sort.Strings(m.labels)

	for _, label := range m.labels {
		if m.fallback == "" || labelCounts[label] > labelCounts[m.fallback] {
			m.fallback = label
		}
	}

	return m, nil
}

// Labels returns the known recommendation labels, sorted.
func (m *Model) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Pairs reports how many distinct food/condition pairs carry stored details.
func (m *Model) Pairs() int {
	return len(m.details)
}

// Classify returns the stored verdict for a known pair, or a predicted label without
// details for an unseen one.
func (m *Model) Classify(ctx context.Context, food, condition string) (Result, error) {
	if m == nil {
		return Result{}, ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	food, condition = dataset.Normalize(food), dataset.Normalize(condition)
	if r, ok := m.details[pairKey{food, condition}]; ok {
		return r, nil
	}
	return Result{Label: m.Predict(food + " " + condition)}, nil
}

// Predict returns the label whose centroid is closest to the text. Ties go to the
// lexicographically first label; text with no known term gets the majority label.
func (m *Model) Predict(text string) string {
	q := m.weigh(tokenize(text))
	if len(q) == 0 {
		return m.fallback
	}
	normalize(q)

	best, bestScore := "", -1.0
	for _, label := range m.labels {
		score := dot(q, m.centroids[label])
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	if bestScore <= 0 {
		return m.fallback
	}
	return best
}

// weigh turns tokens into a tf-idf vector. Terms never seen in training are dropped.
func (m *Model) weigh(tokens []string) vector {
	v := make(vector)
	for term, tf := range termCounts(tokens) {
		if idf, ok := m.idf[term]; ok {
			v[term] = float64(tf) * idf
		}
	}
	normalize(v)
	return v
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

func normalize(v vector) {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for term := range v {
		v[term] /= norm
	}
}

func dot(a, b vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}
