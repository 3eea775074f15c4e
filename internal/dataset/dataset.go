/*
Package dataset defines the food/condition knowledge records the service is built from
and the sources they can be read from.
*/
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

var ErrEmptyPath = errors.New("dataset path is empty")

// Record is one row of the reference dataset: a food, a condition and the verdict for the pair.
type Record struct {
	FoodItem       string `json:"food_item" db:"food_item"`
	Condition      string `json:"condition" db:"condition"`
	Recommendation string `json:"recommendation" db:"recommendation"`
	Explanation    string `json:"explanation" db:"explanation"`
	Biomarkers     string `json:"biomarkers" db:"biomarkers"`
}

// Normalized returns a copy with the food, condition and label lowercased and trimmed.
// Explanation and biomarkers are free text and are only trimmed.
func (r Record) Normalized() Record {
	return Record{
		FoodItem:       Normalize(r.FoodItem),
		Condition:      Normalize(r.Condition),
		Recommendation: Normalize(r.Recommendation),
		Explanation:    strings.TrimSpace(r.Explanation),
		Biomarkers:     strings.TrimSpace(r.Biomarkers),
	}
}

// Normalize lowercases and trims a vocabulary term or utterance.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Source yields the full set of dataset records.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// FileSource reads records from a JSON array on disk (the food_data.json format).
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Records implements Source.
func (f *FileSource) Records(ctx context.Context) ([]Record, error) {
	if f.Path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", f.Path, err)
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", f.Path, err)
	}
	return records, nil
}

// StaticSource serves a fixed slice of records. Useful for tests and embedded datasets.
type StaticSource []Record

// Records implements Source.
func (s StaticSource) Records(context.Context) ([]Record, error) {
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}

// CachedSource reads its source once and serves that result, error included, to every
// later caller. Startup builds several indexes from one read this way.
type CachedSource struct {
	src     Source
	once    sync.Once
	records []Record
	err     error
}

func NewCachedSource(src Source) *CachedSource {
	return &CachedSource{src: src}
}

// Records implements Source. Callers get their own copy of the slice.
func (c *CachedSource) Records(ctx context.Context) ([]Record, error) {
	c.once.Do(func() {
		c.records, c.err = c.src.Records(ctx)
	})
	if c.err != nil {
		return nil, c.err
	}
	return StaticSource(c.records).Records(ctx)
}
