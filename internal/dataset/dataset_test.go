package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "food_data.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileSource_Records(t *testing.T) {
	path := writeDataset(t, `[
		{"food_item": "Almonds", "condition": "Diabetes", "recommendation": "Good",
		 "explanation": "Low glycemic index.", "biomarkers": "Blood glucose"},
		{"food_item": "White Rice", "condition": "Diabetes", "recommendation": "Bad"}
	]`)

	records, err := NewFileSource(path).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Almonds", records[0].FoodItem)
	assert.Equal(t, "Blood glucose", records[0].Biomarkers)
	assert.Empty(t, records[1].Explanation)
}

func TestFileSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source *FileSource
		check  func(t *testing.T, err error)
	}{
		{
			name:   "empty path",
			source: NewFileSource(""),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyPath)
			},
		},
		{
			name:   "missing file",
			source: NewFileSource(filepath.Join(t.TempDir(), "nope.json")),
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, os.ErrNotExist))
			},
		},
		{
			name:   "malformed json",
			source: NewFileSource(writeDataset(t, `{"food_item":`)),
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "decode dataset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := tt.source.Records(context.Background())
			require.Error(t, err)
			assert.Nil(t, records)
			tt.check(t, err)
		})
	}
}

func TestRecord_Normalized(t *testing.T) {
	r := Record{
		FoodItem:       "  Peanut Butter ",
		Condition:      "High Blood Pressure",
		Recommendation: "GOOD",
		Explanation:    " Rich in Fat. ",
	}.Normalized()

	assert.Equal(t, "peanut butter", r.FoodItem)
	assert.Equal(t, "high blood pressure", r.Condition)
	assert.Equal(t, "good", r.Recommendation)
	assert.Equal(t, "Rich in Fat.", r.Explanation)
}

func TestStaticSource_ReturnsCopy(t *testing.T) {
	src := StaticSource{{FoodItem: "salmon", Condition: "gout"}}

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	records[0].FoodItem = "changed"

	assert.Equal(t, "salmon", src[0].FoodItem)
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingSource) Records(context.Context) ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []Record{{FoodItem: "oats", Condition: "diabetes", Recommendation: "good"}}, nil
}

func TestCachedSource(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLen int
	}{
		{name: "records", wantLen: 1},
		{name: "error", err: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{err: tt.err}
			cached := NewCachedSource(src)

			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					records, err := cached.Records(context.Background())
					if tt.err != nil {
						assert.ErrorIs(t, err, tt.err)
						return
					}
					assert.NoError(t, err)
					assert.Len(t, records, tt.wantLen)
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, src.calls)
		})
	}
}
