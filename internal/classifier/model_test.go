package classifier

import (
	"context"
	"errors"
	"testing"

	"FoodAdvisor_V0.1/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []dataset.Record {
	return []dataset.Record{
		{FoodItem: "Almonds", Condition: "Diabetes", Recommendation: "Good",
			Explanation: "Low glycemic index and rich in fiber.", Biomarkers: "Blood glucose, HbA1c"},
		{FoodItem: "White Rice", Condition: "Diabetes", Recommendation: "Bad",
			Explanation: "High glycemic load.", Biomarkers: "Blood glucose"},
		{FoodItem: "Salmon", Condition: "High Blood Pressure", Recommendation: "Good",
			Explanation: "Omega-3 fatty acids.", Biomarkers: "Blood pressure"},
		{FoodItem: "Pickles", Condition: "High Blood Pressure", Recommendation: "Bad",
			Explanation: "High sodium.", Biomarkers: "Blood pressure, sodium"},
		{FoodItem: "Sugar Soda", Condition: "Diabetes", Recommendation: "Bad"},
		{FoodItem: "Salted Chips", Condition: "High Blood Pressure", Recommendation: "Bad"},
	}
}

func TestTrain_Errors(t *testing.T) {
	_, err := Train(nil)
	assert.ErrorIs(t, err, ErrNoTrainingData)

	_, err = Train([]dataset.Record{{FoodItem: "almonds", Condition: "diabetes"}})
	assert.ErrorIs(t, err, ErrNoTrainingData, "records without a label are skipped")
}

func TestModel_ClassifyKnownPair(t *testing.T) {
	m, err := Train(testRecords())
	require.NoError(t, err)

	got, err := m.Classify(context.Background(), " ALMONDS ", "diabetes")
	require.NoError(t, err)

	assert.Equal(t, Result{
		Label:       "good",
		Explanation: "Low glycemic index and rich in fiber.",
		Impacts:     "Blood glucose, HbA1c",
	}, got)
	assert.True(t, got.HasDetails())
}

func TestModel_ClassifyUnseenPair(t *testing.T) {
	m, err := Train(testRecords())
	require.NoError(t, err)

	got, err := m.Classify(context.Background(), "salmon", "diabetes")
	require.NoError(t, err)

	assert.Contains(t, m.Labels(), got.Label)
	assert.False(t, got.HasDetails())
}

func TestModel_Predict(t *testing.T) {
	m, err := Train(testRecords())
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "shares only bad terms", text: "salted soda", want: "bad"},
		{name: "shares only good terms", text: "almonds salmon", want: "good"},
		{name: "no known term falls back to majority", text: "kryptonite", want: "bad"},
		{name: "empty text falls back to majority", text: "", want: "bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Predict(tt.text))
		})
	}
}

func TestModel_FirstDuplicatePairWins(t *testing.T) {
	m, err := Train([]dataset.Record{
		{FoodItem: "oats", Condition: "diabetes", Recommendation: "good", Explanation: "first"},
		{FoodItem: "Oats", Condition: "Diabetes", Recommendation: "bad", Explanation: "second"},
	})
	require.NoError(t, err)

	got, err := m.Classify(context.Background(), "oats", "diabetes")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Explanation)
	assert.Equal(t, 1, m.Pairs())
	assert.Equal(t, []string{"bad", "good"}, m.Labels())
}

func TestModel_NilAndCancelled(t *testing.T) {
	var m *Model
	_, err := m.Classify(context.Background(), "oats", "diabetes")
	assert.ErrorIs(t, err, ErrModelNotLoaded)

	m, err = Train(testRecords())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Classify(ctx, "oats", "diabetes")
	assert.True(t, errors.Is(err, context.Canceled))
}
