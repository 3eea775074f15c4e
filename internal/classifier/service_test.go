package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExplainer struct {
	calls       int
	explanation string
	impacts     string
	err         error
}

func (f *fakeExplainer) Explain(_ context.Context, _, _, _ string) (string, string, error) {
	f.calls++
	return f.explanation, f.impacts, f.err
}

func TestService_NotLoaded(t *testing.T) {
	svc := NewService(nil, nil)

	assert.False(t, svc.Ready())
	_, err := svc.Classify(context.Background(), "almonds", "diabetes")
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestService_Classify(t *testing.T) {
	model, err := Train(testRecords())
	require.NoError(t, err)

	tests := []struct {
		name      string
		food      string
		explainer *fakeExplainer
		want      Result
		calls     int
	}{
		{
			name:      "stored details skip the explainer",
			food:      "almonds",
			explainer: &fakeExplainer{explanation: "unused"},
			want: Result{Label: "good", Explanation: "Low glycemic index and rich in fiber.",
				Impacts: "Blood glucose, HbA1c"},
			calls: 0,
		},
		{
			name:      "missing details come from the explainer",
			food:      "sugar soda",
			explainer: &fakeExplainer{explanation: "Spikes glucose.", impacts: "Blood glucose"},
			want:      Result{Label: "bad", Explanation: "Spikes glucose.", Impacts: "Blood glucose"},
			calls:     1,
		},
		{
			name:      "explainer failure keeps the label",
			food:      "sugar soda",
			explainer: &fakeExplainer{err: errors.New("quota exceeded")},
			want:      Result{Label: "bad"},
			calls:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(model, tt.explainer)

			got, err := svc.Classify(context.Background(), tt.food, "diabetes")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.calls, tt.explainer.calls)
		})
	}
}

func TestService_WithoutExplainer(t *testing.T) {
	model, err := Train(testRecords())
	require.NoError(t, err)

	got, err := NewService(model, nil).Classify(context.Background(), "sugar soda", "diabetes")
	require.NoError(t, err)
	assert.Equal(t, Result{Label: "bad"}, got)
}
