package chatbot

import (
	"testing"

	"FoodAdvisor_V0.1/internal/dataset"
	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	v := testVocabulary()

	tests := []struct {
		name      string
		utterance string
		want      Extraction
	}{
		{
			name:      "food only",
			utterance: "is salmon good for me?",
			want:      Extraction{Food: "salmon"},
		},
		{
			name:      "condition only, mixed case and padding",
			utterance: "   I have HIGH Blood Pressure  ",
			want:      Extraction{Condition: "high blood pressure"},
		},
		{
			name:      "both",
			utterance: "can I eat almonds if I have diabetes",
			want:      Extraction{Food: "almonds", Condition: "diabetes"},
		},
		{
			name:      "substring of a longer phrase",
			utterance: "what about peanut butter?",
			want:      Extraction{Food: "peanut"},
		},
		{
			name:      "unknown vocabulary",
			utterance: "is kryptonite good for me?",
			want:      Extraction{},
		},
		{
			name:      "empty utterance",
			utterance: "",
			want:      Extraction{},
		},
		{
			name:      "punctuation only",
			utterance: "?!...",
			want:      Extraction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.utterance, v)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Empty(), got.Empty())
		})
	}
}

func TestExtract_LongestMatchWins(t *testing.T) {
	v := BuildVocabulary([]dataset.Record{
		{FoodItem: "peanut", Condition: "pressure"},
		{FoodItem: "peanut butter", Condition: "high blood pressure"},
	})

	got := Extract("is peanut butter ok with high blood pressure?", v)

	assert.Equal(t, Extraction{Food: "peanut butter", Condition: "high blood pressure"}, got)
}

func TestExtract_EqualLengthResolvesLexicographically(t *testing.T) {
	v := BuildVocabulary([]dataset.Record{
		{FoodItem: "pear", Condition: "gout"},
		{FoodItem: "kiwi", Condition: "gout"},
	})

	for i := 0; i < 20; i++ {
		assert.Equal(t, "kiwi", Extract("pear or kiwi?", v).Food)
	}
}

func TestExtract_AtMostOnePerKind(t *testing.T) {
	v := testVocabulary()

	got := Extract("rice, almonds and salmon for gout or diabetes", v)

	assert.Contains(t, v.Foods(), got.Food)
	assert.Contains(t, v.Conditions(), got.Condition)
}

func TestExtract_NilVocabulary(t *testing.T) {
	assert.Equal(t, Extraction{}, Extract("salmon and diabetes", nil))
}
