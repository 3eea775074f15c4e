package chatbot

import (
	"strings"

	"FoodAdvisor_V0.1/internal/dataset"
)

// Extraction is what one utterance yielded. An empty field means nothing was found.
type Extraction struct {
	Food      string
	Condition string
}

// Empty reports whether neither slot was found.
func (e Extraction) Empty() bool {
	return e.Food == "" && e.Condition == ""
}

// Extract spots at most one known food and one known condition inside the utterance.
//
// Matching is plain substring search on the lowercased, trimmed text, so "peanut butter"
// matches a vocabulary entry "peanut" when only "peanut" is known. When several entries of
// the same kind occur, the longest wins and equal lengths resolve lexicographically.
func Extract(utterance string, v *Vocabulary) Extraction {
	if v == nil {
		return Extraction{}
	}

	text := dataset.Normalize(utterance)
	if text == "" {
		return Extraction{}
	}

	return Extraction{
		Food:      firstMatch(text, v.foods),
		Condition: firstMatch(text, v.conditions),
	}
}

func firstMatch(text string, terms []string) string {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return term
		}
	}
	return ""
}
