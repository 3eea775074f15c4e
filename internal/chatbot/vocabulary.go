/*
Package chatbot implements the slot-filling conversation that collects a food and a health
condition from free text before handing the pair to the classifier.
*/
package chatbot

import (
	"context"
	"sort"

	"FoodAdvisor_V0.1/internal/dataset"
	"github.com/rs/zerolog/log"
)

// Vocabulary holds the known food and condition names. It is read-only once built and
// safe to share between any number of sessions.
type Vocabulary struct {
	// foods and conditions are kept in match order: longest first, then lexicographic.
	foods      []string
	conditions []string
}

// BuildVocabulary collects the distinct, lowercased food and condition names of the records.
func BuildVocabulary(records []dataset.Record) *Vocabulary {
	foods := make(map[string]struct{}, len(records))
	conditions := make(map[string]struct{}, len(records))

	for _, r := range records {
		if food := dataset.Normalize(r.FoodItem); food != "" {
			foods[food] = struct{}{}
		}
		if cond := dataset.Normalize(r.Condition); cond != "" {
			conditions[cond] = struct{}{}
		}
	}

	return &Vocabulary{
		foods:      matchOrder(foods),
		conditions: matchOrder(conditions),
	}
}

// LoadVocabulary reads the source and builds the vocabulary. An unreadable source is not
// fatal: the vocabulary is empty and extraction never matches.
func LoadVocabulary(ctx context.Context, src dataset.Source) *Vocabulary {
	records, err := src.Records(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Vocabulary dataset unavailable, foods and conditions will not be recognized")
		return BuildVocabulary(nil)
	}

	v := BuildVocabulary(records)
	foods, conditions := v.Len()
	log.Info().Int("foods", foods).Int("conditions", conditions).Msg("Chatbot loaded known foods and conditions")
	return v
}

// Foods returns a copy of the known food names.
func (v *Vocabulary) Foods() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.foods...)
}

// Conditions returns a copy of the known condition names.
func (v *Vocabulary) Conditions() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.conditions...)
}

// Len reports the number of known foods and conditions.
func (v *Vocabulary) Len() (foods, conditions int) {
	if v == nil {
		return 0, 0
	}
	return len(v.foods), len(v.conditions)
}

func matchOrder(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for term := range set {
		out = append(out, term)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
