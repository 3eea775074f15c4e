package classifier

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Explainer produces an explanation and the affected biomarkers for a verdict the dataset
// has no stored text for.
type Explainer interface {
	Explain(ctx context.Context, food, condition, label string) (explanation, impacts string, err error)
}

// Service is the gateway the chat hands completed pairs to.
type Service struct {
	model     *Model
	explainer Explainer
}

// NewService wires a trained model with an optional explainer. A nil model makes every
// Classify call fail with ErrModelNotLoaded.
func NewService(model *Model, explainer Explainer) *Service {
	return &Service{model: model, explainer: explainer}
}

// Ready reports whether a model is loaded.
func (s *Service) Ready() bool {
	return s != nil && s.model != nil
}

// Model exposes the underlying model for health reporting.
func (s *Service) Model() *Model {
	if s == nil {
		return nil
	}
	return s.model
}

// Classify returns the verdict for the pair. When the verdict carries no details and an
// explainer is configured the explainer fills them in; an explainer failure still returns
// the bare label.
func (s *Service) Classify(ctx context.Context, food, condition string) (Result, error) {
	if !s.Ready() {
		return Result{}, ErrModelNotLoaded
	}

	result, err := s.model.Classify(ctx, food, condition)
	if err != nil {
		return Result{}, err
	}
	if result.HasDetails() || s.explainer == nil {
		return result, nil
	}

	explanation, impacts, err := s.explainer.Explain(ctx, food, condition, result.Label)
	if err != nil {
		log.Warn().Err(err).Str("food", food).Str("condition", condition).Msg("Explainer failed, returning label only")
		return result, nil
	}
	result.Explanation = explanation
	result.Impacts = impacts
	return result, nil
}
