package ml

import (
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/service"
)

// Scoring strategies.
const (
	StrategyRules      = "rules"
	StrategyClassifier = "classifier"
	StrategyFallback   = "fallback"
)

// NewScorer builds the scorer for a strategy. The classifier strategies use
// FlaggingRuleModel; fallback puts the rule engine behind it.
func NewScorer(strategy string, logger *slog.Logger) (service.Scorer, error) {
	switch strategy {
	case StrategyRules:
		return service.NewRuleScorer(), nil
	case StrategyClassifier, StrategyFallback:
		classifier, err := service.NewClassifierScorer(NewFlaggingRuleModel(logger))
		if err != nil {
			return nil, err
		}
		if strategy == StrategyClassifier {
			return classifier, nil
		}
		return service.NewFallbackScorer(classifier, service.NewRuleScorer(), logger), nil
	default:
		return nil, &model.ConfigurationError{
			Component: "scorer",
			Err:       fmt.Errorf("unknown strategy %q", strategy),
		}
	}
}
