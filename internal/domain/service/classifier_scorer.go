package service

import (
	"context"
	"fmt"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/port"
)

// ClassifierScorer adapts a trained binary classifier to the Scorer contract.
// The classifier exposes no probability, so confidence is 100 when flagged
// and 0 otherwise.
type ClassifierScorer struct {
	model   port.Classifier
	columns []string
}

// NewClassifierScorer creates a ClassifierScorer. It fails with a
// ConfigurationError when no model is loaded.
func NewClassifierScorer(classifier port.Classifier) (*ClassifierScorer, error) {
	if classifier == nil {
		return nil, &model.ConfigurationError{Component: "classifier scorer", Err: model.ErrClassifierUnavailable}
	}

	columns := classifier.Features()
	if len(columns) == 0 {
		columns = DefaultFeatures
	}

	return &ClassifierScorer{
		model:   classifier,
		columns: columns,
	}, nil
}

// Score encodes the record, runs the classifier and maps its 0/1 output.
func (s *ClassifierScorer) Score(ctx context.Context, r model.TransactionRecord) (model.Verdict, error) {
	prediction, err := s.model.Predict(ctx, FeatureVector(r, s.columns))
	if err != nil {
		return model.Verdict{}, fmt.Errorf("classifier prediction: %w", err)
	}

	switch prediction {
	case 0:
		return model.Verdict{Flagged: false, Confidence: 0, Signals: []string{}}, nil
	case 1:
		return model.Verdict{Flagged: true, Confidence: MaxConfidence, Signals: []string{"classifier"}}, nil
	default:
		return model.Verdict{}, fmt.Errorf("classifier returned %d, want 0 or 1", prediction)
	}
}
