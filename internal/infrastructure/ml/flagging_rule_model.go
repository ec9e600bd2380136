package ml

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/service"
)

// FlaggingRuleThreshold is the transfer amount above which the PaySim
// dataset sets isFlaggedFraud.
const FlaggingRuleThreshold = 200000

// FlaggingRuleModel implements port.Classifier with the dataset's own
// flagging rule. It stands in for a trained model: any TRANSFER above
// FlaggingRuleThreshold is class 1, everything else class 0.
type FlaggingRuleModel struct {
	logger *slog.Logger
}

// NewFlaggingRuleModel creates the stand-in classifier.
func NewFlaggingRuleModel(logger *slog.Logger) *FlaggingRuleModel {
	return &FlaggingRuleModel{logger: logger}
}

// Features returns the column order the model expects.
func (m *FlaggingRuleModel) Features() []string {
	return service.DefaultFeatures
}

// Predict classifies one feature vector ordered as Features().
func (m *FlaggingRuleModel) Predict(ctx context.Context, features []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(features) != len(service.DefaultFeatures) {
		return 0, fmt.Errorf("ml: got %d features, want %d", len(features), len(service.DefaultFeatures))
	}

	m.logger.Debug("flagging rule prediction requested",
		slog.Int("feature_count", len(features)),
	)

	typ := features[1]
	amount := features[2]
	if typ == service.EncodeType(model.TypeTransfer) && amount > FlaggingRuleThreshold {
		return 1, nil
	}
	return 0, nil
}
