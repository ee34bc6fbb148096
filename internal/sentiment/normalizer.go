package sentiment

import (
	"context"

	"go.uber.org/zap"
)

// Policy controls how a label plus confidence is folded into one signed
// score. Neutral classifications pass through a dead zone: only strong
// or weak confidence nudges the score off zero, and the nudge direction
// inverts at the low end because an unconfident "neutral" hints at
// hidden polarity.
type Policy struct {
	NeutralHigh float64
	NeutralLow  float64
	Bias        float64
}

// DefaultPolicy matches the shipped tuning.
func DefaultPolicy() Policy {
	return Policy{NeutralHigh: 0.7, NeutralLow: 0.3, Bias: 0.2}
}

// Normalizer turns raw text into a score in [-1, 1]. Classifier failures
// degrade to a zero score so a chat turn never fails on sentiment alone.
type Normalizer struct {
	classifier Classifier
	policy     Policy
	logger     *zap.Logger
}

// NewNormalizer builds a normalizer over the given classifier.
func NewNormalizer(classifier Classifier, policy Policy, logger *zap.Logger) *Normalizer {
	return &Normalizer{classifier: classifier, policy: policy, logger: logger}
}

// Score classifies the text and returns the normalized score.
func (n *Normalizer) Score(ctx context.Context, text string) float64 {
	cls, err := n.classifier.Classify(ctx, text)
	if err != nil {
		n.logger.Warn("sentiment classification failed", zap.Error(err))
		return 0
	}
	return n.policy.Apply(cls)
}

// Apply folds a classification into a signed score.
func (p Policy) Apply(cls *Classification) float64 {
	switch cls.Label {
	case "POSITIVE":
		return cls.Confidence
	case "NEGATIVE":
		return -cls.Confidence
	case "NEUTRAL":
		switch {
		case cls.Confidence > p.NeutralHigh:
			return p.Bias
		case cls.Confidence < p.NeutralLow:
			return -p.Bias
		default:
			return 0
		}
	default:
		return 0
	}
}
