// Package model loads regression artifacts and runs premium predictions.
package model

import (
	"context"
	"fmt"

	"github.com/kartoza/premium-estimator/internal/premium"
)

// Predictor turns an encoded record into an annual premium. Implementations
// are read-only after construction and safe for concurrent use.
type Predictor interface {
	// Strategy is the encoding the predictor was built for
	Strategy() premium.Strategy

	// Predict runs inference; failures wrap premium.ErrModel
	Predict(ctx context.Context, rec premium.EncodedRecord) (float64, error)
}

// OrdinalModel is a linear model over the ordinal feature vector
type OrdinalModel struct {
	intercept    float64
	coefficients []float64
}

// Strategy implements Predictor
func (m *OrdinalModel) Strategy() premium.Strategy {
	return premium.StrategyOrdinal
}

// Predict implements Predictor
func (m *OrdinalModel) Predict(ctx context.Context, rec premium.EncodedRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", premium.ErrModel, err)
	}
	if rec.Strategy != premium.StrategyOrdinal {
		return 0, fmt.Errorf("%w: ordinal model received %s record", premium.ErrModel, rec.Strategy)
	}
	if len(rec.Vector) != len(m.coefficients) {
		return 0, fmt.Errorf("%w: expected %d features, got %d",
			premium.ErrModel, len(m.coefficients), len(rec.Vector))
	}

	y := m.intercept
	for i, x := range rec.Vector {
		y += m.coefficients[i] * x
	}
	return y, nil
}

// LabeledModel is a linear model that one-hot encodes categorical columns
// itself, the way a fitted preprocessing pipeline would
type LabeledModel struct {
	intercept   float64
	numeric     map[string]float64
	categorical map[string]map[string]float64
}

// Strategy implements Predictor
func (m *LabeledModel) Strategy() premium.Strategy {
	return premium.StrategyLabeled
}

// Predict implements Predictor
func (m *LabeledModel) Predict(ctx context.Context, rec premium.EncodedRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", premium.ErrModel, err)
	}
	if rec.Strategy != premium.StrategyLabeled {
		return 0, fmt.Errorf("%w: labeled model received %s record", premium.ErrModel, rec.Strategy)
	}

	y := m.intercept
	for _, name := range numericFeatures {
		x, ok := rec.Row[name].(float64)
		if !ok {
			return 0, fmt.Errorf("%w: column %s missing or not numeric", premium.ErrModel, name)
		}
		y += m.numeric[name] * x
	}
	for _, name := range categoricalFeatures {
		level, ok := rec.Row[name].(string)
		if !ok {
			return 0, fmt.Errorf("%w: column %s missing or not categorical", premium.ErrModel, name)
		}
		w, ok := m.categorical[name][level]
		if !ok {
			return 0, fmt.Errorf("%w: unknown category %q in column %s", premium.ErrModel, level, name)
		}
		y += w
	}
	return y, nil
}
