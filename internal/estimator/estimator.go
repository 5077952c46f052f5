// Package estimator wires the model handle, feature encoding and insight
// derivation into a single request operation.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/kartoza/premium-estimator/internal/model"
	"github.com/kartoza/premium-estimator/internal/premium"
)

// DefaultPredictTimeout bounds a single inference call
const DefaultPredictTimeout = 2 * time.Second

// ModelSource yields the cached predictor; *model.Handle satisfies it
type ModelSource interface {
	Get() (model.Predictor, error)
}

// Estimate is the outcome of one submission
type Estimate struct {
	Input      premium.Input   `json:"-"`
	Prediction float64         `json:"prediction"`
	Insight    premium.Insight `json:"insight"`
}

// Stats are running counters exposed on the info endpoint. Failed
// includes submissions recorded with Reject.
type Stats struct {
	Served int64 `json:"served"`
	Failed int64 `json:"failed"`
}

// Estimator runs the prediction pipeline
type Estimator struct {
	source  ModelSource
	timeout time.Duration
	logger  *slog.Logger

	served atomic.Int64
	failed atomic.Int64
}

// New creates an estimator. A zero timeout uses DefaultPredictTimeout.
func New(source ModelSource, timeout time.Duration, logger *slog.Logger) *Estimator {
	if timeout <= 0 {
		timeout = DefaultPredictTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{
		source:  source,
		timeout: timeout,
		logger:  logger,
	}
}

// Estimate validates in, encodes it for the loaded model, predicts and
// derives the insight. Errors wrap one of the premium error kinds; no
// step is retried.
func (e *Estimator) Estimate(ctx context.Context, in premium.Input) (*Estimate, error) {
	est, err := e.estimate(ctx, in)
	if err != nil {
		e.failed.Add(1)
		return nil, err
	}
	e.served.Add(1)
	return est, nil
}

func (e *Estimator) estimate(ctx context.Context, in premium.Input) (*Estimate, error) {
	predictor, err := e.source.Get()
	if err != nil {
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	rec, err := premium.Encode(in, predictor.Strategy())
	if err != nil {
		return nil, err
	}

	prediction, err := e.predict(ctx, predictor, rec)
	if err != nil {
		return nil, err
	}

	if math.IsNaN(prediction) || math.IsInf(prediction, 0) || prediction < 0 {
		e.logger.Warn("prediction anomaly",
			slog.Float64("prediction", prediction),
			slog.String("strategy", predictor.Strategy().String()),
		)
		return nil, fmt.Errorf("%w: model returned %v", premium.ErrPredictionAnomaly, prediction)
	}

	e.logger.Debug("prediction complete",
		slog.Float64("prediction", prediction),
		slog.String("strategy", predictor.Strategy().String()),
	)

	return &Estimate{
		Input:      in,
		Prediction: prediction,
		Insight:    premium.DeriveInsight(prediction, in),
	}, nil
}

func (e *Estimator) predict(ctx context.Context, p model.Predictor, rec premium.EncodedRecord) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		value float64
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := p.Predict(ctx, rec)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, premium.ErrModel) {
				return 0, r.err
			}
			return 0, fmt.Errorf("%w: %w", premium.ErrModel, r.err)
		}
		return r.value, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: prediction did not finish: %w", premium.ErrModel, ctx.Err())
	}
}

// Reject counts a submission that failed before it could be estimated,
// such as an unreadable form
func (e *Estimator) Reject() {
	e.failed.Add(1)
}

// Stats returns the current counters
func (e *Estimator) Stats() Stats {
	return Stats{
		Served: e.served.Load(),
		Failed: e.failed.Load(),
	}
}
