package estimator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartoza/premium-estimator/internal/model"
	"github.com/kartoza/premium-estimator/internal/premium"
)

// fakePredictor records calls and returns a fixed answer
type fakePredictor struct {
	strategy premium.Strategy
	value    float64
	err      error
	delay    time.Duration
	calls    int
	last     premium.EncodedRecord
}

func (f *fakePredictor) Strategy() premium.Strategy { return f.strategy }

func (f *fakePredictor) Predict(ctx context.Context, rec premium.EncodedRecord) (float64, error) {
	f.calls++
	f.last = rec
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.value, f.err
}

type staticSource struct {
	p   model.Predictor
	err error
}

func (s staticSource) Get() (model.Predictor, error) { return s.p, s.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() premium.Input {
	return premium.Input{
		Age:      60,
		Sex:      premium.SexMale,
		BMI:      32,
		Children: 3,
		Smoker:   premium.SmokerYes,
		Region:   premium.RegionNortheast,
	}
}

func TestEstimate(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyOrdinal, value: 12000}
	e := New(staticSource{p: fp}, time.Second, quietLogger())

	est, err := e.Estimate(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 12000.0, est.Prediction)
	assert.Equal(t, premium.ModerateCost, est.Insight.CostTier)
	assert.Equal(t, premium.Obese, est.Insight.BMICategory)
	assert.Equal(t, premium.PaymentBreakdown{Monthly: 1000, Quarterly: 3000, Annual: 12000}, est.Insight.Payment)
	assert.Equal(t, []premium.RiskFactor{
		premium.RiskSmoking, premium.RiskHighBMI, premium.RiskAge, premium.RiskFamilySize,
	}, est.Insight.RiskFactors)

	assert.Equal(t, 1, fp.calls)
	assert.Equal(t, premium.StrategyOrdinal, fp.last.Strategy)
	assert.Equal(t, []float64{60, 1, 32, 3, 1, 1}, fp.last.Vector)
	assert.Equal(t, Stats{Served: 1}, e.Stats())
}

func TestEstimateUsesPredictorStrategy(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyLabeled, value: 4000}
	e := New(staticSource{p: fp}, time.Second, quietLogger())

	_, err := e.Estimate(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, premium.StrategyLabeled, fp.last.Strategy)
	assert.Equal(t, "northeast", fp.last.Row["region"])
}

func TestModelUnavailableSkipsPrediction(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyOrdinal, value: 1}
	loads := 0
	h := model.NewHandleFunc("missing.gob", func(string) (model.Predictor, error) {
		loads++
		return nil, errors.New("no such file")
	})
	e := New(h, time.Second, quietLogger())

	for i := 0; i < 3; i++ {
		_, err := e.Estimate(context.Background(), validInput())
		require.ErrorIs(t, err, premium.ErrModelUnavailable)
	}

	assert.Equal(t, 0, fp.calls)
	assert.Equal(t, 1, loads)
	assert.Equal(t, Stats{Failed: 3}, e.Stats())
}

func TestModelUnavailableBeforeValidation(t *testing.T) {
	e := New(staticSource{err: premium.ErrModelUnavailable}, time.Second, quietLogger())

	_, err := e.Estimate(context.Background(), premium.Input{})
	assert.ErrorIs(t, err, premium.ErrModelUnavailable)
	assert.NotErrorIs(t, err, premium.ErrInvalidInput)
}

func TestInvalidInputRejectedBeforePredict(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyOrdinal, value: 1}
	e := New(staticSource{p: fp}, time.Second, quietLogger())

	in := validInput()
	in.Age = 12
	_, err := e.Estimate(context.Background(), in)
	require.ErrorIs(t, err, premium.ErrInvalidInput)
	assert.Equal(t, 0, fp.calls)
}

func TestEncodingErrorForUnknownStrategy(t *testing.T) {
	fp := &fakePredictor{strategy: premium.Strategy(99), value: 1}
	e := New(staticSource{p: fp}, time.Second, quietLogger())

	_, err := e.Estimate(context.Background(), validInput())
	require.ErrorIs(t, err, premium.ErrEncoding)
	assert.Equal(t, 0, fp.calls)
}

func TestModelErrorWrapped(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyOrdinal, err: errors.New("shape mismatch")}
	e := New(staticSource{p: fp}, time.Second, quietLogger())

	_, err := e.Estimate(context.Background(), validInput())
	require.ErrorIs(t, err, premium.ErrModel)
	assert.Contains(t, err.Error(), "shape mismatch")
	assert.Equal(t, 1, fp.calls, "no retry")
}

func TestPredictTimeout(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyOrdinal, value: 1, delay: time.Second}
	e := New(staticSource{p: fp}, 20*time.Millisecond, quietLogger())

	_, err := e.Estimate(context.Background(), validInput())
	require.ErrorIs(t, err, premium.ErrModel)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPredictionAnomaly(t *testing.T) {
	for _, v := range []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		fp := &fakePredictor{strategy: premium.StrategyOrdinal, value: v}
		e := New(staticSource{p: fp}, time.Second, quietLogger())

		_, err := e.Estimate(context.Background(), validInput())
		assert.ErrorIs(t, err, premium.ErrPredictionAnomaly, "value %v", v)
	}
}

func TestZeroPredictionIsValid(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyOrdinal, value: 0}
	e := New(staticSource{p: fp}, time.Second, quietLogger())

	est, err := e.Estimate(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, premium.LowCost, est.Insight.CostTier)
}

func TestEstimateWithBaselineArtifact(t *testing.T) {
	for _, s := range []premium.Strategy{premium.StrategyOrdinal, premium.StrategyLabeled} {
		t.Run(s.String(), func(t *testing.T) {
			a, err := model.BaselineArtifact(s)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "insurance_model.gob")
			require.NoError(t, model.Save(path, a))

			e := New(model.NewHandle(path), 0, quietLogger())
			est, err := e.Estimate(context.Background(), validInput())
			require.NoError(t, err)
			assert.Equal(t, premium.HighCost, est.Insight.CostTier)
			assert.Greater(t, est.Prediction, 30000.0)
		})
	}
}

func TestRejectCountsFailure(t *testing.T) {
	fp := &fakePredictor{strategy: premium.StrategyOrdinal, value: 12000}
	e := New(staticSource{p: fp}, time.Second, quietLogger())

	e.Reject()
	_, err := e.Estimate(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, Stats{Served: 1, Failed: 1}, e.Stats())
	assert.Equal(t, 1, fp.calls)
}
