package model

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"github.com/kartoza/premium-estimator/internal/premium"
)

const (
	// ArtifactFormat tags files written by Save
	ArtifactFormat = "premium-regression"

	// ArtifactVersion is the only version Load accepts
	ArtifactVersion = 1
)

// Artifact is the serialized form of a regression model. Ordinal
// artifacts carry Coefficients in premium.FeatureOrder; labeled artifacts
// carry Numeric and Categorical weights and own their category encoding.
type Artifact struct {
	Format       string
	Version      int
	Strategy     string
	Intercept    float64
	Coefficients []float64
	Numeric      map[string]float64
	Categorical  map[string]map[string]float64
}

// numericFeatures and categoricalFeatures must all be present in a labeled artifact
var (
	numericFeatures     = []string{premium.FeatureAge, premium.FeatureBMI, premium.FeatureChildren}
	categoricalFeatures = []string{premium.FeatureSex, premium.FeatureSmoker, premium.FeatureRegion}

	// categoryLevels is every value a labeled record can carry per feature
	categoryLevels = map[string][]string{
		premium.FeatureSex:    {premium.SexMale.String(), premium.SexFemale.String()},
		premium.FeatureSmoker: {premium.SmokerNo.String(), premium.SmokerYes.String()},
		premium.FeatureRegion: regionLevels(),
	}
)

// Save writes an artifact to disk
func Save(path string, a Artifact) error {
	if a.Format == "" {
		a.Format = ArtifactFormat
	}
	if a.Version == 0 {
		a.Version = ArtifactVersion
	}
	if _, err := New(a); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return f.Close()
}

// ReadArtifact decodes an artifact without building a predictor
func ReadArtifact(path string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return Artifact{}, err
	}
	defer f.Close()

	var a Artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	return a, nil
}

// Load reads the artifact at path and returns its predictor. Every
// failure is reported as premium.ErrModelUnavailable.
func Load(path string) (Predictor, error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", premium.ErrModelUnavailable, path, err)
	}
	p, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", premium.ErrModelUnavailable, path, err)
	}
	return p, nil
}

// New builds the predictor described by a
func New(a Artifact) (Predictor, error) {
	if a.Format != ArtifactFormat {
		return nil, fmt.Errorf("unexpected artifact format %q", a.Format)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if !finite(a.Intercept) {
		return nil, fmt.Errorf("intercept is not finite")
	}

	strategy, err := premium.ParseStrategy(a.Strategy)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case premium.StrategyOrdinal:
		if len(a.Coefficients) != len(premium.FeatureOrder) {
			return nil, fmt.Errorf("ordinal artifact needs %d coefficients, got %d",
				len(premium.FeatureOrder), len(a.Coefficients))
		}
		for i, c := range a.Coefficients {
			if !finite(c) {
				return nil, fmt.Errorf("coefficient for %s is not finite", premium.FeatureOrder[i])
			}
		}
		coef := make([]float64, len(a.Coefficients))
		copy(coef, a.Coefficients)
		return &OrdinalModel{intercept: a.Intercept, coefficients: coef}, nil

	case premium.StrategyLabeled:
		numeric := make(map[string]float64, len(numericFeatures))
		for _, name := range numericFeatures {
			c, ok := a.Numeric[name]
			if !ok || !finite(c) {
				return nil, fmt.Errorf("labeled artifact missing numeric weight for %s", name)
			}
			numeric[name] = c
		}
		categorical := make(map[string]map[string]float64, len(categoricalFeatures))
		for _, name := range categoricalFeatures {
			levels := a.Categorical[name]
			if len(levels) == 0 {
				return nil, fmt.Errorf("labeled artifact missing categories for %s", name)
			}
			copied := make(map[string]float64, len(levels))
			for level, c := range levels {
				if !finite(c) {
					return nil, fmt.Errorf("weight for %s=%s is not finite", name, level)
				}
				copied[level] = c
			}
			for _, level := range categoryLevels[name] {
				if _, ok := copied[level]; !ok {
					return nil, fmt.Errorf("labeled artifact has no weight for %s=%s", name, level)
				}
			}
			categorical[name] = copied
		}
		return &LabeledModel{intercept: a.Intercept, numeric: numeric, categorical: categorical}, nil
	}

	return nil, fmt.Errorf("unsupported strategy %s", strategy)
}

// BaselineArtifact returns a linear model fitted on the public medical
// cost dataset, in the requested encoding
func BaselineArtifact(s premium.Strategy) (Artifact, error) {
	switch s {
	case premium.StrategyOrdinal:
		return Artifact{
			Format:    ArtifactFormat,
			Version:   ArtifactVersion,
			Strategy:  s.String(),
			Intercept: -11815.45,
			// age, sex, bmi, children, smoker, region
			Coefficients: []float64{257.29, -131.11, 332.57, 479.37, 23820.43, -353.64},
		}, nil
	case premium.StrategyLabeled:
		return Artifact{
			Format:    ArtifactFormat,
			Version:   ArtifactVersion,
			Strategy:  s.String(),
			Intercept: -11938.54,
			Numeric: map[string]float64{
				premium.FeatureAge:      256.86,
				premium.FeatureBMI:      339.19,
				premium.FeatureChildren: 475.50,
			},
			Categorical: map[string]map[string]float64{
				premium.FeatureSex:    {"female": 0, "male": -131.31},
				premium.FeatureSmoker: {"no": 0, "yes": 23848.53},
				premium.FeatureRegion: {
					"northeast": 0,
					"northwest": -352.96,
					"southeast": -1035.02,
					"southwest": -960.05,
				},
			},
		}, nil
	}
	return Artifact{}, fmt.Errorf("%w: no baseline for %s", premium.ErrEncoding, s)
}

func regionLevels() []string {
	levels := make([]string, len(premium.Regions))
	for i, r := range premium.Regions {
		levels[i] = r.String()
	}
	return levels
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
