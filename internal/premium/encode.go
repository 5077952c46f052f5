package premium

import "fmt"

// Strategy selects how an Input is shaped for a model artifact. It is
// fixed by the artifact at load time, never chosen per request.
type Strategy int

const (
	// StrategyOrdinal produces [age, sex, bmi, children, smoker, region]
	// with hand-coded integer categories
	StrategyOrdinal Strategy = iota + 1

	// StrategyLabeled produces a single named row and leaves categorical
	// encoding to the artifact
	StrategyLabeled
)

func (s Strategy) String() string {
	switch s {
	case StrategyOrdinal:
		return "ordinal"
	case StrategyLabeled:
		return "labeled"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy parses "ordinal" or "labeled"
func ParseStrategy(raw string) (Strategy, error) {
	switch normalize(raw) {
	case "ordinal":
		return StrategyOrdinal, nil
	case "labeled":
		return StrategyLabeled, nil
	}
	return 0, encodingField("strategy", raw, "must be ordinal or labeled")
}

// Feature names, in ordinal vector order
const (
	FeatureAge      = "age"
	FeatureSex      = "sex"
	FeatureBMI      = "bmi"
	FeatureChildren = "children"
	FeatureSmoker   = "smoker"
	FeatureRegion   = "region"
)

// FeatureOrder is the column order of the ordinal vector
var FeatureOrder = []string{FeatureAge, FeatureSex, FeatureBMI, FeatureChildren, FeatureSmoker, FeatureRegion}

// EncodedRecord is an Input shaped for one strategy. Exactly one of
// Vector or Row is set.
type EncodedRecord struct {
	Strategy Strategy
	Vector   []float64
	Row      map[string]any
}

// Encode maps in into the shape expected by strategy s. Scalars are
// passed through unscaled.
func Encode(in Input, s Strategy) (EncodedRecord, error) {
	switch s {
	case StrategyOrdinal:
		return encodeOrdinal(in)
	case StrategyLabeled:
		return encodeLabeled(in)
	}
	return EncodedRecord{}, encodingField("strategy", s, "unrecognized encoding strategy")
}

func encodeOrdinal(in Input) (EncodedRecord, error) {
	var sex float64
	switch in.Sex {
	case SexMale:
		sex = 1
	case SexFemale:
		sex = 0
	default:
		return EncodedRecord{}, encodingField(FeatureSex, in.Sex, "not a known category")
	}

	var smoker float64
	switch in.Smoker {
	case SmokerYes:
		smoker = 1
	case SmokerNo:
		smoker = 0
	default:
		return EncodedRecord{}, encodingField(FeatureSmoker, in.Smoker, "not a known category")
	}

	if !in.Region.Valid() {
		return EncodedRecord{}, encodingField(FeatureRegion, in.Region, "not a known category")
	}

	return EncodedRecord{
		Strategy: StrategyOrdinal,
		Vector: []float64{
			float64(in.Age),
			sex,
			in.BMI,
			float64(in.Children),
			smoker,
			float64(in.Region),
		},
	}, nil
}

func encodeLabeled(in Input) (EncodedRecord, error) {
	if !in.Sex.Valid() {
		return EncodedRecord{}, encodingField(FeatureSex, in.Sex, "not a known category")
	}
	if !in.Smoker.Valid() {
		return EncodedRecord{}, encodingField(FeatureSmoker, in.Smoker, "not a known category")
	}
	if !in.Region.Valid() {
		return EncodedRecord{}, encodingField(FeatureRegion, in.Region, "not a known category")
	}

	return EncodedRecord{
		Strategy: StrategyLabeled,
		Row: map[string]any{
			FeatureAge:      float64(in.Age),
			FeatureSex:      in.Sex.String(),
			FeatureBMI:      in.BMI,
			FeatureChildren: float64(in.Children),
			FeatureSmoker:   in.Smoker.String(),
			FeatureRegion:   in.Region.String(),
		},
	}, nil
}
