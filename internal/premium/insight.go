package premium

// BMICategory buckets a body-mass index
type BMICategory string

const (
	Underweight BMICategory = "Underweight"
	Normal      BMICategory = "Normal"
	Overweight  BMICategory = "Overweight"
	Obese       BMICategory = "Obese"
)

// CostTier buckets an annual premium
type CostTier string

const (
	LowCost      CostTier = "Low Cost"
	ModerateCost CostTier = "Moderate Cost"
	HighCost     CostTier = "High Cost"
)

// Tier boundaries in currency units
const (
	ModerateCostFloor = 5000.0
	HighCostFloor     = 15000.0
)

// RiskFactor explains one condition that pushes the premium up
type RiskFactor struct {
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
}

// Risk factors in evaluation order
var (
	RiskSmoking    = RiskFactor{"Smoking", "Major cost driver - significantly increases premiums"}
	RiskHighBMI    = RiskFactor{"High BMI", "Obesity increases health risks and costs"}
	RiskAge        = RiskFactor{"Age Factor", "Higher age correlates with increased costs"}
	RiskFamilySize = RiskFactor{"Family Size", "Multiple dependents increase coverage costs"}

	// RiskLowProfile is reported alone when no other factor applies
	RiskLowProfile = RiskFactor{"Low Risk Profile", "You have relatively few high-risk factors"}
)

// PaymentBreakdown splits an annual premium into instalments
type PaymentBreakdown struct {
	Monthly   float64 `json:"monthly"`
	Quarterly float64 `json:"quarterly"`
	Annual    float64 `json:"annual"`
}

// Insight is the commentary rendered next to a prediction
type Insight struct {
	BMICategory BMICategory      `json:"bmi_category"`
	CostTier    CostTier         `json:"cost_tier"`
	RiskFactors []RiskFactor     `json:"risk_factors"`
	Payment     PaymentBreakdown `json:"payment"`
}

// DeriveInsight computes the commentary for prediction and in. It never
// fails: anomalous predictions are the caller's concern.
func DeriveInsight(prediction float64, in Input) Insight {
	return Insight{
		BMICategory: CategorizeBMI(in.BMI),
		CostTier:    ClassifyCost(prediction),
		RiskFactors: RiskFactors(in),
		Payment:     Breakdown(prediction),
	}
}

// CategorizeBMI buckets bmi; each lower bound is inclusive
func CategorizeBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

// ClassifyCost buckets an annual premium
func ClassifyCost(prediction float64) CostTier {
	switch {
	case prediction < ModerateCostFloor:
		return LowCost
	case prediction < HighCostFloor:
		return ModerateCost
	default:
		return HighCost
	}
}

// RiskFactors returns the qualifying factors in fixed order, or the
// low-risk sentinel alone. The result is never empty.
func RiskFactors(in Input) []RiskFactor {
	var factors []RiskFactor
	if in.Smoker == SmokerYes {
		factors = append(factors, RiskSmoking)
	}
	if in.BMI > 30 {
		factors = append(factors, RiskHighBMI)
	}
	if in.Age > 50 {
		factors = append(factors, RiskAge)
	}
	if in.Children > 2 {
		factors = append(factors, RiskFamilySize)
	}
	if len(factors) == 0 {
		return []RiskFactor{RiskLowProfile}
	}
	return factors
}

// Breakdown divides an annual premium without rounding
func Breakdown(prediction float64) PaymentBreakdown {
	return PaymentBreakdown{
		Monthly:   prediction / 12,
		Quarterly: prediction / 4,
		Annual:    prediction,
	}
}
