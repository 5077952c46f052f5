package server

import (
	"fmt"
	"html/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kartoza/premium-estimator/internal/estimator"
	"github.com/kartoza/premium-estimator/internal/premium"
)

var templateFuncs = template.FuncMap{
	"title": title,
}

// title upper-cases the first letter of s. A cases.Caser must not be
// shared between goroutines.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

type profileView struct {
	Age         int
	Sex         string
	BMI         string
	Children    int
	Smoker      string
	Region      string
	BMICategory premium.BMICategory
	BMIMarker   string
}

func newProfileView(in premium.Input) *profileView {
	category := premium.CategorizeBMI(in.BMI)
	return &profileView{
		Age:         in.Age,
		Sex:         title(in.Sex.String()),
		BMI:         fmt.Sprintf("%.1f", in.BMI),
		Children:    in.Children,
		Smoker:      title(in.Smoker.String()),
		Region:      title(in.Region.String()),
		BMICategory: category,
		BMIMarker:   bmiMarkers[category],
	}
}

var bmiMarkers = map[premium.BMICategory]string{
	premium.Underweight: "🔵",
	premium.Normal:      "🟢",
	premium.Overweight:  "🟡",
	premium.Obese:       "🔴",
}

type tierStyle struct {
	Emoji string
	Color string
}

var tierStyles = map[premium.CostTier]tierStyle{
	premium.LowCost:      {"💚", "#10b981"},
	premium.ModerateCost: {"💛", "#f59e0b"},
	premium.HighCost:     {"🔴", "#ef4444"},
}

var factorIcons = map[string]string{
	premium.RiskSmoking.Label:    "🚬",
	premium.RiskHighBMI.Label:    "⚖️",
	premium.RiskAge.Label:        "👤",
	premium.RiskFamilySize.Label: "👶",
	premium.RiskLowProfile.Label: "💚",
}

type factorView struct {
	Icon        string
	Label       string
	Explanation string
}

type resultView struct {
	Amount    string
	Tier      premium.CostTier
	TierEmoji string
	TierColor template.CSS
	Factors   []factorView
	Monthly   string
	Quarterly string
	Annual    string
}

func newResultView(est *estimator.Estimate) *resultView {
	style := tierStyles[est.Insight.CostTier]

	factors := make([]factorView, len(est.Insight.RiskFactors))
	for i, f := range est.Insight.RiskFactors {
		factors[i] = factorView{Icon: factorIcons[f.Label], Label: f.Label, Explanation: f.Explanation}
	}

	return &resultView{
		Amount:    formatCurrency(est.Prediction),
		Tier:      est.Insight.CostTier,
		TierEmoji: style.Emoji,
		TierColor: template.CSS(style.Color),
		Factors:   factors,
		Monthly:   fmt.Sprintf("$%.2f", est.Insight.Payment.Monthly),
		Quarterly: fmt.Sprintf("$%.2f", est.Insight.Payment.Quarterly),
		Annual:    formatCurrency(est.Insight.Payment.Annual),
	}
}

// formatCurrency renders v as dollars with thousands separators
func formatCurrency(v float64) string {
	return message.NewPrinter(language.English).Sprintf("$%.2f", v)
}
