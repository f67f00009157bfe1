package core

import "math"

// DefaultCDIAnnualRate is the reference annual CDI rate used when none is configured.
const DefaultCDIAnnualRate = 0.104

// InvestmentYield is the projected monthly return of one investment.
type InvestmentYield struct {
	Investment   Investment `json:"investment"`
	MonthlyRate  float64    `json:"monthlyRate"`
	MonthlyYield float64    `json:"monthlyYield"`
}

// MonthlyReferenceRate converts an annual rate to its compound monthly equivalent.
func MonthlyReferenceRate(annualRate float64) float64 {
	return math.Pow(1+annualRate, 1.0/12) - 1
}

// MonthlyYield applies the investment's share of the CDI to its amount.
// No rounding is done here.
func MonthlyYield(amount, cdiPercentage, annualRate float64) float64 {
	return amount * MonthlyReferenceRate(annualRate) * (cdiPercentage / 100)
}

// Yields projects the monthly return of every investment.
func Yields(investments []Investment, annualRate float64) []InvestmentYield {
	ref := MonthlyReferenceRate(annualRate)
	out := make([]InvestmentYield, 0, len(investments))
	for _, i := range investments {
		rate := ref * (i.CDIPercentage / 100)
		out = append(out, InvestmentYield{Investment: i, MonthlyRate: rate, MonthlyYield: i.Amount * rate})
	}
	return out
}

// TotalMonthlyYield sums the projected monthly return of all investments.
func TotalMonthlyYield(investments []Investment, annualRate float64) float64 {
	var total float64
	for _, y := range Yields(investments, annualRate) {
		total += y.MonthlyYield
	}
	return total
}
