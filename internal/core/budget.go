package core

import (
	"fmt"
	"time"
)

// Chart colors for entries that do not carry their own.
const (
	OneTimeExpenseColor = "#6b7280"
	InvestedColor       = "#0ea5e9"
	SurplusColor        = "#22c55e"
)

// ProjectionPeriods are the horizons, in months, offered for balance projection.
var ProjectionPeriods = []int{3, 6, 12, 24}

// DefaultProjectionPeriod is used when no horizon is requested.
const DefaultProjectionPeriod = 6

type (
	// BudgetSnapshot holds the derived figures of a UserData. Never stored.
	BudgetSnapshot struct {
		TotalIncome           float64 `json:"totalIncome"`
		TotalExpenses         float64 `json:"totalExpenses"`
		TotalInvested         float64 `json:"totalInvested"`
		DiscretionaryIncome   float64 `json:"discretionaryIncome"`
		RemainingBalance      float64 `json:"remainingBalance"`
		PreviousMonthExpenses float64 `json:"previousMonthExpenses"`
		ExpenseDelta          float64 `json:"expenseDelta"`
	}

	// ChartEntry is one slice of the spending breakdown.
	ChartEntry struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
		Color string  `json:"color"`
	}

	// ProjectionPoint is the accumulated balance after Month months.
	ProjectionPoint struct {
		Month   int     `json:"month"`
		Label   string  `json:"label"`
		Balance float64 `json:"balance"`
	}
)

// TotalIncome is salary plus every one-time gain.
func TotalIncome(salary float64, gains []OneTimeGain) float64 {
	total := salary
	for _, g := range gains {
		total += g.Value
	}
	return total
}

// CategoryAmount resolves a fixed category to a currency amount.
func CategoryAmount(c FixedExpenseCategory, totalIncome float64) float64 {
	if c.AllocationType == AllocationPercentage {
		return totalIncome * c.Value / 100
	}
	return c.Value
}

// TotalExpenses sums the resolved fixed categories and the one-time expenses.
func TotalExpenses(fixed []FixedExpenseCategory, oneTime []OneTimeExpense, totalIncome float64) float64 {
	var total float64
	for _, c := range fixed {
		total += CategoryAmount(c, totalIncome)
	}
	for _, e := range oneTime {
		total += e.Value
	}
	return total
}

func TotalInvested(investments []Investment) float64 {
	var total float64
	for _, i := range investments {
		total += i.Amount
	}
	return total
}

// DiscretionaryIncome may be negative.
func DiscretionaryIncome(totalIncome, totalExpenses float64) float64 {
	return totalIncome - totalExpenses
}

// FinalBalance may be negative.
func FinalBalance(totalIncome, totalExpenses, totalInvested float64) float64 {
	return DiscretionaryIncome(totalIncome, totalExpenses) - totalInvested
}

// Summarize recomputes every derived figure from scratch.
func Summarize(u UserData) BudgetSnapshot {
	income := TotalIncome(u.Salary, u.OneTimeGains)
	expenses := TotalExpenses(u.FixedExpenses, u.OneTimeExpenses, income)
	invested := TotalInvested(u.Investments)
	return BudgetSnapshot{
		TotalIncome:           income,
		TotalExpenses:         expenses,
		TotalInvested:         invested,
		DiscretionaryIncome:   DiscretionaryIncome(income, expenses),
		RemainingBalance:      FinalBalance(income, expenses, invested),
		PreviousMonthExpenses: u.PreviousMonthExpenses,
		ExpenseDelta:          expenses - u.PreviousMonthExpenses,
	}
}

// ChartData builds the spending breakdown. A surplus slice is added only for a
// positive balance, and entries with a non-positive value are dropped.
func ChartData(u UserData) []ChartEntry {
	s := Summarize(u)
	entries := make([]ChartEntry, 0, len(u.FixedExpenses)+len(u.OneTimeExpenses)+2)
	for _, c := range u.FixedExpenses {
		entries = append(entries, ChartEntry{Name: c.Name, Value: CategoryAmount(c, s.TotalIncome), Color: c.Color})
	}
	for _, e := range u.OneTimeExpenses {
		entries = append(entries, ChartEntry{Name: e.Name, Value: e.Value, Color: OneTimeExpenseColor})
	}
	entries = append(entries, ChartEntry{Name: "Invested", Value: s.TotalInvested, Color: InvestedColor})
	if s.RemainingBalance > 0 {
		entries = append(entries, ChartEntry{Name: "Surplus", Value: s.RemainingBalance, Color: SurplusColor})
	}

	out := entries[:0]
	for _, e := range entries {
		if e.Value > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Projection assumes the current balance recurs unchanged every month.
// A non-positive balance yields an empty projection.
func Projection(finalBalance float64, months int) []ProjectionPoint {
	if finalBalance <= 0 || months <= 0 {
		return []ProjectionPoint{}
	}
	points := make([]ProjectionPoint, months)
	for i := 1; i <= months; i++ {
		points[i-1] = ProjectionPoint{
			Month:   i,
			Label:   fmt.Sprintf("Month %d", i),
			Balance: finalBalance * float64(i),
		}
	}
	return points
}

// ValidProjectionPeriod reports whether months is one of the offered horizons.
func ValidProjectionPeriod(months int) bool {
	for _, p := range ProjectionPeriods {
		if p == months {
			return true
		}
	}
	return false
}

// RollOver starts a new month on a loaded record. When the record was last
// saved in another month, the old total expenses become the comparison
// baseline and one-time entries are cleared. It reports whether anything changed.
func RollOver(u *UserData, now time.Time) bool {
	current := MonthIndex(now)
	if u.LastSavedMonth == current {
		return false
	}
	u.PreviousMonthExpenses = Summarize(*u).TotalExpenses
	u.OneTimeExpenses = []OneTimeExpense{}
	u.OneTimeGains = []OneTimeGain{}
	u.LastSavedMonth = current
	return true
}
