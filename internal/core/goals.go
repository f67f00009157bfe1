package core

import (
	"math"
	"time"
)

// SoonWindowDays is how close a deadline must be to count as soon.
const SoonWindowDays = 28

const (
	DeadlineNormal  DeadlineStatus = "normal"
	DeadlineSoon    DeadlineStatus = "soon"
	DeadlineOverdue DeadlineStatus = "overdue"
)

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type (
	DeadlineStatus string
	Severity       string

	// GoalProgress is the evaluated state of one goal. Percent is the raw
	// invested/target ratio and may exceed 100; Bar is clamped to [0, 100].
	GoalProgress struct {
		Goal     Goal           `json:"goal"`
		Percent  float64        `json:"percent"`
		Bar      float64        `json:"bar"`
		DaysLeft int            `json:"daysLeft"`
		Status   DeadlineStatus `json:"status"`
		Severity Severity       `json:"severity"`
		Overdue  bool           `json:"overdue"`
		Soon     bool           `json:"soon"`
	}
)

func (s DeadlineStatus) Severity() Severity {
	switch s {
	case DeadlineOverdue:
		return SeverityCritical
	case DeadlineSoon:
		return SeverityWarning
	default:
		return SeverityNormal
	}
}

// DaysUntil is the whole number of days from today to deadline, rounded up.
// Both dates are compared without their time of day.
func DaysUntil(deadline, today time.Time) int {
	diff := DateOnly(deadline).Sub(DateOnly(today))
	return int(math.Ceil(diff.Hours() / 24))
}

// ClassifyDeadline marks a deadline overdue once the day after it is behind
// today, and soon when it falls within the next SoonWindowDays days.
func ClassifyDeadline(deadline, today time.Time) DeadlineStatus {
	d := DateOnly(deadline)
	t := DateOnly(today)
	if d.AddDate(0, 0, 1).Before(t) {
		return DeadlineOverdue
	}
	if days := DaysUntil(d, t); days >= 0 && days <= SoonWindowDays {
		return DeadlineSoon
	}
	return DeadlineNormal
}

// ProgressPercent is totalInvested over the goal target, as a percentage.
func ProgressPercent(totalInvested, targetAmount float64) float64 {
	if targetAmount <= 0 {
		return 0
	}
	return totalInvested / targetAmount * 100
}

// ClampPercent bounds a percentage to [0, 100] for a progress bar.
func ClampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}

// EvaluateGoal measures a goal against the total invested capital.
func EvaluateGoal(g Goal, totalInvested float64, today time.Time) GoalProgress {
	p := GoalProgress{
		Goal:    g,
		Percent: ProgressPercent(totalInvested, g.TargetAmount),
		Status:  DeadlineNormal,
	}
	p.Bar = ClampPercent(p.Percent)
	if deadline, err := ParseDeadline(g.Deadline); err == nil {
		p.DaysLeft = DaysUntil(deadline, today)
		p.Status = ClassifyDeadline(deadline, today)
	}
	p.Severity = p.Status.Severity()
	p.Overdue = p.Status == DeadlineOverdue
	p.Soon = p.Status == DeadlineSoon
	return p
}

// EvaluateGoals evaluates every goal of a record in order.
func EvaluateGoals(u UserData, today time.Time) []GoalProgress {
	invested := TotalInvested(u.Investments)
	out := make([]GoalProgress, 0, len(u.Goals))
	for _, g := range u.Goals {
		out = append(out, EvaluateGoal(g, invested, today))
	}
	return out
}
