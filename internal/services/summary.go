package services

import (
	"context"
	"errors"
	"time"

	"orcamento/internal/core"
	applog "orcamento/internal/log"
	"orcamento/internal/tips"
)

// Summary is every derived view of a budget, recomputed from scratch.
type Summary struct {
	Snapshot          core.BudgetSnapshot    `json:"summary"`
	Chart             []core.ChartEntry      `json:"chart"`
	ProjectionMonths  int                    `json:"projectionMonths"`
	Projection        []core.ProjectionPoint `json:"projection"`
	Goals             []core.GoalProgress    `json:"goals"`
	Investments       []core.InvestmentYield `json:"investments"`
	TotalMonthlyYield float64                `json:"totalMonthlyYield"`
	CDIAnnualRate     float64                `json:"cdiAnnualRate"`
}

// Summarize derives the summary of the session's current data. months is the
// projection horizon; 0 selects the default.
func (s *BudgetService) Summarize(sess *Session, months int) (Summary, error) {
	return BuildSummary(sess.Snapshot(), months, s.config.CDIAnnualRate, s.now())
}

// BuildSummary derives the summary of u.
func BuildSummary(u core.UserData, months int, cdiAnnualRate float64, now time.Time) (Summary, error) {
	if months == 0 {
		months = core.DefaultProjectionPeriod
	}
	if !core.ValidProjectionPeriod(months) {
		return Summary{}, ErrInvalidPeriod
	}

	snap := core.Summarize(u)
	return Summary{
		Snapshot:          snap,
		Chart:             core.ChartData(u),
		ProjectionMonths:  months,
		Projection:        core.Projection(snap.RemainingBalance, months),
		Goals:             core.EvaluateGoals(u, now),
		Investments:       core.Yields(u.Investments, cdiAnnualRate),
		TotalMonthlyYield: core.TotalMonthlyYield(u.Investments, cdiAnnualRate),
		CDIAnnualRate:     cdiAnnualRate,
	}, nil
}

// TipsResult holds generated tips, or a notice explaining why there are none.
type TipsResult struct {
	Tips   []tips.Tip `json:"tips"`
	Notice string     `json:"notice,omitempty"`
}

// Tips asks the configured generator for savings advice. Generation failures
// are reported as a notice with an empty list.
func (s *BudgetService) Tips(ctx context.Context, sess *Session) TipsResult {
	req := tips.NewRequest(sess.Snapshot())
	if err := req.Validate(); err != nil {
		return TipsResult{Tips: []tips.Tip{}, Notice: err.Error()}
	}

	out, err := s.tips.Generate(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to generate tips",
			applog.FieldUserID, sess.UserID,
			applog.FieldOperation, applog.OpTips,
			applog.FieldError, err)
		return TipsResult{Tips: []tips.Tip{}, Notice: tipsNotice(err)}
	}
	s.logger.InfoContext(ctx, "Tips generated",
		applog.FieldUserID, sess.UserID,
		applog.FieldTipCount, len(out))
	return TipsResult{Tips: out}
}

func tipsNotice(err error) string {
	switch {
	case errors.Is(err, tips.ErrDisabled):
		return "Dicas de economia estão desativadas."
	case errors.Is(err, tips.ErrNoIncome):
		return err.Error()
	default:
		return "Não foi possível gerar dicas agora. Tente novamente mais tarde."
	}
}
