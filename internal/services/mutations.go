package services

import (
	"context"
	"strings"

	"orcamento/internal/core"
	applog "orcamento/internal/log"
)

// Result is the state after a mutation. Notice is set when the mutation was
// applied but persisting it in immediate mode failed.
type Result struct {
	Data   core.UserData `json:"data"`
	Notice string        `json:"notice,omitempty"`
}

// FixedExpensePatch carries the fields of a fixed category to change.
// Nil fields are left untouched. An allocation change resets the value to 0
// before Value is applied.
type FixedExpensePatch struct {
	Name           *string
	Value          *float64
	Icon           *string
	AllocationType *core.AllocationType
}

// mutate applies fn to a copy of the session's data and keeps the copy only
// when fn succeeds, so a rejected input never leaves partial changes.
func (s *BudgetService) mutate(ctx context.Context, sess *Session, op, kind, id string, fn func(u *core.UserData) error) (Result, error) {
	sess.mu.Lock()
	next := sess.data.Clone()
	if err := fn(&next); err != nil {
		sess.mu.Unlock()
		return Result{}, err
	}
	sess.data = next
	sess.version++
	sess.mu.Unlock()

	s.events.LogMutation(ctx, sess.UserID, op, kind, id)

	res := Result{Data: next.Clone()}
	if s.config.SaveMode == SaveModeImmediate {
		if err := s.save(ctx, sess); err != nil {
			res.Notice = saveNotice(err)
		}
		res.Data = sess.Snapshot()
	}
	return res, nil
}

// SetSalary replaces the monthly salary.
func (s *BudgetService) SetSalary(ctx context.Context, sess *Session, salary float64) (Result, error) {
	return s.mutate(ctx, sess, applog.OpUpdate, "salary", "", func(u *core.UserData) error {
		if err := core.ValidateSalary(salary); err != nil {
			return err
		}
		u.Salary = salary
		return nil
	})
}

// ResetBudget restores the defaults, keeping only the user's name.
func (s *BudgetService) ResetBudget(ctx context.Context, sess *Session) (Result, error) {
	return s.mutate(ctx, sess, applog.OpReset, "budget", "", func(u *core.UserData) error {
		*u = core.NewUserData(u.Name, s.now())
		return nil
	})
}

// AddFixedExpense appends a placeholder category for the user to edit.
func (s *BudgetService) AddFixedExpense(ctx context.Context, sess *Session) (Result, core.FixedExpenseCategory, error) {
	c := core.NewFixedExpenseCategory()
	res, err := s.mutate(ctx, sess, applog.OpCreate, "fixed_expense", c.ID, func(u *core.UserData) error {
		u.FixedExpenses = append(u.FixedExpenses, c)
		return nil
	})
	return res, c, err
}

// UpdateFixedExpense applies a partial change to one category.
func (s *BudgetService) UpdateFixedExpense(ctx context.Context, sess *Session, id string, p FixedExpensePatch) (Result, error) {
	return s.mutate(ctx, sess, applog.OpUpdate, "fixed_expense", id, func(u *core.UserData) error {
		idx := indexOf(u.FixedExpenses, func(c core.FixedExpenseCategory) bool { return c.ID == id })
		if idx < 0 {
			return ErrItemNotFound
		}
		c := u.FixedExpenses[idx]

		if p.Name != nil {
			c.Name = strings.TrimSpace(*p.Name)
		}
		if p.AllocationType != nil {
			if !p.AllocationType.Valid() {
				return &core.ValidationError{Form: core.FormFixedExpense, Field: "type", Err: core.ErrInvalidAllocation}
			}
			if *p.AllocationType != c.AllocationType {
				c.AllocationType = *p.AllocationType
				c.Value = 0
			}
		}
		if p.Value != nil {
			c.Value = *p.Value
		}
		if p.Icon != nil {
			icon, err := core.ResolveIcon(*p.Icon)
			if err != nil {
				return err
			}
			c.Icon = icon
		}
		if err := c.Validate(); err != nil {
			return err
		}
		u.FixedExpenses[idx] = c
		return nil
	})
}

func (s *BudgetService) DeleteFixedExpense(ctx context.Context, sess *Session, id string) (Result, error) {
	return s.mutate(ctx, sess, applog.OpDelete, "fixed_expense", id, func(u *core.UserData) error {
		return removeByID(&u.FixedExpenses, id, func(c core.FixedExpenseCategory) string { return c.ID })
	})
}

func (s *BudgetService) AddOneTimeExpense(ctx context.Context, sess *Session, name string, value float64) (Result, error) {
	e, err := core.NewOneTimeExpense(name, value)
	if err != nil {
		return Result{}, err
	}
	return s.mutate(ctx, sess, applog.OpCreate, "one_time_expense", e.ID, func(u *core.UserData) error {
		u.OneTimeExpenses = append(u.OneTimeExpenses, e)
		return nil
	})
}

func (s *BudgetService) DeleteOneTimeExpense(ctx context.Context, sess *Session, id string) (Result, error) {
	return s.mutate(ctx, sess, applog.OpDelete, "one_time_expense", id, func(u *core.UserData) error {
		return removeByID(&u.OneTimeExpenses, id, func(e core.OneTimeExpense) string { return e.ID })
	})
}

func (s *BudgetService) AddOneTimeGain(ctx context.Context, sess *Session, name string, value float64) (Result, error) {
	g, err := core.NewOneTimeGain(name, value)
	if err != nil {
		return Result{}, err
	}
	return s.mutate(ctx, sess, applog.OpCreate, "one_time_gain", g.ID, func(u *core.UserData) error {
		u.OneTimeGains = append(u.OneTimeGains, g)
		return nil
	})
}

func (s *BudgetService) DeleteOneTimeGain(ctx context.Context, sess *Session, id string) (Result, error) {
	return s.mutate(ctx, sess, applog.OpDelete, "one_time_gain", id, func(u *core.UserData) error {
		return removeByID(&u.OneTimeGains, id, func(g core.OneTimeGain) string { return g.ID })
	})
}

func (s *BudgetService) AddInvestment(ctx context.Context, sess *Session, name string, amount, cdiPercentage float64) (Result, error) {
	inv, err := core.NewInvestment(name, amount, cdiPercentage)
	if err != nil {
		return Result{}, err
	}
	return s.mutate(ctx, sess, applog.OpCreate, "investment", inv.ID, func(u *core.UserData) error {
		u.Investments = append(u.Investments, inv)
		return nil
	})
}

func (s *BudgetService) DeleteInvestment(ctx context.Context, sess *Session, id string) (Result, error) {
	return s.mutate(ctx, sess, applog.OpDelete, "investment", id, func(u *core.UserData) error {
		return removeByID(&u.Investments, id, func(i core.Investment) string { return i.ID })
	})
}

// AddGoal adds a goal whose deadline is today or later.
func (s *BudgetService) AddGoal(ctx context.Context, sess *Session, name string, target float64, deadline string) (Result, error) {
	g, err := core.NewGoal(name, target, deadline, s.now())
	if err != nil {
		return Result{}, err
	}
	return s.mutate(ctx, sess, applog.OpCreate, "goal", g.ID, func(u *core.UserData) error {
		u.Goals = append(u.Goals, g)
		return nil
	})
}

func (s *BudgetService) DeleteGoal(ctx context.Context, sess *Session, id string) (Result, error) {
	return s.mutate(ctx, sess, applog.OpDelete, "goal", id, func(u *core.UserData) error {
		return removeByID(&u.Goals, id, func(g core.Goal) string { return g.ID })
	})
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

func removeByID[T any](items *[]T, id string, key func(T) string) error {
	idx := indexOf(*items, func(it T) bool { return key(it) == id })
	if idx < 0 {
		return ErrItemNotFound
	}
	out := make([]T, 0, len(*items)-1)
	out = append(out, (*items)[:idx]...)
	out = append(out, (*items)[idx+1:]...)
	*items = out
	return nil
}
