package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	AllocationFixed      AllocationType = "FIXED"
	AllocationPercentage AllocationType = "PERCENTAGE"
)

// DateLayout is the wire format of goal deadlines.
const DateLayout = "2006-01-02"

// MaxCDIPercentage is the upper bound of an investment's participation in the CDI rate.
const MaxCDIPercentage = 200

type (
	AllocationType string

	// FixedExpenseCategory is a recurring budget line. Value is a currency
	// amount for FIXED categories and a percentage of income for PERCENTAGE ones.
	FixedExpenseCategory struct {
		ID             string         `json:"id"`
		Name           string         `json:"name"`
		Icon           string         `json:"icon"`
		Value          float64        `json:"value"`
		AllocationType AllocationType `json:"type"`
		Color          string         `json:"color"`
	}

	OneTimeExpense struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	OneTimeGain struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	Investment struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		Amount        float64 `json:"amount"`
		CDIPercentage float64 `json:"cdiPercentage"`
	}

	Goal struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		TargetAmount float64 `json:"targetAmount"`
		Deadline     string  `json:"deadline"`
	}

	// UserData is the full per-user record exchanged with the record store.
	UserData struct {
		Name                  string                 `json:"name,omitempty"`
		Salary                float64                `json:"salary"`
		FixedExpenses         []FixedExpenseCategory `json:"fixedExpenses"`
		OneTimeExpenses       []OneTimeExpense       `json:"oneTimeExpenses"`
		OneTimeGains          []OneTimeGain          `json:"oneTimeGains"`
		Goals                 []Goal                 `json:"goals"`
		Investments           []Investment           `json:"investments"`
		LastSavedMonth        int                    `json:"lastSavedMonth"`
		PreviousMonthExpenses float64                `json:"previousMonthExpenses"`
	}
)

// Form names used to route validation errors back to the input that caused them.
const (
	FormSalary         = "salary"
	FormFixedExpense   = "fixed_expense"
	FormOneTimeExpense = "one_time_expense"
	FormOneTimeGain    = "one_time_gain"
	FormInvestment     = "investment"
	FormGoal           = "goal"
	FormAccount        = "account"
)

var (
	ErrEmptyName         = errors.New("name is required")
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrNegativeValue     = errors.New("value cannot be negative")
	ErrInvalidCDI        = errors.New("CDI percentage must be greater than 0 and at most 200")
	ErrInvalidDeadline   = errors.New("deadline must be a date in YYYY-MM-DD format")
	ErrDeadlineInPast    = errors.New("deadline cannot be in the past")
	ErrInvalidAllocation = errors.New("allocation type must be FIXED or PERCENTAGE")
	ErrUnknownIcon       = errors.New("icon is not in the catalogue")
	ErrInvalidMonth      = errors.New("month must be between 0 and 11")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrInvalidEmail      = errors.New("email is invalid")
	ErrPasswordTooShort  = errors.New("password must have at least 6 characters")
)

// ValidationError ties a validation failure to the form and field it belongs to.
type ValidationError struct {
	Form  string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Form, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(form, field string, err error) *ValidationError {
	return &ValidationError{Form: form, Field: field, Err: err}
}

func (t AllocationType) Valid() bool {
	return t == AllocationFixed || t == AllocationPercentage
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func validNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ValidateSalary accepts any finite, non-negative amount.
func ValidateSalary(v float64) error {
	if !validNonNegative(v) {
		return invalid(FormSalary, "salary", ErrNegativeValue)
	}
	return nil
}

func (c FixedExpenseCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid(FormFixedExpense, "name", ErrEmptyName)
	}
	if !validNonNegative(c.Value) {
		return invalid(FormFixedExpense, "value", ErrNegativeValue)
	}
	if !c.AllocationType.Valid() {
		return invalid(FormFixedExpense, "type", ErrInvalidAllocation)
	}
	return nil
}

func (e OneTimeExpense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid(FormOneTimeExpense, "name", ErrEmptyName)
	}
	if !validAmount(e.Value) {
		return invalid(FormOneTimeExpense, "value", ErrInvalidAmount)
	}
	return nil
}

func (g OneTimeGain) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return invalid(FormOneTimeGain, "name", ErrEmptyName)
	}
	if !validAmount(g.Value) {
		return invalid(FormOneTimeGain, "value", ErrInvalidAmount)
	}
	return nil
}

func (i Investment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return invalid(FormInvestment, "name", ErrEmptyName)
	}
	if !validAmount(i.Amount) {
		return invalid(FormInvestment, "amount", ErrInvalidAmount)
	}
	if math.IsNaN(i.CDIPercentage) || i.CDIPercentage <= 0 || i.CDIPercentage > MaxCDIPercentage {
		return invalid(FormInvestment, "cdiPercentage", ErrInvalidCDI)
	}
	return nil
}

// Validate checks the goal's shape. It does not compare the deadline with
// today because stored goals may legitimately be overdue.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return invalid(FormGoal, "name", ErrEmptyName)
	}
	if !validAmount(g.TargetAmount) {
		return invalid(FormGoal, "targetAmount", ErrInvalidAmount)
	}
	if _, err := ParseDeadline(g.Deadline); err != nil {
		return invalid(FormGoal, "deadline", ErrInvalidDeadline)
	}
	return nil
}

// NewOneTimeExpense builds a validated expense with a fresh id.
func NewOneTimeExpense(name string, value float64) (OneTimeExpense, error) {
	e := OneTimeExpense{ID: NewID(), Name: strings.TrimSpace(name), Value: value}
	if err := e.Validate(); err != nil {
		return OneTimeExpense{}, err
	}
	return e, nil
}

func NewOneTimeGain(name string, value float64) (OneTimeGain, error) {
	g := OneTimeGain{ID: NewID(), Name: strings.TrimSpace(name), Value: value}
	if err := g.Validate(); err != nil {
		return OneTimeGain{}, err
	}
	return g, nil
}

func NewInvestment(name string, amount, cdiPercentage float64) (Investment, error) {
	i := Investment{ID: NewID(), Name: strings.TrimSpace(name), Amount: amount, CDIPercentage: cdiPercentage}
	if err := i.Validate(); err != nil {
		return Investment{}, err
	}
	return i, nil
}

// NewGoal builds a goal whose deadline is today or later.
func NewGoal(name string, target float64, deadline string, today time.Time) (Goal, error) {
	g := Goal{ID: NewID(), Name: strings.TrimSpace(name), TargetAmount: target, Deadline: strings.TrimSpace(deadline)}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	d, _ := ParseDeadline(g.Deadline)
	if d.Before(DateOnly(today)) {
		return Goal{}, invalid(FormGoal, "deadline", ErrDeadlineInPast)
	}
	return g, nil
}

// NewFixedExpenseCategory returns the placeholder category added by the user.
func NewFixedExpenseCategory() FixedExpenseCategory {
	return FixedExpenseCategory{
		ID:             NewID(),
		Name:           "Nova Categoria",
		Icon:           IconHTML(DefaultIcon),
		Value:          0,
		AllocationType: AllocationFixed,
		Color:          "#71717a",
	}
}

// ParseDeadline parses a YYYY-MM-DD date at UTC midnight.
func ParseDeadline(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DateOnly drops the time of day, keeping t's calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks every record so a loaded snapshot can be trusted.
func (u UserData) Validate() error {
	if err := ValidateSalary(u.Salary); err != nil {
		return err
	}
	if u.LastSavedMonth < 0 || u.LastSavedMonth > 11 {
		return invalid(FormSalary, "lastSavedMonth", ErrInvalidMonth)
	}
	for _, c := range u.FixedExpenses {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, e := range u.OneTimeExpenses {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	for _, g := range u.OneTimeGains {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	for _, i := range u.Investments {
		if err := i.Validate(); err != nil {
			return err
		}
	}
	for _, g := range u.Goals {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers can hand out snapshots without sharing slices.
func (u UserData) Clone() UserData {
	out := u
	out.FixedExpenses = append([]FixedExpenseCategory(nil), u.FixedExpenses...)
	out.OneTimeExpenses = append([]OneTimeExpense(nil), u.OneTimeExpenses...)
	out.OneTimeGains = append([]OneTimeGain(nil), u.OneTimeGains...)
	out.Goals = append([]Goal(nil), u.Goals...)
	out.Investments = append([]Investment(nil), u.Investments...)
	return out
}

// Normalize replaces nil collections with empty ones so JSON encodes arrays.
func (u *UserData) Normalize() {
	if u.FixedExpenses == nil {
		u.FixedExpenses = []FixedExpenseCategory{}
	}
	if u.OneTimeExpenses == nil {
		u.OneTimeExpenses = []OneTimeExpense{}
	}
	if u.OneTimeGains == nil {
		u.OneTimeGains = []OneTimeGain{}
	}
	if u.Goals == nil {
		u.Goals = []Goal{}
	}
	if u.Investments == nil {
		u.Investments = []Investment{}
	}
}
