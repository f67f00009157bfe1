package tips

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"orcamento/internal/core"
)

// TipCount is how many tips providers are asked for.
const TipCount = 3

var (
	// ErrNoIncome is returned when there is no income to base advice on.
	ErrNoIncome = errors.New("add your salary to receive personalised tips")
	// ErrNoTips is returned when a provider answered without usable tips.
	ErrNoTips = errors.New("no tips returned")
	// ErrDisabled is returned by the none provider.
	ErrDisabled = errors.New("tip generation is disabled")
)

// Tip is one piece of savings advice.
type Tip struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Request carries the figures tips are generated from.
type Request struct {
	TotalIncome      float64
	FixedExpenses    []core.FixedExpenseCategory
	OneTimeExpenses  []core.OneTimeExpense
	RemainingBalance float64
}

// Generator produces savings tips.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]Tip, error)
}

// NewRequest builds a Request from the current budget.
func NewRequest(u core.UserData) Request {
	s := core.Summarize(u)
	return Request{
		TotalIncome:      s.TotalIncome,
		FixedExpenses:    u.FixedExpenses,
		OneTimeExpenses:  u.OneTimeExpenses,
		RemainingBalance: s.RemainingBalance,
	}
}

// Validate rejects requests no provider should be called for.
func (r Request) Validate() error {
	if r.TotalIncome <= 0 {
		return ErrNoIncome
	}
	return nil
}

// Fingerprint identifies requests that would produce the same prompt.
func (r Request) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.2f|%.2f", r.TotalIncome, r.RemainingBalance)
	for _, c := range r.FixedExpenses {
		fmt.Fprintf(&b, "|f:%s:%.2f", c.Name, core.CategoryAmount(c, r.TotalIncome))
	}
	for _, e := range r.OneTimeExpenses {
		fmt.Fprintf(&b, "|o:%s:%.2f", e.Name, e.Value)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// cleanTips drops empty entries and caps the list.
func cleanTips(in []Tip) []Tip {
	out := make([]Tip, 0, len(in))
	for _, t := range in {
		t.Title = strings.TrimSpace(t.Title)
		t.Description = strings.TrimSpace(t.Description)
		if t.Title == "" && t.Description == "" {
			continue
		}
		out = append(out, t)
		if len(out) == TipCount {
			break
		}
	}
	return out
}
