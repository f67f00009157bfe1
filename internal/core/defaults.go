package core

import (
	"strings"
	"time"
)

// DefaultIcon is used for categories created by the user.
const DefaultIcon = "fa-shapes"

// SavingsCategoryID identifies the built-in "Investimentos/Poupança" category.
const SavingsCategoryID = "7"

// IconCatalogue lists the Font Awesome icon names a category may use.
var IconCatalogue = []string{
	"fa-house-chimney",
	"fa-utensils",
	"fa-bus-simple",
	"fa-briefcase-medical",
	"fa-martini-glass-citrus",
	"fa-graduation-cap",
	"fa-piggy-bank",
	"fa-shopping-cart",
	"fa-car",
	"fa-plane",
	"fa-gas-pump",
	"fa-file-invoice-dollar",
	"fa-gift",
	"fa-pills",
	"fa-tshirt",
	"fa-film",
	"fa-paw",
	"fa-heart",
	"fa-wrench",
	"fa-credit-card",
	"fa-mobile-screen-button",
	"fa-wifi",
	"fa-book",
	"fa-gamepad",
}

// IconHTML renders an icon name as the markup stored on a category.
func IconHTML(name string) string {
	return `<i class="fa-solid ` + name + `"></i>`
}

// ResolveIcon accepts either a bare icon name ("fa-car") or its markup and
// returns the stored markup. Icons outside the catalogue are rejected.
func ResolveIcon(icon string) (string, error) {
	name := strings.TrimSpace(icon)
	if strings.HasPrefix(name, "<i") {
		name = strings.TrimPrefix(name, `<i class="fa-solid `)
		name = strings.TrimSuffix(name, `"></i>`)
	}
	if name == DefaultIcon {
		return IconHTML(name), nil
	}
	for _, known := range IconCatalogue {
		if known == name {
			return IconHTML(name), nil
		}
	}
	return "", invalid(FormFixedExpense, "icon", ErrUnknownIcon)
}

// DefaultCategories returns a fresh copy of the built-in fixed categories.
func DefaultCategories() []FixedExpenseCategory {
	return []FixedExpenseCategory{
		{ID: "1", Name: "Moradia", Icon: IconHTML("fa-house-chimney"), AllocationType: AllocationFixed, Color: "#3b82f6"},
		{ID: "2", Name: "Alimentação", Icon: IconHTML("fa-utensils"), AllocationType: AllocationFixed, Color: "#10b981"},
		{ID: "3", Name: "Transporte", Icon: IconHTML("fa-bus-simple"), AllocationType: AllocationFixed, Color: "#f97316"},
		{ID: "4", Name: "Saúde", Icon: IconHTML("fa-briefcase-medical"), AllocationType: AllocationFixed, Color: "#ef4444"},
		{ID: "5", Name: "Lazer", Icon: IconHTML("fa-martini-glass-citrus"), AllocationType: AllocationFixed, Color: "#a855f7"},
		{ID: "6", Name: "Educação", Icon: IconHTML("fa-graduation-cap"), AllocationType: AllocationFixed, Color: "#f59e0b"},
		{ID: SavingsCategoryID, Name: "Investimentos/Poupança", Icon: IconHTML("fa-piggy-bank"), AllocationType: AllocationFixed, Color: "#84cc16"},
	}
}

// NewUserData returns the record given to a freshly created account.
func NewUserData(name string, now time.Time) UserData {
	u := UserData{
		Name:           strings.TrimSpace(name),
		FixedExpenses:  DefaultCategories(),
		LastSavedMonth: MonthIndex(now),
	}
	u.Normalize()
	return u
}

// MonthIndex returns the zero-based month (0 = January) stored in records.
func MonthIndex(t time.Time) int {
	return int(t.Month()) - 1
}
