package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"orcamento/internal/core"
	ports "orcamento/internal/sheets"
)

// parseSnapshotRows converts a values matrix (as returned by Sheets API) into
// the rows of userID. A header row, short rows and rows whose first cell is
// not a timestamp are skipped.
func parseSnapshotRows(values [][]interface{}, userID string) []ports.SnapshotRow {
	var out []ports.SnapshotRow
	for _, raw := range values {
		row := toStrings(raw)
		if len(row) < 9 {
			continue
		}
		savedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		if strings.TrimSpace(row[1]) != userID {
			continue
		}
		month, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil || month < 1 || month > 12 {
			continue
		}

		nums := make([]float64, 6)
		ok := true
		for i := range nums {
			v, err := parseNumber(row[3+i])
			if err != nil {
				ok = false
				break
			}
			nums[i] = v
		}
		if !ok {
			continue
		}

		goals := 0
		if g := safeGet(row, 9); g != "" {
			goals, _ = strconv.Atoi(g)
		}

		income, expenses, invested := nums[0], nums[1], nums[2]
		out = append(out, ports.SnapshotRow{
			SavedAt: savedAt,
			UserID:  userID,
			Month:   month - 1,
			Snapshot: core.BudgetSnapshot{
				TotalIncome:           income,
				TotalExpenses:         expenses,
				TotalInvested:         invested,
				DiscretionaryIncome:   core.DiscretionaryIncome(income, expenses),
				RemainingBalance:      nums[3],
				PreviousMonthExpenses: nums[4],
				ExpenseDelta:          nums[5],
			},
			Goals: goals,
		})
	}
	return out
}

// parseNumber accepts raw numbers and locale-formatted strings.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	neg := strings.HasPrefix(s, "-")
	v, err := core.ParseAmount(strings.TrimPrefix(s, "-"))
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch t := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return strings.TrimSpace(arr[idx])
	}
	return ""
}
