package pipeline

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/theirongolddev/mchango/internal/directory"
	"github.com/theirongolddev/mchango/internal/model"
)

// CollapsedUsers is how many contributors a collapsed department shows.
const CollapsedUsers = 5

// OverallLabel labels the grand total progress bar.
const OverallLabel = "Overall Progress"

// BuildRows converts raw totals into department rows ordered by name.
// Departments come from totals; users without a matching total are ignored.
func BuildRows(totals model.AccountTotals, users model.UserTotals, dir directory.Directory) []model.DepartmentRow {
	rows := make([]model.DepartmentRow, 0, len(totals))
	for dept, total := range totals {
		rows = append(rows, model.DepartmentRow{
			Name:    dept,
			Account: dir.ReverseResolve(dept),
			Total:   total,
			Users:   sortedUsers(users[dept]),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func sortedUsers(m map[string]float64) []model.UserTotal {
	out := make([]model.UserTotal, 0, len(m))
	for name, amount := range m {
		out = append(out, model.UserTotal{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FilterDepartments builds rows and keeps those matching term.
func FilterDepartments(totals model.AccountTotals, users model.UserTotals, dir directory.Directory, term string) []model.DepartmentRow {
	return Search(BuildRows(totals, users, dir), term)
}

// Search keeps rows whose department name, or any contributor name, contains
// term under Unicode case folding. Only an empty term keeps every row; a
// blank one matches names containing that whitespace. The input order is
// preserved.
func Search(rows []model.DepartmentRow, term string) []model.DepartmentRow {
	if term == "" {
		return rows
	}
	fold := cases.Fold()
	needle := fold.String(term)

	var out []model.DepartmentRow
	for _, r := range rows {
		if matches(fold, r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func matches(fold cases.Caser, r model.DepartmentRow, needle string) bool {
	if strings.Contains(fold.String(r.Name), needle) {
		return true
	}
	for _, u := range r.Users {
		if strings.Contains(fold.String(u.Name), needle) {
			return true
		}
	}
	return false
}

// ExpandState records which departments show their full contributor list.
// Methods never mutate the receiver.
type ExpandState map[string]bool

// Toggle returns a copy of s with department's flag flipped.
func (s ExpandState) Toggle(department string) ExpandState {
	next := make(ExpandState, len(s)+1)
	for k, v := range s {
		if v {
			next[k] = true
		}
	}
	if s[department] {
		delete(next, department)
	} else {
		next[department] = true
	}
	return next
}

// Expanded reports whether department is expanded.
func (s ExpandState) Expanded(department string) bool {
	return s[department]
}

// VisibleUsers returns the contributors to show for row and how many are
// hidden behind the "Show More" toggle.
func VisibleUsers(row model.DepartmentRow, state ExpandState) ([]model.UserTotal, int) {
	if state.Expanded(row.Name) || len(row.Users) <= CollapsedUsers {
		return row.Users, 0
	}
	return row.Users[:CollapsedUsers], len(row.Users) - CollapsedUsers
}

// ProgressPercent is current/target as a percentage clamped to [0, 100].
// A non-positive target yields 0.
func ProgressPercent(current, target float64) float64 {
	if target <= 0 || current <= 0 {
		return 0
	}
	pct := current / target * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// ProgressRows returns the overall bar followed by one bar per department,
// in department name order.
func ProgressRows(grandTotal float64, totals model.AccountTotals, targets model.Targets) []model.ProgressRow {
	rows := make([]model.ProgressRow, 0, len(totals)+1)
	rows = append(rows, progressRow(OverallLabel, grandTotal, targets.Overall))

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, progressRow(name, totals[name], targets.For(name)))
	}
	return rows
}

func progressRow(label string, current, target float64) model.ProgressRow {
	return model.ProgressRow{
		Label:   label,
		Current: current,
		Target:  target,
		Percent: ProgressPercent(current, target),
	}
}
