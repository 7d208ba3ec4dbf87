package model

import "strconv"

// UserTotal is one contributor's cumulative amount within a department.
type UserTotal struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DepartmentRow is a department total ready for display.
type DepartmentRow struct {
	Name    string      `json:"name"`
	Account string      `json:"account"` // account code, "N/A" when the mapping has none
	Total   float64     `json:"total"`
	Users   []UserTotal `json:"users"` // amount descending, then name
}

// ProgressRow is one progress bar: a current amount against a target.
type ProgressRow struct {
	Label   string  `json:"label"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Percent float64 `json:"percent"` // 0-100, clamped
}

// DefaultDepartmentTarget applies to departments without an explicit target.
const DefaultDepartmentTarget = 100000

// Targets are the fundraising goals progress is measured against.
type Targets struct {
	Overall     float64            // goal for the grand total
	Default     float64            // goal for departments not listed below
	Departments map[string]float64 // per-department goals by name
}

// For returns the target for a department.
func (t Targets) For(department string) float64 {
	if v, ok := t.Departments[department]; ok {
		return v
	}
	if t.Default > 0 {
		return t.Default
	}
	return DefaultDepartmentTarget
}

func formatKeyAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
