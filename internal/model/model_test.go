package model

import "testing"

func TestTransactionKey(t *testing.T) {
	a := Transaction{DepartmentName: "Choir", BillRefNumber: "1000", UserName: "alice", TransAmount: 500, TransTime: "20241106143000"}
	b := a
	b.DepartmentName = "Renamed"
	if a.Key() != b.Key() {
		t.Error("department name should not affect identity")
	}

	c := a
	c.TransAmount = 500.5
	if a.Key() == c.Key() {
		t.Error("amount should affect identity")
	}
	if got := a.Key(); got != "20241106143000|1000|alice|500" {
		t.Errorf("Key = %q", got)
	}
}

func TestTargetsFor(t *testing.T) {
	tg := Targets{Departments: map[string]float64{"Choir": 20000}}
	if got := tg.For("Choir"); got != 20000 {
		t.Errorf("For(Choir) = %v", got)
	}
	if got := tg.For("Media"); got != DefaultDepartmentTarget {
		t.Errorf("For(Media) = %v, want default", got)
	}
	tg.Default = 5000
	if got := tg.For("Media"); got != 5000 {
		t.Errorf("For(Media) = %v, want configured default", got)
	}
}
