package model

import (
	"errors"
	"testing"
	"time"
)

func TestQueryState_Repair(t *testing.T) {
	tests := []struct {
		name        string
		initialKB   int
		accumulated int
		expectedKB  int
	}{
		{"below threshold keeps previous size", 7, 450, 7},
		{"exact threshold", 0, 1000, 1},
		{"truncating division", 0, 2300, 2},
		{"large body", 3, 1_234_567, 1234},
		{"nothing received", 5, 0, 5},
	}

	for _, test := range tests {
		qs := &QueryState{DisplayedSizeKB: test.initialKB, IsRunning: true}
		qs.AddBytes(test.accumulated)
		qs.Repair()

		if qs.DisplayedSizeKB != test.expectedKB {
			t.Errorf("%s: DisplayedSizeKB = %d, expected %d", test.name, qs.DisplayedSizeKB, test.expectedKB)
		}
		if qs.InterimSizeBytes != 0 {
			t.Errorf("%s: InterimSizeBytes = %d, expected 0", test.name, qs.InterimSizeBytes)
		}
		if qs.IsRunning {
			t.Errorf("%s: IsRunning should be false after Repair", test.name)
		}
	}
}

func TestQueryState_AddBytesDoesNotTouchDisplayedSize(t *testing.T) {
	qs := &QueryState{DisplayedSizeKB: 9}
	qs.AddBytes(5000)
	qs.AddBytes(5000)

	if qs.DisplayedSizeKB != 9 {
		t.Errorf("DisplayedSizeKB changed before Repair: %d", qs.DisplayedSizeKB)
	}
	if qs.InterimSizeBytes != 10000 {
		t.Errorf("InterimSizeBytes = %d, expected 10000", qs.InterimSizeBytes)
	}
}

func TestQueryState_RowsAndErrorAreExclusive(t *testing.T) {
	qs := &QueryState{}

	qs.SetRows(Table{{"a"}, {"1"}})
	qs.SetError(errors.New("boom"))
	if qs.HasRows() {
		t.Error("SetError should clear rows")
	}
	if qs.Error != "boom" {
		t.Errorf("Error = %q, expected boom", qs.Error)
	}

	qs.SetRows(Table{{"a"}})
	if qs.Error != "" {
		t.Errorf("SetRows should clear error, got %q", qs.Error)
	}
	if !qs.HasRows() {
		t.Error("Expected rows after SetRows")
	}
}

func TestQueryState_RetrySeed(t *testing.T) {
	qs := &QueryState{}

	qs.BeginAttempt()
	if qs.RetrySeed != 1 || !qs.IsRunning {
		t.Errorf("After first attempt: seed=%d running=%v", qs.RetrySeed, qs.IsRunning)
	}

	qs.CanceledAttempt()
	if qs.RetrySeed != 1 {
		t.Errorf("Seed should not drop below 1, got %d", qs.RetrySeed)
	}

	qs.BeginAttempt()
	qs.BeginAttempt()
	qs.CanceledAttempt()
	if qs.RetrySeed != 2 {
		t.Errorf("Seed = %d, expected 2", qs.RetrySeed)
	}
}

func TestQueryState_Labels(t *testing.T) {
	qs := &QueryState{}
	if qs.InterimSizeString() != "" {
		t.Errorf("Expected empty interim label, got %q", qs.InterimSizeString())
	}

	qs.AddBytes(1_500_000)
	if got := qs.InterimSizeString(); got != "Downloaded size: 1,500 KB" {
		t.Errorf("InterimSizeString() = %q", got)
	}

	qs.Repair()
	if got := qs.DisplayedSizeString(); got != "Current file size: 1,500 KB" {
		t.Errorf("DisplayedSizeString() = %q", got)
	}

	qs.Elapsed = 1234567 * time.Microsecond
	if got := qs.ElapsedString(); got != "Query Elapsed: 1.235s" {
		t.Errorf("ElapsedString() = %q", got)
	}

	qs.SetRows(Table{{"h"}, {"1"}})
	if got := qs.RowCountString(); got != "Results: 1 row" {
		t.Errorf("RowCountString() = %q", got)
	}
}

func TestAnalysisState(t *testing.T) {
	as := &AnalysisState{}
	as.BeginAttempt()
	if !as.IsRunning {
		t.Error("Expected running after BeginAttempt")
	}

	as.SetPlan("Seq Scan")
	as.SetError(errors.New("Bad Call"))
	if as.Plan != "" || as.Error != "Bad Call" {
		t.Errorf("Unexpected state after SetError: %+v", as)
	}

	as.SetPlan("Index Scan")
	as.Repair()
	if as.Error != "" || as.Plan != "Index Scan" || as.IsRunning {
		t.Errorf("Unexpected state after SetPlan/Repair: %+v", as)
	}
}
