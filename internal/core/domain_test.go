package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 1 || d.Day() != 15 {
		t.Fatalf("unexpected date: %v", d)
	}
	if d.String() != "2024-01-15" {
		t.Fatalf("unexpected string form: %q", d.String())
	}

	if _, err := ParseDate("15/01/2024"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestTransactionJSON(t *testing.T) {
	raw := `{
		"id": "t-1",
		"date": "2024-03-02",
		"amount": -12340,
		"cleared": "cleared",
		"approved": true,
		"account_id": "a-1",
		"payee_name": "Esselunga",
		"category_name": "Groceries",
		"deleted": false
	}`
	var txn Transaction
	if err := json.Unmarshal([]byte(raw), &txn); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if txn.Amount != -12340 {
		t.Fatalf("amount not decoded as milliunits: %d", txn.Amount)
	}
	if txn.Date.String() != "2024-03-02" {
		t.Fatalf("date not decoded: %v", txn.Date)
	}
	if !txn.Cleared.Valid() {
		t.Fatalf("cleared status should be valid: %q", txn.Cleared)
	}

	out, err := json.Marshal(txn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Transaction
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if again != txn {
		t.Fatalf("transaction changed across encode/decode:\n%+v\n%+v", txn, again)
	}
}

func TestClearedStatusValid(t *testing.T) {
	for _, c := range []ClearedStatus{Cleared, Uncleared, Reconciled} {
		if !c.Valid() {
			t.Fatalf("%q should be valid", c)
		}
	}
	if ClearedStatus("settled").Valid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestPeriodOf(t *testing.T) {
	d := NewDate(2024, 3, 7)
	if got := PeriodOf(d, GranularityMonth); got != "2024-03" {
		t.Fatalf("month period: %q", got)
	}
	if got := PeriodOf(d, GranularityYear); got != "2024" {
		t.Fatalf("year period: %q", got)
	}
}
