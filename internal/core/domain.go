package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	Cleared    ClearedStatus = "cleared"
	Uncleared  ClearedStatus = "uncleared"
	Reconciled ClearedStatus = "reconciled"
)

type (
	// ClearedStatus is the remote system's reconciliation state for a
	// transaction.
	ClearedStatus string

	// Date is a calendar day without a time component, the only date
	// form the remote API speaks ("2006-01-02").
	Date struct {
		time.Time
	}

	// Transaction is a fact fetched from the remote system. It is never
	// mutated locally; updates go through explicit API calls that
	// return the new state.
	Transaction struct {
		ID                string        `json:"id"`
		Date              Date          `json:"date"`
		Amount            Milliunits    `json:"amount"`
		Memo              string        `json:"memo,omitempty"`
		Cleared           ClearedStatus `json:"cleared"`
		Approved          bool          `json:"approved"`
		AccountID         string        `json:"account_id"`
		AccountName       string        `json:"account_name,omitempty"`
		PayeeID           string        `json:"payee_id,omitempty"`
		PayeeName         string        `json:"payee_name,omitempty"`
		CategoryID        string        `json:"category_id,omitempty"`
		CategoryName      string        `json:"category_name,omitempty"`
		TransferAccountID string        `json:"transfer_account_id,omitempty"`
		Deleted           bool          `json:"deleted"`
	}

	Account struct {
		ID       string     `json:"id"`
		Name     string     `json:"name"`
		Type     string     `json:"type"`
		OnBudget bool       `json:"on_budget"`
		Closed   bool       `json:"closed"`
		Balance  Milliunits `json:"balance"`
		Deleted  bool       `json:"deleted"`
	}

	Category struct {
		ID              string     `json:"id"`
		CategoryGroupID string     `json:"category_group_id,omitempty"`
		Name            string     `json:"name"`
		Hidden          bool       `json:"hidden"`
		Note            string     `json:"note,omitempty"`
		Budgeted        Milliunits `json:"budgeted"`
		Activity        Milliunits `json:"activity"`
		Balance         Milliunits `json:"balance"`
		Deleted         bool       `json:"deleted"`
	}

	CategoryGroup struct {
		ID         string     `json:"id"`
		Name       string     `json:"name"`
		Hidden     bool       `json:"hidden"`
		Deleted    bool       `json:"deleted"`
		Categories []Category `json:"categories"`
	}

	CurrencyFormat struct {
		ISOCode        string `json:"iso_code"`
		ExampleFormat  string `json:"example_format"`
		CurrencySymbol string `json:"currency_symbol"`
	}

	Budget struct {
		ID             string         `json:"id"`
		Name           string         `json:"name"`
		LastModifiedOn string         `json:"last_modified_on,omitempty"`
		CurrencyFormat CurrencyFormat `json:"currency_format"`
	}

	ScheduledTransaction struct {
		ID           string     `json:"id"`
		DateNext     Date       `json:"date_next"`
		Frequency    string     `json:"frequency"`
		Amount       Milliunits `json:"amount"`
		Memo         string     `json:"memo,omitempty"`
		AccountID    string     `json:"account_id"`
		AccountName  string     `json:"account_name,omitempty"`
		PayeeName    string     `json:"payee_name,omitempty"`
		CategoryID   string     `json:"category_id,omitempty"`
		CategoryName string     `json:"category_name,omitempty"`
		Deleted      bool       `json:"deleted"`
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidCleared = errors.New("invalid cleared status")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Valid reports whether the status is one the remote API accepts.
func (c ClearedStatus) Valid() bool {
	switch c {
	case Cleared, Uncleared, Reconciled:
		return true
	}
	return false
}
