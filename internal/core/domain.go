package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Category is fixed reference data seeded at startup; the ledger never
	// mutates it.
	Category struct {
		ID   int64           `json:"id"`
		Name string          `json:"name"`
		Type TransactionType `json:"type"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		Type        TransactionType `json:"type"`
		Category    int64           `json:"category"`
		Amount      int64           `json:"amount"`
		Date        Date            `json:"date"`
		Description string          `json:"description,omitempty"`
	}
)

// ValidationError marks a client-supplied transaction that cannot be persisted.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var (
	ErrMissingType     = ValidationError("missing transaction type")
	ErrMissingCategory = ValidationError("missing category")
	ErrMissingAmount   = ValidationError("missing or zero amount")
	ErrMissingDate     = ValidationError("missing date")
	ErrInvalidType     = ValidationError("transaction type must be income or expense")
	ErrInvalidDate     = ValidationError("date must be in YYYY-MM-DD form")
)

// IsValidationError reports whether err originates from transaction validation.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// NotFoundError is returned when no transaction matches the requested ID.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction with ID %d not found", e.ID)
}

// IsNotFound reports whether err indicates a missing transaction.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Validate enforces the presence rules applied before any write: type,
// category, amount and date are required. A zero amount is rejected the same
// way a missing one is; description stays optional. The category is not
// checked against the registry.
func (t Transaction) Validate() error {
	if t.Type == "" {
		return ErrMissingType
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Category == 0 {
		return ErrMissingCategory
	}
	if t.Amount == 0 {
		return ErrMissingAmount
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON renders the date as a "YYYY-MM-DD" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s: expected string", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
