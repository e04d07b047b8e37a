package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateLayout is the calendar date layout used on the wire and in forms.
const DateLayout = "2006-01-02"

type (
	Kind string

	// Date is a calendar date stored as midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID        int64
		Kind      Kind
		Category  string // Required for expenses only
		Date      Date
		Amount    Money
		CreatedAt time.Time
	}

	// Draft is the raw user input for a new transaction.
	Draft struct {
		Kind     Kind
		Category string
		Date     string
		Amount   string
	}

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Name   string
		Amount Money
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingCategory = errors.New("missing category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidKind     = errors.New("invalid transaction kind")
)

// ParseKind accepts the wire values and the legacy Italian labels.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "guadagno":
		return Income, nil
	case "expense", "spesa":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// Label returns the Italian label shown to the user.
func (k Kind) Label() string {
	switch k {
	case Income:
		return "guadagno"
	case Expense:
		return "spesa"
	default:
		return string(k)
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string. Out of range days such as 2024-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// AddDays returns the date n calendar days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the invariants every stored transaction must hold.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Kind == Expense && strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	return t.Date.Validate()
}

// Parse validates the draft and returns a transaction without ID and CreatedAt.
//
// Checks run in the order amount, category, date so the first problem the
// user sees matches the form layout. Income never carries a category.
func (d Draft) Parse() (Transaction, error) {
	if !d.Kind.Valid() {
		return Transaction{}, ErrInvalidKind
	}

	cents, err := ParseDecimalToCents(d.Amount)
	if err != nil {
		return Transaction{}, ErrInvalidAmount
	}

	category := strings.TrimSpace(d.Category)
	if d.Kind == Expense && category == "" {
		return Transaction{}, ErrMissingCategory
	}
	if d.Kind == Income {
		category = ""
	}

	date, err := ParseDate(d.Date)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Kind:     d.Kind,
		Category: category,
		Date:     date,
		Amount:   Money{Cents: cents},
	}, nil
}
