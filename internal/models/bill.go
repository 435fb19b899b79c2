package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency describes how often a bill recurs.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBiMonthly Frequency = "bi-monthly"
	FrequencyOneTime   Frequency = "one-time"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyBiMonthly, FrequencyOneTime:
		return true
	}
	return false
}

// Status is the payment state of a bill.
type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusUnpaid || s == StatusPaid
}

// Category is a free grouping for bills, not ownership.
type Category string

const (
	CategoryFamily  Category = "Family"
	CategoryGina    Category = "Gina"
	CategoryDrew    Category = "Drew"
	CategoryOneTime Category = "One-time"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFamily, CategoryGina, CategoryDrew, CategoryOneTime:
		return true
	}
	return false
}

// Subcategory is an optional finer grouping. The empty value means unset.
type Subcategory string

const (
	SubcategoryHeating     Subcategory = "Heating"
	SubcategoryFood        Subcategory = "Food"
	SubcategoryElectricity Subcategory = "Electricity"
	SubcategoryInternet    Subcategory = "Internet"
	SubcategoryPhone       Subcategory = "Phone"
	SubcategoryInsurance   Subcategory = "Insurance"
	SubcategoryOther       Subcategory = "Other"
	SubcategoryNone        Subcategory = ""
)

// Valid reports whether sc is a known subcategory (empty is allowed).
func (sc Subcategory) Valid() bool {
	switch sc {
	case SubcategoryHeating, SubcategoryFood, SubcategoryElectricity,
		SubcategoryInternet, SubcategoryPhone, SubcategoryInsurance,
		SubcategoryOther, SubcategoryNone:
		return true
	}
	return false
}

// PaymentMethod describes how a bill is paid. Informational only.
type PaymentMethod string

const (
	PaymentMethodURL  PaymentMethod = "url"
	PaymentMethodApp  PaymentMethod = "app"
	PaymentMethodMail PaymentMethod = "mail"
	PaymentMethodNone PaymentMethod = ""
)

// Valid reports whether m is a known payment method (empty is allowed).
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodURL, PaymentMethodApp, PaymentMethodMail, PaymentMethodNone:
		return true
	}
	return false
}

// Validation errors returned by Bill.Validate.
var (
	ErrNameRequired    = errors.New("bill name is required")
	ErrNegativeAmount  = errors.New("bill amount must be non-negative")
	ErrDueDateRequired = errors.New("bill due date is required")
)

// Bill represents a single payable obligation.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	// Assigned by the store on creation.
	ID string

	// UserID is the owner. All queries are scoped to this.
	UserID string

	// Name is the human-readable bill name (e.g. "Electric", "Rent").
	Name string

	// Amount is the amount due. Decimal to avoid float drift in sums.
	Amount decimal.Decimal

	// DueDate is the calendar day the bill is due, midnight UTC.
	DueDate time.Time

	// Frequency determines recurrence. Monthly bills get a successor
	// generated one calendar month after the current occurrence.
	Frequency Frequency

	// Category and Subcategory group bills for analysis.
	Category    Category
	Subcategory Subcategory

	// Status is unpaid or paid. PaidDate is set iff Status is paid.
	Status   Status
	PaidDate *time.Time

	// IsAutomatic flags the bill for auto-pay reconciliation: unpaid
	// automatic bills due today are marked paid on load.
	IsAutomatic bool

	// PaymentURL and PaymentMethod describe where/how to pay.
	// Informational only; nothing in the tracker acts on them.
	PaymentURL    string
	PaymentMethod PaymentMethod

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the store.
	CreatedAt int64
	UpdatedAt int64
}

// Validate checks required fields and enum membership.
func (b *Bill) Validate() error {
	if b.Name == "" {
		return ErrNameRequired
	}
	if b.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if b.DueDate.IsZero() {
		return ErrDueDateRequired
	}
	if !b.Frequency.Valid() {
		return fmt.Errorf("invalid frequency: %q", b.Frequency)
	}
	if !b.Category.Valid() {
		return fmt.Errorf("invalid category: %q", b.Category)
	}
	if !b.Subcategory.Valid() {
		return fmt.Errorf("invalid subcategory: %q", b.Subcategory)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("invalid status: %q", b.Status)
	}
	if !b.PaymentMethod.Valid() {
		return fmt.Errorf("invalid payment method: %q", b.PaymentMethod)
	}
	if (b.Status == StatusPaid) != (b.PaidDate != nil) {
		return fmt.Errorf("paid_date must be set iff status is paid (status=%s)", b.Status)
	}
	return nil
}

// MarkPaid transitions the bill to paid on the given day.
func (b *Bill) MarkPaid(on time.Time) {
	day := Day(on)
	b.Status = StatusPaid
	b.PaidDate = &day
}

// MarkUnpaid transitions the bill back to unpaid and clears the paid date.
func (b *Bill) MarkUnpaid() {
	b.Status = StatusUnpaid
	b.PaidDate = nil
}

// NextOccurrence returns a copy of the bill due on nextDue with status reset
// to unpaid, paid date cleared, and no ID (the store assigns a fresh one).
func (b *Bill) NextOccurrence(nextDue time.Time) *Bill {
	next := *b
	next.ID = ""
	next.DueDate = Day(nextDue)
	next.Status = StatusUnpaid
	next.PaidDate = nil
	next.CreatedAt = 0
	next.UpdatedAt = 0
	return &next
}

// Day normalizes t to midnight UTC, discarding the time-of-day component.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO 8601 calendar date (2006-01-02) as a midnight-UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDay renders a day as an ISO 8601 calendar date.
func FormatDay(t time.Time) string {
	return t.Format(time.DateOnly)
}
