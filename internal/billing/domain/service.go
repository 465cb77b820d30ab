package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context, req ListInvoicesRequest) ([]*Invoice, error)
	Get(ctx context.Context, id snowflake.ID) (*Invoice, error)

	// GenerateMonthly runs the batch generation for a period. Month is
	// "YYYY-MM"; empty means the current month.
	GenerateMonthly(ctx context.Context, month string) (*GenerateReport, error)

	// EnsureForStudent creates or augments the student's current-month
	// invoice after an enrollment change. Returns nil when the student
	// has no classes.
	EnsureForStudent(ctx context.Context, studentID snowflake.ID) (*Invoice, error)

	PayInvoice(ctx context.Context, id snowflake.ID, req PayRequest) (*Invoice, error)
	PayInvoiceItem(ctx context.Context, invoiceID, itemID snowflake.ID, req PayRequest) (*Invoice, error)

	InvoicePDF(ctx context.Context, id snowflake.ID) (*PDFDocument, error)

	// MarkOverdue flips DUE invoices past their due date to OVERDUE and
	// returns how many rows changed.
	MarkOverdue(ctx context.Context) (int64, error)
}

type ListInvoicesRequest struct {
	StudentID *snowflake.ID
	Limit     int
	Offset    int
}

// PayRequest covers both whole-invoice and single-item payments. A nil
// AmountCents on a whole-invoice payment means full remaining payoff.
type PayRequest struct {
	AmountCents *int64  `json:"amountCents"`
	Method      string  `json:"method"`
	Reference   *string `json:"reference"`
}

type GenerateReport struct {
	Month   string          `json:"month"`
	Created []GenerateEntry `json:"created"`
}

type GenerateEntry struct {
	StudentID snowflake.ID `json:"studentId"`
	Number    string       `json:"number"`
	Skipped   bool         `json:"skipped,omitempty"`
}

type PDFDocument struct {
	Content  []byte
	Filename string
}

// ParseMonth parses "YYYY-MM" into the UTC period [start, end). An empty
// month resolves to the month containing now.
func ParseMonth(month string, now time.Time) (start, end time.Time, err error) {
	if month == "" {
		now = now.UTC()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		start, err = time.Parse("2006-01", month)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidMonth
		}
	}
	return start, start.AddDate(0, 1, 0), nil
}

// InvoiceNumber is the deterministic per student and month number, used
// both for lookup and creation.
func InvoiceNumber(studentID snowflake.ID, periodStart time.Time) string {
	return fmt.Sprintf("INV-%s-%04d-%02d", studentID, periodStart.Year(), int(periodStart.Month()))
}
