// Package domain contains core types for the billing engine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
)

const (
	InvoiceStatusDue       = "DUE"
	InvoiceStatusOverdue   = "OVERDUE"
	InvoiceStatusPaid      = "PAID"
	InvoiceStatusCancelled = "CANCELLED"
)

const (
	ItemStatusDue    = "DUE"
	ItemStatusPaid   = "PAID"
	ItemStatusWaived = "WAIVED"
)

// Invoice covers one student and one billing period. Number is unique
// and deterministic per (student, month); subtotal and paid totals are
// derived from items by the rollup, never hand-set.
type Invoice struct {
	ID            snowflake.ID           `gorm:"primaryKey" json:"id"`
	Number        string                 `gorm:"column:number;not null;uniqueIndex" json:"number"`
	StudentID     snowflake.ID           `gorm:"column:student_id;not null;index" json:"studentId"`
	Student       *studentdomain.Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	IssueDate     time.Time              `gorm:"column:issue_date;not null" json:"issueDate"`
	DueDate       time.Time              `gorm:"column:due_date;not null" json:"dueDate"`
	Status        string                 `gorm:"column:status;not null;default:DUE" json:"status"`
	SubtotalCents int64                  `gorm:"column:subtotal_cents;not null;default:0" json:"subtotalCents"`
	PaidCents     int64                  `gorm:"column:paid_cents;not null;default:0" json:"paidCents"`
	Items         []InvoiceItem          `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments      []Payment              `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	CreatedAt     time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt     time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one class charge on an invoice. paidCents only grows
// and never exceeds lineTotalCents; the item flips to PAID exactly when
// they are equal.
type InvoiceItem struct {
	ID             snowflake.ID       `gorm:"primaryKey" json:"id"`
	InvoiceID      snowflake.ID       `gorm:"column:invoice_id;not null;index" json:"invoiceId"`
	ClassID        snowflake.ID       `gorm:"column:class_id;not null;index" json:"classId"`
	Class          *classdomain.Class `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	BilledMonth    time.Time          `gorm:"column:billed_month;not null;index" json:"billedMonth"`
	Description    string             `gorm:"column:description;not null" json:"description"`
	Quantity       int                `gorm:"column:quantity;not null;default:1" json:"quantity"`
	UnitPriceCents int64              `gorm:"column:unit_price_cents;not null" json:"unitPriceCents"`
	LineTotalCents int64              `gorm:"column:line_total_cents;not null" json:"lineTotalCents"`
	PaidCents      int64              `gorm:"column:paid_cents;not null;default:0" json:"paidCents"`
	Status         string             `gorm:"column:status;not null;default:DUE" json:"status"`
	PaidAt         *time.Time         `gorm:"column:paid_at" json:"paidAt,omitempty"`
	CreatedAt      time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// RemainingCents is the unpaid portion of the item.
func (i InvoiceItem) RemainingCents() int64 {
	return i.LineTotalCents - i.PaidCents
}

// Payment is an append-only ledger entry against an invoice.
type Payment struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID `gorm:"column:invoice_id;not null;index" json:"invoiceId"`
	AmountCents int64        `gorm:"column:amount_cents;not null" json:"amountCents"`
	Method      string       `gorm:"column:method;not null;default:manual" json:"method"`
	Reference   *string      `gorm:"column:reference" json:"reference,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// PaymentAllocation applies a portion of a payment to one item. A
// payment's allocations sum to its amount; an item's allocations sum to
// its paidCents.
type PaymentAllocation struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	PaymentID     snowflake.ID `gorm:"column:payment_id;not null;index" json:"paymentId"`
	InvoiceItemID snowflake.ID `gorm:"column:invoice_item_id;not null;index" json:"invoiceItemId"`
	AmountCents   int64        `gorm:"column:amount_cents;not null" json:"amountCents"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (PaymentAllocation) TableName() string { return "payment_allocations" }

// PriceOverride pins a per-student price for one class. Consulted only
// when an item is created.
type PriceOverride struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	StudentID  snowflake.ID `gorm:"column:student_id;not null;uniqueIndex:idx_price_overrides_student_class" json:"studentId"`
	ClassID    snowflake.ID `gorm:"column:class_id;not null;uniqueIndex:idx_price_overrides_student_class" json:"classId"`
	PriceCents int64        `gorm:"column:price_cents;not null" json:"priceCents"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (PriceOverride) TableName() string { return "price_overrides" }
