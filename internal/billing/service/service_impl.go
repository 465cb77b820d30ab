package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Yassinesbr/support-center/internal/billing/domain"
	"github.com/Yassinesbr/support-center/internal/billing/pricing"
	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/clock"
	"github.com/Yassinesbr/support-center/internal/config"
	obsmetrics "github.com/Yassinesbr/support-center/internal/observability/metrics"
	"github.com/Yassinesbr/support-center/internal/providers/pdf"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
	"github.com/Yassinesbr/support-center/pkg/db"
	"github.com/Yassinesbr/support-center/pkg/db/option"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	BillingCfg *config.BillingConfigHolder
	Invoices   repository.Repository[domain.Invoice]
	PDF        pdf.Provider
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      *config.BillingConfigHolder
	invoices repository.Repository[domain.Invoice]
	pdf      pdf.Provider
	metrics  *obsmetrics.BillingMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("billing.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.BillingCfg,
		invoices: p.Invoices,
		pdf:      p.PDF,
		metrics:  obsmetrics.Billing(),
	}
}

func itemOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order("invoice_items.id ASC")
}

func (s *Service) List(ctx context.Context, req domain.ListInvoicesRequest) ([]*domain.Invoice, error) {
	query := &domain.Invoice{}
	if req.StudentID != nil {
		query.StudentID = *req.StudentID
	}

	return s.invoices.Find(ctx, query,
		option.WithPreload("Student.User"),
		option.WithPreload("Items", itemOrder),
		option.WithPreload("Items.Class"),
		option.WithPreload("Payments"),
		option.WithSortBy(option.QuerySortBy{
			Allow: map[string]bool{"issue_date": true},
			Field: "issue_date",
			Desc:  true,
		}),
		option.ApplyPagination(req.Limit, req.Offset),
	)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	invoice, err := s.invoices.FindOne(ctx, &domain.Invoice{ID: id},
		option.WithPreload("Student.User"),
		option.WithPreload("Items", itemOrder),
		option.WithPreload("Items.Class"),
		option.WithPreload("Payments"),
	)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) GenerateMonthly(ctx context.Context, month string) (*domain.GenerateReport, error) {
	began := time.Now()

	start, end, err := domain.ParseMonth(month, s.clock.Now())
	if err != nil {
		return nil, err
	}
	dueDate := start.AddDate(0, 0, s.cfg.Get().DueDays)

	var students []*studentdomain.Student
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	entries := []domain.GenerateEntry{}
	for _, student := range students {
		classes, err := s.enrolledClasses(ctx, s.db, student.ID)
		if err != nil {
			return nil, err
		}
		if len(classes) == 0 {
			if err := s.rollupStudent(ctx, student.ID); err != nil {
				return nil, err
			}
			continue
		}

		var entry domain.GenerateEntry
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing, err := s.findPeriodInvoice(ctx, tx, student.ID, start, end, false)
			if err != nil {
				return err
			}
			if existing != nil {
				entry = domain.GenerateEntry{StudentID: student.ID, Number: existing.Number, Skipped: true}
				return nil
			}

			created, err := s.createInvoice(ctx, tx, student.ID, classes, start, dueDate)
			if err != nil {
				return err
			}
			if created == nil {
				// Lost a race on the unique number; someone else made it.
				entry = domain.GenerateEntry{StudentID: student.ID, Number: domain.InvoiceNumber(student.ID, start), Skipped: true}
				return nil
			}
			entry = domain.GenerateEntry{StudentID: student.ID, Number: created.Number}
			return nil
		})
		if err != nil {
			return nil, err
		}

		if err := s.rollupStudent(ctx, student.ID); err != nil {
			return nil, err
		}

		if entry.Skipped {
			s.metrics.RecordInvoiceSkipped()
		} else {
			s.metrics.RecordInvoiceGenerated()
		}
		entries = append(entries, entry)
	}

	s.metrics.ObserveRunDuration("generate_monthly", time.Since(began))
	s.log.Info("monthly generation finished",
		zap.String("month", start.Format("2006-01")),
		zap.Int("processed", len(entries)),
	)

	return &domain.GenerateReport{
		Month:   start.Format("2006-01"),
		Created: entries,
	}, nil
}

func (s *Service) EnsureForStudent(ctx context.Context, studentID snowflake.ID) (*domain.Invoice, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&studentdomain.Student{}).Where("id = ?", studentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrStudentNotFound
	}

	start, end, err := domain.ParseMonth("", s.clock.Now())
	if err != nil {
		return nil, err
	}
	dueDate := start.AddDate(0, 0, s.cfg.Get().DueDays)

	classes, err := s.enrolledClasses(ctx, s.db, studentID)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		if err := s.rollupStudent(ctx, studentID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var invoiceID snowflake.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.findPeriodInvoice(ctx, tx, studentID, start, end, true)
		if err != nil {
			return err
		}

		if invoice == nil {
			created, err := s.createInvoice(ctx, tx, studentID, classes, start, dueDate)
			if err != nil {
				return err
			}
			if created != nil {
				invoiceID = created.ID
				return nil
			}
			// Conflict with a concurrent create; augment that one instead.
			invoice, err = s.findPeriodInvoice(ctx, tx, studentID, start, end, true)
			if err != nil {
				return err
			}
			if invoice == nil {
				return domain.ErrInvoiceNotFound
			}
		}

		billed := make(map[snowflake.ID]bool, len(invoice.Items))
		for _, item := range invoice.Items {
			billed[item.ClassID] = true
		}
		var toAdd []classdomain.Class
		for _, class := range classes {
			if !billed[class.ID] {
				toAdd = append(toAdd, class)
			}
		}

		if len(toAdd) > 0 {
			overrides, err := s.loadOverrides(ctx, tx, studentID)
			if err != nil {
				return err
			}
			now := s.clock.Now()
			items := make([]domain.InvoiceItem, 0, len(toAdd))
			for _, class := range toAdd {
				items = append(items, s.buildItem(invoice.ID, class, overrides, start, now))
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		invoiceID = invoice.ID
		return s.rollupInvoice(ctx, tx, invoice.ID, invoice.DueDate, invoice.Status)
	})
	if err != nil {
		return nil, err
	}

	if err := s.rollupStudent(ctx, studentID); err != nil {
		return nil, err
	}

	return s.Get(ctx, invoiceID)
}

func (s *Service) PayInvoice(ctx context.Context, id snowflake.ID, req domain.PayRequest) (*domain.Invoice, error) {
	var studentID snowflake.ID
	var paid bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadInvoiceForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrInvoiceNotFound
		}
		studentID = invoice.StudentID

		var totalRemaining int64
		for _, item := range invoice.Items {
			if due := item.RemainingCents(); due > 0 {
				totalRemaining += due
			}
		}
		if totalRemaining <= 0 {
			return nil
		}

		payAmount := totalRemaining
		if req.AmountCents != nil {
			payAmount = *req.AmountCents
		}
		if payAmount <= 0 {
			return domain.ErrInvalidAmount
		}
		if payAmount > totalRemaining {
			return domain.ErrAmountExceedsDue
		}

		now := s.clock.Now()
		payment := s.buildPayment(invoice.ID, payAmount, req, now)
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		left := payAmount
		for i := range invoice.Items {
			if left <= 0 {
				break
			}
			item := &invoice.Items[i]
			due := item.RemainingCents()
			if due <= 0 {
				continue
			}
			alloc := left
			if due < alloc {
				alloc = due
			}
			if err := s.allocate(ctx, tx, payment.ID, item, alloc, now); err != nil {
				return err
			}
			left -= alloc
		}

		paid = true
		return s.rollupInvoice(ctx, tx, invoice.ID, invoice.DueDate, invoice.Status)
	})
	if err != nil {
		return nil, err
	}

	if err := s.rollupStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if paid {
		s.metrics.RecordPayment("invoice")
	}

	return s.Get(ctx, id)
}

func (s *Service) PayInvoiceItem(ctx context.Context, invoiceID, itemID snowflake.ID, req domain.PayRequest) (*domain.Invoice, error) {
	var studentID snowflake.ID
	var paid bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.loadInvoiceForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrInvoiceNotFound
		}
		studentID = invoice.StudentID

		var item *domain.InvoiceItem
		for i := range invoice.Items {
			if invoice.Items[i].ID == itemID {
				item = &invoice.Items[i]
				break
			}
		}
		if item == nil {
			return domain.ErrInvoiceItemNotFound
		}

		remaining := item.RemainingCents()
		if remaining <= 0 {
			return nil
		}
		if req.AmountCents == nil || *req.AmountCents <= 0 {
			return domain.ErrInvalidAmount
		}
		amount := *req.AmountCents
		if amount > remaining {
			return domain.ErrAmountExceedsDue
		}

		now := s.clock.Now()
		payment := s.buildPayment(invoice.ID, amount, req, now)
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		if err := s.allocate(ctx, tx, payment.ID, item, amount, now); err != nil {
			return err
		}

		paid = true
		return s.rollupInvoice(ctx, tx, invoice.ID, invoice.DueDate, invoice.Status)
	})
	if err != nil {
		return nil, err
	}

	if err := s.rollupStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if paid {
		s.metrics.RecordPayment("item")
	}

	return s.Get(ctx, invoiceID)
}

func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	res := s.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("status = ? AND due_date < ?", domain.InvoiceStatusDue, now).
		Updates(map[string]any{
			"status":     domain.InvoiceStatusOverdue,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", res.RowsAffected))
	}
	s.metrics.RecordOverdue(int(res.RowsAffected))
	return res.RowsAffected, nil
}

// buildItem prices one class for the period and shapes the line item.
func (s *Service) buildItem(invoiceID snowflake.ID, class classdomain.Class, overrides pricing.Overrides, periodStart, now time.Time) domain.InvoiceItem {
	price := pricing.Resolve(class, overrides)
	return domain.InvoiceItem{
		ID:             s.genID.Generate(),
		InvoiceID:      invoiceID,
		ClassID:        class.ID,
		BilledMonth:    periodStart,
		Description:    fmt.Sprintf("%s - %s %d", class.Name, periodStart.Month(), periodStart.Year()),
		Quantity:       1,
		UnitPriceCents: price,
		LineTotalCents: price,
		PaidCents:      0,
		Status:         domain.ItemStatusDue,
		CreatedAt:      now,
	}
}

func (s *Service) buildPayment(invoiceID snowflake.ID, amount int64, req domain.PayRequest, now time.Time) *domain.Payment {
	method := req.Method
	if method == "" {
		method = "manual"
	}
	return &domain.Payment{
		ID:          s.genID.Generate(),
		InvoiceID:   invoiceID,
		AmountCents: amount,
		Method:      method,
		Reference:   req.Reference,
		CreatedAt:   now,
	}
}

// allocate applies alloc cents of a payment to one item and closes the
// item when the allocation zeroes its remaining balance.
func (s *Service) allocate(ctx context.Context, tx *gorm.DB, paymentID snowflake.ID, item *domain.InvoiceItem, alloc int64, now time.Time) error {
	allocation := &domain.PaymentAllocation{
		ID:            s.genID.Generate(),
		PaymentID:     paymentID,
		InvoiceItemID: item.ID,
		AmountCents:   alloc,
		CreatedAt:     now,
	}
	if err := tx.Create(allocation).Error; err != nil {
		return err
	}

	item.PaidCents += alloc
	updates := map[string]any{"paid_cents": item.PaidCents}
	if item.PaidCents == item.LineTotalCents {
		item.Status = domain.ItemStatusPaid
		updates["status"] = domain.ItemStatusPaid
		updates["paid_at"] = now
	}
	return tx.WithContext(ctx).Model(&domain.InvoiceItem{}).Where("id = ?", item.ID).Updates(updates).Error
}

// rollupInvoice recomputes totals and status from the current items.
// CANCELLED stays untouched; the rollup never assigns it.
func (s *Service) rollupInvoice(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, dueDate time.Time, currentStatus string) error {
	var items []domain.InvoiceItem
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("id ASC").Find(&items).Error; err != nil {
		return err
	}

	var subtotal, paid int64
	allPaid := len(items) > 0
	for _, item := range items {
		subtotal += item.LineTotalCents
		paid += item.PaidCents
		if item.Status != domain.ItemStatusPaid {
			allPaid = false
		}
	}

	status := currentStatus
	if currentStatus != domain.InvoiceStatusCancelled {
		switch {
		case allPaid:
			status = domain.InvoiceStatusPaid
		case dueDate.Before(s.clock.Now()):
			status = domain.InvoiceStatusOverdue
		default:
			status = domain.InvoiceStatusDue
		}
	}

	return tx.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", invoiceID).Updates(map[string]any{
		"subtotal_cents": subtotal,
		"paid_cents":     paid,
		"status":         status,
		"updated_at":     s.clock.Now(),
	}).Error
}

// rollupStudent derives the student's payment status from the invoice
// covering the current calendar month.
func (s *Service) rollupStudent(ctx context.Context, studentID snowflake.ID) error {
	start, end, err := domain.ParseMonth("", s.clock.Now())
	if err != nil {
		return err
	}

	invoice, err := s.findPeriodInvoice(ctx, s.db, studentID, start, end, false)
	if err != nil {
		return err
	}

	status := studentdomain.PaymentStatusUnpaid
	if invoice != nil && len(invoice.Items) > 0 {
		var total, paid int64
		for _, item := range invoice.Items {
			total += item.LineTotalCents
			paid += item.PaidCents
		}
		switch {
		case paid >= total && total > 0:
			status = studentdomain.PaymentStatusPaid
		case paid > 0:
			status = studentdomain.PaymentStatusPartial
		}
	}

	return s.db.WithContext(ctx).Model(&studentdomain.Student{}).Where("id = ?", studentID).Updates(map[string]any{
		"payment_status": status,
		"updated_at":     s.clock.Now(),
	}).Error
}

// createInvoice inserts the invoice plus one item per class. Returns
// (nil, nil) when the deterministic number already exists.
func (s *Service) createInvoice(ctx context.Context, tx *gorm.DB, studentID snowflake.ID, classes []classdomain.Class, periodStart, dueDate time.Time) (*domain.Invoice, error) {
	overrides, err := s.loadOverrides(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	invoice := &domain.Invoice{
		ID:        s.genID.Generate(),
		Number:    domain.InvoiceNumber(studentID, periodStart),
		StudentID: studentID,
		IssueDate: now,
		DueDate:   dueDate,
		Status:    domain.InvoiceStatusDue,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]domain.InvoiceItem, 0, len(classes))
	var subtotal int64
	for _, class := range classes {
		item := s.buildItem(invoice.ID, class, overrides, periodStart, now)
		subtotal += item.LineTotalCents
		items = append(items, item)
	}
	invoice.SubtotalCents = subtotal

	res := tx.WithContext(ctx).
		Omit("Items", "Payments", "Student").
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "number"}}, DoNothing: true}).
		Create(invoice)
	if res.Error != nil {
		if db.IsDuplicateKeyErr(res.Error) {
			return nil, nil
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}

	s.log.Info("invoice created",
		zap.String("number", invoice.Number),
		zap.String("student_id", studentID.String()),
		zap.Int64("subtotal_cents", subtotal),
	)

	return invoice, nil
}

// findPeriodInvoice matches the student's invoice for the period either
// by its deterministic number or by any item billed inside the period.
// Items come back in creation order.
func (s *Service) findPeriodInvoice(ctx context.Context, tx *gorm.DB, studentID snowflake.ID, start, end time.Time, lock bool) (*domain.Invoice, error) {
	number := domain.InvoiceNumber(studentID, start)

	q := tx.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("number = ? OR id IN (SELECT invoice_id FROM invoice_items WHERE billed_month >= ? AND billed_month < ?)", number, start, end)
	if lock {
		q = db.ForUpdate(q)
	}

	var invoice domain.Invoice
	if err := q.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoice.ID).Order("id ASC").Find(&invoice.Items).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// loadInvoiceForUpdate locks the invoice row and loads its items in
// creation order. Returns (nil, nil) when the invoice does not exist.
func (s *Service) loadInvoiceForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := db.ForUpdate(tx.WithContext(ctx)).Where("id = ?", id).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoice.ID).Order("id ASC").Find(&invoice.Items).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) enrolledClasses(ctx context.Context, tx *gorm.DB, studentID snowflake.ID) ([]classdomain.Class, error) {
	var classes []classdomain.Class
	err := tx.WithContext(ctx).Raw(`
		SELECT c.*
		FROM classes c
		JOIN class_students cs ON cs.class_id = c.id
		WHERE cs.student_id = ?
		ORDER BY cs.id ASC
	`, studentID).Scan(&classes).Error
	return classes, err
}

func (s *Service) loadOverrides(ctx context.Context, tx *gorm.DB, studentID snowflake.ID) (pricing.Overrides, error) {
	var rows []domain.PriceOverride
	if err := tx.WithContext(ctx).Where("student_id = ?", studentID).Find(&rows).Error; err != nil {
		return nil, err
	}
	overrides := make(pricing.Overrides, len(rows))
	for _, row := range rows {
		overrides[row.ClassID] = row.PriceCents
	}
	return overrides, nil
}
