package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
	"github.com/Yassinesbr/support-center/internal/billing/domain"
	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/clock"
	"github.com/Yassinesbr/support-center/internal/config"
	obsmetrics "github.com/Yassinesbr/support-center/internal/observability/metrics"
	"github.com/Yassinesbr/support-center/internal/providers/pdf"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

var sep1 = time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&teacherdomain.Teacher{},
		&studentdomain.Student{},
		&classdomain.Class{},
		&classdomain.Enrollment{},
		&domain.PriceOverride{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.Payment{},
		&domain.PaymentAllocation{},
	))
	return db
}

func newBillingService(t *testing.T, db *gorm.DB, fc *clock.FakeClock) *Service {
	t.Helper()

	obsmetrics.ResetBillingMetricsForTest()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fc,
		BillingCfg: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		Invoices:   repository.ProvideStore[domain.Invoice](db),
		PDF:        pdf.New(),
	})
	return svc.(*Service)
}

func seedStudent(t *testing.T, db *gorm.DB, node *snowflake.Node, email string) *studentdomain.Student {
	t.Helper()

	user := &authdomain.User{
		ID:           node.Generate(),
		FirstName:    "Test",
		LastName:     "Student",
		Email:        email,
		PasswordHash: "x",
		Role:         authdomain.RoleStudent,
	}
	require.NoError(t, db.Create(user).Error)

	student := &studentdomain.Student{
		ID:            node.Generate(),
		UserID:        user.ID,
		PaymentStatus: studentdomain.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

func seedClass(t *testing.T, db *gorm.DB, node *snowflake.Node, name, mode string, priceCents int64) *classdomain.Class {
	t.Helper()

	class := &classdomain.Class{
		ID:          node.Generate(),
		Name:        name,
		PricingMode: mode,
	}
	switch mode {
	case classdomain.PricingModeFixedTotal:
		class.FixedMonthlyPriceCents = &priceCents
	default:
		class.MonthlyPriceCents = &priceCents
	}
	require.NoError(t, db.Create(class).Error)
	return class
}

func enroll(t *testing.T, db *gorm.DB, node *snowflake.Node, classID, studentID snowflake.ID) {
	t.Helper()

	require.NoError(t, db.Create(&classdomain.Enrollment{
		ID:        node.Generate(),
		ClassID:   classID,
		StudentID: studentID,
	}).Error)
}

func studentStatus(t *testing.T, db *gorm.DB, id snowflake.ID) string {
	t.Helper()

	var student studentdomain.Student
	require.NoError(t, db.First(&student, "id = ?", id).Error)
	return student.PaymentStatus
}

func TestGenerateMonthly_CreatesInvoice(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "gen@example.com")
	algebra := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	physics := seedClass(t, db, svc.genID, "Physics", classdomain.PricingModePerStudent, 20000)
	enroll(t, db, svc.genID, algebra.ID, student.ID)
	enroll(t, db, svc.genID, physics.ID, student.ID)

	report, err := svc.GenerateMonthly(ctx, "2026-09")
	require.NoError(t, err)

	assert.Equal(t, "2026-09", report.Month)
	require.Len(t, report.Created, 1)
	assert.Equal(t, student.ID, report.Created[0].StudentID)
	assert.False(t, report.Created[0].Skipped)
	assert.Equal(t, fmt.Sprintf("INV-%s-2026-09", student.ID), report.Created[0].Number)

	invoices, err := svc.List(ctx, domain.ListInvoicesRequest{StudentID: &student.ID})
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	invoice := invoices[0]
	assert.Equal(t, domain.InvoiceStatusDue, invoice.Status)
	assert.Equal(t, int64(30000), invoice.SubtotalCents)
	assert.Equal(t, int64(0), invoice.PaidCents)
	assert.Equal(t, time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC), invoice.DueDate.UTC())

	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "Algebra - September 2026", invoice.Items[0].Description)
	assert.Equal(t, int64(10000), invoice.Items[0].LineTotalCents)
	assert.Equal(t, "Physics - September 2026", invoice.Items[1].Description)
	assert.Equal(t, int64(20000), invoice.Items[1].LineTotalCents)

	assert.Equal(t, studentdomain.PaymentStatusUnpaid, studentStatus(t, db, student.ID))
}

func TestListInvoices_Pagination(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		student := seedStudent(t, db, svc.genID, email)
		enroll(t, db, svc.genID, class.ID, student.ID)
	}

	_, err := svc.GenerateMonthly(ctx, "2026-09")
	require.NoError(t, err)

	all, err := svc.List(ctx, domain.ListInvoicesRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	page, err := svc.List(ctx, domain.ListInvoicesRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	rest, err := svc.List(ctx, domain.ListInvoicesRequest{Limit: 10, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestGenerateMonthly_Idempotent(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "idem@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	first, err := svc.GenerateMonthly(ctx, "2026-09")
	require.NoError(t, err)
	require.Len(t, first.Created, 1)
	assert.False(t, first.Created[0].Skipped)

	second, err := svc.GenerateMonthly(ctx, "2026-09")
	require.NoError(t, err)
	require.Len(t, second.Created, 1)
	assert.True(t, second.Created[0].Skipped)
	assert.Equal(t, first.Created[0].Number, second.Created[0].Number)

	var invoiceCount, itemCount int64
	require.NoError(t, db.Model(&domain.Invoice{}).Count(&invoiceCount).Error)
	require.NoError(t, db.Model(&domain.InvoiceItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), invoiceCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestGenerateMonthly_SkipsStudentsWithoutClasses(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	seedStudent(t, db, svc.genID, "idle@example.com")

	report, err := svc.GenerateMonthly(ctx, "2026-09")
	require.NoError(t, err)
	assert.Empty(t, report.Created)

	var count int64
	require.NoError(t, db.Model(&domain.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGenerateMonthly_InvalidMonth(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db, clock.NewFakeClock(sep1))

	_, err := svc.GenerateMonthly(context.Background(), "September 2026")
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}

func TestGenerateMonthly_FixedTotalChargedPerStudent(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	a := seedStudent(t, db, svc.genID, "fixed-a@example.com")
	b := seedStudent(t, db, svc.genID, "fixed-b@example.com")
	workshop := seedClass(t, db, svc.genID, "Workshop", classdomain.PricingModeFixedTotal, 50000)
	enroll(t, db, svc.genID, workshop.ID, a.ID)
	enroll(t, db, svc.genID, workshop.ID, b.ID)

	report, err := svc.GenerateMonthly(ctx, "2026-09")
	require.NoError(t, err)
	require.Len(t, report.Created, 2)

	// Each enrolled student is charged the full fixed amount.
	for _, studentID := range []snowflake.ID{a.ID, b.ID} {
		id := studentID
		invoices, err := svc.List(ctx, domain.ListInvoicesRequest{StudentID: &id})
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, int64(50000), invoices[0].SubtotalCents)
	}
}

func TestEnsureForStudent_NoClasses(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "empty@example.com")

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, invoice)
	assert.Equal(t, studentdomain.PaymentStatusUnpaid, studentStatus(t, db, student.ID))
}

func TestEnsureForStudent_UnknownStudent(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db, clock.NewFakeClock(sep1))

	_, err := svc.EnsureForStudent(context.Background(), snowflake.ID(12345))
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestEnsureForStudent_CreatesThenAugments(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "augment@example.com")
	algebra := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, algebra.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, invoice)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, int64(10000), invoice.SubtotalCents)

	physics := seedClass(t, db, svc.genID, "Physics", classdomain.PricingModePerStudent, 20000)
	enroll(t, db, svc.genID, physics.ID, student.ID)

	augmented, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, augmented)
	assert.Equal(t, invoice.ID, augmented.ID)
	require.Len(t, augmented.Items, 2)
	assert.Equal(t, int64(30000), augmented.SubtotalCents)

	// Rerunning without changes adds nothing.
	again, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, again.Items, 2)
}

func TestEnsureForStudent_AppliesPriceOverride(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "override@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 30000)
	enroll(t, db, svc.genID, class.ID, student.ID)
	require.NoError(t, db.Create(&domain.PriceOverride{
		ID:         svc.genID.Generate(),
		StudentID:  student.ID,
		ClassID:    class.ID,
		PriceCents: 5000,
	}).Error)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, int64(5000), invoice.Items[0].UnitPriceCents)
	assert.Equal(t, int64(5000), invoice.SubtotalCents)
}

func TestPayInvoice_AllocatesInItemOrder(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "alloc@example.com")
	first := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	second := seedClass(t, db, svc.genID, "Physics", classdomain.PricingModePerStudent, 20000)
	enroll(t, db, svc.genID, first.ID, student.ID)
	enroll(t, db, svc.genID, second.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	amount := int64(15000)
	paid, err := svc.PayInvoice(ctx, invoice.ID, domain.PayRequest{AmountCents: &amount})
	require.NoError(t, err)

	require.Len(t, paid.Items, 2)
	assert.Equal(t, int64(10000), paid.Items[0].PaidCents)
	assert.Equal(t, domain.ItemStatusPaid, paid.Items[0].Status)
	require.NotNil(t, paid.Items[0].PaidAt)
	assert.Equal(t, int64(5000), paid.Items[1].PaidCents)
	assert.Equal(t, domain.ItemStatusDue, paid.Items[1].Status)
	assert.Nil(t, paid.Items[1].PaidAt)

	assert.Equal(t, int64(15000), paid.PaidCents)
	assert.Equal(t, domain.InvoiceStatusDue, paid.Status)
	assert.Equal(t, studentdomain.PaymentStatusPartial, studentStatus(t, db, student.ID))

	// One payment, allocations summing to its amount.
	require.Len(t, paid.Payments, 1)
	assert.Equal(t, amount, paid.Payments[0].AmountCents)
	var allocSum int64
	require.NoError(t, db.Model(&domain.PaymentAllocation{}).
		Where("payment_id = ?", paid.Payments[0].ID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&allocSum).Error)
	assert.Equal(t, amount, allocSum)
}

func TestPayInvoice_DefaultAmountPaysInFull(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "full@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 30000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	paid, err := svc.PayInvoice(ctx, invoice.ID, domain.PayRequest{Method: "cash"})
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.Equal(t, int64(30000), paid.PaidCents)
	require.Len(t, paid.Payments, 1)
	assert.Equal(t, "cash", paid.Payments[0].Method)
	assert.Equal(t, studentdomain.PaymentStatusPaid, studentStatus(t, db, student.ID))
}

func TestPayInvoice_RejectsOverpayment(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "over@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	amount := int64(10001)
	_, err = svc.PayInvoice(ctx, invoice.ID, domain.PayRequest{AmountCents: &amount})
	assert.ErrorIs(t, err, domain.ErrAmountExceedsDue)

	// Rejected before any write.
	var paymentCount int64
	require.NoError(t, db.Model(&domain.Payment{}).Count(&paymentCount).Error)
	assert.Equal(t, int64(0), paymentCount)

	fresh, err := svc.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fresh.PaidCents)
}

func TestPayInvoice_RejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "zero@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	zero := int64(0)
	_, err = svc.PayInvoice(ctx, invoice.ID, domain.PayRequest{AmountCents: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestPayInvoice_FullyPaidIsNoop(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "noop@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	_, err = svc.PayInvoice(ctx, invoice.ID, domain.PayRequest{})
	require.NoError(t, err)

	again, err := svc.PayInvoice(ctx, invoice.ID, domain.PayRequest{})
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusPaid, again.Status)
	require.Len(t, again.Payments, 1)
}

func TestPayInvoice_UnknownInvoice(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(t, db, clock.NewFakeClock(sep1))

	_, err := svc.PayInvoice(context.Background(), snowflake.ID(999), domain.PayRequest{})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestPayInvoiceItem_PartialThenClose(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "item@example.com")
	first := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	second := seedClass(t, db, svc.genID, "Physics", classdomain.PricingModePerStudent, 20000)
	enroll(t, db, svc.genID, first.ID, student.ID)
	enroll(t, db, svc.genID, second.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	target := invoice.Items[1]

	amount := int64(8000)
	paid, err := svc.PayInvoiceItem(ctx, invoice.ID, target.ID, domain.PayRequest{AmountCents: &amount})
	require.NoError(t, err)

	assert.Equal(t, int64(8000), paid.Items[1].PaidCents)
	assert.Equal(t, domain.ItemStatusDue, paid.Items[1].Status)
	assert.Equal(t, int64(0), paid.Items[0].PaidCents)
	assert.Equal(t, studentdomain.PaymentStatusPartial, studentStatus(t, db, student.ID))

	rest := int64(12000)
	paid, err = svc.PayInvoiceItem(ctx, invoice.ID, target.ID, domain.PayRequest{AmountCents: &rest})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusPaid, paid.Items[1].Status)
	assert.Equal(t, domain.InvoiceStatusDue, paid.Status)
}

func TestPayInvoiceItem_Validation(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "itemval@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	item := invoice.Items[0]

	_, err = svc.PayInvoiceItem(ctx, invoice.ID, snowflake.ID(424242), domain.PayRequest{})
	assert.ErrorIs(t, err, domain.ErrInvoiceItemNotFound)

	_, err = svc.PayInvoiceItem(ctx, invoice.ID, item.ID, domain.PayRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	tooMuch := int64(10001)
	_, err = svc.PayInvoiceItem(ctx, invoice.ID, item.ID, domain.PayRequest{AmountCents: &tooMuch})
	assert.ErrorIs(t, err, domain.ErrAmountExceedsDue)
}

func TestMarkOverdue(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "late@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	marked, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	fc.Advance(15 * 24 * time.Hour)

	marked, err = svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	fresh, err := svc.Get(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, fresh.Status)

	// Sweep only touches DUE invoices.
	marked, err = svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)
}

func TestRollupPreservesCancelled(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "cancel@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("status", domain.InvoiceStatusCancelled).Error)

	physics := seedClass(t, db, svc.genID, "Physics", classdomain.PricingModePerStudent, 20000)
	enroll(t, db, svc.genID, physics.ID, student.ID)

	ensured, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, ensured.Status)
	assert.Equal(t, int64(30000), ensured.SubtotalCents)
}

func TestInvoicePDF(t *testing.T) {
	db := newTestDB(t)
	fc := clock.NewFakeClock(sep1)
	svc := newBillingService(t, db, fc)
	ctx := context.Background()

	student := seedStudent(t, db, svc.genID, "pdf@example.com")
	class := seedClass(t, db, svc.genID, "Algebra", classdomain.PricingModePerStudent, 10000)
	enroll(t, db, svc.genID, class.ID, student.ID)

	invoice, err := svc.EnsureForStudent(ctx, student.ID)
	require.NoError(t, err)

	doc, err := svc.InvoicePDF(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.Number+".pdf", doc.Filename)
	assert.NotEmpty(t, doc.Content)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "USD 300.00", formatCents(30000, "USD"))
	assert.Equal(t, "MAD 0.50", formatCents(50, "MAD"))
}
