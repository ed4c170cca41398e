package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"academy/internal/models"
	"academy/internal/testutil"
)

// seedLedger builds a small March 2026 ledger:
//
//	Tuition (REVENUE)  100000 CASH 03-10, 50000 BANK 03-20, 7000 CASH 04-02
//	Rent (EXPENSE)      30000 BANK 03-15
//	deleted revenue       999 CASH 03-12
//	payroll             Feb 100000 DRAFT, Mar 200000 PAID
func seedLedger(t *testing.T, db *gorm.DB) {
	t.Helper()
	user := testutil.CreateTestUser(t, db)
	teacher := testutil.CreateTestTeacher(t, db)
	tuition := testutil.CreateTestCategoryWithName(t, db, models.FinanceTypeRevenue, "Tuition")
	rent := testutil.CreateTestCategoryWithName(t, db, models.FinanceTypeExpense, "Rent")

	at := func(month time.Month, day int) time.Time {
		return time.Date(2026, month, day, 10, 0, 0, 0, time.UTC)
	}
	testutil.CreateTestTransactionAt(t, db, user.ID, tuition, "100000", at(time.March, 10))
	bank := testutil.CreateTestTransactionAt(t, db, user.ID, tuition, "50000", at(time.March, 20))
	db.Model(bank).Update("payment_method", models.PaymentMethodBank)
	testutil.CreateTestTransactionAt(t, db, user.ID, tuition, "7000", at(time.April, 2))
	rentEntry := testutil.CreateTestTransactionAt(t, db, user.ID, rent, "30000", at(time.March, 15))
	db.Model(rentEntry).Update("payment_method", models.PaymentMethodBank)
	deleted := testutil.CreateTestTransactionAt(t, db, user.ID, tuition, "999", at(time.March, 12))
	db.Model(deleted).Update("is_deleted", true)

	testutil.CreateTestPayroll(t, db, teacher.ID, at(time.February, 1), "100000", "0", "0", models.PayrollStatusDraft)
	testutil.CreateTestPayroll(t, db, teacher.ID, at(time.March, 1), "200000", "0", "0", models.PayrollStatusPaid)
}

func TestMonthReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	seedLedger(t, db)
	svc := NewReportService(db, time.UTC)

	report, err := svc.MonthReport(2026, time.March)
	testutil.AssertNoError(t, err)

	assert.Equal(t, "2026-03", report.Period.Label)
	testutil.AssertDecimal(t, "150000", report.TotalRevenue)
	testutil.AssertDecimal(t, "30000", report.TotalExpense)
	testutil.AssertDecimal(t, "200000", report.TotalPayroll)
	testutil.AssertDecimal(t, "-80000", report.Net)

	require.Len(t, report.ByCategory, 2)
	assert.Equal(t, "Tuition", report.ByCategory[0].Name)
	assert.Equal(t, models.FinanceTypeRevenue, report.ByCategory[0].Type)
	testutil.AssertDecimal(t, "150000", report.ByCategory[0].Total)
	assert.Equal(t, "Rent", report.ByCategory[1].Name)
	testutil.AssertDecimal(t, "30000", report.ByCategory[1].Total)

	require.Len(t, report.ByPaymentMethod, 2)
	assert.Equal(t, models.PaymentMethodBank, report.ByPaymentMethod[0].Method)
	testutil.AssertDecimal(t, "50000", report.ByPaymentMethod[0].TotalRevenue)
	testutil.AssertDecimal(t, "30000", report.ByPaymentMethod[0].TotalExpense)
	assert.Equal(t, models.PaymentMethodCash, report.ByPaymentMethod[1].Method)
	testutil.AssertDecimal(t, "100000", report.ByPaymentMethod[1].TotalRevenue)
	testutil.AssertDecimal(t, "0", report.ByPaymentMethod[1].TotalExpense)

	_, err = svc.MonthReport(2026, time.Month(13))
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestYearAndAllReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	seedLedger(t, db)
	svc := NewReportService(db, time.UTC)

	year, err := svc.YearReport(2026)
	testutil.AssertNoError(t, err)
	assert.Equal(t, "2026", year.Period.Label)
	testutil.AssertDecimal(t, "157000", year.TotalRevenue)
	testutil.AssertDecimal(t, "30000", year.TotalExpense)
	testutil.AssertDecimal(t, "300000", year.TotalPayroll)
	testutil.AssertDecimal(t, "-173000", year.Net)

	all, err := svc.AllReport()
	testutil.AssertNoError(t, err)
	assert.Equal(t, "all", all.Period.Label)
	assert.Nil(t, all.Period.Start)
	testutil.AssertDecimal(t, "157000", all.TotalRevenue)
	testutil.AssertDecimal(t, "300000", all.TotalPayroll)

	empty, err := svc.YearReport(2020)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "0", empty.TotalRevenue)
	testutil.AssertDecimal(t, "0", empty.TotalPayroll)
	testutil.AssertDecimal(t, "0", empty.Net)
	assert.Empty(t, empty.ByCategory)
}

func TestRangeAndDayReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	seedLedger(t, db)
	svc := NewReportService(db, time.UTC)

	t.Run("range_is_inclusive", func(t *testing.T) {
		report, err := svc.RangeReport(
			time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		)
		testutil.AssertNoError(t, err)
		assert.Equal(t, "2026-03-10..2026-03-15", report.Period.Label)
		testutil.AssertDecimal(t, "100000", report.TotalRevenue)
		testutil.AssertDecimal(t, "30000", report.TotalExpense)
		testutil.AssertDecimal(t, "200000", report.TotalPayroll)
	})

	t.Run("range_across_months_sums_each_payroll_month", func(t *testing.T) {
		report, err := svc.RangeReport(
			time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "0", report.TotalRevenue)
		testutil.AssertDecimal(t, "300000", report.TotalPayroll)
	})

	t.Run("reversed_range", func(t *testing.T) {
		_, err := svc.RangeReport(
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("day_counts_whole_month_payroll", func(t *testing.T) {
		report, err := svc.DayReport(time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		assert.Equal(t, "2026-03-20", report.Period.Label)
		testutil.AssertDecimal(t, "50000", report.TotalRevenue)
		testutil.AssertDecimal(t, "0", report.TotalExpense)
		testutil.AssertDecimal(t, "200000", report.TotalPayroll)
		testutil.AssertDecimal(t, "-150000", report.Net)
	})
}

func TestDayReportUsesLocation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, models.FinanceTypeRevenue)
	// 01:00 on the 10th in UTC+9.
	testutil.CreateTestTransactionAt(t, db, user.ID, cat, "100", time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC))

	kst := time.FixedZone("KST", 9*60*60)

	local, err := NewReportService(db, kst).DayReport(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "100", local.TotalRevenue)

	utc, err := NewReportService(db, nil).DayReport(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "0", utc.TotalRevenue)
}

// A day report on the day a payroll is paid shows the payment twice: once as
// that day's ledger expense and again in the month's payroll total.
func TestDayReportDoubleCountsPaidPayroll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	s := newTestServices(db)
	admin := testutil.CreateTestUser(t, db)
	teacher := testutil.CreateTestTeacher(t, db)
	payroll := testutil.CreateTestPayroll(t, db, teacher.ID, time.Now().UTC(), "500000", "50000", "20000", models.PayrollStatusConfirmed)

	paid, err := s.payrolls.PayPayroll(admin.ID, payroll.ID, models.PaymentMethodBank)
	testutil.AssertNoError(t, err)
	require.NotNil(t, paid.PaidAt)

	report, err := s.reports.DayReport(paid.PaidAt.UTC())
	testutil.AssertNoError(t, err)

	testutil.AssertDecimal(t, "530000", report.TotalExpense)
	testutil.AssertDecimal(t, "530000", report.TotalPayroll)
	testutil.AssertDecimal(t, "-1060000", report.Net)
}

func TestExportReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	seedLedger(t, db)
	svc := NewReportService(db, time.UTC)

	report, err := svc.MonthReport(2026, time.March)
	testutil.AssertNoError(t, err)

	data, err := svc.ExportReport(report)
	testutil.AssertNoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "By Category", "By Payment Method"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 7)
	assert.Equal(t, []string{"Period", "2026-03"}, summary[0])
	assert.Equal(t, "Net", summary[6][0])
	assert.Equal(t, "-80000", summary[6][1])

	categories, err := f.GetRows("By Category")
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Tuition", categories[1][1])
	assert.Equal(t, "150000", categories[1][3])

	methods, err := f.GetRows("By Payment Method")
	require.NoError(t, err)
	assert.Len(t, methods, 3)

	_, err = svc.ExportReport(nil)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
