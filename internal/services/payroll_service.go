package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "academy/internal/errors"
	"academy/internal/logger"
	"academy/internal/models"
)

// payrollService manages monthly teacher payroll.
type payrollService struct {
	db                 *gorm.DB
	userService        UserServicer
	categoryService    CategoryServicer
	transactionService TransactionServicer
	defaultCurrency    string
}

// NewPayrollService creates a new PayrollServicer.
func NewPayrollService(
	db *gorm.DB,
	userService UserServicer,
	categoryService CategoryServicer,
	transactionService TransactionServicer,
	defaultCurrency string,
) PayrollServicer {
	return &payrollService{
		db:                 db,
		userService:        userService,
		categoryService:    categoryService,
		transactionService: transactionService,
		defaultCurrency:    defaultCurrency,
	}
}

// GeneratePayrolls creates a zeroed DRAFT payroll for every active teacher
// who has none for the month and returns how many rows were inserted.
// Existing rows are never touched, so running it twice is harmless. userID
// is nil when the scheduler triggers generation.
func (s *payrollService) GeneratePayrolls(userID *string, month time.Time) (int, error) {
	periodMonth := models.MonthStart(month)

	teachers, err := s.userService.ListActiveTeachers(s.db)
	if err != nil {
		return 0, err
	}
	if len(teachers) == 0 {
		return 0, nil
	}

	rows := make([]models.Payroll, 0, len(teachers))
	for _, teacher := range teachers {
		rows = append(rows, models.Payroll{
			TeacherUserID:   teacher.ID,
			PeriodMonth:     periodMonth,
			BaseSalary:      decimal.Zero,
			Bonus:           decimal.Zero,
			Deduction:       decimal.Zero,
			NetPay:          decimal.Zero,
			Status:          models.PayrollStatusDraft,
			Currency:        s.defaultCurrency,
			CreatedByUserID: userID,
		})
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "teacher_user_id"}, {Name: "period_month"}},
		DoNothing: true,
	}).Create(&rows)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}

	created := int(result.RowsAffected)
	logger.Get().Infow("payrolls generated",
		"period_month", periodMonth.Format("2006-01"),
		"teachers", len(teachers),
		"created", created,
	)
	return created, nil
}

// ListPayrolls returns payrolls with their teacher, newest month first,
// optionally for one month only.
func (s *payrollService) ListPayrolls(month *time.Time) ([]models.Payroll, error) {
	q := s.db.Preload("Teacher")
	if month != nil {
		q = q.Where("period_month = ?", models.MonthStart(*month))
	}

	payrolls := []models.Payroll{}
	if err := q.Order("period_month DESC, created_at ASC").Find(&payrolls).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payrolls, nil
}

// GetPayrollByID retrieves a payroll with its teacher.
func (s *payrollService) GetPayrollByID(id string) (*models.Payroll, error) {
	return findPayroll(s.db, id)
}

// UpdatePayroll edits a payroll that has not been paid. Any change to the
// money fields recomputes net pay. Status only moves forward and never to
// PAID; paying goes through PayPayroll.
func (s *payrollService) UpdatePayroll(id string, fields PayrollUpdateFields) (*models.Payroll, error) {
	payroll, err := s.GetPayrollByID(id)
	if err != nil {
		return nil, err
	}
	if payroll.Status == models.PayrollStatusPaid {
		return nil, apperrors.ErrPayrollAlreadyPaid
	}

	base, bonus, deduction := payroll.BaseSalary, payroll.Bonus, payroll.Deduction
	for _, f := range []struct {
		name  string
		value *decimal.Decimal
		dst   *decimal.Decimal
	}{
		{"base_salary", fields.BaseSalary, &base},
		{"bonus", fields.Bonus, &bonus},
		{"deduction", fields.Deduction, &deduction},
	} {
		if f.value == nil {
			continue
		}
		if f.value.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, f.name+" cannot be negative")
		}
		*f.dst = *f.value
	}

	updates := map[string]interface{}{
		"base_salary": base,
		"bonus":       bonus,
		"deduction":   deduction,
		"net_pay":     models.ComputeNetPay(base, bonus, deduction),
	}

	if fields.Status != nil {
		next := *fields.Status
		if !next.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payroll status")
		}
		if next == models.PayrollStatusPaid {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidState, "use the pay operation to mark a payroll as paid")
		}
		if !payroll.Status.CanMoveTo(next) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidState,
				fmt.Sprintf("payroll cannot move from %s to %s", payroll.Status, next))
		}
		updates["status"] = next
	}
	if fields.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*fields.Currency))
		if currency == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency cannot be empty")
		}
		updates["currency"] = currency
	}
	if fields.Note != nil {
		updates["note"] = *fields.Note
	}

	result := s.db.Model(&models.Payroll{}).
		Where("id = ? AND status <> ?", id, models.PayrollStatusPaid).
		Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrPayrollAlreadyPaid
	}

	return s.GetPayrollByID(id)
}

// PayPayroll marks a payroll PAID and books its net pay as an EXPENSE entry
// in one unit of work. The status flip is conditional on the row not being
// PAID yet, so of two concurrent payments only one succeeds.
func (s *payrollService) PayPayroll(userID, id string, method models.PaymentMethod) (*models.Payroll, error) {
	if !method.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment method")
	}

	var netPay decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		payroll, err := findPayroll(tx, id)
		if err != nil {
			return err
		}
		if payroll.Status == models.PayrollStatusPaid {
			return apperrors.ErrPayrollAlreadyPaid
		}

		paidAt := time.Now().UTC()
		result := tx.Model(&models.Payroll{}).
			Where("id = ? AND status <> ?", id, models.PayrollStatusPaid).
			Updates(map[string]interface{}{
				"status":         models.PayrollStatusPaid,
				"paid_at":        paidAt,
				"payment_method": method,
			})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrPayrollAlreadyPaid
		}

		category, err := s.categoryService.GetOrCreate(tx, models.FinanceTypeExpense, models.SystemCategoryPayroll)
		if err != nil {
			return err
		}

		netPay = payroll.NetPay
		_, err = s.transactionService.CreateLinked(tx, userID, TransactionInput{
			Type:          models.FinanceTypeExpense,
			CategoryID:    category.ID,
			Amount:        payroll.NetPay,
			Currency:      payroll.Currency,
			PaymentMethod: method,
			OccurredAt:    paidAt,
			Note:          payrollNote(payroll),
			Reference:     &models.Reference{Type: models.ReferenceTypePayroll, ID: payroll.ID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("payroll paid",
		"payroll_id", id,
		"user_id", userID,
		"net_pay", netPay.String(),
		"payment_method", method,
	)

	return s.GetPayrollByID(id)
}

func findPayroll(db *gorm.DB, id string) (*models.Payroll, error) {
	var payroll models.Payroll
	if err := db.Preload("Teacher").Where("id = ?", id).First(&payroll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayrollNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payroll, nil
}

func payrollNote(p *models.Payroll) string {
	note := "Payroll " + p.PeriodMonth.Format("2006-01")
	if p.Teacher != nil && p.Teacher.Name != "" {
		note += ": " + p.Teacher.Name
	}
	return note
}
