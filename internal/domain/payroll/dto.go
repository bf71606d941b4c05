package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	PaymentDate string `json:"payment_date,omitempty"`
	// EmployeeIDs opts the run into an explicit employee scope captured at
	// creation. Empty = all employees active when the run is processed.
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2020 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be 2020 or later"})
	}
	if r.StartDate != "" {
		if _, ok := validator.IsValidDate(r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if r.EndDate != "" {
		if _, ok := validator.IsValidDate(r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if r.PaymentDate != "" {
		if _, ok := validator.IsValidDate(r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be YYYY-MM-DD"})
		}
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain empty ids"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	Status          string          `json:"status"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PaymentDate     *string         `json:"payment_date,omitempty"`
	ScopeType       string          `json:"scope_type"`
	EmployeeIDs     []string        `json:"employee_ids,omitempty"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	EmployeeCount   int             `json:"employee_count"`
}

// ApproveRunResponse carries advisory warnings surfaced at approval time,
// currently the payslips whose net pay went negative.
type ApproveRunResponse struct {
	Run                   RunResponse `json:"run"`
	NegativeNetPayslipIDs []string    `json:"negative_net_payslip_ids,omitempty"`
}

type RunFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

type ListRunsResponse struct {
	Data       []RunResponse `json:"data"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}

// ========== PAYSLIP DTOs ==========

// AdjustPayslipRequest is a partial patch of the adjustment ledger. Nil
// fields are left unchanged.
type AdjustPayslipRequest struct {
	PayslipID        string           `json:"-"`
	Bonus            *decimal.Decimal `json:"bonus,omitempty"`
	OtherDeductions  *decimal.Decimal `json:"other_deductions,omitempty"`
	LoanDeduction    *decimal.Decimal `json:"loan_deduction,omitempty"`
	AdvanceDeduction *decimal.Decimal `json:"advance_deduction,omitempty"`
}

func (r *AdjustPayslipRequest) Validate() error {
	fields := map[string]*decimal.Decimal{
		"bonus":             r.Bonus,
		"other_deductions":  r.OtherDeductions,
		"loan_deduction":    r.LoanDeduction,
		"advance_deduction": r.AdvanceDeduction,
	}
	for name, v := range fields {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("%w: %s must be non-negative", ErrInvalidAdjustment, name)
		}
	}
	return nil
}

// Apply folds the patch into an existing ledger.
func (r *AdjustPayslipRequest) Apply(current Adjustments) Adjustments {
	if r.Bonus != nil {
		current.Bonus = *r.Bonus
	}
	if r.OtherDeductions != nil {
		current.OtherDeductions = *r.OtherDeductions
	}
	if r.LoanDeduction != nil {
		current.LoanDeduction = *r.LoanDeduction
	}
	if r.AdvanceDeduction != nil {
		current.AdvanceDeduction = *r.AdvanceDeduction
	}
	return current
}

type PayslipResponse struct {
	ID                 string          `json:"id"`
	RunID              string          `json:"run_id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       string          `json:"employee_name"`
	TaxIdentifier      string          `json:"tax_identifier,omitempty"`
	BasicSalary        decimal.Decimal `json:"basic_salary"`
	HousingAllowance   decimal.Decimal `json:"housing_allowance"`
	TransportAllowance decimal.Decimal `json:"transport_allowance"`
	MedicalAllowance   decimal.Decimal `json:"medical_allowance"`
	LunchAllowance     decimal.Decimal `json:"lunch_allowance"`
	OtherAllowance     decimal.Decimal `json:"other_allowance"`
	TotalAllowances    decimal.Decimal `json:"total_allowances"`
	Bonus              decimal.Decimal `json:"bonus"`
	OtherDeductions    decimal.Decimal `json:"other_deductions"`
	LoanDeduction      decimal.Decimal `json:"loan_deduction"`
	AdvanceDeduction   decimal.Decimal `json:"advance_deduction"`
	GrossSalary        decimal.Decimal `json:"gross_salary"`
	PayeTax            decimal.Decimal `json:"paye_tax"`
	NSSFEmployee       decimal.Decimal `json:"nssf_employee"`
	NSSFEmployer       decimal.Decimal `json:"nssf_employer"`
	TotalDeductions    decimal.Decimal `json:"total_deductions"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	NegativeNet        bool            `json:"negative_net"`
	PaymentStatus      string          `json:"payment_status"`
}

// ========== EXPORT DTOs ==========

// TaxMatrixRow is one line of the tax-authority export. Fixed column
// contract; reflects persisted payslip values only.
type TaxMatrixRow struct {
	EmployeeID    string
	EmployeeName  string
	TaxIdentifier string
	GrossSalary   decimal.Decimal
	PayeTax       decimal.Decimal
	NSSFEmployee  decimal.Decimal
	NSSFEmployer  decimal.Decimal
	NSSFTotal     decimal.Decimal
	NetSalary     decimal.Decimal
}

// BankTransferRow is one line of the net-pay disbursement export.
type BankTransferRow struct {
	EmployeeID   string
	EmployeeName string
	NetSalary    decimal.Decimal
	Reference    string
}
