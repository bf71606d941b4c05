package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusProcessing RunStatus = "processing"
	RunStatusApproved   RunStatus = "approved"
	RunStatusPaid       RunStatus = "paid"
	RunStatusCancelled  RunStatus = "cancelled"
)

// RunAction enum
type RunAction string

const (
	ActionProcess  RunAction = "process"
	ActionApprove  RunAction = "approve"
	ActionMarkPaid RunAction = "mark_paid"
	ActionCancel   RunAction = "cancel"
)

// transitions is the closed transition table for the run lifecycle.
// Anything not listed here is an invalid transition, full stop.
var transitions = map[RunStatus]map[RunAction]RunStatus{
	RunStatusDraft: {
		ActionProcess: RunStatusProcessing,
		ActionCancel:  RunStatusCancelled,
	},
	RunStatusProcessing: {
		ActionApprove: RunStatusApproved,
		ActionCancel:  RunStatusCancelled,
	},
	RunStatusApproved: {
		ActionMarkPaid: RunStatusPaid,
	},
}

// Next returns the status reached by applying action to s, or false when
// the transition is not allowed.
func (s RunStatus) Next(action RunAction) (RunStatus, bool) {
	next, ok := transitions[s][action]
	return next, ok
}

// Terminal reports whether no action can leave s.
func (s RunStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Editable reports whether payslips owned by a run in s may still receive
// adjustment writes. Approval freezes them.
func (s RunStatus) Editable() bool {
	return s == RunStatusDraft || s == RunStatusProcessing
}

// ScopeType enum
type ScopeType string

const (
	ScopeAllActive ScopeType = "all"
	ScopeSelected  ScopeType = "selected"
)

// PayrollRun - one batch of payroll for a company and period. The four
// totals are derived caches, fully recomputed from the owned payslips on
// every mutation, never authored directly.
type PayrollRun struct {
	ID               string
	CompanyID        string
	PeriodMonth      int
	PeriodYear       int
	Status           RunStatus
	StartDate        time.Time
	EndDate          time.Time
	PaymentDate      *time.Time
	ScopeType        ScopeType
	ScopeEmployeeIDs []string
	TotalGross       decimal.Decimal
	TotalDeductions  decimal.Decimal
	TotalNet         decimal.Decimal
	EmployeeCount    int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PeriodStart returns the first day of the run's period, which keys the
// statutory table and salary structure lookups.
func (r PayrollRun) PeriodStart() time.Time {
	return time.Date(r.PeriodYear, time.Month(r.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)
}

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payslip - one employee's computed compensation within a run. Every
// derived field (totals, gross, statutory amounts, net) is a pure
// function of the snapshotted structure and the adjustment fields.
type Payslip struct {
	ID         string
	RunID      string
	CompanyID  string
	EmployeeID string

	// Snapshotted from the salary structure at computation time. Email is
	// captured too so payslips stay deliverable after the employee leaves
	// the active directory.
	EmployeeName       string
	TaxIdentifier      string
	Email              string
	BasicSalary        decimal.Decimal
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	MedicalAllowance   decimal.Decimal
	LunchAllowance     decimal.Decimal
	OtherAllowance     decimal.Decimal
	TotalAllowances    decimal.Decimal

	// Adjustment ledger: the only hand-editable fields.
	Bonus            decimal.Decimal
	OtherDeductions  decimal.Decimal
	LoanDeduction    decimal.Decimal
	AdvanceDeduction decimal.Decimal

	// Derived.
	GrossSalary     decimal.Decimal
	PayeTax         decimal.Decimal
	NSSFEmployee    decimal.Decimal
	NSSFEmployer    decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	NegativeNet     bool

	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Adjustments is the mutable ledger portion of a payslip.
type Adjustments struct {
	Bonus            decimal.Decimal
	OtherDeductions  decimal.Decimal
	LoanDeduction    decimal.Decimal
	AdvanceDeduction decimal.Decimal
}

// Adjustments returns the payslip's current ledger values.
func (p Payslip) Adjustments() Adjustments {
	return Adjustments{
		Bonus:            p.Bonus,
		OtherDeductions:  p.OtherDeductions,
		LoanDeduction:    p.LoanDeduction,
		AdvanceDeduction: p.AdvanceDeduction,
	}
}

// SalarySnapshot is the salary structure for one employee as read from
// the HR core at computation time. It is copied onto the payslip, not
// live-linked.
type SalarySnapshot struct {
	EmployeeID         string
	EmployeeName       string
	TaxIdentifier      string
	Email              string
	BasicSalary        decimal.Decimal
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	MedicalAllowance   decimal.Decimal
	LunchAllowance     decimal.Decimal
	OtherAllowance     decimal.Decimal
	EffectiveDate      time.Time
}
