package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// RunTotals is the aggregate of a run's payslips as read back from
// storage. Totals on the run row are always overwritten with these
// values, never patched incrementally.
type RunTotals struct {
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	EmployeeCount   int
}

// Repository defines data access for payroll runs and their payslips.
// All read methods include companyID to prevent cross-company access.
//
// InTx runs fn inside one database transaction; repository calls made
// with the ctx passed to fn join that transaction. Every state-machine
// transition and ledger write uses InTx together with GetRunForUpdate so
// that work on one run is serialized while different runs proceed
// independently.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	// GetRunForUpdate locks the run row for the rest of the enclosing
	// transaction. Must only be called from inside InTx.
	GetRunForUpdate(ctx context.Context, id string, companyID string) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, filter RunFilter) ([]PayrollRun, int64, error)
	// UpdateRunState writes status, totals and payment date in one shot.
	UpdateRunState(ctx context.Context, run PayrollRun) error

	// Payslips
	CreatePayslips(ctx context.Context, slips []Payslip) error
	GetPayslipByID(ctx context.Context, id string, companyID string) (Payslip, error)
	ListPayslipsByRun(ctx context.Context, runID string, companyID string) ([]Payslip, error)
	UpdatePayslip(ctx context.Context, slip Payslip) error
	DeletePayslipsByRun(ctx context.Context, runID string) error
	MarkPayslipsPaid(ctx context.Context, runID string) error

	// SumPayslipTotals aggregates the full, current payslip set of a run.
	SumPayslipTotals(ctx context.Context, runID string) (RunTotals, error)
}
