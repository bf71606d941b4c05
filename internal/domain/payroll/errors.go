package payroll

import "errors"

var (
	ErrRunNotFound            = errors.New("payroll run not found")
	ErrPayslipNotFound        = errors.New("payslip not found")
	ErrInvalidTransition      = errors.New("invalid payroll run transition")
	ErrDuplicatePeriod        = errors.New("payroll run already exists for this period")
	ErrRunNotEditable         = errors.New("payroll run is no longer editable")
	ErrInvalidAdjustment      = errors.New("invalid payslip adjustment")
	ErrSalaryStructureMissing = errors.New("employee has no effective salary structure")
	ErrEmptyEmployeeScope     = errors.New("employee scope resolves to no active employees")
	ErrPayslipInconsistent    = errors.New("payslip derived fields are inconsistent")
	ErrInvalidPeriod          = errors.New("invalid payroll period")
)
