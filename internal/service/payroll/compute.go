package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
)

// computePayslip derives every calculated field of a payslip from its
// salary snapshot, its adjustment ledger and the statutory table. Pure
// and idempotent: recomputing with the same inputs yields the same slip.
//
// The employer NSSF share is reported on the slip but excluded from
// total_deductions, so it never reduces net pay.
func computePayslip(slip payroll.Payslip, adj payroll.Adjustments, tbl statutory.Table) (payroll.Payslip, error) {
	slip.Bonus = adj.Bonus
	slip.OtherDeductions = adj.OtherDeductions
	slip.LoanDeduction = adj.LoanDeduction
	slip.AdvanceDeduction = adj.AdvanceDeduction

	slip.TotalAllowances = slip.HousingAllowance.
		Add(slip.TransportAllowance).
		Add(slip.MedicalAllowance).
		Add(slip.LunchAllowance).
		Add(slip.OtherAllowance)

	slip.GrossSalary = slip.BasicSalary.
		Add(slip.TotalAllowances).
		Add(slip.Bonus)

	assessment, err := statutory.Compute(slip.GrossSalary, tbl)
	if err != nil {
		return payroll.Payslip{}, err
	}

	slip.PayeTax = assessment.PayeTax
	slip.NSSFEmployee = assessment.NSSFEmployee
	slip.NSSFEmployer = assessment.NSSFEmployer

	slip.TotalDeductions = slip.PayeTax.
		Add(slip.NSSFEmployee).
		Add(slip.LoanDeduction).
		Add(slip.AdvanceDeduction).
		Add(slip.OtherDeductions)

	slip.NetSalary = slip.GrossSalary.Sub(slip.TotalDeductions)
	slip.NegativeNet = slip.NetSalary.IsNegative()

	return slip, nil
}

// verifyPayslip checks the arithmetic identities every stored payslip
// must satisfy. Run at approval time to catch drift between the stored
// derived fields and their inputs before the run freezes.
func verifyPayslip(slip payroll.Payslip) error {
	allowances := slip.HousingAllowance.
		Add(slip.TransportAllowance).
		Add(slip.MedicalAllowance).
		Add(slip.LunchAllowance).
		Add(slip.OtherAllowance)
	if !slip.TotalAllowances.Equal(allowances) {
		return fmt.Errorf("%w: payslip %s total_allowances diverges from components", payroll.ErrPayslipInconsistent, slip.ID)
	}

	gross := slip.BasicSalary.Add(slip.TotalAllowances).Add(slip.Bonus)
	if !slip.GrossSalary.Equal(gross) {
		return fmt.Errorf("%w: payslip %s gross_salary diverges from components", payroll.ErrPayslipInconsistent, slip.ID)
	}

	deductions := slip.PayeTax.
		Add(slip.NSSFEmployee).
		Add(slip.LoanDeduction).
		Add(slip.AdvanceDeduction).
		Add(slip.OtherDeductions)
	if !slip.TotalDeductions.Equal(deductions) {
		return fmt.Errorf("%w: payslip %s total_deductions diverges from components", payroll.ErrPayslipInconsistent, slip.ID)
	}

	if !slip.NetSalary.Equal(slip.GrossSalary.Sub(slip.TotalDeductions)) {
		return fmt.Errorf("%w: payslip %s net_salary diverges from gross and deductions", payroll.ErrPayslipInconsistent, slip.ID)
	}

	return nil
}

// payslipFromSnapshot seeds a fresh payslip from an employee's salary
// snapshot with a zeroed adjustment ledger.
func payslipFromSnapshot(id, runID, companyID string, snap payroll.SalarySnapshot) payroll.Payslip {
	return payroll.Payslip{
		ID:                 id,
		RunID:              runID,
		CompanyID:          companyID,
		EmployeeID:         snap.EmployeeID,
		EmployeeName:       snap.EmployeeName,
		TaxIdentifier:      snap.TaxIdentifier,
		Email:              snap.Email,
		BasicSalary:        snap.BasicSalary,
		HousingAllowance:   snap.HousingAllowance,
		TransportAllowance: snap.TransportAllowance,
		MedicalAllowance:   snap.MedicalAllowance,
		LunchAllowance:     snap.LunchAllowance,
		OtherAllowance:     snap.OtherAllowance,
		PaymentStatus:      payroll.PaymentStatusPending,
	}
}
