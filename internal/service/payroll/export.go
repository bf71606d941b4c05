package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

// ExportTaxMatrix projects a run's payslips into the tax-authority
// layout. Read-only: exporting never mutates run or payslip state and
// stays available in every status.
func (s *PayrollServiceImpl) ExportTaxMatrix(ctx context.Context, runID string) ([]payroll.TaxMatrixRow, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetRunByID(ctx, runID, companyID); err != nil {
		return nil, err
	}

	slips, err := s.repo.ListPayslipsByRun(ctx, runID, companyID)
	if err != nil {
		return nil, err
	}

	rows := make([]payroll.TaxMatrixRow, 0, len(slips))
	for _, slip := range slips {
		rows = append(rows, payroll.TaxMatrixRow{
			EmployeeID:    slip.EmployeeID,
			EmployeeName:  slip.EmployeeName,
			TaxIdentifier: slip.TaxIdentifier,
			GrossSalary:   slip.GrossSalary,
			PayeTax:       slip.PayeTax,
			NSSFEmployee:  slip.NSSFEmployee,
			NSSFEmployer:  slip.NSSFEmployer,
			NSSFTotal:     slip.NSSFEmployee.Add(slip.NSSFEmployer),
			NetSalary:     slip.NetSalary,
		})
	}

	return rows, nil
}

// ExportBankTransfers projects a run's payslips into disbursement rows.
// Payslips with a negative net are skipped; they cannot be transferred.
func (s *PayrollServiceImpl) ExportBankTransfers(ctx context.Context, runID string) ([]payroll.BankTransferRow, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	run, err := s.repo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return nil, err
	}

	slips, err := s.repo.ListPayslipsByRun(ctx, runID, companyID)
	if err != nil {
		return nil, err
	}

	rows := make([]payroll.BankTransferRow, 0, len(slips))
	for _, slip := range slips {
		if slip.NegativeNet {
			continue
		}
		rows = append(rows, payroll.BankTransferRow{
			EmployeeID:   slip.EmployeeID,
			EmployeeName: slip.EmployeeName,
			NetSalary:    slip.NetSalary,
			Reference:    fmt.Sprintf("PAYROLL-%04d%02d-%s", run.PeriodYear, run.PeriodMonth, slip.EmployeeID),
		})
	}

	return rows, nil
}

// RenderPayslipPdf asks the HR core's document service to render the
// payslip and returns the stored PDF URL.
func (s *PayrollServiceImpl) RenderPayslipPdf(ctx context.Context, payslipID string) (string, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	slip, err := s.repo.GetPayslipByID(ctx, payslipID, companyID)
	if err != nil {
		return "", err
	}

	run, err := s.repo.GetRunByID(ctx, slip.RunID, companyID)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"period":  fmt.Sprintf("%04d-%02d", run.PeriodYear, run.PeriodMonth),
		"payslip": toPayslipResponse(slip),
	}

	return s.hr.RenderPayslipPdf(ctx, companyID, slip.ID, payload)
}

// EmailPayslip renders the payslip PDF and mails the employee a link to
// it. Failures here never touch payroll state.
func (s *PayrollServiceImpl) EmailPayslip(ctx context.Context, payslipID string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	slip, err := s.repo.GetPayslipByID(ctx, payslipID, companyID)
	if err != nil {
		return err
	}

	run, err := s.repo.GetRunByID(ctx, slip.RunID, companyID)
	if err != nil {
		return err
	}

	pdfURL, err := s.RenderPayslipPdf(ctx, payslipID)
	if err != nil {
		return err
	}

	// The address was snapshotted at computation time, so delivery does
	// not depend on the employee still being in the active directory.
	if slip.Email == "" {
		return fmt.Errorf("no email address on record for employee %s", slip.EmployeeID)
	}

	period := fmt.Sprintf("%04d-%02d", run.PeriodYear, run.PeriodMonth)
	return s.mailer.SendPayslip(slip.Email, slip.EmployeeName, period, slip.NetSalary.StringFixed(2), pdfURL)
}
