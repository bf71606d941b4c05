package payroll

import "context"

// Service is the payroll run state machine and payslip engine exposed to
// the HTTP layer. The company scope comes from the caller's JWT claims.
type Service interface {
	// Runs
	CreateRun(ctx context.Context, req CreateRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, runID string) (RunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) (ListRunsResponse, error)
	Process(ctx context.Context, runID string) (RunResponse, error)
	Approve(ctx context.Context, runID string) (ApproveRunResponse, error)
	MarkPaid(ctx context.Context, runID string) (RunResponse, error)
	Cancel(ctx context.Context, runID string) (RunResponse, error)

	// Payslips
	GetPayslip(ctx context.Context, payslipID string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, runID string) ([]PayslipResponse, error)
	AdjustPayslip(ctx context.Context, req AdjustPayslipRequest) (PayslipResponse, error)

	// Exports and downstream collaborators
	ExportTaxMatrix(ctx context.Context, runID string) ([]TaxMatrixRow, error)
	ExportBankTransfers(ctx context.Context, runID string) ([]BankTransferRow, error)
	RenderPayslipPdf(ctx context.Context, payslipID string) (string, error)
	EmailPayslip(ctx context.Context, payslipID string) error
}
