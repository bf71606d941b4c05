package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/hrcore"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// salaryFetchConcurrency bounds the parallel salary structure lookups
// against the HR core during Process.
const salaryFetchConcurrency = 8

type PayrollServiceImpl struct {
	repo          payroll.Repository
	statutoryRepo statutory.Repository
	hr            hrcore.Client
	mailer        email.EmailService
}

func NewPayrollService(
	repo payroll.Repository,
	statutoryRepo statutory.Repository,
	hr hrcore.Client,
	mailer email.EmailService,
) payroll.Service {
	return &PayrollServiceImpl{
		repo:          repo,
		statutoryRepo: statutoryRepo,
		hr:            hr,
		mailer:        mailer,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	periodStart := time.Date(req.PeriodYear, time.Month(req.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)

	startDate := periodStart
	if req.StartDate != "" {
		startDate, _ = time.Parse("2006-01-02", req.StartDate)
	}
	endDate := periodStart.AddDate(0, 1, -1)
	if req.EndDate != "" {
		endDate, _ = time.Parse("2006-01-02", req.EndDate)
	}
	if endDate.Before(startDate) {
		return payroll.RunResponse{}, payroll.ErrInvalidPeriod
	}

	var paymentDate *time.Time
	if req.PaymentDate != "" {
		pd, _ := time.Parse("2006-01-02", req.PaymentDate)
		paymentDate = &pd
	}

	scopeType := payroll.ScopeAllActive
	if len(req.EmployeeIDs) > 0 {
		scopeType = payroll.ScopeSelected
	}

	run := payroll.PayrollRun{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		PeriodMonth:      req.PeriodMonth,
		PeriodYear:       req.PeriodYear,
		Status:           payroll.RunStatusDraft,
		StartDate:        startDate,
		EndDate:          endDate,
		PaymentDate:      paymentDate,
		ScopeType:        scopeType,
		ScopeEmployeeIDs: req.EmployeeIDs,
		TotalGross:       decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNet:         decimal.Zero,
	}

	created, err := s.repo.CreateRun(ctx, run)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return toRunResponse(created), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, runID string) (payroll.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.repo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return toRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListRunsResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListRunsResponse{}, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	runs, totalCount, err := s.repo.ListRuns(ctx, companyID, filter)
	if err != nil {
		return payroll.ListRunsResponse{}, err
	}

	responses := make([]payroll.RunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, toRunResponse(run))
	}

	return payroll.ListRunsResponse{
		Data:       responses,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// Process computes payslips for every employee in the run's scope and
// moves the run to processing. The run row lock makes concurrent Process
// calls on the same run serialize; the loser observes the processing
// status and returns the already-computed run unchanged.
func (s *PayrollServiceImpl) Process(ctx context.Context, runID string) (payroll.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var result payroll.PayrollRun
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		run, err := s.repo.GetRunForUpdate(ctx, runID, companyID)
		if err != nil {
			return err
		}

		if run.Status == payroll.RunStatusProcessing {
			result = run
			return nil
		}

		nextStatus, ok := run.Status.Next(payroll.ActionProcess)
		if !ok {
			return fmt.Errorf("%w: cannot process a %s run", payroll.ErrInvalidTransition, run.Status)
		}

		snapshots, err := s.resolveScope(ctx, run)
		if err != nil {
			return err
		}

		tbl, err := s.statutoryRepo.GetTableForDate(ctx, companyID, run.PeriodStart())
		if err != nil {
			if errors.Is(err, statutory.ErrTableNotFound) {
				return fmt.Errorf("%w: no statutory table effective for %04d-%02d",
					statutory.ErrInvalidTaxInput, run.PeriodYear, run.PeriodMonth)
			}
			return err
		}

		slips := make([]payroll.Payslip, 0, len(snapshots))
		for _, snap := range snapshots {
			slip := payslipFromSnapshot(uuid.NewString(), run.ID, companyID, snap)
			slip, err = computePayslip(slip, payroll.Adjustments{}, tbl)
			if err != nil {
				return err
			}
			slips = append(slips, slip)
		}

		// Rebuild the payslip set from scratch so a retried Process never
		// leaves stale rows behind.
		if err := s.repo.DeletePayslipsByRun(ctx, run.ID); err != nil {
			return err
		}
		if err := s.repo.CreatePayslips(ctx, slips); err != nil {
			return err
		}

		totals, err := s.repo.SumPayslipTotals(ctx, run.ID)
		if err != nil {
			return err
		}

		run.Status = nextStatus
		run.TotalGross = totals.TotalGross
		run.TotalDeductions = totals.TotalDeductions
		run.TotalNet = totals.TotalNet
		run.EmployeeCount = totals.EmployeeCount
		if err := s.repo.UpdateRunState(ctx, run); err != nil {
			return err
		}

		result = run
		return nil
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return toRunResponse(result), nil
}

// resolveScope fetches the employees the run covers, with one salary
// snapshot each. The active-employee set is read as of now, the moment
// processing executes, so employees who joined after the run was drafted
// are still included; a "selected" run intersects that set with the IDs
// captured at creation. Salary structures and the statutory table are
// keyed by the run's period start, not by the wall clock.
func (s *PayrollServiceImpl) resolveScope(ctx context.Context, run payroll.PayrollRun) ([]payroll.SalarySnapshot, error) {
	asOf := run.PeriodStart()

	employees, err := s.hr.GetActiveEmployees(ctx, run.CompanyID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if run.ScopeType == payroll.ScopeSelected {
		selected := make(map[string]bool, len(run.ScopeEmployeeIDs))
		for _, id := range run.ScopeEmployeeIDs {
			selected[id] = true
		}
		filtered := employees[:0]
		for _, emp := range employees {
			if selected[emp.ID] {
				filtered = append(filtered, emp)
			}
		}
		employees = filtered
	}

	if len(employees) == 0 {
		return nil, payroll.ErrEmptyEmployeeScope
	}

	snapshots := make([]payroll.SalarySnapshot, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(salaryFetchConcurrency)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			structure, err := s.hr.GetSalaryStructure(gctx, run.CompanyID, emp.ID, asOf)
			if err != nil {
				if errors.Is(err, hrcore.ErrNotFound) {
					return fmt.Errorf("%w: employee %s", payroll.ErrSalaryStructureMissing, emp.ID)
				}
				return err
			}

			effectiveDate, _ := time.Parse("2006-01-02", structure.EffectiveDate)
			snapshots[i] = payroll.SalarySnapshot{
				EmployeeID:         emp.ID,
				EmployeeName:       emp.FullName,
				TaxIdentifier:      emp.TaxIdentifier,
				Email:              emp.Email,
				BasicSalary:        structure.BasicSalary,
				HousingAllowance:   structure.HousingAllowance,
				TransportAllowance: structure.TransportAllowance,
				MedicalAllowance:   structure.MedicalAllowance,
				LunchAllowance:     structure.LunchAllowance,
				OtherAllowance:     structure.OtherAllowance,
				EffectiveDate:      effectiveDate,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *PayrollServiceImpl) Approve(ctx context.Context, runID string) (payroll.ApproveRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ApproveRunResponse{}, err
	}

	var result payroll.PayrollRun
	var negativeNetIDs []string
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		run, err := s.repo.GetRunForUpdate(ctx, runID, companyID)
		if err != nil {
			return err
		}

		nextStatus, ok := run.Status.Next(payroll.ActionApprove)
		if !ok {
			return fmt.Errorf("%w: cannot approve a %s run", payroll.ErrInvalidTransition, run.Status)
		}

		// Approval freezes the payslips, so this is the last chance to
		// catch drift between stored derived fields and their inputs.
		// Negative nets do not block approval, they are surfaced as
		// warnings so the operator can disburse manually.
		slips, err := s.repo.ListPayslipsByRun(ctx, run.ID, companyID)
		if err != nil {
			return err
		}
		for _, slip := range slips {
			if err := verifyPayslip(slip); err != nil {
				return err
			}
			if slip.NegativeNet {
				negativeNetIDs = append(negativeNetIDs, slip.ID)
			}
		}

		run.Status = nextStatus
		if err := s.repo.UpdateRunState(ctx, run); err != nil {
			return err
		}

		result = run
		return nil
	})
	if err != nil {
		return payroll.ApproveRunResponse{}, err
	}

	return payroll.ApproveRunResponse{
		Run:                   toRunResponse(result),
		NegativeNetPayslipIDs: negativeNetIDs,
	}, nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, runID string) (payroll.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var result payroll.PayrollRun
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		run, err := s.repo.GetRunForUpdate(ctx, runID, companyID)
		if err != nil {
			return err
		}

		nextStatus, ok := run.Status.Next(payroll.ActionMarkPaid)
		if !ok {
			return fmt.Errorf("%w: cannot mark a %s run as paid", payroll.ErrInvalidTransition, run.Status)
		}

		if err := s.repo.MarkPayslipsPaid(ctx, run.ID); err != nil {
			return err
		}

		run.Status = nextStatus
		if run.PaymentDate == nil {
			now := time.Now().UTC()
			run.PaymentDate = &now
		}
		if err := s.repo.UpdateRunState(ctx, run); err != nil {
			return err
		}

		result = run
		return nil
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return toRunResponse(result), nil
}

func (s *PayrollServiceImpl) Cancel(ctx context.Context, runID string) (payroll.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var result payroll.PayrollRun
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		run, err := s.repo.GetRunForUpdate(ctx, runID, companyID)
		if err != nil {
			return err
		}

		nextStatus, ok := run.Status.Next(payroll.ActionCancel)
		if !ok {
			return fmt.Errorf("%w: cannot cancel a %s run", payroll.ErrInvalidTransition, run.Status)
		}

		if err := s.repo.DeletePayslipsByRun(ctx, run.ID); err != nil {
			return err
		}

		run.Status = nextStatus
		run.TotalGross = decimal.Zero
		run.TotalDeductions = decimal.Zero
		run.TotalNet = decimal.Zero
		run.EmployeeCount = 0
		if err := s.repo.UpdateRunState(ctx, run); err != nil {
			return err
		}

		result = run
		return nil
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return toRunResponse(result), nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, payslipID string) (payroll.PayslipResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	slip, err := s.repo.GetPayslipByID(ctx, payslipID, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return toPayslipResponse(slip), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, runID string) ([]payroll.PayslipResponse, error) {
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

	responses := make([]payroll.PayslipResponse, 0, len(slips))
	for _, slip := range slips {
		responses = append(responses, toPayslipResponse(slip))
	}

	return responses, nil
}

// AdjustPayslip patches the payslip's adjustment ledger, recomputes every
// derived field and rewrites the owning run's totals, all in the same
// transaction that holds the run lock.
func (s *PayrollServiceImpl) AdjustPayslip(ctx context.Context, req payroll.AdjustPayslipRequest) (payroll.PayslipResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.PayslipResponse{}, err
	}

	var result payroll.Payslip
	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		slip, err := s.repo.GetPayslipByID(ctx, req.PayslipID, companyID)
		if err != nil {
			return err
		}

		run, err := s.repo.GetRunForUpdate(ctx, slip.RunID, companyID)
		if err != nil {
			return err
		}
		if !run.Status.Editable() {
			return fmt.Errorf("%w: run is %s", payroll.ErrRunNotEditable, run.Status)
		}

		// The first read only located the owning run. Re-read under the
		// run lock: a concurrent adjustment may have committed between
		// that read and lock acquisition, and patching a stale ledger
		// would silently drop its fields.
		slip, err = s.repo.GetPayslipByID(ctx, req.PayslipID, companyID)
		if err != nil {
			return err
		}

		tbl, err := s.statutoryRepo.GetTableForDate(ctx, companyID, run.PeriodStart())
		if err != nil {
			return err
		}

		slip, err = computePayslip(slip, req.Apply(slip.Adjustments()), tbl)
		if err != nil {
			return err
		}
		if err := s.repo.UpdatePayslip(ctx, slip); err != nil {
			return err
		}

		totals, err := s.repo.SumPayslipTotals(ctx, run.ID)
		if err != nil {
			return err
		}
		run.TotalGross = totals.TotalGross
		run.TotalDeductions = totals.TotalDeductions
		run.TotalNet = totals.TotalNet
		run.EmployeeCount = totals.EmployeeCount
		if err := s.repo.UpdateRunState(ctx, run); err != nil {
			return err
		}

		result = slip
		return nil
	})
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return toPayslipResponse(result), nil
}

// ========== MAPPERS ==========

func toRunResponse(run payroll.PayrollRun) payroll.RunResponse {
	var paymentDate *string
	if run.PaymentDate != nil {
		pd := run.PaymentDate.Format("2006-01-02")
		paymentDate = &pd
	}

	return payroll.RunResponse{
		ID:              run.ID,
		CompanyID:       run.CompanyID,
		PeriodMonth:     run.PeriodMonth,
		PeriodYear:      run.PeriodYear,
		Status:          string(run.Status),
		StartDate:       run.StartDate.Format("2006-01-02"),
		EndDate:         run.EndDate.Format("2006-01-02"),
		PaymentDate:     paymentDate,
		ScopeType:       string(run.ScopeType),
		EmployeeIDs:     run.ScopeEmployeeIDs,
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNet:        run.TotalNet,
		EmployeeCount:   run.EmployeeCount,
	}
}

func toPayslipResponse(slip payroll.Payslip) payroll.PayslipResponse {
	return payroll.PayslipResponse{
		ID:                 slip.ID,
		RunID:              slip.RunID,
		EmployeeID:         slip.EmployeeID,
		EmployeeName:       slip.EmployeeName,
		TaxIdentifier:      slip.TaxIdentifier,
		BasicSalary:        slip.BasicSalary,
		HousingAllowance:   slip.HousingAllowance,
		TransportAllowance: slip.TransportAllowance,
		MedicalAllowance:   slip.MedicalAllowance,
		LunchAllowance:     slip.LunchAllowance,
		OtherAllowance:     slip.OtherAllowance,
		TotalAllowances:    slip.TotalAllowances,
		Bonus:              slip.Bonus,
		OtherDeductions:    slip.OtherDeductions,
		LoanDeduction:      slip.LoanDeduction,
		AdvanceDeduction:   slip.AdvanceDeduction,
		GrossSalary:        slip.GrossSalary,
		PayeTax:            slip.PayeTax,
		NSSFEmployee:       slip.NSSFEmployee,
		NSSFEmployer:       slip.NSSFEmployer,
		TotalDeductions:    slip.TotalDeductions,
		NetSalary:          slip.NetSalary,
		NegativeNet:        slip.NegativeNet,
		PaymentStatus:      string(slip.PaymentStatus),
	}
}
