package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.Repository {
	return &payrollRepository{db: db}
}

// InTx runs fn inside one transaction; repository calls made with the ctx
// handed to fn join it via GetQuerier.
func (r *payrollRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// ========== RUNS ==========

const runColumns = `
	id, company_id, period_month, period_year, status,
	start_date, end_date, payment_date, scope_type, scope_employee_ids,
	total_gross, total_deductions, total_net, employee_count,
	created_at, updated_at
`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.PeriodMonth, &run.PeriodYear, &run.Status,
		&run.StartDate, &run.EndDate, &run.PaymentDate, &run.ScopeType, &run.ScopeEmployeeIDs,
		&run.TotalGross, &run.TotalDeductions, &run.TotalNet, &run.EmployeeCount,
		&run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (
			id, company_id, period_month, period_year, status,
			start_date, end_date, payment_date, scope_type, scope_employee_ids,
			total_gross, total_deductions, total_net, employee_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		run.ID, run.CompanyID, run.PeriodMonth, run.PeriodYear, run.Status,
		run.StartDate, run.EndDate, run.PaymentDate, run.ScopeType, run.ScopeEmployeeIDs,
		run.TotalGross, run.TotalDeductions, run.TotalNet, run.EmployeeCount,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_company_period") {
			return payroll.PayrollRun{}, payroll.ErrDuplicatePeriod
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

// GetRunForUpdate takes a row lock on the run for the rest of the
// enclosing transaction. Transitions and ledger writes on the same run
// queue up behind it; other runs are untouched.
func (r *payrollRepository) GetRunForUpdate(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2 FOR UPDATE`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to lock payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM payroll_runs WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodMonth != nil {
		baseQuery += fmt.Sprintf(" AND period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(
		"SELECT "+runColumns+baseQuery+" ORDER BY period_year DESC, period_month DESC LIMIT $%d OFFSET $%d",
		argIdx, argIdx+1,
	)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, totalCount, nil
}

func (r *payrollRepository) UpdateRunState(ctx context.Context, run payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, total_gross = $4, total_deductions = $5, total_net = $6,
			employee_count = $7, payment_date = $8, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		run.ID, run.CompanyID, run.Status,
		run.TotalGross, run.TotalDeductions, run.TotalNet,
		run.EmployeeCount, run.PaymentDate,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrRunNotFound
		}
		return fmt.Errorf("failed to update payroll run: %w", err)
	}

	return nil
}

// ========== PAYSLIPS ==========

const payslipColumns = `
	id, run_id, company_id, employee_id, employee_name, tax_identifier, email,
	basic_salary, housing_allowance, transport_allowance, medical_allowance,
	lunch_allowance, other_allowance, total_allowances,
	bonus, other_deductions, loan_deduction, advance_deduction,
	gross_salary, paye_tax, nssf_employee, nssf_employer,
	total_deductions, net_salary, negative_net, payment_status,
	created_at, updated_at
`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var p payroll.Payslip
	err := row.Scan(
		&p.ID, &p.RunID, &p.CompanyID, &p.EmployeeID, &p.EmployeeName, &p.TaxIdentifier, &p.Email,
		&p.BasicSalary, &p.HousingAllowance, &p.TransportAllowance, &p.MedicalAllowance,
		&p.LunchAllowance, &p.OtherAllowance, &p.TotalAllowances,
		&p.Bonus, &p.OtherDeductions, &p.LoanDeduction, &p.AdvanceDeduction,
		&p.GrossSalary, &p.PayeTax, &p.NSSFEmployee, &p.NSSFEmployer,
		&p.TotalDeductions, &p.NetSalary, &p.NegativeNet, &p.PaymentStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *payrollRepository) CreatePayslips(ctx context.Context, slips []payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (
			id, run_id, company_id, employee_id, employee_name, tax_identifier, email,
			basic_salary, housing_allowance, transport_allowance, medical_allowance,
			lunch_allowance, other_allowance, total_allowances,
			bonus, other_deductions, loan_deduction, advance_deduction,
			gross_salary, paye_tax, nssf_employee, nssf_employer,
			total_deductions, net_salary, negative_net, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	for _, p := range slips {
		_, err := q.Exec(ctx, query,
			p.ID, p.RunID, p.CompanyID, p.EmployeeID, p.EmployeeName, p.TaxIdentifier, p.Email,
			p.BasicSalary, p.HousingAllowance, p.TransportAllowance, p.MedicalAllowance,
			p.LunchAllowance, p.OtherAllowance, p.TotalAllowances,
			p.Bonus, p.OtherDeductions, p.LoanDeduction, p.AdvanceDeduction,
			p.GrossSalary, p.PayeTax, p.NSSFEmployee, p.NSSFEmployer,
			p.TotalDeductions, p.NetSalary, p.NegativeNet, p.PaymentStatus,
		)
		if err != nil {
			return fmt.Errorf("failed to create payslip for employee %s: %w", p.EmployeeID, err)
		}
	}

	return nil
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1 AND company_id = $2`

	p, err := scanPayslip(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) ListPayslipsByRun(ctx context.Context, runID string, companyID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE run_id = $1 AND company_id = $2 ORDER BY employee_name, employee_id`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, p)
	}

	return slips, nil
}

func (r *payrollRepository) UpdatePayslip(ctx context.Context, slip payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET bonus = $2, other_deductions = $3, loan_deduction = $4, advance_deduction = $5,
			gross_salary = $6, paye_tax = $7, nssf_employee = $8, nssf_employer = $9,
			total_deductions = $10, net_salary = $11, negative_net = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		slip.ID,
		slip.Bonus, slip.OtherDeductions, slip.LoanDeduction, slip.AdvanceDeduction,
		slip.GrossSalary, slip.PayeTax, slip.NSSFEmployee, slip.NSSFEmployer,
		slip.TotalDeductions, slip.NetSalary, slip.NegativeNet,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrPayslipNotFound
		}
		return fmt.Errorf("failed to update payslip: %w", err)
	}

	return nil
}

func (r *payrollRepository) DeletePayslipsByRun(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payslips WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete payslips: %w", err)
	}

	return nil
}

func (r *payrollRepository) MarkPayslipsPaid(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payslips SET payment_status = 'paid', updated_at = NOW() WHERE run_id = $1`
	if _, err := q.Exec(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to mark payslips paid: %w", err)
	}

	return nil
}

// SumPayslipTotals reads the full current payslip set so the run totals
// are always rebuilt from scratch, never patched incrementally.
func (r *payrollRepository) SumPayslipTotals(ctx context.Context, runID string) (payroll.RunTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(gross_salary), 0) as total_gross,
			COALESCE(SUM(total_deductions), 0) as total_deductions,
			COALESCE(SUM(net_salary), 0) as total_net,
			COUNT(*) as employee_count
		FROM payslips
		WHERE run_id = $1
	`

	var totals payroll.RunTotals
	err := q.QueryRow(ctx, query, runID).Scan(
		&totals.TotalGross, &totals.TotalDeductions, &totals.TotalNet, &totals.EmployeeCount,
	)
	if err != nil {
		return payroll.RunTotals{}, fmt.Errorf("failed to sum payslip totals: %w", err)
	}

	return totals, nil
}
