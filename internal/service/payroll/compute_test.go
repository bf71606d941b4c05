package payroll

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTable() statutory.Table {
	return statutory.Table{
		NSSFEmployeeRate: d("0.05"),
		NSSFEmployerRate: d("0.10"),
		Brackets: []statutory.Bracket{
			{Lower: decimal.Zero, Rate: d("0.1")},
		},
	}
}

func testSnapshot() payroll.SalarySnapshot {
	return payroll.SalarySnapshot{
		EmployeeID:   "emp-1",
		EmployeeName: "Ada",
		BasicSalary:  d("1000000"),
	}
}

func TestComputePayslipBasicOnly(t *testing.T) {
	slip := payslipFromSnapshot("ps-1", "run-1", "comp-1", testSnapshot())
	got, err := computePayslip(slip, payroll.Adjustments{}, testTable())
	require.NoError(t, err)

	assert.True(t, got.GrossSalary.Equal(d("1000000")), "gross = %s", got.GrossSalary)
	assert.True(t, got.PayeTax.Equal(d("100000")), "paye = %s", got.PayeTax)
	assert.True(t, got.NSSFEmployee.Equal(d("50000")), "nssf employee = %s", got.NSSFEmployee)
	assert.True(t, got.NSSFEmployer.Equal(d("100000")), "nssf employer = %s", got.NSSFEmployer)
	assert.True(t, got.TotalDeductions.Equal(d("150000")), "deductions = %s", got.TotalDeductions)
	assert.True(t, got.NetSalary.Equal(d("850000")), "net = %s", got.NetSalary)
	assert.False(t, got.NegativeNet)
}

func TestComputePayslipWithAllowancesAndBonus(t *testing.T) {
	snap := testSnapshot()
	snap.HousingAllowance = d("200000")
	snap.TransportAllowance = d("100000")

	slip := payslipFromSnapshot("ps-1", "run-1", "comp-1", snap)
	got, err := computePayslip(slip, payroll.Adjustments{Bonus: d("200000")}, testTable())
	require.NoError(t, err)

	assert.True(t, got.TotalAllowances.Equal(d("300000")))
	// gross = basic + allowances + bonus
	assert.True(t, got.GrossSalary.Equal(d("1500000")), "gross = %s", got.GrossSalary)
	// deductions = paye + nssf employee, employer share excluded
	assert.True(t, got.TotalDeductions.Equal(d("225000")), "deductions = %s", got.TotalDeductions)
	assert.True(t, got.NetSalary.Equal(d("1275000")), "net = %s", got.NetSalary)
}

func TestComputePayslipEmployerShareNotDeducted(t *testing.T) {
	slip := payslipFromSnapshot("ps-1", "run-1", "comp-1", testSnapshot())
	got, err := computePayslip(slip, payroll.Adjustments{}, testTable())
	require.NoError(t, err)

	wantNet := got.GrossSalary.Sub(got.PayeTax).Sub(got.NSSFEmployee)
	assert.True(t, got.NetSalary.Equal(wantNet), "net must exclude employer NSSF")
}

func TestComputePayslipNegativeNetFlagged(t *testing.T) {
	slip := payslipFromSnapshot("ps-1", "run-1", "comp-1", testSnapshot())
	got, err := computePayslip(slip, payroll.Adjustments{LoanDeduction: d("900000")}, testTable())
	require.NoError(t, err)

	assert.True(t, got.NetSalary.IsNegative(), "net = %s", got.NetSalary)
	assert.True(t, got.NegativeNet)
}

func TestVerifyPayslip(t *testing.T) {
	slip := payslipFromSnapshot("ps-1", "run-1", "comp-1", testSnapshot())
	slip, err := computePayslip(slip, payroll.Adjustments{Bonus: d("100000")}, testTable())
	require.NoError(t, err)
	assert.NoError(t, verifyPayslip(slip))

	tampered := slip
	tampered.NetSalary = tampered.NetSalary.Add(d("1"))
	assert.ErrorIs(t, verifyPayslip(tampered), payroll.ErrPayslipInconsistent)

	tampered = slip
	tampered.GrossSalary = tampered.GrossSalary.Sub(d("1"))
	assert.ErrorIs(t, verifyPayslip(tampered), payroll.ErrPayslipInconsistent)
}

func TestComputePayslipIdempotent(t *testing.T) {
	slip := payslipFromSnapshot("ps-1", "run-1", "comp-1", testSnapshot())
	adj := payroll.Adjustments{Bonus: d("150000"), AdvanceDeduction: d("25000")}

	first, err := computePayslip(slip, adj, testTable())
	require.NoError(t, err)
	second, err := computePayslip(first, first.Adjustments(), testTable())
	require.NoError(t, err)

	assert.True(t, first.GrossSalary.Equal(second.GrossSalary))
	assert.True(t, first.TotalDeductions.Equal(second.TotalDeductions))
	assert.True(t, first.NetSalary.Equal(second.NetSalary))
}
