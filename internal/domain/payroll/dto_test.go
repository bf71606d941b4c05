package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestCreateRunRequestValidate(t *testing.T) {
	valid := CreateRunRequest{PeriodMonth: 3, PeriodYear: 2025}
	assert.NoError(t, valid.Validate())

	badMonth := CreateRunRequest{PeriodMonth: 13, PeriodYear: 2025}
	assert.Error(t, badMonth.Validate())

	badYear := CreateRunRequest{PeriodMonth: 1, PeriodYear: 1999}
	assert.Error(t, badYear.Validate())

	badDate := CreateRunRequest{PeriodMonth: 3, PeriodYear: 2025, StartDate: "03/01/2025"}
	assert.Error(t, badDate.Validate())

	emptyID := CreateRunRequest{PeriodMonth: 3, PeriodYear: 2025, EmployeeIDs: []string{"emp-1", " "}}
	assert.Error(t, emptyID.Validate())
}

func TestAdjustPayslipRequestValidate(t *testing.T) {
	ok := AdjustPayslipRequest{Bonus: decp("200000")}
	assert.NoError(t, ok.Validate())

	empty := AdjustPayslipRequest{}
	assert.NoError(t, empty.Validate())

	negative := AdjustPayslipRequest{LoanDeduction: decp("-1")}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidAdjustment)
}

func TestAdjustPayslipRequestApply(t *testing.T) {
	current := Adjustments{
		Bonus:         dec("100"),
		LoanDeduction: dec("50"),
	}

	// Nil fields leave the current value alone.
	req := AdjustPayslipRequest{Bonus: decp("200000")}
	got := req.Apply(current)

	assert.True(t, got.Bonus.Equal(dec("200000")))
	assert.True(t, got.LoanDeduction.Equal(dec("50")))
	assert.True(t, got.OtherDeductions.IsZero())

	// Explicit zero clears a previous value.
	req = AdjustPayslipRequest{LoanDeduction: decp("0")}
	got = req.Apply(got)
	assert.True(t, got.LoanDeduction.IsZero())
	assert.True(t, got.Bonus.Equal(dec("200000")))
}
