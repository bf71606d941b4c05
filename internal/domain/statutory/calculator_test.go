package statutory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func flatTable(rate string) Table {
	return Table{
		ID:               "tbl-1",
		CompanyID:        "comp-1",
		EffectiveFrom:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		NSSFEmployeeRate: d("0.05"),
		NSSFEmployerRate: d("0.10"),
		Brackets: []Bracket{
			{Lower: decimal.Zero, Rate: d(rate)},
		},
	}
}

func progressiveTable() Table {
	return Table{
		NSSFEmployeeRate: d("0.05"),
		NSSFEmployerRate: d("0.10"),
		Brackets: []Bracket{
			{Lower: d("0"), Upper: dp("500000"), Rate: d("0")},
			{Lower: d("500000"), Upper: dp("1500000"), Rate: d("0.1")},
			{Lower: d("1500000"), Rate: d("0.2")},
		},
	}
}

func TestComputeFlatRate(t *testing.T) {
	got, err := Compute(d("1000000"), flatTable("0.1"))
	require.NoError(t, err)

	assert.True(t, got.PayeTax.Equal(d("100000")), "paye = %s", got.PayeTax)
	assert.True(t, got.NSSFEmployee.Equal(d("50000")), "nssf employee = %s", got.NSSFEmployee)
	assert.True(t, got.NSSFEmployer.Equal(d("100000")), "nssf employer = %s", got.NSSFEmployer)
}

func TestComputeProgressiveBrackets(t *testing.T) {
	cases := []struct {
		gross string
		paye  string
	}{
		{"0", "0"},
		{"400000", "0"},
		{"500000", "0"},
		{"600000", "10000"},
		{"1500000", "100000"},
		{"2000000", "200000"},
	}
	for _, c := range cases {
		got, err := Compute(d(c.gross), progressiveTable())
		require.NoError(t, err, "gross %s", c.gross)
		assert.True(t, got.PayeTax.Equal(d(c.paye)), "gross %s: paye = %s, want %s", c.gross, got.PayeTax, c.paye)
	}
}

func TestComputeZeroGross(t *testing.T) {
	got, err := Compute(decimal.Zero, flatTable("0.1"))
	require.NoError(t, err)

	assert.True(t, got.PayeTax.IsZero())
	assert.True(t, got.NSSFEmployee.IsZero())
	assert.True(t, got.NSSFEmployer.IsZero())
}

func TestComputeNegativeGross(t *testing.T) {
	_, err := Compute(d("-1"), flatTable("0.1"))
	assert.ErrorIs(t, err, ErrInvalidTaxInput)
}

func TestComputeIsDeterministic(t *testing.T) {
	first, err := Compute(d("1234567.89"), progressiveTable())
	require.NoError(t, err)
	second, err := Compute(d("1234567.89"), progressiveTable())
	require.NoError(t, err)

	assert.True(t, first.PayeTax.Equal(second.PayeTax))
	assert.True(t, first.NSSFEmployee.Equal(second.NSSFEmployee))
	assert.True(t, first.NSSFEmployer.Equal(second.NSSFEmployer))
}

func TestTableValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Table)
		valid  bool
	}{
		{"flat single bracket", func(tbl *Table) {}, true},
		{"no brackets", func(tbl *Table) { tbl.Brackets = nil }, false},
		{"negative rate", func(tbl *Table) { tbl.Brackets[0].Rate = d("-0.1") }, false},
		{"rate above one", func(tbl *Table) { tbl.Brackets[0].Rate = d("1.5") }, false},
		{"negative nssf rate", func(tbl *Table) { tbl.NSSFEmployeeRate = d("-0.05") }, false},
		{"nssf rate above one", func(tbl *Table) { tbl.NSSFEmployerRate = d("2") }, false},
		{"first bracket not from zero", func(tbl *Table) { tbl.Brackets[0].Lower = d("100") }, false},
		{"closed top bracket", func(tbl *Table) { tbl.Brackets[0].Upper = dp("1000000") }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tbl := flatTable("0.1")
			c.mutate(&tbl)
			err := tbl.Validate()
			if c.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTable)
			}
		})
	}
}

func TestTableValidateContiguous(t *testing.T) {
	tbl := progressiveTable()
	require.NoError(t, tbl.Validate())

	// A gap between brackets invalidates the schedule.
	tbl.Brackets[1].Lower = d("600000")
	assert.ErrorIs(t, tbl.Validate(), ErrInvalidTable)

	// A middle bracket must not be open-ended.
	tbl = progressiveTable()
	tbl.Brackets[1].Upper = nil
	assert.ErrorIs(t, tbl.Validate(), ErrInvalidTable)
}
