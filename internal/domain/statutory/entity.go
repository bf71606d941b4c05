package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bracket is one band of the progressive PAYE schedule. Upper is nil for
// the open-ended top band.
type Bracket struct {
	Lower decimal.Decimal  `json:"lower"`
	Upper *decimal.Decimal `json:"upper,omitempty"`
	Rate  decimal.Decimal  `json:"rate"`
}

// Table is the statutory configuration active for a company from
// EffectiveFrom onward: the PAYE bracket schedule plus the NSSF
// contribution rates. Tables are immutable once stored; rate changes are
// new rows with a later EffectiveFrom, so back-dated runs keep resolving
// to the schedule that was in force for their period.
type Table struct {
	ID               string
	CompanyID        string
	EffectiveFrom    time.Time
	NSSFEmployeeRate decimal.Decimal
	NSSFEmployerRate decimal.Decimal
	Brackets         []Bracket
	CreatedAt        time.Time
}

var one = decimal.NewFromInt(1)

// Validate checks that the bracket schedule is ordered and contiguous
// from zero and that every rate is a sane fraction.
func (t Table) Validate() error {
	if t.NSSFEmployeeRate.IsNegative() || t.NSSFEmployeeRate.GreaterThan(one) {
		return ErrInvalidTable
	}
	if t.NSSFEmployerRate.IsNegative() || t.NSSFEmployerRate.GreaterThan(one) {
		return ErrInvalidTable
	}
	if len(t.Brackets) == 0 {
		return ErrInvalidTable
	}

	expectedLower := decimal.Zero
	for i, b := range t.Brackets {
		if !b.Lower.Equal(expectedLower) {
			return ErrInvalidTable
		}
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return ErrInvalidTable
		}
		if b.Upper == nil {
			if i != len(t.Brackets)-1 {
				return ErrInvalidTable
			}
			return nil
		}
		if !b.Upper.GreaterThan(b.Lower) {
			return ErrInvalidTable
		}
		expectedLower = *b.Upper
	}

	// Last bracket must be open-ended so every gross amount is covered.
	return ErrInvalidTable
}
