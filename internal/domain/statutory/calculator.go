package statutory

import "github.com/shopspring/decimal"

// Assessment is the mandatory withholding computed from one gross salary.
// NSSFEmployer is the employer-borne share; it is reported alongside the
// employee figures but never deducted from net pay.
type Assessment struct {
	PayeTax      decimal.Decimal
	NSSFEmployee decimal.Decimal
	NSSFEmployer decimal.Decimal
}

// Compute derives PAYE and NSSF from a gross salary using the supplied
// table. Pure: same inputs always produce the same assessment. The caller
// is responsible for picking the table effective for the run's period.
func Compute(gross decimal.Decimal, tbl Table) (Assessment, error) {
	if gross.IsNegative() {
		return Assessment{}, ErrInvalidTaxInput
	}
	if err := tbl.Validate(); err != nil {
		return Assessment{}, ErrInvalidTaxInput
	}

	paye := decimal.Zero
	for _, b := range tbl.Brackets {
		if gross.LessThanOrEqual(b.Lower) {
			break
		}
		top := gross
		if b.Upper != nil && b.Upper.LessThan(gross) {
			top = *b.Upper
		}
		paye = paye.Add(top.Sub(b.Lower).Mul(b.Rate))
	}

	return Assessment{
		PayeTax:      paye,
		NSSFEmployee: gross.Mul(tbl.NSSFEmployeeRate),
		NSSFEmployer: gross.Mul(tbl.NSSFEmployerRate),
	}, nil
}
