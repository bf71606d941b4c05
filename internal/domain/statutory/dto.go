package statutory

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type UpsertTableRequest struct {
	EffectiveFrom    string          `json:"effective_from"`
	NSSFEmployeeRate decimal.Decimal `json:"nssf_employee_rate"`
	NSSFEmployerRate decimal.Decimal `json:"nssf_employer_rate"`
	Brackets         []Bracket       `json:"brackets"`
}

func (r *UpsertTableRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be YYYY-MM-DD"})
	}
	if len(r.Brackets) == 0 {
		errs = append(errs, validator.ValidationError{Field: "brackets", Message: "at least one bracket is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TableResponse struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"company_id"`
	EffectiveFrom    string          `json:"effective_from"`
	NSSFEmployeeRate decimal.Decimal `json:"nssf_employee_rate"`
	NSSFEmployerRate decimal.Decimal `json:"nssf_employer_rate"`
	Brackets         []Bracket       `json:"brackets"`
}
