package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrRunNotEditable):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPayslipInconsistent):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidAdjustment):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrEmptyEmployeeScope):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrSalaryStructureMissing):
		BadRequest(w, err.Error(), nil)

	// Statutory domain errors
	case errors.Is(err, statutory.ErrTableNotFound):
		NotFound(w, "No statutory table effective for the requested date")
	case errors.Is(err, statutory.ErrInvalidTaxInput):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, statutory.ErrInvalidTable):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
