package hrcore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when the HR core has no record for the request,
// e.g. no salary structure effective on the given date.
var ErrNotFound = errors.New("hrcore: not found")

// EmployeeRef identifies an employee in the HR core directory.
type EmployeeRef struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	TaxIdentifier string `json:"tax_identifier"`
}

// SalaryStructure is an employee's compensation structure effective as of
// a date, as owned by the HR core.
type SalaryStructure struct {
	EmployeeID         string          `json:"employee_id"`
	BasicSalary        decimal.Decimal `json:"basic_salary"`
	HousingAllowance   decimal.Decimal `json:"housing_allowance"`
	TransportAllowance decimal.Decimal `json:"transport_allowance"`
	MedicalAllowance   decimal.Decimal `json:"medical_allowance"`
	LunchAllowance     decimal.Decimal `json:"lunch_allowance"`
	OtherAllowance     decimal.Decimal `json:"other_allowance"`
	EffectiveDate      string          `json:"effective_date"`
}

// Client is the payroll service's view of the HR core application.
type Client interface {
	GetActiveEmployees(ctx context.Context, companyID string, asOf time.Time) ([]EmployeeRef, error)
	GetSalaryStructure(ctx context.Context, companyID, employeeID string, asOf time.Time) (SalaryStructure, error)
	// RenderPayslipPdf asks the HR core's document service to (re)render
	// the payslip PDF from the payload and returns the stored URL.
	// Idempotent on the HR core side.
	RenderPayslipPdf(ctx context.Context, companyID, payslipID string, payload any) (string, error)
}

type clientImpl struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an HR core client from configuration.
func NewClient(cfg config.HRCoreConfig) Client {
	return &clientImpl{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// envelope matches the HR core's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *clientImpl) GetActiveEmployees(ctx context.Context, companyID string, asOf time.Time) ([]EmployeeRef, error) {
	q := url.Values{}
	q.Set("status", "active")
	q.Set("as_of", asOf.Format("2006-01-02"))

	var employees []EmployeeRef
	if err := c.get(ctx, companyID, "/employees?"+q.Encode(), &employees); err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return employees, nil
}

func (c *clientImpl) GetSalaryStructure(ctx context.Context, companyID, employeeID string, asOf time.Time) (SalaryStructure, error) {
	q := url.Values{}
	q.Set("as_of", asOf.Format("2006-01-02"))

	var structure SalaryStructure
	err := c.get(ctx, companyID, "/employees/"+url.PathEscape(employeeID)+"/salary-structure?"+q.Encode(), &structure)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SalaryStructure{}, ErrNotFound
		}
		return SalaryStructure{}, fmt.Errorf("failed to get salary structure for employee %s: %w", employeeID, err)
	}
	return structure, nil
}

func (c *clientImpl) RenderPayslipPdf(ctx context.Context, companyID, payslipID string, payload any) (string, error) {
	var result struct {
		PdfURL string `json:"pdf_url"`
	}
	if err := c.post(ctx, companyID, "/documents/payslips/"+url.PathEscape(payslipID)+"/render", payload, &result); err != nil {
		return "", fmt.Errorf("failed to render payslip pdf: %w", err)
	}
	return result.PdfURL, nil
}

func (c *clientImpl) get(ctx context.Context, companyID, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, companyID, out)
}

func (c *clientImpl) post(ctx context.Context, companyID, path string, body any, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, jsonBody(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, companyID, out)
}

func (c *clientImpl) do(req *http.Request, companyID string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Company-ID", companyID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("hrcore: decoding response: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		msg := "unknown error"
		if env.Error != nil {
			msg = env.Error.Code + ": " + env.Error.Message
		}
		return fmt.Errorf("hrcore: [%d] %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func jsonBody(v any) io.Reader {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return bytes.NewReader([]byte("{}"))
	}
	return bytes.NewReader(b)
}
