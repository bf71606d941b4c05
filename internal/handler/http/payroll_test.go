package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

// stubPayrollService returns canned values so the tests exercise routing,
// auth and the response envelope only.
type stubPayrollService struct {
	run     payroll.RunResponse
	payslip payroll.PayslipResponse
	err     error
}

func (s *stubPayrollService) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	return s.run, s.err
}

func (s *stubPayrollService) GetRun(ctx context.Context, runID string) (payroll.RunResponse, error) {
	return s.run, s.err
}

func (s *stubPayrollService) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListRunsResponse, error) {
	return payroll.ListRunsResponse{
		Data:       []payroll.RunResponse{s.run},
		TotalCount: 1,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, s.err
}

func (s *stubPayrollService) Process(ctx context.Context, runID string) (payroll.RunResponse, error) {
	return s.run, s.err
}

func (s *stubPayrollService) Approve(ctx context.Context, runID string) (payroll.ApproveRunResponse, error) {
	return payroll.ApproveRunResponse{Run: s.run}, s.err
}

func (s *stubPayrollService) MarkPaid(ctx context.Context, runID string) (payroll.RunResponse, error) {
	return s.run, s.err
}

func (s *stubPayrollService) Cancel(ctx context.Context, runID string) (payroll.RunResponse, error) {
	return s.run, s.err
}

func (s *stubPayrollService) GetPayslip(ctx context.Context, payslipID string) (payroll.PayslipResponse, error) {
	return s.payslip, s.err
}

func (s *stubPayrollService) ListPayslips(ctx context.Context, runID string) ([]payroll.PayslipResponse, error) {
	return []payroll.PayslipResponse{s.payslip}, s.err
}

func (s *stubPayrollService) AdjustPayslip(ctx context.Context, req payroll.AdjustPayslipRequest) (payroll.PayslipResponse, error) {
	return s.payslip, s.err
}

func (s *stubPayrollService) ExportTaxMatrix(ctx context.Context, runID string) ([]payroll.TaxMatrixRow, error) {
	return []payroll.TaxMatrixRow{{
		EmployeeID:   "emp-1",
		EmployeeName: "Ada Achieng",
		GrossSalary:  decimal.RequireFromString("1000000"),
	}}, s.err
}

func (s *stubPayrollService) ExportBankTransfers(ctx context.Context, runID string) ([]payroll.BankTransferRow, error) {
	return []payroll.BankTransferRow{{
		EmployeeID:   "emp-1",
		EmployeeName: "Ada Achieng",
		NetSalary:    decimal.RequireFromString("850000"),
		Reference:    "PAYROLL-202503-emp-1",
	}}, s.err
}

func (s *stubPayrollService) RenderPayslipPdf(ctx context.Context, payslipID string) (string, error) {
	return "https://files.example.com/payslips/ps-1.pdf", s.err
}

func (s *stubPayrollService) EmailPayslip(ctx context.Context, payslipID string) error {
	return s.err
}

type stubStatutoryService struct{}

func (s *stubStatutoryService) UpsertTable(ctx context.Context, req statutory.UpsertTableRequest) (statutory.TableResponse, error) {
	return statutory.TableResponse{ID: "tbl-1"}, nil
}

func (s *stubStatutoryService) ListTables(ctx context.Context) ([]statutory.TableResponse, error) {
	return nil, nil
}

func (s *stubStatutoryService) GetEffectiveTable(ctx context.Context, asOf string) (statutory.TableResponse, error) {
	return statutory.TableResponse{ID: "tbl-1"}, nil
}

func newTestServer(t *testing.T, svc payroll.Service) (*httptest.Server, string) {
	t.Helper()
	jwtService := jwt.NewJWTService(testSecret, "1h")
	router := NewRouter(jwtService, NewPayrollHandler(svc), NewStatutoryHandler(&stubStatutoryService{}))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	token, _, err := jwtService.GenerateAccessToken("user-1", "comp-1", "admin")
	require.NoError(t, err)
	return server, token
}

func doRequest(t *testing.T, method, url, token string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestGetRunRequiresAuth(t *testing.T) {
	server, _ := newTestServer(t, &stubPayrollService{})

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/payroll/runs/run-1", "", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetRunEnvelope(t *testing.T) {
	svc := &stubPayrollService{run: payroll.RunResponse{ID: "run-1", Status: "draft"}}
	server, token := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/payroll/runs/run-1", token, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "run-1", envelope.Data.ID)
	assert.Equal(t, "draft", envelope.Data.Status)
}

func TestGetRunNotFound(t *testing.T) {
	svc := &stubPayrollService{err: payroll.ErrRunNotFound}
	server, token := newTestServer(t, svc)

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/payroll/runs/nope", token, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDuplicatePeriodConflict(t *testing.T) {
	svc := &stubPayrollService{err: payroll.ErrDuplicatePeriod}
	server, token := newTestServer(t, svc)

	body := []byte(`{"period_month": 3, "period_year": 2025}`)
	resp := doRequest(t, http.MethodPost, server.URL+"/api/v1/payroll/runs", token, body)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdjustPayslipBadBody(t *testing.T) {
	server, token := newTestServer(t, &stubPayrollService{})

	resp := doRequest(t, http.MethodPatch, server.URL+"/api/v1/payroll/payslips/ps-1", token, []byte("{not json"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportTaxMatrixCSV(t *testing.T) {
	server, token := newTestServer(t, &stubPayrollService{})

	resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/payroll/runs/run-1/exports/tax-matrix", token, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "tax-matrix-run-1.csv")
}
