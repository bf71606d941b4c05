package statutory

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type StatutoryServiceImpl struct {
	repo statutory.Repository
}

func NewStatutoryService(repo statutory.Repository) statutory.Service {
	return &StatutoryServiceImpl{repo: repo}
}

func getClaimsFromContext(ctx context.Context) (companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company_id claim is missing or invalid")
	}

	return companyID, nil
}

func (s *StatutoryServiceImpl) UpsertTable(ctx context.Context, req statutory.UpsertTableRequest) (statutory.TableResponse, error) {
	companyID, err := getClaimsFromContext(ctx)
	if err != nil {
		return statutory.TableResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return statutory.TableResponse{}, err
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return statutory.TableResponse{}, statutory.ErrInvalidTable
	}

	tbl := statutory.Table{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		EffectiveFrom:    effectiveFrom,
		NSSFEmployeeRate: req.NSSFEmployeeRate,
		NSSFEmployerRate: req.NSSFEmployerRate,
		Brackets:         req.Brackets,
	}
	if err := tbl.Validate(); err != nil {
		return statutory.TableResponse{}, err
	}

	stored, err := s.repo.UpsertTable(ctx, tbl)
	if err != nil {
		return statutory.TableResponse{}, err
	}

	return toTableResponse(stored), nil
}

func (s *StatutoryServiceImpl) ListTables(ctx context.Context) ([]statutory.TableResponse, error) {
	companyID, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := s.repo.ListTables(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]statutory.TableResponse, 0, len(tables))
	for _, tbl := range tables {
		responses = append(responses, toTableResponse(tbl))
	}

	return responses, nil
}

func (s *StatutoryServiceImpl) GetEffectiveTable(ctx context.Context, asOf string) (statutory.TableResponse, error) {
	companyID, err := getClaimsFromContext(ctx)
	if err != nil {
		return statutory.TableResponse{}, err
	}

	date := time.Now().UTC()
	if asOf != "" {
		date, err = time.Parse("2006-01-02", asOf)
		if err != nil {
			return statutory.TableResponse{}, statutory.ErrInvalidTable
		}
	}

	tbl, err := s.repo.GetTableForDate(ctx, companyID, date)
	if err != nil {
		return statutory.TableResponse{}, err
	}

	return toTableResponse(tbl), nil
}

func toTableResponse(tbl statutory.Table) statutory.TableResponse {
	return statutory.TableResponse{
		ID:               tbl.ID,
		CompanyID:        tbl.CompanyID,
		EffectiveFrom:    tbl.EffectiveFrom.Format("2006-01-02"),
		NSSFEmployeeRate: tbl.NSSFEmployeeRate,
		NSSFEmployerRate: tbl.NSSFEmployerRate,
		Brackets:         tbl.Brackets,
	}
}
