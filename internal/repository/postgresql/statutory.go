package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type statutoryRepository struct {
	db *database.DB
}

func NewStatutoryRepository(db *database.DB) statutory.Repository {
	return &statutoryRepository{db: db}
}

func scanTable(row pgx.Row) (statutory.Table, error) {
	var tbl statutory.Table
	var bracketsJSON []byte
	err := row.Scan(
		&tbl.ID, &tbl.CompanyID, &tbl.EffectiveFrom,
		&tbl.NSSFEmployeeRate, &tbl.NSSFEmployerRate,
		&bracketsJSON, &tbl.CreatedAt,
	)
	if err != nil {
		return statutory.Table{}, err
	}
	if err := json.Unmarshal(bracketsJSON, &tbl.Brackets); err != nil {
		return statutory.Table{}, fmt.Errorf("failed to decode brackets: %w", err)
	}
	return tbl, nil
}

func (r *statutoryRepository) GetTableForDate(ctx context.Context, companyID string, asOf time.Time) (statutory.Table, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, effective_from, nssf_employee_rate, nssf_employer_rate, brackets, created_at
		FROM statutory_tables
		WHERE company_id = $1 AND effective_from <= $2
		ORDER BY effective_from DESC
		LIMIT 1
	`

	tbl, err := scanTable(q.QueryRow(ctx, query, companyID, asOf))
	if err != nil {
		if err == pgx.ErrNoRows {
			return statutory.Table{}, statutory.ErrTableNotFound
		}
		return statutory.Table{}, fmt.Errorf("failed to get statutory table: %w", err)
	}

	return tbl, nil
}

func (r *statutoryRepository) UpsertTable(ctx context.Context, tbl statutory.Table) (statutory.Table, error) {
	q := GetQuerier(ctx, r.db)

	bracketsJSON, err := json.Marshal(tbl.Brackets)
	if err != nil {
		return statutory.Table{}, fmt.Errorf("failed to encode brackets: %w", err)
	}

	query := `
		INSERT INTO statutory_tables (id, company_id, effective_from, nssf_employee_rate, nssf_employer_rate, brackets)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, effective_from) DO UPDATE
		SET nssf_employee_rate = EXCLUDED.nssf_employee_rate,
			nssf_employer_rate = EXCLUDED.nssf_employer_rate,
			brackets = EXCLUDED.brackets
		RETURNING id, company_id, effective_from, nssf_employee_rate, nssf_employer_rate, brackets, created_at
	`

	stored, err := scanTable(q.QueryRow(ctx, query,
		tbl.ID, tbl.CompanyID, tbl.EffectiveFrom,
		tbl.NSSFEmployeeRate, tbl.NSSFEmployerRate, bracketsJSON,
	))
	if err != nil {
		return statutory.Table{}, fmt.Errorf("failed to upsert statutory table: %w", err)
	}

	return stored, nil
}

func (r *statutoryRepository) ListTables(ctx context.Context, companyID string) ([]statutory.Table, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, effective_from, nssf_employee_rate, nssf_employer_rate, brackets, created_at
		FROM statutory_tables
		WHERE company_id = $1
		ORDER BY effective_from DESC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statutory tables: %w", err)
	}
	defer rows.Close()

	var tables []statutory.Table
	for rows.Next() {
		tbl, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statutory table: %w", err)
		}
		tables = append(tables, tbl)
	}

	return tables, nil
}
