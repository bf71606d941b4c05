package statutory

import (
	"context"
	"time"
)

// Repository defines data access for statutory tables. All methods take a
// companyID to prevent cross-company data access.
type Repository interface {
	// GetTableForDate returns the newest table whose effective_from is on
	// or before asOf, or ErrTableNotFound.
	GetTableForDate(ctx context.Context, companyID string, asOf time.Time) (Table, error)
	UpsertTable(ctx context.Context, tbl Table) (Table, error)
	ListTables(ctx context.Context, companyID string) ([]Table, error)
}
