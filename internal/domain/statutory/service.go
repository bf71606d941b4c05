package statutory

import "context"

// Service manages the statutory tables used by payroll computation. The
// company scope comes from the caller's JWT claims.
type Service interface {
	UpsertTable(ctx context.Context, req UpsertTableRequest) (TableResponse, error)
	ListTables(ctx context.Context) ([]TableResponse, error)
	// GetEffectiveTable returns the table in force on asOf (YYYY-MM-DD).
	GetEffectiveTable(ctx context.Context, asOf string) (TableResponse, error)
}
