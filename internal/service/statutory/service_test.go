package statutory

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/statutory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "11111111-1111-1111-1111-111111111111"

type fakeRepo struct {
	tables []statutory.Table
}

func (f *fakeRepo) GetTableForDate(ctx context.Context, companyID string, asOf time.Time) (statutory.Table, error) {
	var best *statutory.Table
	for i := range f.tables {
		tbl := &f.tables[i]
		if tbl.CompanyID != companyID || tbl.EffectiveFrom.After(asOf) {
			continue
		}
		if best == nil || tbl.EffectiveFrom.After(best.EffectiveFrom) {
			best = tbl
		}
	}
	if best == nil {
		return statutory.Table{}, statutory.ErrTableNotFound
	}
	return *best, nil
}

func (f *fakeRepo) UpsertTable(ctx context.Context, tbl statutory.Table) (statutory.Table, error) {
	for i := range f.tables {
		if f.tables[i].CompanyID == tbl.CompanyID && f.tables[i].EffectiveFrom.Equal(tbl.EffectiveFrom) {
			tbl.ID = f.tables[i].ID
			f.tables[i] = tbl
			return tbl, nil
		}
	}
	f.tables = append(f.tables, tbl)
	return tbl, nil
}

func (f *fakeRepo) ListTables(ctx context.Context, companyID string) ([]statutory.Table, error) {
	var out []statutory.Table
	for _, tbl := range f.tables {
		if tbl.CompanyID == companyID {
			out = append(out, tbl)
		}
	}
	return out, nil
}

func authedContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"company_id": testCompanyID,
		"type":       "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validRequest() statutory.UpsertTableRequest {
	return statutory.UpsertTableRequest{
		EffectiveFrom:    "2025-01-01",
		NSSFEmployeeRate: d("0.05"),
		NSSFEmployerRate: d("0.10"),
		Brackets: []statutory.Bracket{
			{Lower: decimal.Zero, Rate: d("0.1")},
		},
	}
}

func TestUpsertTable(t *testing.T) {
	svc := NewStatutoryService(&fakeRepo{})
	ctx := authedContext(t)

	got, err := svc.UpsertTable(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, testCompanyID, got.CompanyID)
	assert.Equal(t, "2025-01-01", got.EffectiveFrom)
	assert.NotEmpty(t, got.ID)
}

func TestUpsertTableInvalidSchedule(t *testing.T) {
	svc := NewStatutoryService(&fakeRepo{})
	ctx := authedContext(t)

	req := validRequest()
	upper := d("1000000")
	req.Brackets = []statutory.Bracket{
		{Lower: decimal.Zero, Upper: &upper, Rate: d("0.1")},
	}
	_, err := svc.UpsertTable(ctx, req)
	assert.ErrorIs(t, err, statutory.ErrInvalidTable)

	req = validRequest()
	req.Brackets = nil
	_, err = svc.UpsertTable(ctx, req)
	assert.Error(t, err)

	req = validRequest()
	req.EffectiveFrom = "not-a-date"
	_, err = svc.UpsertTable(ctx, req)
	assert.Error(t, err)
}

func TestGetEffectiveTablePicksNewest(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewStatutoryService(repo)
	ctx := authedContext(t)

	first := validRequest()
	first.EffectiveFrom = "2024-01-01"
	_, err := svc.UpsertTable(ctx, first)
	require.NoError(t, err)

	second := validRequest()
	second.EffectiveFrom = "2025-01-01"
	second.NSSFEmployeeRate = d("0.06")
	_, err = svc.UpsertTable(ctx, second)
	require.NoError(t, err)

	got, err := svc.GetEffectiveTable(ctx, "2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", got.EffectiveFrom)
	assert.True(t, got.NSSFEmployeeRate.Equal(d("0.06")))

	got, err = svc.GetEffectiveTable(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.EffectiveFrom)

	_, err = svc.GetEffectiveTable(ctx, "2023-01-01")
	assert.ErrorIs(t, err, statutory.ErrTableNotFound)
}
