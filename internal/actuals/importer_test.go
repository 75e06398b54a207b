package actuals

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/genka-erp/genka-erp/internal/masterdata/products"
	"github.com/genka-erp/genka-erp/internal/masterdata/shared"
)

type stubProducts struct {
	byCode map[string]products.Product
}

func (s *stubProducts) GetByCode(_ context.Context, code string) (products.Product, error) {
	p, ok := s.byCode[code]
	if !ok {
		return products.Product{}, shared.ErrNotFound
	}
	return p, nil
}

type captureRepo struct {
	Repository
	actuals []ActualCost
}

func (c *captureRepo) UpsertActualCosts(_ context.Context, rows []ActualCost) error {
	c.actuals = append(c.actuals, rows...)
	return nil
}

func buildSheet(t *testing.T, rows [][]any) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []any{"product_code", "crude_product_cost", "packaging_cost", "labor_cost", "overhead_cost", "outsourcing_cost", "quantity_produced"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func testImporter(repo *captureRepo) *Importer {
	lookup := &stubProducts{byCode: map[string]products.Product{
		"P-001": {ID: 1, Code: "P-001"},
		"P-002": {ID: 2, Code: "P-002"},
	}}
	return NewImporter(slog.New(slog.NewTextHandler(io.Discard, nil)), lookup, repo)
}

func TestImportProductActuals(t *testing.T) {
	repo := &captureRepo{}
	sheet := buildSheet(t, [][]any{
		{"P-001", "60000", "5000", "20000", "8000", "0", "100"},
		{"P-002", "12,000", "1,500", "4000", "2000", "500", "50"},
	})

	result, err := testImporter(repo).ImportProductActuals(context.Background(), 1, "kanjyo_bugyo", sheet)
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowsImported)
	assert.Zero(t, result.RowsSkipped)
	assert.NotEmpty(t, result.BatchID)
	require.Len(t, repo.actuals, 2)

	first := repo.actuals[0]
	assert.Equal(t, int64(1), first.ProductID)
	assert.True(t, first.TotalCost.Equal(first.Sum()))
	assert.Equal(t, result.BatchID, first.ImportBatchID)

	// Thousands separators in accounting exports parse cleanly.
	assert.True(t, repo.actuals[1].CrudeProductCost.String() == "12000")
}

func TestImportNormalizesFullWidthCodes(t *testing.T) {
	repo := &captureRepo{}
	sheet := buildSheet(t, [][]any{
		{"Ｐ－００１", "100", "0", "0", "0", "0", "10"},
	})

	result, err := testImporter(repo).ImportProductActuals(context.Background(), 1, "kanjyo_bugyo", sheet)
	require.NoError(t, err)
	require.Equal(t, 1, result.RowsImported, "full-width code folds to P-001: %v", result.Errors)
	assert.Equal(t, int64(1), repo.actuals[0].ProductID)
}

func TestImportSkipsBadRowsAndContinues(t *testing.T) {
	repo := &captureRepo{}
	sheet := buildSheet(t, [][]any{
		{"P-404", "100", "0", "0", "0", "0", "10"},
		{"P-001", "not-a-number", "0", "0", "0", "0", "10"},
		{"P-002", "100", "0", "0", "0", "0", "10"},
	})

	result, err := testImporter(repo).ImportProductActuals(context.Background(), 1, "kanjyo_bugyo", sheet)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsImported)
	assert.Equal(t, 2, result.RowsSkipped)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "unknown product code")
	assert.Contains(t, result.Errors[1], "invalid amount")
}

func TestImportRejectsNonWorkbook(t *testing.T) {
	repo := &captureRepo{}
	_, err := testImporter(repo).ImportProductActuals(context.Background(), 1, "kanjyo_bugyo", bytes.NewBufferString("not an xlsx"))
	require.ErrorIs(t, err, ErrInvalidImport)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "P-001", NormalizeCode("　Ｐ－００１　"))
	assert.Equal(t, "ABC123", NormalizeCode("ＡＢＣ１２３"))
}
