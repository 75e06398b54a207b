package actuals

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/genka-erp/genka-erp/internal/masterdata/products"
	"github.com/genka-erp/genka-erp/internal/masterdata/shared"
)

// ProductLookup is the code-to-product slice of the product repository
// the importer needs.
type ProductLookup interface {
	GetByCode(ctx context.Context, code string) (products.Product, error)
}

// Importer ingests actual cost spreadsheets exported from the
// accounting system. Exports routinely mix full-width and half-width
// characters in product codes, so codes are NFKC-normalised before
// lookup. Each run gets a batch id so a bad import can be traced.
type Importer struct {
	logger   *slog.Logger
	products ProductLookup
	repo     Repository
}

func NewImporter(logger *slog.Logger, productLookup ProductLookup, repo Repository) *Importer {
	return &Importer{logger: logger, products: productLookup, repo: repo}
}

// Column layout of a product actuals sheet, after the header row:
// product_code, crude_product_cost, packaging_cost, labor_cost,
// overhead_cost, outsourcing_cost, quantity_produced.
const productSheetColumns = 7

// ImportProductActuals reads the first sheet and upserts one row per
// product. Unparseable rows are skipped and reported, never fatal.
func (i *Importer) ImportProductActuals(ctx context.Context, periodID int64, sourceSystem string, r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, fmt.Errorf("%w: workbook has no sheets", ErrInvalidImport)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	result := ImportResult{
		BatchID:      uuid.NewString(),
		PeriodID:     periodID,
		SourceSystem: sourceSystem,
	}

	var batch []ActualCost
	for idx, row := range rows {
		if idx == 0 {
			continue
		}
		cost, err := i.parseProductRow(ctx, periodID, sourceSystem, result.BatchID, row)
		if err != nil {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", idx+1, err))
			continue
		}
		batch = append(batch, cost)
	}

	if len(batch) > 0 {
		if err := i.repo.UpsertActualCosts(ctx, batch); err != nil {
			return ImportResult{}, fmt.Errorf("persist actual costs: %w", err)
		}
	}
	result.RowsImported = len(batch)

	i.logger.Info("actual costs imported",
		slog.String("batch_id", result.BatchID),
		slog.Int64("period_id", periodID),
		slog.String("source_system", sourceSystem),
		slog.Int("imported", result.RowsImported),
		slog.Int("skipped", result.RowsSkipped))
	return result, nil
}

func (i *Importer) parseProductRow(ctx context.Context, periodID int64, sourceSystem, batchID string, row []string) (ActualCost, error) {
	if len(row) < productSheetColumns {
		return ActualCost{}, fmt.Errorf("expected %d columns, got %d", productSheetColumns, len(row))
	}

	code := NormalizeCode(row[0])
	if code == "" {
		return ActualCost{}, fmt.Errorf("empty product code")
	}
	product, err := i.products.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ActualCost{}, fmt.Errorf("unknown product code %q", code)
		}
		return ActualCost{}, err
	}

	amounts := make([]decimal.Decimal, 0, productSheetColumns-1)
	for _, cell := range row[1:productSheetColumns] {
		v, err := parseAmount(cell)
		if err != nil {
			return ActualCost{}, err
		}
		amounts = append(amounts, v)
	}

	cost := ActualCost{
		ProductID:        product.ID,
		PeriodID:         periodID,
		CrudeProductCost: amounts[0],
		PackagingCost:    amounts[1],
		LaborCost:        amounts[2],
		OverheadCost:     amounts[3],
		OutsourcingCost:  amounts[4],
		QuantityProduced: amounts[5],
		SourceSystem:     sourceSystem,
		ImportBatchID:    batchID,
	}
	cost.TotalCost = cost.Sum()
	return cost, nil
}

// NormalizeCode folds full-width digits and letters to their ASCII
// forms and strips surrounding whitespace.
func NormalizeCode(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

func parseAmount(cell string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(NormalizeCode(cell), ",", "")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", cell)
	}
	return v, nil
}
