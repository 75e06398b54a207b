package variance

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook streams a two-sheet workbook: the per-element summary
// and the full record detail, the shape review meetings work from.
func WriteWorkbook(w io.Writer, report SummaryReport, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := f.GetSheetName(0)
	if err := f.SetSheetName(summarySheet, "Summary"); err != nil {
		return err
	}
	header := []any{"cost_element", "records", "total_standard", "total_actual", "total_variance", "avg_variance_percent", "favorable", "unfavorable", "flagged"}
	if err := f.SetSheetRow("Summary", "A1", &header); err != nil {
		return err
	}
	for i, e := range report.Elements {
		row := []any{
			string(e.CostElement), e.RecordCount,
			e.TotalStandard.String(), e.TotalActual.String(), e.TotalVariance.String(),
			e.AverageVariancePercent.String(),
			e.FavorableCount, e.UnfavorableCount, e.FlaggedCount,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Summary", cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Records"); err != nil {
		return err
	}
	recordHeader := []any{"product_id", "cost_element", "standard_amount", "actual_amount", "variance_amount", "variance_percent", "favorable", "flagged", "flag_reason"}
	if err := f.SetSheetRow("Records", "A1", &recordHeader); err != nil {
		return err
	}
	for i, r := range records {
		favorable := ""
		if r.IsFavorable {
			favorable = "favorable"
		}
		flagged := ""
		if r.IsFlagged {
			flagged = "flagged"
		}
		row := []any{
			r.ProductID, string(r.CostElement),
			r.StandardAmount.String(), r.ActualAmount.String(),
			r.VarianceAmount.String(), r.VariancePercent.String(),
			favorable, flagged, r.FlagReason,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Records", cell, &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
