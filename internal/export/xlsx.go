package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/pts-radar/internal/pipeline"
	"github.com/jonathan/pts-radar/internal/types"
)

// Sheet names of the XLSX export.
const (
	SheetSurges      = "Surges"
	SheetDisclosures = "Disclosures"
)

// linkColumns is the number of title/link pairs on the Surges sheet
const linkColumns = 3

// WriteXLSX writes result to path as a workbook with one sheet of surges
// and one sheet listing every attached disclosure.
func WriteXLSX(path string, result *pipeline.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSurges); err != nil {
		return &Error{Path: path, Message: "failed to name sheet", Cause: err}
	}
	if _, err := f.NewSheet(SheetDisclosures); err != nil {
		return &Error{Path: path, Message: "failed to add sheet", Cause: err}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return &Error{Path: path, Message: "failed to create style", Cause: err}
	}

	if err := writeSurges(f, result.Records, headerStyle); err != nil {
		return &Error{Path: path, Message: "failed to write surges", Cause: err}
	}
	if err := writeDisclosures(f, result.Records, headerStyle); err != nil {
		return &Error{Path: path, Message: "failed to write disclosures", Cause: err}
	}

	if err := f.SaveAs(path); err != nil {
		return &Error{Path: path, Message: "failed to save workbook", Cause: err}
	}
	return nil
}

func writeSurges(f *excelize.File, records []types.CorrelatedRecord, headerStyle int) error {
	header := []interface{}{"Code", "Name", "Pct", "Volume", "Close", "PTS", "Disclosures"}
	for i := 1; i <= linkColumns; i++ {
		header = append(header, fmt.Sprintf("Title %d", i), fmt.Sprintf("Link %d", i))
	}
	if err := writeHeader(f, SheetSurges, header, headerStyle); err != nil {
		return err
	}

	for i, r := range records {
		rowNum := i + 2
		row := []interface{}{
			r.Code,
			r.Name,
			optionalPct(r),
			optionalInt(r.Volume),
			optionalInt(r.ClosePrice),
			optionalInt(r.PTSPrice),
			r.DisclosureCount,
		}
		for j := 0; j < linkColumns; j++ {
			if j < len(r.TopDisclosures) {
				row = append(row, r.TopDisclosures[j].Title, r.TopDisclosures[j].URL)
			} else {
				row = append(row, "", "")
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSurges, cell, &row); err != nil {
			return err
		}

		for j := 0; j < linkColumns && j < len(r.TopDisclosures); j++ {
			// Link columns follow the seven fixed columns: H/I, J/K, L/M.
			linkCell, err := excelize.CoordinatesToCellName(9+2*j, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellHyperLink(SheetSurges, linkCell, r.TopDisclosures[j].URL, "External"); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(SheetSurges, "B", "B", 24); err != nil {
		return err
	}
	return f.SetColWidth(SheetSurges, "H", "M", 36)
}

func writeDisclosures(f *excelize.File, records []types.CorrelatedRecord, headerStyle int) error {
	header := []interface{}{"Code", "Name", "Rank", "Day", "Title", "URL"}
	if err := writeHeader(f, SheetDisclosures, header, headerStyle); err != nil {
		return err
	}

	rowNum := 2
	for _, r := range records {
		for i, link := range r.TopDisclosures {
			row := []interface{}{r.Code, r.Name, i + 1, string(link.DayTag), link.Title, link.URL}
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(SheetDisclosures, cell, &row); err != nil {
				return err
			}
			if err := f.SetCellHyperLink(SheetDisclosures, fmt.Sprintf("F%d", rowNum), link.URL, "External"); err != nil {
				return err
			}
			rowNum++
		}
	}

	if err := f.SetColWidth(SheetDisclosures, "E", "E", 48); err != nil {
		return err
	}
	return f.SetColWidth(SheetDisclosures, "F", "F", 60)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	return f.SetRowStyle(sheet, 1, 1, style)
}

// optionalPct keeps nil cells empty; numbers are written as float64 so spreadsheets can sort them.
func optionalPct(r types.CorrelatedRecord) interface{} {
	if r.ChangePct == nil {
		return ""
	}
	return r.ChangePct.InexactFloat64()
}

func optionalInt(v *int64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
