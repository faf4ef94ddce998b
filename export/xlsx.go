package export

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/uyouii/welllog/model"
)

const (
	dataSheet   = "log_data"
	curvesSheet = "curves"
	wellSheet   = "well"
)

// WriteXLSX writes a workbook with the samples, the curve table and the well header.
// Missing samples are left as empty cells.
func WriteXLSX(w io.Writer, ds *model.LogDataset, table *model.DerivedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(dataSheet)
	if err != nil {
		return err
	}
	header := make([]interface{}, 0, len(table.Columns()))
	for _, name := range table.Columns() {
		header = append(header, name)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		values := make([]interface{}, 0, len(row.Values)+1)
		values = append(values, row.Depth)
		for _, sample := range row.Values {
			if sample.Valid {
				values = append(values, sample.Value)
			} else {
				values = append(values, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if _, err := f.NewSheet(curvesSheet); err != nil {
		return err
	}
	rows := [][]interface{}{{"mnemonic", "unit", "description"}}
	rows = append(rows, []interface{}{table.Index.Mnemonic, table.Index.Unit, table.Index.Description})
	for _, curve := range ds.Curves() {
		rows = append(rows, []interface{}{curve.Mnemonic, curve.Unit, curve.Description})
	}
	if err := setRows(f, curvesSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(wellSheet); err != nil {
		return err
	}
	rows = [][]interface{}{{"mnemonic", "unit", "value", "description"}}
	for _, item := range ds.Sections.Well {
		rows = append(rows, []interface{}{item.Mnemonic, item.Unit, item.Value, item.Description})
	}
	if err := setRows(f, wellSheet, rows); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Identifier: uuid.NewString(),
		Title:      ds.Info.Well,
		Subject:    ds.Info.Field,
		Creator:    "welllog",
		Created:    time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
