package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/uyouii/welllog/model"
)

// WriteCSV writes DEPTH and every curve, one row per depth. Missing samples are empty fields.
func WriteCSV(w io.Writer, table *model.DerivedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns()); err != nil {
		return err
	}
	record := make([]string, len(table.Columns()))
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		record[0] = formatFloat(row.Depth)
		for j, sample := range row.Values {
			record[j+1] = formatSample(sample)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSample(s model.Sample) string {
	if !s.Valid {
		return ""
	}
	return formatFloat(s.Value)
}
