package model

import (
	"fmt"

	"github.com/uyouii/welllog/common"
)

// Sample is one measurement with an explicit missing marker in place of the null sentinel.
type Sample struct {
	Value float64
	Valid bool
}

func Missing() Sample {
	return Sample{}
}

func Present(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

type Column struct {
	CurveInfo
	Samples []Sample
}

type Row struct {
	Depth  float64
	Values []Sample // same order as DerivedTable.Curves()
}

// Tabular is anything that can be projected into a DerivedTable.
type Tabular interface {
	DerivedTable() (*DerivedTable, error)
}

func ToDerivedTable(src Tabular) (*DerivedTable, error) {
	return src.DerivedTable()
}

// DerivedTable is the depth-ascending, sentinel-free projection of a LogDataset.
// It is read-only; every accessor returns copies or shares slices that must not be modified.
type DerivedTable struct {
	Null   float64 // sentinel of the source, kept for writers that need one
	Index  CurveInfo
	Depths []float64

	columns []*Column
	byName  map[string]int
}

// NewDerivedTable builds a table directly from columns. Depths must be strictly ascending.
func NewDerivedTable(depths []float64, columns []Column) (*DerivedTable, error) {
	for i := 1; i < len(depths); i++ {
		if !(depths[i] > depths[i-1]) {
			return nil, fmt.Errorf("depths not strictly ascending at %d: %w", i, common.ErrorFormat)
		}
	}
	seen := map[string]bool{DepthColumn: true}
	for _, column := range columns {
		if seen[column.Mnemonic] {
			return nil, fmt.Errorf("duplicate column %q: %w", column.Mnemonic, common.ErrorFormat)
		}
		seen[column.Mnemonic] = true
		if len(column.Samples) != len(depths) {
			return nil, fmt.Errorf("column %q has %d samples, want %d: %w",
				column.Mnemonic, len(column.Samples), len(depths), common.ErrorFormat)
		}
	}
	table := &DerivedTable{
		Null:   DefaultNullValue,
		Index:  CurveInfo{Mnemonic: DepthColumn},
		Depths: append([]float64(nil), depths...),
	}
	copied := make([]Column, 0, len(columns))
	for _, column := range columns {
		copied = append(copied, Column{
			CurveInfo: column.CurveInfo,
			Samples:   append([]Sample(nil), column.Samples...),
		})
	}
	table.setColumns(copied)
	return table, nil
}

func (t *DerivedTable) setColumns(columns []Column) {
	t.columns = make([]*Column, 0, len(columns))
	t.byName = make(map[string]int, len(columns))
	for i := range columns {
		column := columns[i]
		t.byName[column.Mnemonic] = len(t.columns)
		t.columns = append(t.columns, &column)
	}
}

func (t *DerivedTable) Len() int {
	return len(t.Depths)
}

// Columns returns DEPTH followed by the curve mnemonics.
func (t *DerivedTable) Columns() []string {
	return append([]string{t.Index.Mnemonic}, t.Curves()...)
}

func (t *DerivedTable) Curves() []string {
	res := make([]string, 0, len(t.columns))
	for _, column := range t.columns {
		res = append(res, column.Mnemonic)
	}
	return res
}

func (t *DerivedTable) HasColumn(name string) bool {
	if name == t.Index.Mnemonic {
		return true
	}
	_, ok := t.byName[name]
	return ok
}

// Column looks a column up by name; the depth column is available too.
func (t *DerivedTable) Column(name string) (Column, error) {
	if name == t.Index.Mnemonic {
		samples := make([]Sample, len(t.Depths))
		for i, depth := range t.Depths {
			samples[i] = Present(depth)
		}
		return Column{CurveInfo: t.Index, Samples: samples}, nil
	}
	i, ok := t.byName[name]
	if !ok {
		return Column{}, fmt.Errorf("column %q: %w", name, common.ErrorNotFound)
	}
	return *t.columns[i], nil
}

// Values returns the non-missing samples of a column in depth order.
func (t *DerivedTable) Values(name string) ([]float64, error) {
	column, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	res := make([]float64, 0, len(column.Samples))
	for _, sample := range column.Samples {
		if sample.Valid {
			res = append(res, sample.Value)
		}
	}
	return res, nil
}

// DepthValues returns the non-missing samples of a column paired with their depth.
func (t *DerivedTable) DepthValues(name string) ([]DepthValue, error) {
	column, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	res := make([]DepthValue, 0, len(column.Samples))
	for i, sample := range column.Samples {
		if sample.Valid {
			res = append(res, DepthValue{Depth: t.Depths[i], Value: sample.Value})
		}
	}
	return res, nil
}

func (t *DerivedTable) Row(i int) Row {
	row := Row{Depth: t.Depths[i], Values: make([]Sample, len(t.columns))}
	for j, column := range t.columns {
		row.Values[j] = column.Samples[i]
	}
	return row
}

func (t *DerivedTable) Rows() []Row {
	res := make([]Row, 0, len(t.Depths))
	for i := range t.Depths {
		res = append(res, t.Row(i))
	}
	return res
}

// DerivedTable implements Tabular; the depth rename and sentinel replacement are no-ops here.
func (t *DerivedTable) DerivedTable() (*DerivedTable, error) {
	res := &DerivedTable{
		Null:   t.Null,
		Index:  t.Index,
		Depths: append([]float64(nil), t.Depths...),
	}
	res.Index.Mnemonic = DepthColumn
	columns := make([]Column, 0, len(t.columns))
	for _, column := range t.columns {
		columns = append(columns, Column{
			CurveInfo: column.CurveInfo,
			Samples:   append([]Sample(nil), column.Samples...),
		})
	}
	res.setColumns(columns)
	return res, nil
}
