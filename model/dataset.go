package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/uyouii/welllog/common"
)

const (
	DefaultNullValue = -999.25
	// DepthColumn is the canonical name of the depth index once it becomes a column.
	DepthColumn = "DEPTH"
)

type HeaderItem struct {
	Mnemonic    string `json:"mnemonic"`
	Unit        string `json:"unit,omitempty"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

// Sections keeps the raw header sections of the source file.
type Sections struct {
	Version    []HeaderItem
	Well       []HeaderItem
	Parameters []HeaderItem
	Other      string
}

// WellInfo is the typed view of the well section. Every field is optional.
type WellInfo struct {
	Well           string   `json:"well,omitempty"`
	Field          string   `json:"field,omitempty"`
	Location       string   `json:"location,omitempty"`
	Province       string   `json:"province,omitempty"`
	Company        string   `json:"company,omitempty"`
	ServiceCompany string   `json:"service_company,omitempty"`
	LogDate        string   `json:"log_date,omitempty"`
	UWI            string   `json:"uwi,omitempty"`
	Null           float64  `json:"null"`
	Start          *float64 `json:"start,omitempty"`
	Stop           *float64 `json:"stop,omitempty"`
	Step           *float64 `json:"step,omitempty"`
}

type CurveInfo struct {
	Mnemonic    string `json:"mnemonic"`
	Unit        string `json:"unit,omitempty"`
	APICode     string `json:"api_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Label is the axis caption used by plots, e.g. "GR [GAPI]".
func (c CurveInfo) Label() string {
	if c.Unit == "" {
		return c.Mnemonic
	}
	return fmt.Sprintf("%s [%s]", c.Mnemonic, c.Unit)
}

// Curve holds raw samples, the null sentinel included. Samples must not be modified.
type Curve struct {
	CurveInfo
	Samples []float64
}

// LogDataset is one loaded well log. It is never mutated after construction:
// DropCurve and RenameCurve return a new dataset.
type LogDataset struct {
	Info     WellInfo
	Sections Sections
	Index    CurveInfo
	Depths   []float64

	curves []*Curve
	byName map[string]int
}

func NewLogDataset(info WellInfo, sections Sections, index CurveInfo,
	depths []float64, curves []Curve) (*LogDataset, error) {
	ds := &LogDataset{
		Info:     info,
		Sections: sections,
		Index:    index,
		Depths:   append([]float64(nil), depths...),
		curves:   make([]*Curve, 0, len(curves)),
		byName:   make(map[string]int, len(curves)),
	}
	for i := range curves {
		curve := &Curve{
			CurveInfo: curves[i].CurveInfo,
			Samples:   append([]float64(nil), curves[i].Samples...),
		}
		ds.byName[curve.Mnemonic] = len(ds.curves)
		ds.curves = append(ds.curves, curve)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks the structural invariants: unique mnemonics, one sample per depth,
// unique strictly monotonic depths.
func (d *LogDataset) Validate() error {
	if strings.TrimSpace(d.Index.Mnemonic) == "" {
		return fmt.Errorf("depth index has no mnemonic: %w", common.ErrorFormat)
	}
	seen := map[string]bool{d.Index.Mnemonic: true}
	for _, curve := range d.curves {
		if strings.TrimSpace(curve.Mnemonic) == "" {
			return fmt.Errorf("curve with empty mnemonic: %w", common.ErrorFormat)
		}
		if seen[curve.Mnemonic] {
			return fmt.Errorf("duplicate mnemonic %q: %w", curve.Mnemonic, common.ErrorFormat)
		}
		seen[curve.Mnemonic] = true
		if len(curve.Samples) != len(d.Depths) {
			return fmt.Errorf("curve %q has %d samples, depth index has %d: %w",
				curve.Mnemonic, len(curve.Samples), len(d.Depths), common.ErrorFormat)
		}
	}
	return checkMonotonic(d.Depths)
}

func checkMonotonic(depths []float64) error {
	direction := 0
	for i, depth := range depths {
		if math.IsNaN(depth) || math.IsInf(depth, 0) {
			return fmt.Errorf("depth %d is not a finite number: %w", i, common.ErrorFormat)
		}
		if i == 0 {
			continue
		}
		step := 1
		switch {
		case depth == depths[i-1]:
			return fmt.Errorf("duplicate depth %v: %w", depth, common.ErrorFormat)
		case depth < depths[i-1]:
			step = -1
		}
		if direction != 0 && step != direction {
			return fmt.Errorf("depth index is not monotonic at %v: %w", depth, common.ErrorFormat)
		}
		direction = step
	}
	return nil
}

func (d *LogDataset) Len() int {
	return len(d.Depths)
}

// Mnemonics returns curve names in file order, the depth index excluded.
func (d *LogDataset) Mnemonics() []string {
	res := make([]string, 0, len(d.curves))
	for _, curve := range d.curves {
		res = append(res, curve.Mnemonic)
	}
	return res
}

func (d *LogDataset) Curve(mnemonic string) (Curve, error) {
	i, ok := d.byName[mnemonic]
	if !ok {
		return Curve{}, fmt.Errorf("curve %q: %w", mnemonic, common.ErrorNotFound)
	}
	return *d.curves[i], nil
}

func (d *LogDataset) Curves() []Curve {
	res := make([]Curve, 0, len(d.curves))
	for _, curve := range d.curves {
		res = append(res, *curve)
	}
	return res
}

// DropCurve returns a dataset without mnemonic. The receiver is left unchanged.
func (d *LogDataset) DropCurve(mnemonic string) (*LogDataset, error) {
	i, ok := d.byName[mnemonic]
	if !ok {
		return nil, fmt.Errorf("drop curve %q: %w", mnemonic, common.ErrorNotFound)
	}
	res := d.clone()
	res.curves = append(res.curves[:i:i], res.curves[i+1:]...)
	res.reindex()
	return res, nil
}

// RenameCurve rebinds a curve, or the depth index, to a new mnemonic.
func (d *LogDataset) RenameCurve(mnemonic, newMnemonic string) (*LogDataset, error) {
	if strings.TrimSpace(newMnemonic) == "" {
		return nil, fmt.Errorf("rename %q to empty mnemonic: %w", mnemonic, common.ErrorConfig)
	}
	if mnemonic == newMnemonic {
		if mnemonic == d.Index.Mnemonic || d.has(mnemonic) {
			return d.clone(), nil
		}
		return nil, fmt.Errorf("rename curve %q: %w", mnemonic, common.ErrorNotFound)
	}
	if newMnemonic == d.Index.Mnemonic || d.has(newMnemonic) {
		return nil, fmt.Errorf("rename %q: mnemonic %q already exists: %w", mnemonic, newMnemonic, common.ErrorConfig)
	}

	res := d.clone()
	if mnemonic == d.Index.Mnemonic {
		res.Index.Mnemonic = newMnemonic
		return res, nil
	}
	i, ok := d.byName[mnemonic]
	if !ok {
		return nil, fmt.Errorf("rename curve %q: %w", mnemonic, common.ErrorNotFound)
	}
	renamed := *res.curves[i]
	renamed.Mnemonic = newMnemonic
	res.curves[i] = &renamed
	res.reindex()
	return res, nil
}

// DerivedTable implements Tabular.
func (d *LogDataset) DerivedTable() (*DerivedTable, error) {
	if d.Index.Mnemonic != DepthColumn && d.has(DepthColumn) {
		return nil, fmt.Errorf("curve %q collides with the depth column: %w", DepthColumn, common.ErrorConfig)
	}

	n := len(d.Depths)
	descending := n > 1 && d.Depths[0] > d.Depths[n-1]
	at := func(i int) int {
		if descending {
			return n - 1 - i
		}
		return i
	}

	index := d.Index
	index.Mnemonic = DepthColumn
	table := &DerivedTable{
		Null:   d.Info.Null,
		Index:  index,
		Depths: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		table.Depths[i] = d.Depths[at(i)]
	}

	columns := make([]Column, 0, len(d.curves))
	for _, curve := range d.curves {
		samples := make([]Sample, n)
		for i := 0; i < n; i++ {
			samples[i] = sampleOf(curve.Samples[at(i)], d.Info.Null)
		}
		columns = append(columns, Column{CurveInfo: curve.CurveInfo, Samples: samples})
	}
	table.setColumns(columns)
	return table, nil
}

func sampleOf(v, null float64) Sample {
	if math.IsNaN(v) || v == null {
		return Missing()
	}
	return Present(v)
}

func (d *LogDataset) has(mnemonic string) bool {
	_, ok := d.byName[mnemonic]
	return ok
}

func (d *LogDataset) clone() *LogDataset {
	res := *d
	res.curves = append([]*Curve(nil), d.curves...)
	res.reindex()
	return &res
}

func (d *LogDataset) reindex() {
	d.byName = make(map[string]int, len(d.curves))
	for i, curve := range d.curves {
		d.byName[curve.Mnemonic] = i
	}
}
