package las

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/utils"
)

type section int

const (
	sectionNone section = iota
	sectionVersion
	sectionWell
	sectionCurves
	sectionParameters
	sectionOther
	sectionData
)

func sectionOf(line string) section {
	if len(line) < 2 {
		return sectionNone
	}
	switch strings.ToUpper(line[1:2]) {
	case "V":
		return sectionVersion
	case "W":
		return sectionWell
	case "C":
		return sectionCurves
	case "P":
		return sectionParameters
	case "O":
		return sectionOther
	case "A":
		return sectionData
	}
	return sectionNone
}

// Load reads a LAS 2.0 file. Mnemonics are upper-cased; repeated mnemonics get a ":n" suffix.
func Load(ctx context.Context, path string) (*model.LogDataset, error) {
	logger := utils.GetLogger(ctx)

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("las file %s: %w", path, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("open las file %s: %v: %w", path, err, common.ErrorIO)
	}
	defer file.Close()

	ds, err := Read(file)
	if err != nil {
		logger.Error("read las file failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("las file %s: %w", path, err)
	}

	logger.Info("las file loaded", zap.String("path", path), zap.String("well", ds.Info.Well),
		zap.Int("curves", len(ds.Mnemonics())), zap.Int("samples", ds.Len()))
	return ds, nil
}

type parser struct {
	sections model.Sections
	curves   []model.CurveInfo
	names    map[string]int
	other    []string
	values   []float64
	wrap     bool
}

func Read(r io.Reader) (*model.LogDataset, error) {
	p := &parser{names: map[string]int{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	current := sectionNone
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "~") {
			current = sectionOf(line)
			continue
		}
		if current == sectionOther {
			p.other = append(p.other, raw)
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var err error
		switch current {
		case sectionNone:
			err = fmt.Errorf("content before the first section")
		case sectionVersion, sectionWell, sectionCurves, sectionParameters:
			err = p.headerLine(current, line)
		case sectionData:
			err = p.dataLine(line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", lineNo, err, common.ErrorFormat)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan las data: %v: %w", err, common.ErrorFormat)
	}

	return p.build()
}

func (p *parser) headerLine(current section, line string) error {
	item, err := parseHeaderItem(line)
	if err != nil {
		return err
	}
	switch current {
	case sectionVersion:
		if item.Mnemonic == "WRAP" {
			p.wrap = strings.EqualFold(item.Value, "YES")
		}
		p.sections.Version = append(p.sections.Version, item)
	case sectionWell:
		p.sections.Well = append(p.sections.Well, item)
	case sectionParameters:
		p.sections.Parameters = append(p.sections.Parameters, item)
	case sectionCurves:
		mnemonic := item.Mnemonic
		if n, ok := p.names[mnemonic]; ok {
			p.names[mnemonic] = n + 1
			mnemonic = fmt.Sprintf("%s:%d", mnemonic, n+1)
		} else {
			p.names[mnemonic] = 0
		}
		p.curves = append(p.curves, model.CurveInfo{
			Mnemonic:    mnemonic,
			Unit:        item.Unit,
			APICode:     item.Value,
			Description: item.Description,
		})
	}
	return nil
}

// parseHeaderItem splits "MNEM.UNIT  VALUE : DESCRIPTION".
func parseHeaderItem(line string) (model.HeaderItem, error) {
	dot := strings.Index(line, ".")
	if dot < 0 {
		return model.HeaderItem{}, fmt.Errorf("header line %q has no '.' after the mnemonic", line)
	}
	colon := strings.LastIndex(line, ":")
	if colon < dot {
		return model.HeaderItem{}, fmt.Errorf("header line %q has no ':' before the description", line)
	}

	item := model.HeaderItem{
		Mnemonic:    strings.ToUpper(strings.TrimSpace(line[:dot])),
		Description: strings.TrimSpace(line[colon+1:]),
	}
	if item.Mnemonic == "" {
		return model.HeaderItem{}, fmt.Errorf("header line %q has an empty mnemonic", line)
	}

	// the unit runs from the dot to the first space
	rest := line[dot+1 : colon]
	if space := strings.IndexAny(rest, " \t"); space >= 0 {
		item.Unit = rest[:space]
		item.Value = strings.TrimSpace(rest[space:])
	} else {
		item.Unit = strings.TrimSpace(rest)
	}
	return item, nil
}

func (p *parser) dataLine(line string) error {
	fields := strings.Fields(line)
	if !p.wrap && len(p.curves) > 0 && len(fields) != len(p.curves) {
		return fmt.Errorf("data line has %d values, %d curves declared", len(fields), len(p.curves))
	}
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", field)
		}
		p.values = append(p.values, v)
	}
	return nil
}

func (p *parser) build() (*model.LogDataset, error) {
	if len(p.curves) == 0 {
		return nil, fmt.Errorf("no curves declared in ~C section: %w", common.ErrorFormat)
	}

	width := len(p.curves)
	if len(p.values)%width != 0 {
		return nil, fmt.Errorf("data section holds %d values, not a multiple of the %d declared curves: %w",
			len(p.values), width, common.ErrorFormat)
	}
	rows := len(p.values) / width

	info, err := wellInfo(p.sections.Well)
	if err != nil {
		return nil, err
	}
	p.sections.Other = strings.Join(p.other, "\n")

	depths := make([]float64, rows)
	curves := make([]model.Curve, width-1)
	for j := range curves {
		curves[j] = model.Curve{CurveInfo: p.curves[j+1], Samples: make([]float64, rows)}
	}
	for i := 0; i < rows; i++ {
		row := p.values[i*width : (i+1)*width]
		depths[i] = row[0]
		for j := range curves {
			curves[j].Samples[i] = row[j+1]
		}
	}

	return model.NewLogDataset(info, p.sections, p.curves[0], depths, curves)
}

func wellInfo(items []model.HeaderItem) (model.WellInfo, error) {
	info := model.WellInfo{Null: model.DefaultNullValue}
	for _, item := range items {
		var err error
		switch item.Mnemonic {
		case "WELL":
			info.Well = item.Value
		case "FLD":
			info.Field = item.Value
		case "LOC":
			info.Location = item.Value
		case "PROV", "STAT", "CTRY":
			if info.Province == "" {
				info.Province = item.Value
			}
		case "COMP":
			info.Company = item.Value
		case "SRVC":
			info.ServiceCompany = item.Value
		case "DATE":
			info.LogDate = item.Value
		case "UWI", "API":
			if info.UWI == "" {
				info.UWI = item.Value
			}
		case "NULL":
			info.Null, err = parseNumber(item)
		case "STRT":
			info.Start, err = parseOptional(item)
		case "STOP":
			info.Stop, err = parseOptional(item)
		case "STEP":
			info.Step, err = parseOptional(item)
		}
		if err != nil {
			return model.WellInfo{}, err
		}
	}
	return info, nil
}

func parseNumber(item model.HeaderItem) (float64, error) {
	v, err := strconv.ParseFloat(item.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("well item %s: invalid number %q: %w", item.Mnemonic, item.Value, common.ErrorFormat)
	}
	return v, nil
}

func parseOptional(item model.HeaderItem) (*float64, error) {
	if item.Value == "" {
		return nil, nil
	}
	v, err := parseNumber(item)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
