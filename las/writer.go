package las

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/uyouii/welllog/model"
)

// Write serializes ds as unwrapped LAS 2.0. Depth range items are recomputed from the data,
// NaN samples are written as the null sentinel.
func Write(w io.Writer, ds *model.LogDataset) error {
	bw := bufio.NewWriter(w)
	null := ds.Info.Null

	fmt.Fprintln(bw, "~Version ---------------------------------------------------")
	writeItem(bw, model.HeaderItem{Mnemonic: "VERS", Value: "2.0", Description: "CWLS log ASCII Standard -VERSION 2.0"})
	writeItem(bw, model.HeaderItem{Mnemonic: "WRAP", Value: "NO", Description: "One line per depth step"})

	fmt.Fprintln(bw, "~Well ------------------------------------------------------")
	for _, item := range wellItems(ds) {
		writeItem(bw, item)
	}

	fmt.Fprintln(bw, "~Curve Information -----------------------------------------")
	writeItem(bw, curveItem(ds.Index))
	for _, curve := range ds.Curves() {
		writeItem(bw, curveItem(curve.CurveInfo))
	}

	if len(ds.Sections.Parameters) > 0 {
		fmt.Fprintln(bw, "~Params ----------------------------------------------------")
		for _, item := range ds.Sections.Parameters {
			writeItem(bw, item)
		}
	}
	if ds.Sections.Other != "" {
		fmt.Fprintln(bw, "~Other -----------------------------------------------------")
		fmt.Fprintln(bw, ds.Sections.Other)
	}

	fmt.Fprintln(bw, "~ASCII -----------------------------------------------------")
	curves := ds.Curves()
	for i, depth := range ds.Depths {
		fmt.Fprintf(bw, "%12s", formatValue(depth, null))
		for _, curve := range curves {
			fmt.Fprintf(bw, " %12s", formatValue(curve.Samples[i], null))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func wellItems(ds *model.LogDataset) []model.HeaderItem {
	unit := ds.Index.Unit
	res := []model.HeaderItem{}
	if n := len(ds.Depths); n > 0 {
		res = append(res,
			model.HeaderItem{Mnemonic: "STRT", Unit: unit, Value: formatValue(ds.Depths[0], ds.Info.Null), Description: "START DEPTH"},
			model.HeaderItem{Mnemonic: "STOP", Unit: unit, Value: formatValue(ds.Depths[n-1], ds.Info.Null), Description: "STOP DEPTH"},
		)
		step := 0.0
		if n > 1 {
			step = ds.Depths[1] - ds.Depths[0]
		}
		if ds.Info.Step != nil {
			step = *ds.Info.Step
		}
		res = append(res, model.HeaderItem{Mnemonic: "STEP", Unit: unit, Value: strconv.FormatFloat(step, 'f', -1, 64), Description: "STEP"})
	}
	res = append(res, model.HeaderItem{Mnemonic: "NULL", Value: strconv.FormatFloat(ds.Info.Null, 'f', -1, 64), Description: "NULL VALUE"})

	if len(ds.Sections.Well) > 0 {
		for _, item := range ds.Sections.Well {
			switch item.Mnemonic {
			case "STRT", "STOP", "STEP", "NULL":
				continue
			}
			res = append(res, item)
		}
		return res
	}

	// dataset built in memory, fall back to the typed fields
	typed := []model.HeaderItem{
		{Mnemonic: "COMP", Value: ds.Info.Company, Description: "COMPANY"},
		{Mnemonic: "WELL", Value: ds.Info.Well, Description: "WELL"},
		{Mnemonic: "FLD", Value: ds.Info.Field, Description: "FIELD"},
		{Mnemonic: "LOC", Value: ds.Info.Location, Description: "LOCATION"},
		{Mnemonic: "PROV", Value: ds.Info.Province, Description: "PROVINCE"},
		{Mnemonic: "SRVC", Value: ds.Info.ServiceCompany, Description: "SERVICE COMPANY"},
		{Mnemonic: "DATE", Value: ds.Info.LogDate, Description: "LOG DATE"},
		{Mnemonic: "UWI", Value: ds.Info.UWI, Description: "UNIQUE WELL ID"},
	}
	for _, item := range typed {
		if item.Value != "" {
			res = append(res, item)
		}
	}
	return res
}

func curveItem(info model.CurveInfo) model.HeaderItem {
	return model.HeaderItem{
		Mnemonic:    info.Mnemonic,
		Unit:        info.Unit,
		Value:       info.APICode,
		Description: info.Description,
	}
}

func writeItem(w io.Writer, item model.HeaderItem) {
	fmt.Fprintf(w, " %-8s.%-10s %-24s: %s\n", item.Mnemonic, item.Unit, item.Value, item.Description)
}

func formatValue(v, null float64) string {
	if math.IsNaN(v) {
		v = null
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
