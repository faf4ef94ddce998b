package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uyouii/welllog/bocd"
	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/config"
	"github.com/uyouii/welllog/export"
	"github.com/uyouii/welllog/kde"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/stats"
	"github.com/uyouii/welllog/utils"
)

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Print the well header and the curve table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			info := ds.Info

			printTitle(w, "Well")
			printField(w, "Well", info.Well)
			printField(w, "Field", info.Field)
			printField(w, "Location", info.Location)
			printField(w, "Province", info.Province)
			printField(w, "Company", info.Company)
			printField(w, "Service company", info.ServiceCompany)
			printField(w, "Log date", info.LogDate)
			printField(w, "UWI", info.UWI)
			printField(w, "Null value", utils.FloatString(info.Null, 4))
			if n := ds.Len(); n > 0 {
				printField(w, "Depth range", fmt.Sprintf("%s - %s %s (%d samples)",
					utils.FloatString(ds.Depths[0], 4), utils.FloatString(ds.Depths[n-1], 4), ds.Index.Unit, n))
			}
			if info.Step != nil {
				printField(w, "Step", utils.FloatString(*info.Step, 4))
			}

			curves := ds.Curves()
			rows := [][]string{{ds.Index.Mnemonic, ds.Index.Unit, ds.Index.Description}}
			for _, curve := range curves {
				rows = append(rows, []string{curve.Mnemonic, curve.Unit, curve.Description})
			}
			fmt.Fprintln(w)
			printTitle(w, fmt.Sprintf("Curves (%d)", len(curves)))
			printTable(w, []string{"Mnemonic", "Unit", "Description"}, rows)

			if len(ds.Sections.Parameters) > 0 {
				rows = nil
				for _, item := range ds.Sections.Parameters {
					rows = append(rows, []string{item.Mnemonic, item.Unit, item.Value, item.Description})
				}
				printTitle(w, "Parameters")
				printTable(w, []string{"Mnemonic", "Unit", "Value", "Description"}, rows)
			}
			if other := strings.TrimSpace(ds.Sections.Other); other != "" {
				printTitle(w, "Other")
				fmt.Fprintln(w, other)
			}
			return nil
		},
	}
}

func (a *app) describeCmd() *cobra.Command {
	var curves []string
	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "Summary statistics of every curve, or of the selected ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			summary := &stats.Summary{}
			if len(curves) == 0 {
				summary, err = stats.DescribeAll(table, a.cfg.Percentiles)
				if err != nil {
					return err
				}
			}
			for _, curve := range curves {
				s, err := stats.Describe(table, curve, a.cfg.Percentiles)
				if err != nil {
					return err
				}
				summary.Statistics = append(summary.Statistics, s)
			}

			headers := []string{"Curve", "Unit", "Count", "Mean", "Std", "Min"}
			for _, p := range a.cfg.Percentiles {
				headers = append(headers, "P"+utils.FloatString(p*100, 2))
			}
			headers = append(headers, "Max")
			rows := make([][]string, 0, len(summary.Statistics))
			for _, s := range summary.Statistics {
				row := []string{s.Curve, s.Unit, strconv.Itoa(s.Count), number(s.Mean), number(s.StdDev), number(s.Min)}
				for _, q := range s.Percentiles {
					row = append(row, number(q.Value))
				}
				rows = append(rows, append(row, number(s.Max)))
			}
			w := cmd.OutOrStdout()
			printTable(w, headers, rows)
			if len(summary.Skipped) > 0 {
				printNote(w, "no samples: "+strings.Join(summary.Skipped, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&curves, "curve", nil, "Curve to describe (repeatable)")
	return cmd
}

func (a *app) thresholdCmd() *cobra.Command {
	var curve, method string
	var lower, upper float64
	cmd := &cobra.Command{
		Use:   "threshold FILE",
		Short: "Lower and upper percentile cut-offs of a curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("lower") {
				lower = a.cfg.Threshold.Lower
			}
			if !cmd.Flags().Changed("upper") {
				upper = a.cfg.Threshold.Upper
			}
			if method == "" {
				method = a.cfg.Threshold.Method
			}

			clip, err := percentileThreshold(cmd.Context(), table, curve, method, lower, upper, a.cfg.KDE)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), []string{"Curve", "Method", "Lower", "Upper"}, [][]string{{
				curve, method,
				fmt.Sprintf("P%s = %s", utils.FloatString(lower*100, 2), number(clip.Lower)),
				fmt.Sprintf("P%s = %s", utils.FloatString(upper*100, 2), number(clip.Upper)),
			}})
			return nil
		},
	}
	cmd.Flags().StringVar(&curve, "curve", "", "Curve mnemonic")
	cmd.Flags().Float64Var(&lower, "lower", 0.05, "Lower percentile in [0, 1]")
	cmd.Flags().Float64Var(&upper, "upper", 0.95, "Upper percentile in [0, 1]")
	cmd.Flags().StringVar(&method, "method", "", "empirical or kde (default from config)")
	_ = cmd.MarkFlagRequired("curve")
	return cmd
}

// percentileThreshold reads the cut-offs from the order statistics or from the density
// estimate built with smoothing.
func percentileThreshold(ctx context.Context, table *model.DerivedTable, curve, method string,
	lower, upper float64, smoothing kde.Options) (model.Clip, error) {
	switch method {
	case config.MethodEmpirical:
		return stats.ComputeThreshold(table, curve, lower, upper)
	case config.MethodKDE:
		return kde.Threshold(ctx, table, curve, lower, upper, smoothing)
	}
	return model.Clip{}, fmt.Errorf("unknown threshold method %q: %w", method, common.ErrorConfig)
}

func (a *app) classifyCmd() *cobra.Command {
	var curve, below, above string
	var threshold float64
	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Split a curve into runs below and above a threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			labels := a.cfg.Labels
			if below != "" {
				labels.Below = below
			}
			if above != "" {
				labels.Above = above
			}
			runs, err := stats.Classify(table, curve, threshold, labels)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(runs))
			counts := map[string]int{}
			for _, run := range runs {
				rows = append(rows, []string{
					utils.FloatString(run.Top, 4), utils.FloatString(run.Base, 4),
					strconv.Itoa(run.Count), run.Category,
				})
				counts[run.Category] += run.Count
			}
			w := cmd.OutOrStdout()
			printTable(w, []string{"Top", "Base", "Samples", "Category"}, rows)
			printNote(w, fmt.Sprintf("%d runs, %s: %d samples, %s: %d samples", len(runs),
				labels.Below, counts[labels.Below], labels.Above, counts[labels.Above]))
			return nil
		},
	}
	cmd.Flags().StringVar(&curve, "curve", "", "Curve mnemonic")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Cut-off value, samples at or below it fall in the lower category")
	cmd.Flags().StringVar(&below, "below", "", "Label of the lower category (default from config)")
	cmd.Flags().StringVar(&above, "above", "", "Label of the upper category (default from config)")
	_ = cmd.MarkFlagRequired("curve")
	_ = cmd.MarkFlagRequired("threshold")
	return cmd
}

func (a *app) boundariesCmd() *cobra.Command {
	var curve string
	cmd := &cobra.Command{
		Use:   "boundaries FILE",
		Short: "Depths where a curve changes regime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			boundaries, err := bocd.DetectBoundaries(cmd.Context(), table, curve, a.cfg.Boundaries)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(boundaries))
			for _, b := range boundaries {
				rows = append(rows, []string{
					utils.FloatString(b.DepthValue.Depth, 4), b.BoundaryType.String(), number(b.DepthValue.Value),
				})
			}
			w := cmd.OutOrStdout()
			printTable(w, []string{"Depth", "Direction", "Value"}, rows)
			printNote(w, fmt.Sprintf("%d boundaries on %s", len(boundaries), curve))
			return nil
		},
	}
	cmd.Flags().StringVar(&curve, "curve", "", "Curve mnemonic")
	_ = cmd.MarkFlagRequired("curve")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var format string
	var drop, rename []string
	cmd := &cobra.Command{
		Use:   "export FILE DEST",
		Short: "Write the dataset as CSV, XLSX, LAS or SQLite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, mnemonic := range drop {
				if ds, err = ds.DropCurve(mnemonic); err != nil {
					return err
				}
			}
			for _, pair := range rename {
				from, to, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("rename %q is not OLD=NEW: %w", pair, common.ErrorConfig)
				}
				if ds, err = ds.RenameCurve(from, to); err != nil {
					return err
				}
			}
			if err := export.Export(cmd.Context(), ds, args[1], export.Format(format)); err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), fmt.Sprintf("wrote %s (%d curves, %d samples)", args[1], len(ds.Mnemonics()), ds.Len()))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv, xlsx, las or sqlite (default from the extension)")
	cmd.Flags().StringArrayVar(&drop, "drop", nil, "Curve to leave out (repeatable)")
	cmd.Flags().StringArrayVar(&rename, "rename", nil, "OLD=NEW mnemonic rename (repeatable)")
	return cmd
}
