package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uyouii/welllog/bocd"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/plotspec"
	"github.com/uyouii/welllog/render"
)

// plotFlags are shared by every plot subcommand.
type plotFlags struct {
	out        string
	title      string
	logX       bool
	boundaries string
}

func (f *plotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output image, .png or .svg")
	cmd.Flags().StringVar(&f.title, "title", "", "Figure title")
	cmd.Flags().BoolVar(&f.logX, "log-x", false, "Logarithmic value axis for every curve, the vertical one on box plots")
	_ = cmd.MarkFlagRequired("out")
}

func (f *plotFlags) apply(opts *plotspec.Options) {
	if f.title != "" {
		opts.Title = f.title
	}
	opts.LogScaleX = opts.LogScaleX || f.logX
}

// overlayBoundaries adds the formation boundaries of f.boundaries to opts.
func (a *app) overlayBoundaries(ctx context.Context, f *plotFlags, table *model.DerivedTable, opts *plotspec.Options) error {
	if f.boundaries == "" {
		return nil
	}
	boundaries, err := bocd.DetectBoundaries(ctx, table, f.boundaries, a.cfg.Boundaries)
	if err != nil {
		return err
	}
	opts.Boundaries = boundaries
	return nil
}

func (a *app) draw(ctx context.Context, spec *plotspec.Spec, f *plotFlags, cmd *cobra.Command) error {
	surface := render.NewChartSurface()
	surface.PanelWidth, surface.PanelHeight = a.cfg.Render.PanelWidth, a.cfg.Render.PanelHeight
	if err := render.RenderFile(ctx, surface, spec, f.out); err != nil {
		return err
	}
	printNote(cmd.OutOrStdout(), fmt.Sprintf("wrote %s plot to %s", spec.Kind, f.out))
	return nil
}

func (a *app) plotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render log, histogram, box, cross and shaded plots",
	}
	cmd.AddCommand(a.plotLineCmd())
	cmd.AddCommand(a.plotHistogramCmd())
	cmd.AddCommand(a.plotBoxCmd())
	cmd.AddCommand(a.plotCrossCmd())
	cmd.AddCommand(a.plotShadeCmd())
	return cmd
}

func (a *app) plotLineCmd() *cobra.Command {
	f := &plotFlags{}
	var tracks []string
	cmd := &cobra.Command{
		Use:     "line FILE",
		Short:   "Curves against depth, one track per --track",
		Example: `  welllog plot line well.las --track GR --track ILD --track RHOB,NPLS -o tracks.png`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, table, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			preset := a.cfg.Plots.Line
			selected := preset.Tracks
			if len(tracks) > 0 {
				selected = nil
				for _, track := range tracks {
					selected = append(selected, strings.Split(track, ","))
				}
			}
			opts := a.cfg.Options(preset)
			f.apply(&opts)
			if err := a.overlayBoundaries(ctx, f, table, &opts); err != nil {
				return err
			}
			spec, err := plotspec.BuildLinePlot(table, selected, opts)
			if err != nil {
				return err
			}
			return a.draw(ctx, spec, f, cmd)
		},
	}
	f.register(cmd)
	cmd.Flags().StringArrayVar(&tracks, "track", nil, "Comma separated curves of one track, at most two (repeatable)")
	cmd.Flags().StringVar(&f.boundaries, "boundaries", "", "Overlay the formation boundaries detected on this curve")
	return cmd
}

func (a *app) plotHistogramCmd() *cobra.Command {
	f := &plotFlags{}
	var curve string
	var bins int
	var density, noKDE bool
	var marks []string
	cmd := &cobra.Command{
		Use:     "hist FILE",
		Aliases: []string{"histogram"},
		Short:   "Value distribution of one curve",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, table, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			opts := a.cfg.Options(a.cfg.Plots.Histogram)
			f.apply(&opts)
			if bins > 0 {
				opts.Bins = bins
			}
			opts.Density = opts.Density || density
			opts.KDE = opts.KDE && !noKDE
			if cmd.Flags().Changed("mark") {
				opts.MarkStatistics = marks
			}
			spec, err := plotspec.BuildHistogram(table, curve, opts)
			if err != nil {
				return err
			}
			return a.draw(ctx, spec, f, cmd)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&curve, "curve", "", "Curve mnemonic")
	cmd.Flags().IntVar(&bins, "bins", 0, "Number of bins (default from config)")
	cmd.Flags().BoolVar(&density, "density", false, "Normalize bars to a probability density")
	cmd.Flags().BoolVar(&noKDE, "no-kde", false, "Leave out the kernel density overlay")
	cmd.Flags().StringSliceVar(&marks, "mark", nil, "Statistics to mark: mean, median, p5, ...")
	_ = cmd.MarkFlagRequired("curve")
	return cmd
}

func (a *app) plotBoxCmd() *cobra.Command {
	f := &plotFlags{}
	var curves []string
	cmd := &cobra.Command{
		Use:   "box FILE",
		Short: "Notched boxplot per curve with mean and outliers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, table, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			opts := a.cfg.Options(a.cfg.Plots.Box)
			f.apply(&opts)
			spec, err := plotspec.BuildBoxplot(table, curves, opts)
			if err != nil {
				return err
			}
			return a.draw(ctx, spec, f, cmd)
		},
	}
	f.register(cmd)
	cmd.Flags().StringSliceVar(&curves, "curve", nil, "Curve mnemonic (repeatable)")
	_ = cmd.MarkFlagRequired("curve")
	return cmd
}

func (a *app) plotCrossCmd() *cobra.Command {
	f := &plotFlags{}
	var x, y, colorBy, colorMap string
	var vmin, vmax float64
	cmd := &cobra.Command{
		Use:     "cross FILE",
		Aliases: []string{"crossplot"},
		Short:   "One curve against another, optionally colored by a third",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, table, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			preset := a.cfg.Plots.Crossplot
			opts := a.cfg.Options(preset)
			f.apply(&opts)
			if x == "" {
				x = preset.X
			}
			if y == "" {
				y = preset.Y
			}
			if cmd.Flags().Changed("color-by") {
				opts.ColorBy = colorBy
				opts.ColorRange = nil
			}
			if colorMap != "" {
				opts.ColorMap = colorMap
			}
			if cmd.Flags().Changed("vmin") || cmd.Flags().Changed("vmax") {
				span := model.Clip{Lower: vmin, Upper: vmax}
				if opts.ColorRange != nil {
					if !cmd.Flags().Changed("vmin") {
						span.Lower = opts.ColorRange.Lower
					}
					if !cmd.Flags().Changed("vmax") {
						span.Upper = opts.ColorRange.Upper
					}
				}
				opts.ColorRange = &span
			}
			spec, err := plotspec.BuildCrossplot(table, x, y, opts)
			if err != nil {
				return err
			}
			return a.draw(ctx, spec, f, cmd)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&x, "x", "", "Curve on the horizontal axis (default from config)")
	cmd.Flags().StringVar(&y, "y", "", "Curve on the vertical axis (default from config)")
	cmd.Flags().StringVar(&colorBy, "color-by", "", "Curve mapped to point color, empty for none")
	cmd.Flags().StringVar(&colorMap, "cmap", "", "rainbow or viridis")
	cmd.Flags().Float64Var(&vmin, "vmin", 0, "Value at the low end of the color map")
	cmd.Flags().Float64Var(&vmax, "vmax", 0, "Value at the high end of the color map")
	return cmd
}

func (a *app) plotShadeCmd() *cobra.Command {
	f := &plotFlags{}
	var curve string
	var threshold float64
	cmd := &cobra.Command{
		Use:   "shade FILE",
		Short: "Curve against depth shaded by lithology around a threshold",
		Long: `Fills between the threshold and the curve, one color per category. Without
--threshold the cut-off is the midpoint of the configured percentile thresholds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, table, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold, err = a.defaultThreshold(ctx, table, curve)
				if err != nil {
					return err
				}
			}
			opts := a.cfg.Options(a.cfg.Plots.Shaded)
			f.apply(&opts)
			if err := a.overlayBoundaries(ctx, f, table, &opts); err != nil {
				return err
			}
			spec, err := plotspec.BuildShadedPlot(table, curve, threshold, opts)
			if err != nil {
				return err
			}
			return a.draw(ctx, spec, f, cmd)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&curve, "curve", "", "Curve mnemonic")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Cut-off between the two categories")
	cmd.Flags().StringVar(&f.boundaries, "boundaries", "", "Overlay the formation boundaries detected on this curve")
	_ = cmd.MarkFlagRequired("curve")
	return cmd
}

// defaultThreshold is the midpoint between the configured lower and upper cut-offs.
func (a *app) defaultThreshold(ctx context.Context, table *model.DerivedTable, curve string) (float64, error) {
	t := a.cfg.Threshold
	clip, err := percentileThreshold(ctx, table, curve, t.Method, t.Lower, t.Upper, a.cfg.KDE)
	if err != nil {
		return 0, err
	}
	return (clip.Lower + clip.Upper) / 2, nil
}
