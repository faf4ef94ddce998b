package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/uyouii/welllog/bocd"
	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/kde"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/plotspec"
	"github.com/uyouii/welllog/stats"
	"github.com/uyouii/welllog/utils"
)

const (
	MethodEmpirical = "empirical"
	MethodKDE       = "kde"
)

type Config struct {
	// quantiles reported by describe, in [0, 1]
	Percentiles []float64            `yaml:"percentiles"`
	Threshold   ThresholdConfig      `yaml:"threshold"`
	Labels      model.CategoryLabels `yaml:"labels"`
	KDE         kde.Options          `yaml:"kde"`
	Boundaries  bocd.Options         `yaml:"boundaries"`
	Plots       Plots                `yaml:"plots"`
	Render      RenderConfig         `yaml:"render"`
}

type ThresholdConfig struct {
	Lower  float64 `yaml:"lower"`
	Upper  float64 `yaml:"upper"`
	Method string  `yaml:"method"`
}

type RenderConfig struct {
	PanelWidth  int `yaml:"panel_width"`
	PanelHeight int `yaml:"panel_height"`
}

type Plots struct {
	Line      PlotConfig `yaml:"line"`
	Histogram PlotConfig `yaml:"histogram"`
	Box       PlotConfig `yaml:"box"`
	Crossplot PlotConfig `yaml:"crossplot"`
	Shaded    PlotConfig `yaml:"shaded"`
}

// PlotConfig holds the presets of one plot kind. Curves absent from Curves use automatic bounds.
type PlotConfig struct {
	Title   string `yaml:"title,omitempty"`
	InvertY bool   `yaml:"invert_y"`
	// default curve selection when none is given on the command line
	Tracks [][]string `yaml:"tracks,omitempty"`
	X      string     `yaml:"x,omitempty"`
	Y      string     `yaml:"y,omitempty"`

	Curves map[string]plotspec.CurveStyle `yaml:"curves,omitempty"`

	ColorBy    string      `yaml:"color_by,omitempty"`
	ColorRange *model.Clip `yaml:"color_range,omitempty"`
	ColorMap   string      `yaml:"color_map,omitempty"`

	Bins           int                      `yaml:"bins,omitempty"`
	Density        bool                     `yaml:"density,omitempty"`
	KDE            bool                     `yaml:"kde,omitempty"`
	MarkStatistics []string                 `yaml:"mark_statistics,omitempty"`
	ReferenceLines []plotspec.ReferenceLine `yaml:"reference_lines,omitempty"`

	BelowColor string `yaml:"below_color,omitempty"`
	AboveColor string `yaml:"above_color,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Percentiles: append([]float64(nil), stats.DefaultPercentiles...),
		Threshold:   ThresholdConfig{Lower: 0.05, Upper: 0.95, Method: MethodEmpirical},
		Labels:      model.LithologyLabels,
		KDE:         kde.DefaultOptions(),
		Boundaries:  bocd.DefaultOptions(),
		Plots: Plots{
			Line: PlotConfig{
				InvertY: true,
				Tracks:  [][]string{{"GR"}, {"ILD"}, {"RHOB", "NPLS"}},
				Curves: map[string]plotspec.CurveStyle{
					"GR":   {Color: "#000000", Bounds: plotspec.Bounds{Mode: plotspec.BoundsFixed, Min: 0, Max: 150}},
					"ILD":  {Color: "#1f77b4", Log: true},
					"RHOB": {Color: "#d62728"},
					"NPLS": {Color: "#1f77b4", Bounds: plotspec.Bounds{Mode: plotspec.BoundsFixed, Min: 0, Max: 40}, Inverted: true},
				},
			},
			Histogram: PlotConfig{
				Curves: map[string]plotspec.CurveStyle{
					"GR": {Bounds: plotspec.Bounds{Mode: plotspec.BoundsFixed, Min: 0, Max: 175}},
				},
				Bins:           plotspec.DefaultBins,
				KDE:            true,
				MarkStatistics: []string{"mean", "p5", "p95"},
			},
			Box: PlotConfig{},
			Crossplot: PlotConfig{
				InvertY: true,
				X:       "NPLS",
				Y:       "RHOB",
				Curves: map[string]plotspec.CurveStyle{
					"NPLS": {Bounds: plotspec.Bounds{Mode: plotspec.BoundsFixed, Min: -5, Max: 60}},
					"RHOB": {Bounds: plotspec.Bounds{Mode: plotspec.BoundsFixed, Min: 1.5, Max: 3.0}},
				},
				ColorBy:    "GR",
				ColorRange: &model.Clip{Lower: 0, Upper: 100},
				ColorMap:   plotspec.DefaultColorMap,
			},
			Shaded: PlotConfig{
				InvertY: true,
				Curves: map[string]plotspec.CurveStyle{
					"GR": {Color: "#000000", Bounds: plotspec.Bounds{Mode: plotspec.BoundsFixed, Min: 0, Max: 150}},
				},
				BelowColor: "#ffff00",
				AboveColor: "#808080",
			},
		},
		Render: RenderConfig{PanelWidth: 360, PanelHeight: 800},
	}
}

// Load reads a YAML file over the defaults. An empty path or a missing file yields the
// defaults; unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			utils.GetLogger(context.Background()).Warn("config file not found, using defaults", zap.String("path", path))
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %v: %w", path, err, common.ErrorIO)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %v: %w", path, err, common.ErrorConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, replacing path once the file is complete.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %v: %w", err, common.ErrorConfig)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save config %s: %v: %w", path, err, common.ErrorIO)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("save config %s: %v: %w", path, err, common.ErrorIO)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save config %s: %v: %w", path, err, common.ErrorIO)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save config %s: %v: %w", path, err, common.ErrorIO)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save config %s: %v: %w", path, err, common.ErrorIO)
	}
	return nil
}

func (c *Config) Validate() error {
	for _, p := range c.Percentiles {
		if !(p >= 0 && p <= 1) {
			return fmt.Errorf("percentile %v outside [0, 1]: %w", p, common.ErrorConfig)
		}
	}
	t := c.Threshold
	if !(t.Lower >= 0 && t.Lower < t.Upper && t.Upper <= 1) {
		return fmt.Errorf("threshold %v, %v must satisfy 0 <= lower < upper <= 1: %w", t.Lower, t.Upper, common.ErrorConfig)
	}
	if t.Method != MethodEmpirical && t.Method != MethodKDE {
		return fmt.Errorf("unknown threshold method %q: %w", t.Method, common.ErrorConfig)
	}
	if err := c.Labels.Validate(); err != nil {
		return err
	}
	if err := c.KDE.Validate(); err != nil {
		return err
	}
	if err := c.Boundaries.Validate(); err != nil {
		return err
	}
	if c.Render.PanelWidth < 0 || c.Render.PanelHeight < 0 {
		return fmt.Errorf("panel size %dx%d: %w", c.Render.PanelWidth, c.Render.PanelHeight, common.ErrorConfig)
	}
	for name, plot := range c.Plots.all() {
		if err := c.Options(plot).Validate(); err != nil {
			return fmt.Errorf("plots.%s: %w", name, err)
		}
	}
	return nil
}

func (p *Plots) all() map[string]PlotConfig {
	return map[string]PlotConfig{
		"line":      p.Line,
		"histogram": p.Histogram,
		"box":       p.Box,
		"crossplot": p.Crossplot,
		"shaded":    p.Shaded,
	}
}

// Options turns a plot preset into builder options.
func (c *Config) Options(plot PlotConfig) plotspec.Options {
	opts := plotspec.DefaultOptions()
	opts.Title = plot.Title
	opts.InvertY = plot.InvertY
	opts.Curves = plot.Curves
	opts.ColorBy = plot.ColorBy
	opts.ColorRange = plot.ColorRange
	if plot.ColorMap != "" {
		opts.ColorMap = plot.ColorMap
	}
	if plot.Bins > 0 {
		opts.Bins = plot.Bins
	}
	opts.Density = plot.Density
	opts.KDE = plot.KDE
	smoothing := c.KDE
	opts.Smoothing = &smoothing
	opts.MarkStatistics = plot.MarkStatistics
	opts.ReferenceLines = plot.ReferenceLines
	opts.Labels = c.Labels
	if plot.BelowColor != "" {
		opts.BelowColor = plot.BelowColor
	}
	if plot.AboveColor != "" {
		opts.AboveColor = plot.AboveColor
	}
	return opts
}
