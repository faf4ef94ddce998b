package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/plotspec"
	"github.com/uyouii/welllog/utils"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// FormatOf picks the image format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported image extension %q: %w", filepath.Ext(path), common.ErrorConfig)
}

// Surface draws a plot description onto an image.
type Surface interface {
	Render(ctx context.Context, spec *plotspec.Spec, format Format, w io.Writer) error
}

const (
	DefaultPanelWidth  = 360
	DefaultPanelHeight = 800
	titleHeight        = 24
)

// ChartSurface renders every panel with go-chart and lays the panels out side by side.
type ChartSurface struct {
	PanelWidth  int
	PanelHeight int
}

func NewChartSurface() *ChartSurface {
	return &ChartSurface{PanelWidth: DefaultPanelWidth, PanelHeight: DefaultPanelHeight}
}

// panelSize keeps depth tracks tall and the other kinds square.
func (s *ChartSurface) panelSize(kind plotspec.Kind) (int, int) {
	width, height := s.PanelWidth, s.PanelHeight
	if width <= 0 {
		width = DefaultPanelWidth
	}
	if height <= 0 {
		height = DefaultPanelHeight
	}
	switch kind {
	case plotspec.KindHistogram, plotspec.KindCrossplot:
		return height, height * 3 / 4
	case plotspec.KindBox:
		return width, height * 3 / 4
	}
	return width, height
}

func (s *ChartSurface) Render(ctx context.Context, spec *plotspec.Spec, format Format, w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.GetLogger(ctx).Error("render panic", zap.Any("panic", r), zap.String("stack", utils.GetPanicInfo()))
			err = fmt.Errorf("render %s plot: %v: %w", spec.Kind, r, common.ErrorInvalidValue)
		}
	}()

	if spec == nil || len(spec.Panels) == 0 {
		return fmt.Errorf("plot has no panels: %w", common.ErrorEmptyInput)
	}
	width, height := s.panelSize(spec.Kind)

	switch format {
	case FormatSVG:
		if len(spec.Panels) > 1 {
			return fmt.Errorf("svg output holds a single panel, plot has %d: %w", len(spec.Panels), common.ErrorConfig)
		}
		ch := panelChart(spec.Panels[0], width, height)
		if spec.Title != "" {
			ch.Title = spec.Title
		}
		return ch.Render(chart.SVG, w)
	case FormatPNG:
	default:
		return fmt.Errorf("unknown image format %q: %w", format, common.ErrorConfig)
	}

	if len(spec.Panels) == 1 && spec.Title == "" {
		ch := panelChart(spec.Panels[0], width, height)
		return ch.Render(chart.PNG, w)
	}

	top := 0
	if spec.Title != "" {
		top = titleHeight
	}
	canvas := image.NewRGBA(image.Rect(0, 0, width*len(spec.Panels), height+top))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	for i, panel := range spec.Panels {
		var buf bytes.Buffer
		ch := panelChart(panel, width, height)
		if err := ch.Render(chart.PNG, &buf); err != nil {
			return fmt.Errorf("render panel %d %q: %w", i, panel.Title, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return fmt.Errorf("decode panel %d: %w", i, err)
		}
		at := image.Rect(i*width, top, (i+1)*width, top+height)
		draw.Draw(canvas, at, img, img.Bounds().Min, draw.Src)
	}
	if spec.Title != "" {
		drawTitle(canvas, spec.Title)
	}
	utils.GetLogger(ctx).Debug("composed plot", zap.String("kind", string(spec.Kind)),
		zap.Int("panels", len(spec.Panels)), zap.Int("width", canvas.Bounds().Dx()))
	return png.Encode(w, canvas)
}

// drawTitle centers the figure title above the panels.
func drawTitle(canvas *image.RGBA, title string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	x := (canvas.Bounds().Dx() - d.MeasureString(title).Ceil()) / 2
	if x < 4 {
		x = 4
	}
	d.Dot = fixed.P(x, (titleHeight+face.Ascent)/2)
	d.DrawString(title)
}

// RenderFile renders spec to path, the format follows the extension. The file is
// replaced only once the image is complete.
func RenderFile(ctx context.Context, surface Surface, spec *plotspec.Spec, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := surface.Render(ctx, spec, format, &buf); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %v: %w", path, err, common.ErrorIO)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("create %s: %v: %w", path, err, common.ErrorIO)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %v: %w", path, err, common.ErrorIO)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %v: %w", path, err, common.ErrorIO)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %v: %w", path, err, common.ErrorIO)
	}
	utils.GetLogger(ctx).Info("plot written", zap.String("path", path), zap.String("kind", string(spec.Kind)),
		zap.Int("bytes", buf.Len()))
	return nil
}
