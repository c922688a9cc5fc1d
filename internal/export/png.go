package export

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/san-kum/dcmotor/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const pngDPI = 150

var (
	speedColor  = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	targetColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	outputColor = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	traceColor  = color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}
)

// PNG renders four stacked panels: speed against the dashed target, PID
// output, armature current and armature voltage. Sizes are in inches.
func PNG(path string, result *sim.Result, widthIn, heightIn float64) error {
	s := result.Series
	if s.Len() == 0 {
		return fmt.Errorf("png: empty series")
	}

	speed, err := panel("Motor speed", "speed", s.Time, s.Speed, speedColor)
	if err != nil {
		return err
	}
	target, err := plotter.NewLine(xys(s.Time, s.Target))
	if err != nil {
		return err
	}
	target.LineStyle.Color = targetColor
	target.LineStyle.Width = vg.Points(1.5)
	target.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	speed.Add(target)
	speed.Legend.Add("target", target)
	speed.Legend.Top = true

	output, err := panel("PID output", "output", s.Time, s.Output, outputColor)
	if err != nil {
		return err
	}
	current, err := panel("Armature current", "current", s.Time, s.Current, traceColor)
	if err != nil {
		return err
	}
	voltage, err := panel("Armature voltage", "voltage", s.Time, s.Voltage, traceColor)
	if err != nil {
		return err
	}
	voltage.X.Label.Text = "time (s)"

	plots := [][]*plot.Plot{{speed}, {output}, {current}, {voltage}}
	return savePlotsPNG(plots, widthIn, heightIn, path)
}

func panel(title, ylabel string, xs, ys []float64, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys(xs, ys))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", title, err)
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(ylabel, line)
	return p, nil
}

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func savePlotsPNG(plots [][]*plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(pngDPI),
	)
	dc := draw.New(c)

	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 4,

		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cannot flush png: %w", err)
	}
	return f.Close()
}
