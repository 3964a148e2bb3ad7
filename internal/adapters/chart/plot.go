package chart

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"cryptoSignalWatch/internal/domain"
)

const timeTickFormat = "01-02 15:04"

// RSI guide levels drawn on the momentum panel.
const (
	rsiLower = 30
	rsiUpper = 70
)

var (
	colorClose   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorFast    = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	colorSlow    = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	colorBand    = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
	colorTenkan  = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorKijun   = color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}
	colorSenkouA = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0x90}
	colorSenkouB = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0x90}
	colorCloud   = color.RGBA{R: 0xbc, G: 0xbd, B: 0x22, A: 0x40}
	colorGuide   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xa0}
)

type series struct {
	name  string
	field domain.Field
	color color.Color
}

// Panels builds the four stacked chart panels of a frame: price with moving
// averages, Bollinger bands and the Ichimoku cloud; MACD; RSI; volatility.
func Panels(frame *domain.Frame) ([]*plot.Plot, error) {
	xs := timeAxis(frame)
	title := fmt.Sprintf("%s %s", frame.Series.Symbol, frame.Series.Timeframe)

	price := newPanel(title+" price", "Price")
	if err := addCloud(price, xs, frame); err != nil {
		return nil, err
	}
	if err := addLines(price, xs, frame, []series{
		{"Close", domain.FieldClose, colorClose},
		{"SMA 50", domain.FieldSMA50, colorFast},
		{"SMA 200", domain.FieldSMA200, colorSlow},
		{"Bollinger Upper", domain.FieldBollingerUpper, colorBand},
		{"Bollinger Lower", domain.FieldBollingerLower, colorBand},
		{"Tenkan-sen", domain.FieldTenkan, colorTenkan},
		{"Kijun-sen", domain.FieldKijun, colorKijun},
		{"Senkou Span A", domain.FieldSenkouA, colorSenkouA},
		{"Senkou Span B", domain.FieldSenkouB, colorSenkouB},
	}); err != nil {
		return nil, err
	}

	macd := newPanel("MACD", "MACD")
	if err := addLines(macd, xs, frame, []series{
		{"MACD", domain.FieldMACD, colorClose},
		{"Signal", domain.FieldSignalLine, colorFast},
	}); err != nil {
		return nil, err
	}

	rsi := newPanel("RSI", "RSI")
	if err := addLines(rsi, xs, frame, []series{{"RSI", domain.FieldRSI, colorKijun}}); err != nil {
		return nil, err
	}
	for _, level := range []float64{rsiLower, rsiUpper} {
		level := level
		guide := plotter.NewFunction(func(float64) float64 { return level })
		guide.Color = colorGuide
		guide.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		rsi.Add(guide)
	}
	rsi.Y.Min, rsi.Y.Max = 0, 100

	vol := newPanel("Historical Volatility", "Volatility")
	if err := addLines(vol, xs, frame, []series{
		{"Historical Volatility", domain.FieldHistoricalVolatility, colorTenkan},
	}); err != nil {
		return nil, err
	}

	return []*plot.Plot{price, macd, rsi, vol}, nil
}

// WritePNG draws the panels of frame stacked vertically and encodes them as PNG.
func WritePNG(frame *domain.Frame, w io.Writer, width, height vg.Length) error {
	panels, err := Panels(frame)
	if err != nil {
		return err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	rows := make([][]*plot.Plot, len(panels))
	for i, p := range panels {
		rows[i] = []*plot.Plot{p}
	}
	tiles := draw.Tiles{Rows: len(panels), Cols: 1, PadY: vg.Points(8), PadTop: vg.Points(4), PadBottom: vg.Points(4)}
	canvases := plot.Align(rows, tiles, dc)
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode chart png: %w", err)
	}
	return nil
}

func newPanel(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: timeTickFormat}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

// timeAxis maps each row to its bar timestamp in Unix seconds.
func timeAxis(frame *domain.Frame) []float64 {
	xs := make([]float64, frame.Len())
	for i := range xs {
		xs[i] = float64(frame.Row(i).Timestamp().Unix())
	}
	return xs
}

// definedPoints keeps the rows where field holds a value; plotter rejects NaN.
func definedPoints(xs []float64, values []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if i < len(xs) && domain.IsDefined(v) {
			pts = append(pts, plotter.XY{X: xs[i], Y: v})
		}
	}
	return pts
}

func addLines(p *plot.Plot, xs []float64, frame *domain.Frame, lines []series) error {
	for _, s := range lines {
		pts := definedPoints(xs, frame.Column(s.field))
		if len(pts) == 0 {
			continue
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plot %s: %w", s.name, err)
		}
		l.Color = s.color
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(s.name, l)
	}
	return nil
}

// addCloud shades the area between the two leading Ichimoku spans over the
// rows where both are defined.
func addCloud(p *plot.Plot, xs []float64, frame *domain.Frame) error {
	ring := cloudRing(xs, frame.Column(domain.FieldSenkouA), frame.Column(domain.FieldSenkouB))
	if ring == nil {
		return nil
	}
	cloud, err := plotter.NewPolygon(ring)
	if err != nil {
		return fmt.Errorf("plot ichimoku cloud: %w", err)
	}
	cloud.Color = colorCloud
	cloud.LineStyle.Width = 0
	p.Add(cloud)
	return nil
}

// cloudRing walks span a forward and span b backward, closing the polygon.
// It returns nil when fewer than two rows carry both spans.
func cloudRing(xs, a, b []float64) plotter.XYs {
	var upper, lower plotter.XYs
	for i := range xs {
		if i >= len(a) || i >= len(b) || !domain.IsDefined(a[i]) || !domain.IsDefined(b[i]) {
			continue
		}
		upper = append(upper, plotter.XY{X: xs[i], Y: a[i]})
		lower = append(lower, plotter.XY{X: xs[i], Y: b[i]})
	}
	if len(upper) < 2 {
		return nil
	}

	ring := make(plotter.XYs, 0, 2*len(upper))
	ring = append(ring, upper...)
	for i := len(lower) - 1; i >= 0; i-- {
		ring = append(ring, lower[i])
	}
	return ring
}
