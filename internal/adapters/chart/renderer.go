package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"cryptoSignalWatch/internal/domain"
	"cryptoSignalWatch/internal/ports"
	"cryptoSignalWatch/internal/utils"
)

// Default image size of a rendered chart.
const (
	DefaultWidth  = 14 * vg.Inch
	DefaultHeight = 12 * vg.Inch
)

// Config holds renderer settings.
type Config struct {
	Dir       string
	Logger    ports.Logger
	ExportCSV bool // Also write the frame as CSV next to the image
	Width     vg.Length
	Height    vg.Length
}

// Renderer draws each frame as a four panel PNG chart.
type Renderer struct {
	dir       string
	exportCSV bool
	width     vg.Length
	height    vg.Length
	logger    ports.Logger
}

// NewRenderer creates a renderer writing into cfg.Dir.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for chart renderer")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: chart directory is required", ports.ErrConfigurationError)
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create chart directory %s: %w", cfg.Dir, err)
	}
	r := &Renderer{
		dir:       cfg.Dir,
		exportCSV: cfg.ExportCSV,
		width:     cfg.Width,
		height:    cfg.Height,
		logger:    cfg.Logger,
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	if r.height <= 0 {
		r.height = DefaultHeight
	}
	return r, nil
}

// FileName returns the output name for frame with extension ext, keyed by
// its latest bar.
func FileName(frame *domain.Frame, ext string) string {
	symbol := strings.NewReplacer("/", "", ":", "_", "-", "").Replace(strings.ToUpper(frame.Series.Symbol))
	stamp := frame.Latest().Timestamp().UTC().Format("20060102T150405")
	return fmt.Sprintf("%s_%s_%s.%s", symbol, frame.Series.Timeframe, stamp, ext)
}

// Render writes frame to new files. Failures are logged, never returned.
func (r *Renderer) Render(ctx context.Context, frame *domain.Frame) {
	if frame == nil || frame.Len() == 0 {
		return
	}

	path := filepath.Join(r.dir, FileName(frame, "png"))
	if err := r.writePNG(path, frame); err != nil {
		r.logger.Error(ctx, err, "Failed to render chart", map[string]interface{}{"path": path})
		return
	}
	r.logger.Info(ctx, "Chart written", map[string]interface{}{"path": path, "rows": frame.Len()})

	if !r.exportCSV {
		return
	}
	csvPath := filepath.Join(r.dir, FileName(frame, "csv"))
	if err := writeFile(csvPath, func(f *os.File) error { return utils.WriteFrameToCSV(frame, f) }); err != nil {
		r.logger.Error(ctx, err, "Failed to export chart data", map[string]interface{}{"path": csvPath})
		return
	}
	r.logger.Debug(ctx, "Chart data exported", map[string]interface{}{"path": csvPath})
}

func (r *Renderer) writePNG(path string, frame *domain.Frame) error {
	return writeFile(path, func(f *os.File) error { return WritePNG(frame, f, r.width, r.height) })
}

func writeFile(path string, write func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
