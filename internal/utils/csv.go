package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cryptoSignalWatch/internal/domain"
)

var barHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// WriteBarsToCSV writes bars to filename, creating parent directories as needed.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(barHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := writer.Write([]string{
			b.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadBarsFromCSV reads bars written by WriteBarsToCSV.
func ReadBarsFromCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadBars(file)
}

// ReadBars parses bar rows from r. The first row must be the header.
func ReadBars(r io.Reader) ([]*domain.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(barHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != barHeader[0] {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var bars []*domain.Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseBar(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBar(record []string) (*domain.Bar, error) {
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp '%s': %w", record[0], err)
	}
	values := make([]float64, 5)
	for i := range values {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s '%s': %w", barHeader[i+1], record[i+1], err)
		}
		values[i] = v
	}
	return &domain.Bar{
		Timestamp: ts.UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

// WriteFrameToCSV writes every row of frame with its bar fields, statistic
// columns and performance summary. Undefined values are written as empty cells.
func WriteFrameToCSV(frame *domain.Frame, w io.Writer) error {
	writer := csv.NewWriter(w)

	fields := append([]domain.Field{}, domain.ColumnFields...)
	fields = append(fields, domain.FieldSharpe, domain.FieldSortino, domain.FieldCalmar)

	header := append([]string{}, barHeader...)
	for _, f := range fields {
		header = append(header, string(f))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < frame.Len(); i++ {
		row := frame.Row(i)
		record := []string{
			row.Timestamp().UTC().Format(time.RFC3339),
			formatFloat(row.Get(domain.FieldOpen)),
			formatFloat(row.Get(domain.FieldHigh)),
			formatFloat(row.Get(domain.FieldLow)),
			formatFloat(row.Get(domain.FieldClose)),
			formatFloat(row.Get(domain.FieldVolume)),
		}
		for _, f := range fields {
			record = append(record, formatFloat(row.Get(f)))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	if !domain.IsDefined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
