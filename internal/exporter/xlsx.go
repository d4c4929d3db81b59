package exporter

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/xuri/excelize/v2"

	"campkit/internal/record"
)

const (
	// XLSXMIMEType is the content type offered for spreadsheet downloads
	XLSXMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// DefaultXLSXFilename is used when the caller gives no filename
	DefaultXLSXFilename = "export.xlsx"

	xlsxSheet = "Export"
)

// xlsxEncoder lays records out on a single sheet: bold header row followed
// by one row per record, keeping numbers and booleans typed.
type xlsxEncoder struct{}

func (xlsxEncoder) Format() string          { return "xlsx" }
func (xlsxEncoder) MIMEType() string        { return XLSXMIMEType }
func (xlsxEncoder) DefaultFilename() string { return DefaultXLSXFilename }

func (xlsxEncoder) Encode(rs record.RecordSet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet writer: %w", err)
	}

	headers := rs.Headers()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, rec := range rs {
		row := make([]interface{}, len(headers))
		for j, h := range headers {
			v, _ := rec.Get(h)
			row[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(v record.Value) interface{} {
	if v.Kind() == record.KindNumber {
		n := v.Interface().(float64)
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return v.Text()
		}
		return n
	}
	return v.Interface()
}

// NewXLSX creates an exporter producing spreadsheet downloads
func NewXLSX(logger *slog.Logger, opts ...Option) *Exporter {
	return newExporter(xlsxEncoder{}, logger, collectOptions(opts))
}
