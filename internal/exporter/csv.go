package exporter

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"campkit/internal/record"
)

const (
	// CSVMIMEType is the content type offered for CSV downloads
	CSVMIMEType = "text/csv;charset=utf-8;"
	// DefaultCSVFilename is used when the caller gives no filename
	DefaultCSVFilename = "export.csv"
)

// utf8BOM helps spreadsheet tools detect UTF-8 when opening the file directly
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV serializes rs to w. The header line is the first record's keys,
// comma-joined and unquoted. Every data field is quoted with embedded quotes
// doubled, and every line ends with a single "\n". Nothing is written for an
// empty set.
func WriteCSV(w io.Writer, rs record.RecordSet) error {
	if rs.Empty() {
		return nil
	}

	bw := bufio.NewWriter(w)
	headers := rs.Headers()

	bw.WriteString(strings.Join(headers, ","))
	bw.WriteByte('\n')

	for _, rec := range rs {
		for i, h := range headers {
			if i > 0 {
				bw.WriteByte(',')
			}
			// absent and null both resolve to ""
			v, _ := rec.Get(h)
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(v.Text(), `"`, `""`))
			bw.WriteByte('"')
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// EncodeCSV returns the CSV text for rs
func EncodeCSV(rs record.RecordSet) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	_ = WriteCSV(&buf, rs)
	return buf.Bytes()
}

// csvEncoder produces the CSV payload
type csvEncoder struct {
	bom bool
}

func (e csvEncoder) Format() string          { return "csv" }
func (e csvEncoder) MIMEType() string        { return CSVMIMEType }
func (e csvEncoder) DefaultFilename() string { return DefaultCSVFilename }

func (e csvEncoder) Encode(rs record.RecordSet) ([]byte, error) {
	var buf bytes.Buffer
	if e.bom {
		buf.Write(utf8BOM)
	}
	if err := WriteCSV(&buf, rs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewCSV creates an exporter producing CSV downloads
func NewCSV(logger *slog.Logger, opts ...Option) *Exporter {
	o := collectOptions(opts)
	return newExporter(csvEncoder{bom: o.bom}, logger, o)
}

// ExportToCSV exports rs through sink with a default CSV exporter. An empty
// set is logged and skipped.
func ExportToCSV(ctx context.Context, rs record.RecordSet, sink DownloadSink, filename string) error {
	return NewCSV(slog.Default()).Export(ctx, rs, sink, filename)
}
