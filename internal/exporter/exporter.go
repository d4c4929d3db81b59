package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"campkit/internal/record"
)

// Encoder turns a record set into a downloadable payload
type Encoder interface {
	Format() string
	MIMEType() string
	DefaultFilename() string
	Encode(rs record.RecordSet) ([]byte, error)
}

// Recorder receives export metrics
type Recorder interface {
	RecordExport(ctx context.Context, format string, rows int)
	RecordEmptyExport(ctx context.Context, format string)
}

type nopRecorder struct{}

func (nopRecorder) RecordExport(context.Context, string, int) {}
func (nopRecorder) RecordEmptyExport(context.Context, string) {}

// Option configures an Exporter
type Option func(*options)

type options struct {
	recorder        Recorder
	defaultFilename string
	bom             bool
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithDefaultFilename overrides the filename used when none is given
func WithDefaultFilename(name string) Option {
	return func(o *options) { o.defaultFilename = name }
}

// WithBOM prefixes CSV output with a UTF-8 byte order mark
func WithBOM(enabled bool) Option {
	return func(o *options) { o.bom = enabled }
}

func collectOptions(opts []Option) options {
	o := options{recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Exporter packages record sets as blobs and hands them to a DownloadSink
type Exporter struct {
	encoder         Encoder
	logger          *slog.Logger
	recorder        Recorder
	defaultFilename string
}

func newExporter(enc Encoder, logger *slog.Logger, o options) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	name := o.defaultFilename
	if name == "" {
		name = enc.DefaultFilename()
	}
	return &Exporter{
		encoder:         enc,
		logger:          logger.With(slog.String("component", "exporter"), slog.String("format", enc.Format())),
		recorder:        o.recorder,
		defaultFilename: name,
	}
}

// New creates an exporter for a custom encoder
func New(enc Encoder, logger *slog.Logger, opts ...Option) *Exporter {
	return newExporter(enc, logger, collectOptions(opts))
}

// Format returns the export format name
func (e *Exporter) Format() string { return e.encoder.Format() }

// Export encodes rs and offers it through sink under filename. An empty set
// is reported to the log and returns nil without touching the sink. The
// sink handle is always released once the download has been triggered.
func (e *Exporter) Export(ctx context.Context, rs record.RecordSet, sink DownloadSink, filename string) error {
	if rs.Empty() {
		e.logger.ErrorContext(ctx, "No data to export")
		e.recorder.RecordEmptyExport(ctx, e.encoder.Format())
		return nil
	}

	if filename == "" {
		filename = e.defaultFilename
	}

	data, err := e.encoder.Encode(rs)
	if err != nil {
		return fmt.Errorf("failed to encode %s export: %w", e.encoder.Format(), err)
	}

	if err := deliver(ctx, sink, Blob{Data: data, MIMEType: e.encoder.MIMEType()}, filename); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "export delivered",
		slog.String("filename", filename),
		slog.Int("record_count", len(rs)),
		slog.Int("columns", len(rs.Headers())),
		slog.Int("bytes", len(data)))
	e.recorder.RecordExport(ctx, e.encoder.Format(), len(rs))

	return nil
}

// deliver acquires a handle for blob, triggers the download and releases
// the handle on every path.
func deliver(ctx context.Context, sink DownloadSink, blob Blob, filename string) error {
	if sink == nil {
		return ErrNoSink
	}

	h, err := sink.Acquire(blob)
	if err != nil {
		return fmt.Errorf("failed to acquire download handle: %w", err)
	}
	defer sink.Release(h)

	if err := sink.Trigger(ctx, h, filename); err != nil {
		return fmt.Errorf("failed to trigger download of %s: %w", filename, err)
	}
	return nil
}
