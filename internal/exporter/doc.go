// Package exporter turns record sets into downloadable files.
//
// WriteCSV and EncodeCSV produce the CSV text: an unquoted header line built
// from the first record's keys, then one fully quoted line per record.
//
// An Exporter pairs an encoder (CSV or XLSX) with a DownloadSink. The sink
// abstracts where the file ends up:
//
//	ResponseSink  writes an HTTP attachment
//	DirSink       saves into a directory
//	MemorySink    keeps downloads in memory
//
// Example usage:
//
//	csv := exporter.NewCSV(logger)
//	err := csv.Export(ctx, records, exporter.NewResponseSink(w), "inscriptions.csv")
package exporter
