package exporter

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
)

var (
	// ErrNoSink is returned when an export has nowhere to go
	ErrNoSink = errors.New("no download sink")
	// ErrUnknownHandle is returned for released or foreign handles
	ErrUnknownHandle = errors.New("unknown download handle")
	// ErrAlreadyDelivered is returned when a one-shot sink is triggered twice
	ErrAlreadyDelivered = errors.New("download already delivered")
)

// Blob is an in-memory payload with its content type
type Blob struct {
	Data     []byte
	MIMEType string
}

// Handle refers to a blob registered with a sink, like a browser blob URL
type Handle string

func newHandle() Handle {
	return Handle("blob:" + uuid.NewString())
}

// DownloadSink offers blobs to the user as file downloads. Callers Acquire a
// handle, Trigger the download, and must Release the handle afterwards.
type DownloadSink interface {
	Acquire(blob Blob) (Handle, error)
	Trigger(ctx context.Context, h Handle, filename string) error
	Release(h Handle)
}

// SanitizeFilename reduces name to a safe base filename, falling back when
// nothing usable is left.
func SanitizeFilename(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`<>:"|?*`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return fallback
	}
	return name
}

// blobTable tracks acquired handles
type blobTable struct {
	mu    sync.Mutex
	blobs map[Handle]Blob
}

func (t *blobTable) put(b Blob) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.blobs == nil {
		t.blobs = make(map[Handle]Blob)
	}
	h := newHandle()
	t.blobs[h] = b
	return h
}

func (t *blobTable) get(h Handle) (Blob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.blobs[h]
	return b, ok
}

func (t *blobTable) drop(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.blobs, h)
}

func (t *blobTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.blobs)
}

// ResponseSink delivers a single download as an HTTP attachment
type ResponseSink struct {
	w         http.ResponseWriter
	table     blobTable
	mu        sync.Mutex
	delivered bool
}

// NewResponseSink wraps w
func NewResponseSink(w http.ResponseWriter) *ResponseSink {
	return &ResponseSink{w: w}
}

// Acquire registers blob for this response
func (s *ResponseSink) Acquire(blob Blob) (Handle, error) {
	return s.table.put(blob), nil
}

// Trigger writes the attachment headers and body
func (s *ResponseSink) Trigger(ctx context.Context, h Handle, filename string) error {
	blob, ok := s.table.get(h)
	if !ok {
		return ErrUnknownHandle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delivered {
		return ErrAlreadyDelivered
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	header := s.w.Header()
	header.Set("Content-Type", blob.MIMEType)
	header.Set("Content-Disposition", ContentDisposition(filename))
	header.Set("Content-Length", strconv.Itoa(len(blob.Data)))
	header.Set("Cache-Control", "no-store")
	s.w.WriteHeader(http.StatusOK)
	s.delivered = true

	if _, err := s.w.Write(blob.Data); err != nil {
		return fmt.Errorf("failed to write download body: %w", err)
	}
	return nil
}

// Release forgets the handle
func (s *ResponseSink) Release(h Handle) {
	s.table.drop(h)
}

// Delivered reports whether a download has been written
func (s *ResponseSink) Delivered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}

// Outstanding returns the number of unreleased handles
func (s *ResponseSink) Outstanding() int { return s.table.len() }

// ContentDisposition builds an attachment header for filename
func ContentDisposition(filename string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if v == "" {
		return `attachment; filename="download"`
	}
	return v
}

// DirSink saves downloads into a directory. Acquire stages the blob in a
// temporary file, Trigger moves it to its final name and Release removes
// anything left staged.
type DirSink struct {
	dir string

	mu     sync.Mutex
	staged map[Handle]string
	saved  []string
}

// NewDirSink creates the directory if needed
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create downloads directory: %w", err)
	}
	return &DirSink{dir: dir, staged: make(map[Handle]string)}, nil
}

// Acquire stages blob on disk
func (s *DirSink) Acquire(blob Blob) (Handle, error) {
	f, err := os.CreateTemp(s.dir, ".campkit-*.part")
	if err != nil {
		return "", fmt.Errorf("failed to stage download: %w", err)
	}
	if _, err := f.Write(blob.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage download: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to stage download: %w", err)
	}

	h := newHandle()
	s.mu.Lock()
	s.staged[h] = f.Name()
	s.mu.Unlock()
	return h, nil
}

// Trigger moves the staged file to filename inside the directory
func (s *DirSink) Trigger(ctx context.Context, h Handle, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, ok := s.staged[h]
	if !ok {
		return ErrUnknownHandle
	}

	final := filepath.Join(s.dir, SanitizeFilename(filename, "download"))
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	delete(s.staged, h)
	s.saved = append(s.saved, final)
	return nil
}

// Release removes the staged file if the download never happened
func (s *DirSink) Release(h Handle) {
	s.mu.Lock()
	tmp, ok := s.staged[h]
	delete(s.staged, h)
	s.mu.Unlock()

	if ok {
		os.Remove(tmp)
	}
}

// Saved returns the paths written so far
func (s *DirSink) Saved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.saved))
	copy(out, s.saved)
	return out
}

// Outstanding returns the number of staged, unreleased handles
func (s *DirSink) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// Download is a completed in-memory download
type Download struct {
	Filename string
	Blob     Blob
}

// MemorySink keeps downloads in memory
type MemorySink struct {
	table     blobTable
	mu        sync.Mutex
	downloads []Download
}

// NewMemorySink creates an empty sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Acquire registers blob
func (s *MemorySink) Acquire(blob Blob) (Handle, error) {
	return s.table.put(blob), nil
}

// Trigger records a download
func (s *MemorySink) Trigger(ctx context.Context, h Handle, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, ok := s.table.get(h)
	if !ok {
		return ErrUnknownHandle
	}
	s.mu.Lock()
	s.downloads = append(s.downloads, Download{Filename: filename, Blob: blob})
	s.mu.Unlock()
	return nil
}

// Release forgets the handle
func (s *MemorySink) Release(h Handle) {
	s.table.drop(h)
}

// Downloads returns the recorded downloads
func (s *MemorySink) Downloads() []Download {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Download, len(s.downloads))
	copy(out, s.downloads)
	return out
}

// Outstanding returns the number of unreleased handles
func (s *MemorySink) Outstanding() int { return s.table.len() }
