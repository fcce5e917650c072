package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ZipMimeType is the content type of multi-file downloads.
const ZipMimeType = "application/zip"

// Dispatcher delivers export files to their destination.
// Dispatching empty content is a no-op.
type Dispatcher interface {
	Dispatch(ctx context.Context, content ExportableContent) error
}

// HTTPDispatcher writes export files as an HTTP download. A single file is sent
// as an attachment; several files are bundled into a zip archive.
type HTTPDispatcher struct {
	W           http.ResponseWriter
	ArchiveName string
}

// Dispatch implements Dispatcher.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, content ExportableContent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch len(content) {
	case 0:
		d.W.WriteHeader(http.StatusNoContent)
		return nil
	case 1:
		name := content.Filenames()[0]
		return writeAttachment(d.W, name, content[name])
	default:
		data, err := ZipContent(content)
		if err != nil {
			return err
		}
		name := d.ArchiveName
		if name == "" {
			name = DefaultTitle + ".zip"
		}
		return writeAttachment(d.W, name, Exportable{Content: data, Type: ZipMimeType})
	}
}

func writeAttachment(w http.ResponseWriter, name string, e Exportable) error {
	h := w.Header()
	h.Set("Content-Type", e.Type)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(e.Content)))
	h.Set("ETag", ETag(e.Content))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(e.Content); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ETag returns a strong entity tag for data.
func ETag(data []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(data))
}

// ZipContent bundles every entry into a zip archive, in filename order.
func ZipContent(content ExportableContent) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range content.Filenames() {
		fw, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
		if _, err := fw.Write(content[name].Content); err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// DirDispatcher writes export files into a directory.
type DirDispatcher struct {
	Dir string

	// Written lists the paths produced by the last Dispatch call.
	Written []string
}

// Dispatch implements Dispatcher.
func (d *DirDispatcher) Dispatch(ctx context.Context, content ExportableContent) error {
	d.Written = nil
	if len(content) == 0 {
		return nil
	}

	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, name := range content.Filenames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, content[name].Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		d.Written = append(d.Written, path)
	}
	return nil
}
