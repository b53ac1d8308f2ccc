// Package archive reads and writes the interchange container of the
// originating application: tile files under a Sync/ folder, either inside
// a ZIP archive or as a plain directory.
package archive

import (
	"archive/zip"
	"io"
	"log/slog"
	"path"
)

// SyncFolder is the fixed folder all tile files live under inside an
// exported archive.
const SyncFolder = "Sync"

// Writer streams tile files into a ZIP archive under the Sync/ folder.
// It implements fog.TileWriter.
type Writer struct {
	zw     *zip.Writer
	logger *slog.Logger
}

type writerConfig struct {
	Logger *slog.Logger
}

type WriterOption func(*writerConfig)

func WithLogger(logger *slog.Logger) WriterOption {
	return func(c *writerConfig) { c.Logger = logger }
}

// NewWriter creates a Writer emitting a ZIP archive into w.
// Finalize must be called to flush the central directory.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	config := writerConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Writer{zw: zip.NewWriter(w), logger: config.Logger}
}

// WriteTile adds one serialized tile file to the archive. Tile data is
// already DEFLATE-compressed, so entries are stored uncompressed.
func (w *Writer) WriteTile(name string, data []byte) error {
	entry, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   path.Join(SyncFolder, name),
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = entry.Write(data)
	return err
}

// Finalize completes the archive. It must be called before closing the
// underlying writer.
func (w *Writer) Finalize() error {
	w.logger.Debug("fogmap: closing archive")
	return w.zw.Close()
}
