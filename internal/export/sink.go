package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"kpiauditor/internal/storage"
)

// Sink writes a finished export payload somewhere. The encoders stay pure;
// sinks own all I/O.
type Sink interface {
	// Write stores the payload under the given file name and returns the
	// location it ended up at (a path or URL).
	Write(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// DirSink writes exports into a local directory. The default sink.
type DirSink struct {
	Dir string
}

// NewDirSink creates a sink over the given directory, creating it if needed.
// Parameters:
//   - dir: target directory; "." when empty.
// Returns:
//   - *DirSink: initialized sink.
//   - error: non-nil if the directory cannot be created.
func NewDirSink(dir string) (*DirSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &DirSink{Dir: dir}, nil
}

// Write stores the payload as a file in the sink directory.
func (s *DirSink) Write(_ context.Context, name string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// S3Sink archives exports to S3-compatible object storage.
type S3Sink struct {
	store  storage.ObjectStorage
	prefix string
}

// NewS3Sink creates a sink over the given object storage.
// Parameters:
//   - store: initialized object storage client.
//   - prefix: key prefix for export objects, e.g. "exports".
// Returns:
//   - *S3Sink: initialized sink.
func NewS3Sink(store storage.ObjectStorage, prefix string) *S3Sink {
	return &S3Sink{store: store, prefix: prefix}
}

// Write uploads the payload and returns its object URL.
func (s *S3Sink) Write(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}
	err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return s.store.GetURL(key), nil
}
