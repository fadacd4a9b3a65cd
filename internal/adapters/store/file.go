package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
)

const gzipSuffix = ".gz"

// FileStore writes cache records as pretty-printed JSON files named after
// their identifier. Files are replaced atomically so a reader never sees a
// half-written record.
type FileStore struct {
	dir      string
	compress bool
	logger   *slog.Logger
}

var (
	_ ports.CacheWriter = (*FileStore)(nil)
	_ ports.CacheReader = (*FileStore)(nil)
	_ ports.HashLookup  = (*FileStore)(nil)
)

// NewFileStore creates a store rooted at dir. With compress set, records
// are gzipped and get a .gz suffix.
func NewFileStore(dir string, compress bool, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, compress: compress, logger: logger}
}

// Path returns where a record with the given identifier is written.
func (s *FileStore) Path(id string) string {
	name := domain.CacheFileName(id)
	if s.compress {
		name += gzipSuffix
	}
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Write(ctx context.Context, id string, record *domain.CacheRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding record: %w", domain.ErrOutputPersist, err)
	}
	if s.compress {
		if data, err = gzipBytes(data); err != nil {
			return "", fmt.Errorf("%w: compressing record: %w", domain.ErrOutputPersist, err)
		}
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOutputPersist, err)
	}

	path := s.Path(id)
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOutputPersist, err)
	}

	s.logger.Debug("cache file written",
		"path", path,
		"size", datasize.ByteSize(len(data)).HumanReadable(),
	)
	return path, nil
}

// Load reads a record back. Both the plain and the gzipped file name are
// tried, in the order matching the store's own setting.
func (s *FileStore) Load(ctx context.Context, id string) (*domain.CacheRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plain := filepath.Join(s.dir, domain.CacheFileName(id))
	candidates := []string{plain, plain + gzipSuffix}
	if s.compress {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path) // #nosec G304 -- path is built from the store root and a hex identifier
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filepath.Ext(path) == gzipSuffix {
			if data, err = gunzipBytes(data); err != nil {
				return nil, fmt.Errorf("decompressing %s: %w", path, err)
			}
		}

		var rec domain.CacheRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if rec.Hashes == nil {
			rec.Hashes = map[string]string{}
		}
		return &rec, nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrCacheNotFound, id)
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}

// Lookup loads the record and resolves one encoded hash.
func (s *FileStore) Lookup(ctx context.Context, id string, hash string) (string, bool, error) {
	rec, err := s.Load(ctx, id)
	if err != nil {
		return "", false, err
	}
	label, ok := rec.Lookup(hash)
	return label, ok, nil
}
