package store

import (
	"context"
	"strings"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
)

// MultiWriter fans a record out to several writers in order. The first
// failure aborts the remaining writes.
type MultiWriter struct {
	writers []ports.CacheWriter
}

var _ ports.CacheWriter = (*MultiWriter)(nil)

func NewMultiWriter(writers ...ports.CacheWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) Write(ctx context.Context, id string, record *domain.CacheRecord) (string, error) {
	outs := make([]string, 0, len(m.writers))
	for _, w := range m.writers {
		out, err := w.Write(ctx, id, record)
		if err != nil {
			return "", err
		}
		outs = append(outs, out)
	}
	return strings.Join(outs, ", "), nil
}
