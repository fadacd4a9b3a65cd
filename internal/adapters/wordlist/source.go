package wordlist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poyrazK/nsec3gen/internal/core/ports"
)

const maxLineLen = 1 << 20

// FileSource reads one label per line from a file. Lines are trimmed and
// empty lines are skipped. Order is preserved.
type FileSource struct {
	path string
}

var _ ports.LabelSource = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Describe() string {
	return s.path
}

func (s *FileSource) Labels(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadLabels(ctx, f, 0)
}

// ReadLabels scans r line by line. A positive limit stops after that many
// labels.
func ReadLabels(ctx context.Context, r io.Reader, limit int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)

	var labels []string
	for scanner.Scan() {
		if len(labels)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
		if limit > 0 && len(labels) == limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading wordlist: %w", err)
	}
	return labels, nil
}
