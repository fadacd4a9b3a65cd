package ports

import (
	"context"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
)

// LabelSource yields the ordered candidate labels for a run.
type LabelSource interface {
	Labels(ctx context.Context) ([]string, error)
	Describe() string
}

// CacheWriter persists an assembled record under its identifier and
// returns a short human-readable description of where it went.
type CacheWriter interface {
	Write(ctx context.Context, id string, record *domain.CacheRecord) (string, error)
}

// CacheReader loads a record previously written under an identifier.
type CacheReader interface {
	Load(ctx context.Context, id string) (*domain.CacheRecord, error)
}

// HashLookup resolves a single encoded hash inside a stored record.
type HashLookup interface {
	Lookup(ctx context.Context, id string, hash string) (string, bool, error)
}

// ProgressReporter observes a running batch. Start is called before the
// dispatcher begins, Stop after it has joined.
type ProgressReporter interface {
	Start(p *domain.Progress, title string)
	Stop()
}

// GeneratorService runs hash generation batches.
type GeneratorService interface {
	Generate(ctx context.Context, cfg domain.RunConfig) (*domain.Summary, error)
	GeneratePresets(ctx context.Context, base domain.RunConfig, presets []domain.Preset) ([]PresetResult, error)
}

// PresetResult pairs a preset with its run outcome. Err is set when that
// preset failed; other presets still run.
type PresetResult struct {
	Preset  domain.Preset
	Summary *domain.Summary
	Err     error
}
