package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
	"github.com/poyrazK/nsec3gen/internal/infrastructure/metrics"
)

// GeneratorService loads labels, hashes them, and persists the resulting
// cache record.
type GeneratorService struct {
	source   ports.LabelSource
	writer   ports.CacheWriter
	reporter ports.ProgressReporter
	logger   *slog.Logger
}

var _ ports.GeneratorService = (*GeneratorService)(nil)

// NewGeneratorService wires a generator. reporter may be nil.
func NewGeneratorService(source ports.LabelSource, writer ports.CacheWriter, reporter ports.ProgressReporter, logger *slog.Logger) *GeneratorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeneratorService{
		source:   source,
		writer:   writer,
		reporter: reporter,
		logger:   logger,
	}
}

// Generate runs one batch. Invalid parameters and an unavailable label
// source fail before any hashing starts.
func (s *GeneratorService) Generate(ctx context.Context, cfg domain.RunConfig) (*domain.Summary, error) {
	cfg = cfg.WithDefaults()
	salt, err := cfg.Validate()
	if err != nil {
		metrics.RunsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		return nil, err
	}

	labels, err := s.loadLabels(ctx)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, cfg, salt, labels)
}

// GeneratePresets runs one batch per preset against the same label set,
// which is loaded once. A preset that fails is recorded in its result and
// the remaining presets still run. The returned error is set only when the
// label source fails or ctx is done.
func (s *GeneratorService) GeneratePresets(ctx context.Context, base domain.RunConfig, presets []domain.Preset) ([]ports.PresetResult, error) {
	base = base.WithDefaults()
	base.SaltHex, base.Iterations = "", 0
	if _, err := base.Validate(); err != nil {
		metrics.RunsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		return nil, err
	}

	labels, err := s.loadLabels(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]ports.PresetResult, 0, len(presets))
	for i, p := range presets {
		if errCtx := ctx.Err(); errCtx != nil {
			return results, errCtx
		}

		s.logger.Info("generating preset",
			"index", i+1,
			"total", len(presets),
			"preset", p.Name,
			"salt", displaySalt(p.Salt),
			"iterations", p.Iterations,
		)

		cfg := base
		cfg.SaltHex = p.Salt
		cfg.Iterations = p.Iterations

		res := ports.PresetResult{Preset: p}
		salt, errSalt := cfg.Validate()
		if errSalt != nil {
			metrics.RunsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
			res.Err = errSalt
		} else {
			res.Summary, res.Err = s.run(ctx, cfg, salt, labels)
		}
		if res.Err != nil {
			s.logger.Error("preset failed", "preset", p.Name, "error", res.Err)
		}
		results = append(results, res)
	}

	return results, nil
}

func (s *GeneratorService) loadLabels(ctx context.Context) ([]string, error) {
	start := time.Now()
	labels, err := s.source.Labels(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(metrics.StatusSourceFailed).Inc()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLabelSourceUnavailable, s.source.Describe(), err)
	}
	if len(labels) == 0 {
		metrics.RunsTotal.WithLabelValues(metrics.StatusSourceFailed).Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyWordlist, s.source.Describe())
	}

	s.logger.Info("wordlist loaded",
		"source", s.source.Describe(),
		"labels", len(labels),
		"latency", time.Since(start),
	)
	return labels, nil
}

func (s *GeneratorService) run(ctx context.Context, cfg domain.RunConfig, salt []byte, labels []string) (*domain.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	logger := s.logger.With("run_id", runID)
	dispatcher := NewDispatcher(cfg.Workers)

	logger.Info("computing nsec3 hashes",
		"domain", cfg.Domain,
		"salt", displaySalt(cfg.SaltHex),
		"iterations", cfg.Iterations,
		"canonical", cfg.Canonical,
		"encoding", cfg.Encoding,
		"workers", dispatcher.Workers(),
		"labels", len(labels),
	)

	progress := domain.NewProgress(len(labels))
	if s.reporter != nil {
		s.reporter.Start(progress, cfg.Domain)
	}
	metrics.ActiveWorkers.Set(float64(dispatcher.Workers()))

	start := time.Now()
	res := dispatcher.Dispatch(labels, cfg, salt, progress)
	elapsed := time.Since(start)

	metrics.ActiveWorkers.Set(0)
	if s.reporter != nil {
		s.reporter.Stop()
	}

	metrics.LabelsProcessed.WithLabelValues("hashed").Add(float64(res.Hashed))
	metrics.LabelsProcessed.WithLabelValues("skipped").Add(float64(res.Skipped))
	metrics.HashCollisions.Add(float64(res.Collisions))
	metrics.RunDuration.WithLabelValues(strconv.FormatUint(uint64(cfg.Iterations), 10)).Observe(elapsed.Seconds())

	if res.Skipped > 0 {
		logger.Warn("labels skipped",
			"skipped", res.Skipped,
			"samples", res.SkippedSamples,
		)
	}
	if res.Collisions > 0 {
		logger.Warn("hash collisions resolved by last write", "collisions", res.Collisions)
	}

	record, id := Assemble(cfg, res.Hashes, res.Hashed)
	summary := &domain.Summary{
		RunID:      runID,
		Identifier: id,
		Domain:     cfg.Domain,
		Salt:       cfg.SaltHex,
		Iterations: cfg.Iterations,
		Total:      len(labels),
		Hashed:     res.Hashed,
		Skipped:    res.Skipped,
		Collisions: res.Collisions,
		Duration:   elapsed,
	}
	metrics.HashRate.Set(summary.HashesPerSecond())

	logger.Info("hash computation complete",
		"hashed", summary.Hashed,
		"skipped", summary.Skipped,
		"elapsed", elapsed,
		"hashes_per_sec", int64(summary.HashesPerSecond()),
	)

	out, err := s.writer.Write(ctx, id, record)
	if err != nil {
		metrics.RunsTotal.WithLabelValues(metrics.StatusPersistFailed).Inc()
		if errors.Is(err, domain.ErrOutputPersist) {
			return summary, err
		}
		return summary, fmt.Errorf("%w: %w", domain.ErrOutputPersist, err)
	}
	summary.Outputs = append(summary.Outputs, out)

	metrics.RunsTotal.WithLabelValues(metrics.StatusOK).Inc()
	logger.Info("cache record saved", "identifier", id, "output", out)

	return summary, nil
}

func displaySalt(salt string) string {
	if salt == "" {
		return "none"
	}
	return salt
}
