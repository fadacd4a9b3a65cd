package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/services"
)

func (a *app) common(ctx context.Context, args []string) error {
	fs := newFlagSet("common", a.stderr)
	flags := bindRunFlags(fs, a.env, false)
	presetsFile := fs.String("presets", "", "YAML preset table to use instead of the built-in one")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if err := flags.requireInputs(); err != nil {
		return err
	}

	presets, err := loadPresets(*presetsFile)
	if err != nil {
		return err
	}

	svc, fileStore, closeStores, err := a.newService(ctx, flags)
	if err != nil {
		return err
	}
	defer closeStores()
	defer a.writeMetrics(flags.metricsFile)

	start := time.Now()
	results, err := svc.GeneratePresets(ctx, flags.runConfig(), presets)

	failed := 0
	for i, res := range results {
		fmt.Fprintf(a.stdout, "[%d/%d] %s\n", i+1, len(presets), res.Preset.Name)
		if res.Err != nil {
			failed++
			fmt.Fprintf(a.stdout, "Failed:      %v\n\n", res.Err)
			continue
		}
		printSummary(a.stdout, res.Summary, fileStore)
		fmt.Fprintln(a.stdout)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Generated %d of %d cache files in %s (total %s)\n",
		len(results)-failed, len(presets), flags.output, time.Since(start).Round(time.Millisecond))
	return nil
}

func (a *app) presets(args []string) error {
	fs := newFlagSet("presets", a.stderr)
	presetsFile := fs.String("presets", "", "YAML preset table to use instead of the built-in one")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}

	presets, err := loadPresets(*presetsFile)
	if err != nil {
		return err
	}

	for _, p := range presets {
		salt := p.Salt
		if salt == "" {
			salt = "-"
		}
		id := services.CacheIdentifier(p.Salt, p.Iterations)
		fmt.Fprintf(a.stdout, "%-10s %3d  %s  %s\n", salt, p.Iterations, domain.CacheFileName(id), p.Name)
	}
	return nil
}

func loadPresets(path string) ([]domain.Preset, error) {
	if path == "" {
		return domain.DefaultPresets, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	return domain.ParsePresets(data)
}
