package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/poyrazK/nsec3gen/internal/adapters/store"
	"github.com/poyrazK/nsec3gen/internal/adapters/wordlist"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
	"github.com/poyrazK/nsec3gen/internal/core/services"
	"github.com/poyrazK/nsec3gen/internal/infrastructure/metrics"
	"github.com/poyrazK/nsec3gen/internal/infrastructure/progress"
	"github.com/poyrazK/nsec3gen/internal/nsec3"
)

func (a *app) generate(ctx context.Context, args []string) error {
	fs := newFlagSet("generate", a.stderr)
	flags := bindRunFlags(fs, a.env, true)
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if err := flags.requireInputs(); err != nil {
		return err
	}

	svc, fileStore, closeStores, err := a.newService(ctx, flags)
	if err != nil {
		return err
	}
	defer closeStores()
	defer a.writeMetrics(flags.metricsFile)

	summary, err := svc.Generate(ctx, flags.runConfig())
	if summary != nil {
		printSummary(a.stdout, summary, fileStore)
	}
	return err
}

func (a *app) newService(ctx context.Context, flags *runFlags) (*services.GeneratorService, *store.FileStore, func(), error) {
	a.logger.Info("nsec3gen starting",
		"gomaxprocs", runtime.GOMAXPROCS(0),
		"acceleration", nsec3.Acceleration(),
	)

	fileStore := store.NewFileStore(flags.output, flags.gzip, a.logger)
	writer, closeStores, err := a.openStores(ctx, fileStore)
	if err != nil {
		return nil, nil, nil, err
	}

	var reporter ports.ProgressReporter
	if !flags.noProgress {
		reporter = progress.New(a.stderr, a.logger)
	}

	svc := services.NewGeneratorService(wordlist.NewFileSource(flags.wordlist), writer, reporter, a.logger)
	return svc, fileStore, closeStores, nil
}

func (a *app) writeMetrics(path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		a.logger.Error("failed to write metrics", "path", path, "error", err)
	}
}

func printSummary(w io.Writer, s *domain.Summary, fileStore *store.FileStore) {
	salt := s.Salt
	if salt == "" {
		salt = "none"
	}

	fmt.Fprintf(w, "Domain:      %s\n", s.Domain)
	fmt.Fprintf(w, "Salt:        %s\n", salt)
	fmt.Fprintf(w, "Iterations:  %d\n", s.Iterations)
	fmt.Fprintf(w, "Identifier:  %s\n", s.Identifier)
	fmt.Fprintf(w, "Labels:      %d loaded, %d hashed, %d skipped, %d collisions\n", s.Total, s.Hashed, s.Skipped, s.Collisions)
	fmt.Fprintf(w, "Elapsed:     %s (%.0f hashes/sec)\n", s.Duration.Round(time.Millisecond), s.HashesPerSecond())

	for _, out := range s.Outputs {
		fmt.Fprintf(w, "Output:      %s\n", out)
	}
	if len(s.Outputs) > 0 && fileStore != nil {
		if fi, err := os.Stat(fileStore.Path(s.Identifier)); err == nil {
			fmt.Fprintf(w, "Size:        %s\n", datasize.ByteSize(fi.Size()).HumanReadable()) // #nosec G115
		}
	}
}

