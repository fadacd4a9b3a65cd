package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poyrazK/nsec3gen/internal/infrastructure/logging"
)

const usage = `Usage: nsec3gen [command] [flags]

Commands:
  generate   hash a wordlist for one (salt, iterations) pair (default)
  common     hash a wordlist for every preset configuration
  download   fetch subdomain wordlists
  lookup     resolve NSEC3 hashes against a stored cache
  presets    print the preset table

Run 'nsec3gen <command> --help' for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		log.Fatalf("nsec3gen: %v", err)
	}
}

// app carries what every command needs.
type app struct {
	env    *environment
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	envs, err := parseEnvironment()
	if err != nil {
		return err
	}

	logger, err := logging.New(stderr, envs.LogLevel, envs.LogFormat)
	if err != nil {
		return err
	}

	a := &app{env: envs, logger: logger, stdout: stdout, stderr: stderr}

	cmd := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "generate":
		return a.generate(ctx, args)
	case "common":
		return a.common(ctx, args)
	case "download":
		return a.download(ctx, args)
	case "lookup":
		return a.lookup(ctx, args)
	case "presets":
		return a.presets(args)
	case "help":
		_, err = fmt.Fprint(stdout, usage)
		return err
	default:
		_, _ = fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
