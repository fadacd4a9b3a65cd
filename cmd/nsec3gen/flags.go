package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/spf13/pflag"
)

// runFlags are shared by generate and common.
type runFlags struct {
	domain      string
	wordlist    string
	salt        string
	iterations  uint32
	output      string
	threads     int
	canonical   string
	encoding    string
	storeFQDN   bool
	gzip        bool
	metricsFile string
	noProgress  bool
}

func newFlagSet(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false
	return fs
}

func bindRunFlags(fs *pflag.FlagSet, envs *environment, withSalt bool) *runFlags {
	f := &runFlags{}
	fs.StringVarP(&f.domain, "domain", "d", "", "domain to generate hashes for")
	fs.StringVarP(&f.wordlist, "wordlist", "w", "", "path to wordlist file (one subdomain per line)")
	if withSalt {
		fs.StringVarP(&f.salt, "salt", "s", "", "NSEC3 salt as hex, empty for no salt")
		fs.Uint32VarP(&f.iterations, "iterations", "i", 0, "number of additional NSEC3 iterations")
	}
	fs.StringVarP(&f.output, "output", "o", envs.OutputDir, "output directory for cache files")
	fs.IntVarP(&f.threads, "threads", "t", 0, "number of worker goroutines (default: GOMAXPROCS)")
	fs.StringVar(&f.canonical, "canonical", string(domain.CanonicalText), "owner name form fed to the hash: text or wire")
	fs.StringVar(&f.encoding, "encoding", string(domain.EncodingBase32), "hash encoding: base32 or base32hex")
	fs.BoolVar(&f.storeFQDN, "store-fqdn", false, "store the full name instead of the label as the map value")
	fs.BoolVar(&f.gzip, "gzip", false, "gzip cache files")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
	fs.BoolVar(&f.noProgress, "no-progress", false, "disable the progress display")
	return f
}

func (f *runFlags) runConfig() domain.RunConfig {
	return domain.RunConfig{
		Domain:     f.domain,
		SaltHex:    f.salt,
		Iterations: f.iterations,
		Workers:    f.threads,
		Canonical:  domain.CanonicalForm(f.canonical),
		Encoding:   domain.Encoding(f.encoding),
		StoreFQDN:  f.storeFQDN,
	}
}

func (f *runFlags) requireInputs() error {
	if f.domain == "" {
		return fmt.Errorf("%w: --domain is required", domain.ErrInvalidParameters)
	}
	if f.wordlist == "" {
		return fmt.Errorf("%w: --wordlist is required", domain.ErrInvalidParameters)
	}
	return nil
}

// parseFlags parses args and reports whether the command should stop
// because help was printed.
func parseFlags(fs *pflag.FlagSet, args []string) (bool, error) {
	err := fs.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return true, nil
	}
	return false, err
}
