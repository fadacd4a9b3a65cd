package main

import (
	"context"
	"fmt"

	"github.com/poyrazK/nsec3gen/internal/adapters/store"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
	"github.com/poyrazK/nsec3gen/internal/core/ports"
	"github.com/poyrazK/nsec3gen/internal/core/services"
	"github.com/poyrazK/nsec3gen/internal/nsec3"
)

// lookup plays the consumer side: derive the identifier from the zone's
// NSEC3 parameters and resolve hashes against the matching cache.
func (a *app) lookup(ctx context.Context, args []string) error {
	fs := newFlagSet("lookup", a.stderr)
	salt := fs.StringP("salt", "s", "", "NSEC3 salt as hex, as published in NSEC3PARAM")
	iterations := fs.Uint32P("iterations", "i", 0, "NSEC3 iterations, as published in NSEC3PARAM")
	output := fs.StringP("output", "o", a.env.OutputDir, "directory holding cache files")
	source := fs.String("source", "file", "where to look: file, redis, or postgres")
	names := fs.StringSlice("name", nil, "hash these names and look the results up")
	canonical := fs.String("canonical", string(domain.CanonicalText), "owner name form for --name: text or wire")
	encoding := fs.String("encoding", string(domain.EncodingBase32), "hash encoding for --name: base32 or base32hex")
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}

	saltBytes, err := domain.ParseSalt(*salt)
	if err != nil {
		return err
	}

	hasher := nsec3.Hasher{Canonical: domain.CanonicalForm(*canonical), Encoding: domain.Encoding(*encoding)}
	if err := domain.ValidateHashOptions(hasher.Canonical, hasher.Encoding); err != nil {
		return err
	}

	hashes := fs.Args()
	for _, name := range *names {
		h, errHash := hasher.Hash(name, saltBytes, *iterations)
		if errHash != nil {
			return errHash
		}
		fmt.Fprintf(a.stdout, "%s = %s\n", name, h)
		hashes = append(hashes, h)
	}
	if len(hashes) == 0 {
		return fmt.Errorf("%w: no hashes or --name given", domain.ErrInvalidParameters)
	}

	finder, closeFinder, err := a.openLookup(ctx, *source, *output)
	if err != nil {
		return err
	}
	defer closeFinder()

	id := services.CacheIdentifier(*salt, *iterations)
	a.logger.Debug("looking up hashes", "identifier", id, "source", *source, "hashes", len(hashes))

	for _, h := range hashes {
		label, found, errLookup := finder.Lookup(ctx, id, h)
		if errLookup != nil {
			return errLookup
		}
		if !found {
			fmt.Fprintf(a.stdout, "%s -> (not in cache)\n", h)
			continue
		}
		fmt.Fprintf(a.stdout, "%s -> %s\n", h, label)
	}
	return nil
}

func (a *app) openLookup(ctx context.Context, source, dir string) (ports.HashLookup, func(), error) {
	switch source {
	case "file":
		return store.NewFileStore(dir, false, a.logger), func() {}, nil
	case "redis":
		if a.env.RedisAddr == "" {
			return nil, nil, fmt.Errorf("%w: REDIS_ADDR is not set", domain.ErrInvalidParameters)
		}
		rs, err := a.openRedis(ctx)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case "postgres":
		if a.env.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("%w: DATABASE_URL is not set", domain.ErrInvalidParameters)
		}
		return a.openPostgres(ctx)
	default:
		return nil, nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidParameters, source)
	}
}
