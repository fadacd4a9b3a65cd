package services

import (
	"crypto/md5" // #nosec G501 -- identifier only, not a security boundary.
	"encoding/hex"
	"strconv"

	"github.com/poyrazK/nsec3gen/internal/core/domain"
)

// IdentifierLen is the number of hex digits of the identifier digest that
// consumers use as the cache key.
const IdentifierLen = 2 * md5.Size

// CacheIdentifier derives the cache key from the salt (as supplied, not
// decoded) and the iteration count. The domain is deliberately excluded:
// consumers compute the key from NSEC3PARAM data before they know which
// domain's cache matches.
func CacheIdentifier(saltHex string, iterations uint32) string {
	key := saltHex + "_" + strconv.FormatUint(uint64(iterations), 10)
	sum := md5.Sum([]byte(key)) // #nosec G401
	return hex.EncodeToString(sum[:])[:IdentifierLen]
}

// Assemble wraps dispatcher output into a record and computes its
// identifier. hashed is the number of labels successfully hashed.
func Assemble(cfg domain.RunConfig, hashes map[string]string, hashed int) (*domain.CacheRecord, string) {
	if hashes == nil {
		hashes = map[string]string{}
	}
	rec := &domain.CacheRecord{
		Domain:       cfg.Domain,
		Salt:         cfg.SaltHex,
		Iterations:   cfg.Iterations,
		WordlistSize: hashed,
		Hashes:       hashes,
	}
	return rec, CacheIdentifier(cfg.SaltHex, cfg.Iterations)
}
