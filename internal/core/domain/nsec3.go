// Package domain contains the core entities for nsec3gen.
package domain

import (
	"time"
)

// CanonicalForm selects how a fully-qualified name is turned into the bytes
// fed to the first hash round.
type CanonicalForm string

const (
	// CanonicalText hashes the lowercase name text without a trailing dot.
	// This is the form the existing cache consumer expects.
	CanonicalText CanonicalForm = "text"
	// CanonicalWire hashes the RFC 4034 canonical wire form
	// (length-prefixed lowercase labels and the root octet), which is what
	// on-the-wire NSEC3 owner names are computed from.
	CanonicalWire CanonicalForm = "wire"
)

// Encoding selects the base32 alphabet used for EncodedHash keys.
type Encoding string

const (
	// EncodingBase32 is RFC 4648 base32, unpadded, lowercase.
	EncodingBase32 Encoding = "base32"
	// EncodingBase32Hex is the RFC 4648 "extended hex" alphabet used by
	// RFC 5155 for NSEC3 owner names, unpadded, lowercase.
	EncodingBase32Hex Encoding = "base32hex"
)

// RunConfig is the immutable set of parameters for one generation run.
type RunConfig struct {
	Domain     string
	SaltHex    string
	Iterations uint32
	Workers    int           // <= 0 means GOMAXPROCS
	Canonical  CanonicalForm // defaults to CanonicalText
	Encoding   Encoding      // defaults to EncodingBase32
	StoreFQDN  bool
}

// WithDefaults returns a copy of c with empty enum fields filled in.
func (c RunConfig) WithDefaults() RunConfig {
	if c.Canonical == "" {
		c.Canonical = CanonicalText
	}
	if c.Encoding == "" {
		c.Encoding = EncodingBase32
	}
	return c
}

// FQDN joins a label with the run domain. The result is not lowercased;
// canonicalization happens in the hasher.
func (c RunConfig) FQDN(label string) string {
	return label + "." + c.Domain
}

// CacheRecord is the persisted mapping from encoded hash to label for one
// (domain, salt, iterations) configuration.
//
// NOTE: Field names and types are read by external consumers. Do not
// change them.
type CacheRecord struct {
	Domain       string            `json:"domain"`
	Salt         string            `json:"salt"`
	Iterations   uint32            `json:"iterations"`
	WordlistSize int               `json:"wordlist_size"`
	Hashes       map[string]string `json:"hashes"`
}

// Lookup returns the label stored for an encoded hash. Keys are matched
// case-insensitively since zone data usually carries them uppercase.
func (r *CacheRecord) Lookup(hash string) (string, bool) {
	if r == nil {
		return "", false
	}
	label, ok := r.Hashes[lowerASCII(hash)]
	return label, ok
}

// CacheFileName returns the on-disk name consumers look for.
func CacheFileName(id string) string {
	return "nsec3_" + id + ".json"
}

// Summary describes the outcome of one generation run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Identifier string        `json:"identifier"`
	Domain     string        `json:"domain"`
	Salt       string        `json:"salt"`
	Iterations uint32        `json:"iterations"`
	Total      int           `json:"total"`
	Hashed     int           `json:"hashed"`
	Skipped    int           `json:"skipped"`
	Collisions int           `json:"collisions"`
	Duration   time.Duration `json:"duration"`
	Outputs    []string      `json:"outputs"`
}

// HashesPerSecond is the throughput of the hashing phase.
func (s Summary) HashesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Hashed) / s.Duration.Seconds()
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
