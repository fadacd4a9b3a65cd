// Package nsec3 implements RFC 5155 owner name hashing.
package nsec3

import (
	"crypto/sha1" // #nosec G505 -- SHA-1 is the only NSEC3 hash algorithm.
	"encoding/base32"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/miekg/dns"
	"github.com/poyrazK/nsec3gen/internal/core/domain"
)

// DigestSize is the size of a SHA-1 digest.
const DigestSize = sha1.Size

// EncodedLen is the length of an encoded digest. Both alphabets produce the
// same length.
var EncodedLen = base32.StdEncoding.WithPadding(base32.NoPadding).EncodedLen(DigestSize)

var (
	stdEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
	hexEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)
)

// Hasher computes NSEC3 hashes for one canonical form and encoding. The zero
// value hashes lowercase name text and encodes with RFC 4648 base32.
type Hasher struct {
	Canonical domain.CanonicalForm
	Encoding  domain.Encoding
}

// NewHasher returns a Hasher for the run configuration.
func NewHasher(cfg domain.RunConfig) Hasher {
	cfg = cfg.WithDefaults()
	return Hasher{Canonical: cfg.Canonical, Encoding: cfg.Encoding}
}

// HashName hashes fqdn with the default hasher.
func HashName(fqdn string, salt []byte, iterations uint32) (string, error) {
	return Hasher{}.Hash(fqdn, salt, iterations)
}

// Hash returns the encoded NSEC3 hash of fqdn.
func (h Hasher) Hash(fqdn string, salt []byte, iterations uint32) (string, error) {
	name, err := h.NameBytes(fqdn)
	if err != nil {
		return "", err
	}
	digest := Digest(name, salt, iterations)
	return h.Encode(digest[:]), nil
}

// NameBytes returns the bytes fed to the first hash round.
func (h Hasher) NameBytes(fqdn string) ([]byte, error) {
	if h.Canonical == domain.CanonicalWire {
		return wireName(fqdn)
	}
	return textName(fqdn)
}

// Encode renders a digest as an unpadded lowercase base32 string.
func (h Hasher) Encode(digest []byte) string {
	enc := stdEncoding
	if h.Encoding == domain.EncodingBase32Hex {
		enc = hexEncoding
	}
	return strings.ToLower(enc.EncodeToString(digest))
}

// Digest performs the iterated hash:
//
//	IH(0) = H(name | salt)
//	IH(k) = H(IH(k-1) | salt)
//
// and returns IH(iterations).
func Digest(name, salt []byte, iterations uint32) [DigestSize]byte {
	var res [DigestSize]byte

	h := sha1.New() // #nosec G401
	h.Write(name)
	h.Write(salt)
	h.Sum(res[:0])

	for i := uint32(0); i < iterations; i++ {
		h.Reset()
		h.Write(res[:])
		h.Write(salt)
		h.Sum(res[:0])
	}

	return res
}

func textName(fqdn string) ([]byte, error) {
	name := strings.TrimSuffix(fqdn, ".")
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", domain.ErrInvalidName)
	}
	if !utf8.ValidString(name) {
		return nil, fmt.Errorf("%w: %q is not valid utf-8", domain.ErrInvalidName, name)
	}
	if strings.IndexFunc(name, isSpaceOrControl) >= 0 {
		return nil, fmt.Errorf("%w: %q contains whitespace or control characters", domain.ErrInvalidName, name)
	}
	if strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q contains an empty label", domain.ErrInvalidName, name)
	}

	return []byte(strings.ToLower(name)), nil
}

func wireName(fqdn string) ([]byte, error) {
	if strings.TrimSuffix(fqdn, ".") == "" {
		return nil, fmt.Errorf("%w: empty name", domain.ErrInvalidName)
	}

	// 255 octets is the wire-format limit; one spare byte lets the packer
	// report ErrLongDomain instead of ErrBuf at the boundary.
	buf := make([]byte, 256)
	off, err := dns.PackDomainName(dns.CanonicalName(fqdn), buf, 0, nil, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", domain.ErrInvalidName, fqdn, err)
	}
	if off > 255 {
		return nil, fmt.Errorf("%w: %q exceeds 255 octets", domain.ErrInvalidName, fqdn)
	}
	return buf[:off], nil
}

func isSpaceOrControl(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}
