package domain

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// maxSaltLen is the largest salt the one-octet NSEC3 salt length field can
// carry.
const maxSaltLen = 255

var validLabelRegex = regexp.MustCompile(`^[a-zA-Z0-9_]([a-zA-Z0-9_-]{0,61}[a-zA-Z0-9_])?$`)

// ValidateDomainName checks that the target domain is a plausible hostname.
// A single trailing dot is allowed.
func ValidateDomainName(name string) error {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return fmt.Errorf("%w: domain cannot be empty", ErrInvalidDomain)
	}
	if len(name) > 253 {
		return fmt.Errorf("%w: domain exceeds 253 characters", ErrInvalidDomain)
	}

	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return fmt.Errorf("%w: domain contains empty label", ErrInvalidDomain)
		}
		if len(label) > 63 {
			return fmt.Errorf("%w: label '%s' exceeds 63 characters", ErrInvalidDomain, label)
		}
		if !validLabelRegex.MatchString(label) {
			return fmt.Errorf("%w: label '%s' contains invalid characters or format", ErrInvalidDomain, label)
		}
	}
	return nil
}

// ParseSalt decodes a hex salt. The empty string is a valid, zero-length
// salt.
func ParseSalt(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: %q has odd length %d", ErrInvalidSaltEncoding, s, len(s))
	}
	salt, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSaltEncoding, s, err)
	}
	if len(salt) > maxSaltLen {
		return nil, fmt.Errorf("%w: salt is %d bytes, max %d", ErrInvalidSaltEncoding, len(salt), maxSaltLen)
	}
	return salt, nil
}

// Validate checks every run parameter that would otherwise fail the whole
// batch, and returns the decoded salt.
func (c RunConfig) Validate() ([]byte, error) {
	if err := ValidateDomainName(c.Domain); err != nil {
		return nil, err
	}

	if err := ValidateHashOptions(c.Canonical, c.Encoding); err != nil {
		return nil, err
	}

	return ParseSalt(c.SaltHex)
}

// ValidateHashOptions checks the canonical form and encoding. Empty values
// select the defaults.
func ValidateHashOptions(canonical CanonicalForm, encoding Encoding) error {
	switch canonical {
	case "", CanonicalText, CanonicalWire:
	default:
		return fmt.Errorf("%w: unknown canonical form %q", ErrInvalidParameters, canonical)
	}

	switch encoding {
	case "", EncodingBase32, EncodingBase32Hex:
	default:
		return fmt.Errorf("%w: unknown encoding %q", ErrInvalidParameters, encoding)
	}
	return nil
}
