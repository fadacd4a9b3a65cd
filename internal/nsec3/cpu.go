package nsec3

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Acceleration reports which SIMD/crypto extensions the SHA-1 block
// function can use on this host. It is informational only.
func Acceleration() []string {
	var feats []string
	switch runtime.GOARCH {
	case "amd64":
		if cpu.X86.HasAVX2 && cpu.X86.HasBMI1 && cpu.X86.HasBMI2 {
			feats = append(feats, "avx2")
		}
		if cpu.X86.HasSSSE3 {
			feats = append(feats, "ssse3")
		}
	case "arm64":
		if cpu.ARM64.HasSHA1 {
			feats = append(feats, "sha1")
		}
	case "s390x":
		if cpu.S390X.HasSHA1 {
			feats = append(feats, "kimd-sha1")
		}
	}
	return feats
}
