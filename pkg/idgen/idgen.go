// Package idgen mints the opaque identifiers attached to patterns,
// anomalies, and correlations: a fixed prefix followed by 16 lowercase
// hex characters drawn from a cryptographically strong random source.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// Prefix distinguishes which kind of record an identifier names.
type Prefix string

const (
	PrefixPattern     Prefix = "pat_"
	PrefixAnomaly     Prefix = "anom_"
	PrefixCorrelation Prefix = "corr_"
)

// New mints an identifier of the form "<prefix>" + 16 lowercase hex
// characters, e.g. "pat_4f2a9c1e0b7d3a55".
func New(prefix Prefix) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// broken; there is no sane fallback that preserves the
		// "cryptographically strong" guarantee, so surface it loudly
		// rather than silently degrading to a weaker source.
		panic("idgen: crypto/rand unavailable: " + err.Error())
	}
	return string(prefix) + hex.EncodeToString(buf[:])
}
