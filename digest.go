package oui

import (
	"crypto/sha256"
	"encoding/base32"
)

// Digest identifies registry content, it is the unpadded base32 encoding of
// the content's SHA-256.
type Digest string

func NewDigest(data []byte) Digest {
	// Digest the data
	h := sha256.New()
	h.Write(data)
	sum := h.Sum(nil)

	// Encode it to base32
	b32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum)
	return Digest(b32)
}

func (d Digest) String() string {
	return string(d)
}

// Short is a prefix of the digest suitable for display.
func (d Digest) Short() string {
	if len(d) > 12 {
		return string(d[:12])
	}
	return string(d)
}
