package usecase

import (
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// mediaDigest identifies attachment bytes. It is stored with the post so an
// edit that keeps the attachment hashes the same way a fresh submission does.
func mediaDigest(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

// contentHash is the deduplication key of a post: the same owner submitting
// the same text and attachment maps to the same key.
func contentHash(ownerID, body, mediaKind, digest string) string {
	h := xxh3.New()
	h.WriteString(ownerID)
	h.Write([]byte{0})
	h.WriteString(body)
	h.Write([]byte{0})
	h.WriteString(mediaKind)
	h.Write([]byte{0})
	h.WriteString(digest)
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:])
}
