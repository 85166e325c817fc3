package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a namespaced cache key: prefix, a colon, then the sha256
// of the JSON encoding of each part in order. Streaming the parts through
// the hash avoids building an intermediate document.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range parts {
		_ = enc.Encode(part)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the full 64-character hex sha256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
