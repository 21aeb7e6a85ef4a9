package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// InputFingerprint hashes the processing inputs: the delimiter plus every CSV
// blob, each length-prefixed so blob boundaries cannot collide. Identical
// uploads map to the same cache key regardless of dataset name.
func InputFingerprint(csvTexts []string, delimiter string) string {
	h := sha256.New()
	h.Write([]byte(delimiter))
	var lenBuf [8]byte
	for _, text := range csvTexts {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(text)))
		h.Write(lenBuf[:])
		h.Write([]byte(text))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// KeyResult is the cache key for a processed result.
func KeyResult(fingerprint string) string {
	return fmt.Sprintf("result:%s", fingerprint)
}
