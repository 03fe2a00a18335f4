package gotdoc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// HashText computes the SHA-256 hash of the trimmed, NFC-normalised text.
func HashText(text string) string {
	normalized := norm.NFC.String(strings.TrimSpace(text))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// CacheKeyExtended generates an extended cache key including source language and model.
func CacheKeyExtended(hash, sourceLang, targetLang, model string) string {
	return hash + ":" + sourceLang + ":" + targetLang + ":" + model
}

// ChunkCacheKey derives the cache key for one chunk request.
// Everything that shapes the prompt is part of the key, so a chunk is only
// reused when it would have been sent with the same context and sample.
func ChunkCacheKey(req TranslateRequest, model string) string {
	h := sha256.New()
	for _, part := range []string{
		norm.NFC.String(req.Text),
		norm.NFC.String(req.Previous.Source),
		norm.NFC.String(req.Previous.Translation),
		HashText(req.Sample),
		string(req.Style),
		req.Instructions,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return CacheKeyExtended(hex.EncodeToString(h.Sum(nil)), req.SourceLang, req.TargetLang, model)
}
