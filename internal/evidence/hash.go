package evidence

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashEmbedder embeds text by feature hashing: each token is hashed into
// a fixed-size vector which is then L2-normalized. Deterministic and
// self-contained, it keeps the pgvector backend usable when no external
// embedding service is configured; passages must have been embedded the
// same way.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a HashEmbedder. Dims of 0 or less means 256.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	for _, token := range tokenize(text) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(token))
		vec[int(f.Sum32())%h.dims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
