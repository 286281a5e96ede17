package evidence

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64)

	a, err := e.Embed(context.Background(), "carbon neutral operations")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "carbon neutral operations")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := NewHashEmbedder(0) // default dims
	vec, err := e.Embed(context.Background(), "net zero emissions by 2030")
	require.NoError(t, err)
	require.Len(t, vec, 256)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestHashEmbedderEmptyText(t *testing.T) {
	e := NewHashEmbedder(32)
	vec, err := e.Embed(context.Background(), "???")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestHashEmbedderSimilarTextsCloser(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()

	base, _ := e.Embed(ctx, "our factories are fully carbon neutral")
	near, _ := e.Embed(ctx, "the factories are carbon neutral today")
	far, _ := e.Embed(ctx, "quarterly revenue grew nine percent")

	dot := func(a, b []float32) float64 {
		var s float64
		for i := range a {
			s += float64(a[i]) * float64(b[i])
		}
		return s
	}
	assert.Greater(t, dot(base, near), dot(base, far))
	assert.False(t, math.IsNaN(dot(base, near)))
}
