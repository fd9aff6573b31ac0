package lsh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaamingzhang/qa_coverage/internal/coverage/sketch"
)

func newBuilder() *sketch.Builder {
	return sketch.NewBuilder(sketch.TokenizerFunc(func(text string) ([]string, error) {
		return strings.Fields(text), nil
	}), sketch.DefaultNumHashes, sketch.DefaultSeed)
}

func TestOptimalParams(t *testing.T) {
	bands, rows := OptimalParams(DefaultThreshold, sketch.DefaultNumHashes, DefaultWeight, DefaultWeight)
	require.Positive(t, bands)
	require.Positive(t, rows)
	assert.LessOrEqual(t, bands*rows, sketch.DefaultNumHashes)

	// 阈值越高，每段行数越多（更严格）
	_, strictRows := OptimalParams(0.9, sketch.DefaultNumHashes, DefaultWeight, DefaultWeight)
	assert.Greater(t, strictRows, rows)
}

func TestIndexIdenticalTextsAlwaysMatch(t *testing.T) {
	b := newBuilder()
	ix, err := NewIndex(DefaultThreshold, sketch.DefaultNumHashes)
	require.NoError(t, err)

	texts := []string{
		"inventory turnover measures how often stock is sold and replaced",
		"demand forecasting combines historical sales with market signals",
		"supplier risk assessment covers financial and geographic exposure",
	}
	for i, text := range texts {
		s, err := b.Build(text)
		require.NoError(t, err)
		require.NoError(t, ix.Insert(i, s))
	}
	assert.Equal(t, 3, ix.Len())

	for i, text := range texts {
		s, err := b.Build(text)
		require.NoError(t, err)
		assert.Contains(t, ix.Query(s), i)
	}
}

func TestIndexUnrelatedTextsDoNotMatch(t *testing.T) {
	b := newBuilder()
	ix, err := NewIndex(DefaultThreshold, sketch.DefaultNumHashes)
	require.NoError(t, err)

	s, err := b.Build("alpha beta gamma delta epsilon zeta eta theta")
	require.NoError(t, err)
	require.NoError(t, ix.Insert(0, s))

	q, err := b.Build("one two three four five six seven eight")
	require.NoError(t, err)
	assert.Empty(t, ix.Query(q))
}

func TestIndexEmptySketch(t *testing.T) {
	b := newBuilder()
	ix, err := NewIndex(DefaultThreshold, sketch.DefaultNumHashes)
	require.NoError(t, err)

	empty := b.FromTokens(nil)
	require.NoError(t, ix.Insert(0, empty))
	require.NoError(t, ix.Insert(1, b.FromTokens([]string{"x"})))

	t.Run("空签名查询不返回结果", func(t *testing.T) {
		assert.Empty(t, ix.Query(empty))
	})
	t.Run("空签名不会被匹配", func(t *testing.T) {
		assert.Equal(t, []int{1}, ix.Query(b.FromTokens([]string{"x"})))
	})
}

func TestIndexValidation(t *testing.T) {
	_, err := NewIndex(0, 128)
	assert.Error(t, err)
	_, err = NewIndex(1.5, 128)
	assert.Error(t, err)
	_, err = NewIndex(0.3, 0)
	assert.Error(t, err)

	ix, err := NewIndex(0.3, 16)
	require.NoError(t, err)
	assert.Error(t, ix.Insert(0, sketch.Sketch{1, 2, 3}))

	s := sketch.NewBuilder(sketch.TokenizerFunc(func(string) ([]string, error) {
		return []string{"a"}, nil
	}), 16, sketch.DefaultSeed).FromTokens([]string{"a"})
	require.NoError(t, ix.Insert(0, s))
	assert.Error(t, ix.Insert(0, s))
	assert.Nil(t, ix.Query(sketch.Sketch{1}))
}
