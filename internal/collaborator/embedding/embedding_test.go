package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectorFor 根据文本生成一个确定的二维向量
func vectorFor(text string) []float32 {
	switch text {
	case "库存":
		return []float32{1, 0}
	case "安全库存":
		return []float32{0.8, 0.6}
	case "反向":
		return []float32{-1, 0}
	default:
		return []float32{0, 1}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{"相同向量", []float32{1, 2, 3}, []float32{1, 2, 3}, 1, false},
		{"正交向量", []float32{1, 0}, []float32{0, 1}, 0, false},
		{"相反向量", []float32{1, 0}, []float32{-1, 0}, -1, false},
		{"长度不同", []float32{1}, []float32{1, 2}, 0, true},
		{"零向量", []float32{0, 0}, []float32{1, 0}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

type fakeProvider struct {
	calls atomic.Int64
	err   error
}

func (p *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = vectorFor(text)
	}
	return out, nil
}

func (p *fakeProvider) Name() string     { return "fake" }
func (p *fakeProvider) MaxBatchSize() int { return 16 }

func TestSimilarity(t *testing.T) {
	provider := &fakeProvider{}
	sim := NewSimilarity(provider)
	ctx := context.Background()

	require.NoError(t, sim.Prepare(ctx, []string{"库存", "安全库存", "反向", "库存"}))
	assert.EqualValues(t, 1, provider.calls.Load())

	score, err := sim.Similarity(ctx, "库存", "安全库存")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, score, 1e-6)
	assert.EqualValues(t, 1, provider.calls.Load(), "cached vectors must not be requested again")

	t.Run("负相似度截断为0", func(t *testing.T) {
		score, err := sim.Similarity(ctx, "库存", "反向")
		require.NoError(t, err)
		assert.Zero(t, score)
	})

	t.Run("服务出错", func(t *testing.T) {
		failing := NewSimilarity(&fakeProvider{err: errors.New("connection refused")})
		_, err := failing.Similarity(ctx, "a", "b")
		assert.Error(t, err)
	})
}

func TestOllamaProvider(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		require.Equal(t, "/api/embed", r.URL.Path)
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-embed", req.Model)

		embeddings := make([][]float32, len(req.Input))
		for i, text := range req.Input {
			embeddings[i] = vectorFor(text)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "embeddings": embeddings})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "test-embed", BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, provider.Name())

	vectors, err := provider.EmbedBatch(context.Background(), []string{"库存", "安全库存", "其他"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectorFor("安全库存"), vectors[1])
	assert.EqualValues(t, 2, requests.Load())
}

func TestOpenAIProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// 倒序返回，验证按 index 还原顺序
		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": vectorFor(req.Input[i]),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "m"})
	}))
	defer server.Close()

	_, err := NewOpenAIProvider(Config{})
	assert.Error(t, err)

	provider, err := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	vectors, err := provider.EmbedBatch(context.Background(), []string{"库存", "反向"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{vectorFor("库存"), vectorFor("反向")}, vectors)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(Config{Provider: "unknown"})
	assert.Error(t, err)

	p, err := NewProvider(Config{Provider: ProviderOllama, BaseURL: "http://127.0.0.1:11434"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, p.Name())
}

func TestParseOllamaURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"省略协议的IP地址", "127.0.0.1:11434", "http://127.0.0.1:11434"},
		{"省略协议的主机名", "localhost:11434", "http://localhost:11434"},
		{"完整地址", "https://ollama.internal:443", "https://ollama.internal:443"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseOllamaURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}

	t.Run("缺少主机", func(t *testing.T) {
		_, err := ParseOllamaURL("http://")
		assert.Error(t, err)
	})
}
