// Package sketch 实现基于 MinHash 的文本签名
package sketch

import (
	"math/bits"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

const (
	// DefaultNumHashes 默认的哈希函数数量（签名长度）
	DefaultNumHashes = 128
	// DefaultSeed 生成哈希函数族的默认种子
	DefaultSeed uint64 = 1

	mersennePrime uint64 = (1 << 61) - 1
	maxHash       uint64 = (1 << 32) - 1
)

// EmptyValue 是空 token 序列签名中每个分量的哨兵值
const EmptyValue = maxHash

// Sketch 是文本 token 集合的定长近似签名
type Sketch []uint64

// IsEmpty 判断签名是否来自空 token 序列
// 空签名不能与任何签名相似
func (s Sketch) IsEmpty() bool {
	for _, v := range s {
		if v != EmptyValue {
			return false
		}
	}
	return true
}

// Jaccard 估计两个签名对应 token 集合的 Jaccard 相似度
func (s Sketch) Jaccard(other Sketch) float64 {
	if len(s) == 0 || len(s) != len(other) || s.IsEmpty() || other.IsEmpty() {
		return 0
	}
	equal := 0
	for i := range s {
		if s[i] == other[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(s))
}

// Tokenizer 将文本切分为词
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// TokenizerFunc 允许普通函数作为 Tokenizer 使用
type TokenizerFunc func(text string) ([]string, error)

// Tokenize 实现 Tokenizer
func (f TokenizerFunc) Tokenize(text string) ([]string, error) {
	return f(text)
}

// Builder 使用固定的哈希函数族构建签名
// 相同的种子与哈希数量总是产生相同的哈希函数族
type Builder struct {
	tokenizer Tokenizer
	numHashes int
	a, b      []uint64
}

// NewBuilder 创建签名构建器，numHashes <= 0 时使用默认值
func NewBuilder(tokenizer Tokenizer, numHashes int, seed uint64) *Builder {
	if numHashes <= 0 {
		numHashes = DefaultNumHashes
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	a := make([]uint64, numHashes)
	b := make([]uint64, numHashes)
	for i := 0; i < numHashes; i++ {
		a[i] = 1 + rng.Uint64N(mersennePrime-1)
		b[i] = rng.Uint64N(mersennePrime)
	}
	return &Builder{
		tokenizer: tokenizer,
		numHashes: numHashes,
		a:         a,
		b:         b,
	}
}

// NumHashes 返回签名长度
func (b *Builder) NumHashes() int {
	return b.numHashes
}

// Build 折叠空白后分词，并为 token 序列构建签名
func (b *Builder) Build(text string) (Sketch, error) {
	tokens, err := b.tokenizer.Tokenize(utils.NormalizeWhitespace(text))
	if err != nil {
		return nil, err
	}
	return b.FromTokens(tokens), nil
}

// FromTokens 为 token 序列构建签名，结果与 token 顺序无关
func (b *Builder) FromTokens(tokens []string) Sketch {
	s := make(Sketch, b.numHashes)
	for i := range s {
		s[i] = EmptyValue
	}
	for _, token := range tokens {
		hv := xxhash.Sum64String(token) & maxHash
		for i := 0; i < b.numHashes; i++ {
			if phv := permute(b.a[i], b.b[i], hv); phv < s[i] {
				s[i] = phv
			}
		}
	}
	return s
}

// permute 计算 ((a*hv + b) mod p) & maxHash，p 为梅森素数 2^61-1
func permute(a, b, hv uint64) uint64 {
	hi, lo := bits.Mul64(a, hv)
	lo, carry := bits.Add64(lo, b, 0)
	hi += carry
	return bits.Rem64(hi, lo, mersennePrime) & maxHash
}
