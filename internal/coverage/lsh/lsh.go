// Package lsh 实现对 MinHash 签名的分桶近似相似检索
package lsh

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/gaamingzhang/qa_coverage/internal/coverage/sketch"
)

const (
	// DefaultThreshold 默认的 Jaccard 相似度阈值
	DefaultThreshold = 0.3
	// DefaultWeight 误报与漏报在参数选择中的默认权重
	DefaultWeight = 0.5

	integrationSteps = 128
)

// Config 索引配置
type Config struct {
	Threshold           float64 // 估计 Jaccard 相似度阈值
	NumHashes           int     // 签名长度
	FalsePositiveWeight float64 // 选择分段参数时误报概率的权重
	FalseNegativeWeight float64 // 选择分段参数时漏报概率的权重
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Threshold:           DefaultThreshold,
		NumHashes:           sketch.DefaultNumHashes,
		FalsePositiveWeight: DefaultWeight,
		FalseNegativeWeight: DefaultWeight,
	}
}

// Index 将签名分为 bands 段，每段 rows 个分量
// 两个签名只要有任意一段完全相同即视为候选相似
type Index struct {
	cfg     Config
	bands   int
	rows    int
	buckets []map[string][]int
	ids     map[int]struct{}
}

// NewIndex 使用给定阈值和签名长度创建索引
func NewIndex(threshold float64, numHashes int) (*Index, error) {
	cfg := DefaultConfig()
	cfg.Threshold = threshold
	cfg.NumHashes = numHashes
	return NewIndexWithConfig(cfg)
}

// NewIndexWithConfig 使用自定义配置创建索引
func NewIndexWithConfig(cfg Config) (*Index, error) {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("lsh threshold must be in (0, 1], got %v", cfg.Threshold)
	}
	if cfg.NumHashes <= 0 {
		return nil, fmt.Errorf("lsh num hashes must be positive, got %d", cfg.NumHashes)
	}
	if cfg.FalsePositiveWeight < 0 || cfg.FalseNegativeWeight < 0 ||
		cfg.FalsePositiveWeight+cfg.FalseNegativeWeight == 0 {
		return nil, fmt.Errorf("lsh weights must be non-negative and not both zero")
	}

	bands, rows := OptimalParams(cfg.Threshold, cfg.NumHashes, cfg.FalsePositiveWeight, cfg.FalseNegativeWeight)
	buckets := make([]map[string][]int, bands)
	for i := range buckets {
		buckets[i] = make(map[string][]int)
	}
	return &Index{
		cfg:     cfg,
		bands:   bands,
		rows:    rows,
		buckets: buckets,
		ids:     make(map[int]struct{}),
	}, nil
}

// Params 返回分段数与每段行数
func (ix *Index) Params() (bands, rows int) {
	return ix.bands, ix.rows
}

// Len 返回已插入的 id 数量
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Insert 插入签名
// 空签名会登记 id 但不进入任何桶，因此不会与任何签名匹配
func (ix *Index) Insert(id int, s sketch.Sketch) error {
	if len(s) != ix.cfg.NumHashes {
		return fmt.Errorf("sketch length %d does not match index num hashes %d", len(s), ix.cfg.NumHashes)
	}
	if _, exists := ix.ids[id]; exists {
		return fmt.Errorf("id %d already inserted", id)
	}
	ix.ids[id] = struct{}{}
	if s.IsEmpty() {
		return nil
	}
	for band := 0; band < ix.bands; band++ {
		key := ix.bandKey(s, band)
		ix.buckets[band][key] = append(ix.buckets[band][key], id)
	}
	return nil
}

// Query 返回与签名至少有一段完全相同的已插入 id，升序排列
// 结果是候选集合而非精确的相似集合
func (ix *Index) Query(s sketch.Sketch) []int {
	if len(s) != ix.cfg.NumHashes || s.IsEmpty() {
		return nil
	}
	seen := make(map[int]struct{})
	for band := 0; band < ix.bands; band++ {
		for _, id := range ix.buckets[band][ix.bandKey(s, band)] {
			seen[id] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	result := make([]int, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Ints(result)
	return result
}

func (ix *Index) bandKey(s sketch.Sketch, band int) string {
	start := band * ix.rows
	buf := make([]byte, 8*ix.rows)
	for i := 0; i < ix.rows; i++ {
		binary.LittleEndian.PutUint64(buf[i*8:], s[start+i])
	}
	return string(buf)
}

// OptimalParams 选择使加权误报与漏报概率之和最小的 (bands, rows)
// 约束：bands * rows <= numHashes
func OptimalParams(threshold float64, numHashes int, fpWeight, fnWeight float64) (bands, rows int) {
	minError := math.Inf(1)
	for b := 1; b <= numHashes; b++ {
		maxRows := numHashes / b
		for r := 1; r <= maxRows; r++ {
			fp := falsePositiveProbability(threshold, b, r)
			fn := falseNegativeProbability(threshold, b, r)
			if e := fp*fpWeight + fn*fnWeight; e < minError {
				minError = e
				bands, rows = b, r
			}
		}
	}
	return bands, rows
}

// candidateProbability 是 Jaccard 相似度为 s 的两个集合成为候选的概率
func candidateProbability(s float64, b, r int) float64 {
	return 1 - math.Pow(1-math.Pow(s, float64(r)), float64(b))
}

func falsePositiveProbability(threshold float64, b, r int) float64 {
	return integrate(func(s float64) float64 { return candidateProbability(s, b, r) }, 0, threshold)
}

func falseNegativeProbability(threshold float64, b, r int) float64 {
	return integrate(func(s float64) float64 { return 1 - candidateProbability(s, b, r) }, threshold, 1)
}

// integrate 使用复合辛普森公式计算定积分
func integrate(f func(float64) float64, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	h := (hi - lo) / integrationSteps
	sum := f(lo) + f(hi)
	for i := 1; i < integrationSteps; i++ {
		x := lo + float64(i)*h
		if i%2 == 1 {
			sum += 4 * f(x)
		} else {
			sum += 2 * f(x)
		}
	}
	return sum * h / 3
}
