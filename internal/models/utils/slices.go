// Package utils 提供泛型切片工具
package utils

// ChunkSlice 将切片按 chunkSize 切分为连续的子切片，子切片共享底层数组
// chunkSize <= 0 时整个切片作为一个分块
func ChunkSlice[T any](slice []T, chunkSize int) [][]T {
	if len(slice) == 0 {
		return [][]T{}
	}
	if chunkSize <= 0 || chunkSize >= len(slice) {
		return [][]T{slice}
	}

	chunks := make([][]T, 0, (len(slice)+chunkSize-1)/chunkSize)
	for start := 0; start < len(slice); start += chunkSize {
		chunks = append(chunks, slice[start:min(start+chunkSize, len(slice))])
	}
	return chunks
}

// MapSlice 对每个元素应用 f，返回等长的新切片
func MapSlice[A any, B any](in []A, f func(A) B) []B {
	out := make([]B, len(in))
	for i, item := range in {
		out[i] = f(item)
	}
	return out
}
