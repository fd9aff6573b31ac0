package utils

import (
	"os"
	"strconv"
)

// GetMaxDocumentSize 从环境变量中获取待评估文档的最大大小（字节），如果未设置或无效，则返回默认值 50MB
// 可以通过配置环境变量 MAX_DOCUMENT_SIZE_MB 更改
func GetMaxDocumentSize() int64 {
	return GetMaxDocumentSizeMB() * 1024 * 1024
}

// GetMaxDocumentSizeMB 返回以 MB 为单位的文档大小上限
func GetMaxDocumentSizeMB() int64 {
	if sizeStr := os.Getenv("MAX_DOCUMENT_SIZE_MB"); sizeStr != "" {
		if size, err := strconv.ParseInt(sizeStr, 10, 64); err == nil && size > 0 {
			return size
		}
	}
	return 50 // 默认 50MB
}
