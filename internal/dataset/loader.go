// Package dataset 读取待评估的文档与问答对文件
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/gaamingzhang/qa_coverage/internal/errors"
	"github.com/gaamingzhang/qa_coverage/internal/types"
	"github.com/gaamingzhang/qa_coverage/internal/utils"
)

// LoadDocument 读取文档全文，超过 MAX_DOCUMENT_SIZE_MB 时返回输入错误
func LoadDocument(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	limit := utils.GetMaxDocumentSize()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > limit {
		return "", apperrors.NewInputError(
			fmt.Sprintf("%s: %s exceeds %dMB", apperrors.ErrDocumentTooLarge, path, utils.GetMaxDocumentSizeMB()),
		).WithCause(apperrors.ErrDocumentTooLarge)
	}
	return string(data), nil
}

// LoadQAGroups 读取按主题分组的问答对 JSON 文件
func LoadQAGroups(path string) ([]types.TopicGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read qa file: %w", err)
	}
	var groups []types.TopicGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("malformed qa file %s", path)).WithCause(err)
	}
	return groups, nil
}
