package errors

import "errors"

var (
	// ErrEmptyDocument 文档为空
	ErrEmptyDocument = errors.New("document is empty")

	// ErrNoQAGroups 没有问答主题分组
	ErrNoQAGroups = errors.New("no qa groups")

	// ErrNoQAPairs 所有主题分组都没有问答对
	ErrNoQAPairs = errors.New("no qa pairs")

	// ErrMissingQuestion 问答对缺少问题
	ErrMissingQuestion = errors.New("qa pair is missing question")

	// ErrMissingAnswer 问答对缺少答案
	ErrMissingAnswer = errors.New("qa pair is missing answer")

	// ErrDocumentTooLarge 文档超出大小限制
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
)
