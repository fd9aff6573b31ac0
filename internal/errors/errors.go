package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 定义了错误码的类型
type ErrorCode int

const (
	// 输入相关错误码（1000-1099）
	ErrInvalidInput  ErrorCode = 1000
	ErrInvalidConfig ErrorCode = 1001

	// 外部协作方相关错误码（1100-1199）
	ErrCollaborator ErrorCode = 1100

	// 运行相关错误码（1200-1299）
	ErrTimeout  ErrorCode = 1200
	ErrInternal ErrorCode = 1201
)

// 外部协作方名称，用于 CollaboratorError 的上下文
const (
	CollaboratorTokenizer  = "tokenizer"
	CollaboratorSimilarity = "similarity"
	CollaboratorExtractor  = "extractor"
)

// AppError 定义了应用级别的错误结构体
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// omitempty 确保在 Details 为空时不包含该字段
	Details any `json:"details,omitempty"`
	// Collaborator 出错的外部协作方，仅对 ErrCollaborator 有效
	Collaborator string `json:"collaborator,omitempty"`
	// Unit 出错时正在处理的输入单元（段落、问答对、知识点）
	Unit string `json:"unit,omitempty"`
	// 原始错误，不包含在 JSON 中
	Err error `json:"-"`
}

// Error 实现 error 接口，返回错误码和错误消息
func (e *AppError) Error() string {
	msg := fmt.Sprintf("error code: %d, error message: %s", e.Code, e.Message)
	if e.Collaborator != "" {
		msg += fmt.Sprintf(", collaborator: %s", e.Collaborator)
	}
	if e.Unit != "" {
		msg += fmt.Sprintf(", unit: %s", e.Unit)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(", cause: %v", e.Err)
	}
	return msg
}

// Unwrap 返回原始错误，便于 errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails 设置错误的详细信息
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithCause 设置原始错误
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewInputError 创建一个新的输入错误
func NewInputError(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
	}
}

// NewConfigError 创建一个新的配置错误
func NewConfigError(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidConfig,
		Message: message,
	}
}

// NewCollaboratorError 创建一个新的协作方错误
// 引擎不做重试，重试策略由调用方决定
func NewCollaboratorError(collaborator, unit string, err error) *AppError {
	return &AppError{
		Code:         ErrCollaborator,
		Message:      fmt.Sprintf("%s failed", collaborator),
		Collaborator: collaborator,
		Unit:         unit,
		Err:          err,
	}
}

// NewTimeoutError 创建一个新的超时/取消错误
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:    ErrTimeout,
		Message: "evaluation aborted before completion",
		Err:     err,
	}
}

// NewInternalError 创建一个新的内部错误
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "内部错误"
	}
	return &AppError{
		Code:    ErrInternal,
		Message: message,
	}
}

// IsAppError 检查错误链中是否存在 AppError
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode 检查错误链中的 AppError 是否为指定错误码
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}
