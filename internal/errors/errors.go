package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误类型
// 用于统一管理业务错误，包含错误码和错误消息
type AppError struct {
	Code    int    // 错误码
	Message string // 用户可见的错误消息
	Err     error  // 原始错误（可选，用于调试）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建新错误
func NewError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装原始错误
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Is 判断是否为指定错误
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode 获取错误码，如果不是 AppError 返回默认错误码
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError // 默认返回服务器错误
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "服务器内部错误"
}

// ============== 错误码定义 ==============

const (
	CodeSuccess = 0

	// 认证相关 10000-10999
	CodeEmailExists        = 10001
	CodeInvalidCredentials = 10002
	CodeTokenInvalid       = 10003
	CodeTokenExpired       = 10004
	CodeUserDisabled       = 10005

	// 用户相关 11000-11999
	CodeUserNotFound  = 11001
	CodeInvalidParams = 11002

	// 聊天相关 13000-13999
	CodeConversationNotFound = 13001
	CodeConversationInactive = 13002
	CodeEmptyContent         = 13003
	CodeNotParticipant       = 13004
	CodeUnknownEventType     = 13005

	// 楼盘相关 14000-14999
	CodeCompanyNotFound  = 14001
	CodeBuildingNotFound = 14002
	CodeFloorNotFound    = 14003
	CodeFlatNotFound     = 14004
	CodeNotCompanyStaff  = 14005
	CodeDuplicateEntry   = 14006

	// 系统错误 50000-50999
	CodeServerError = 50001
	CodeDBError     = 50002
)

// ============== 预定义错误 ==============

// 认证相关
var (
	ErrEmailExists        = NewError(CodeEmailExists, "邮箱已被注册")
	ErrInvalidCredentials = NewError(CodeInvalidCredentials, "邮箱或密码错误")
	ErrTokenInvalid       = NewError(CodeTokenInvalid, "Token 无效")
	ErrTokenExpired       = NewError(CodeTokenExpired, "Token 已过期")
	ErrUserDisabled       = NewError(CodeUserDisabled, "用户已被禁用")
)

// 用户相关
var (
	ErrUserNotFound  = NewError(CodeUserNotFound, "用户不存在")
	ErrInvalidParams = NewError(CodeInvalidParams, "参数校验失败")
)

// 聊天相关
var (
	ErrConversationNotFound = NewError(CodeConversationNotFound, "会话不存在")
	ErrConversationInactive = NewError(CodeConversationInactive, "会话已关闭，无法发送消息")
	ErrEmptyContent         = NewError(CodeEmptyContent, "消息内容不能为空")
	ErrNotParticipant       = NewError(CodeNotParticipant, "您不是该会话的参与方")
	ErrUnknownEventType     = NewError(CodeUnknownEventType, "未知的事件类型")
)

// 楼盘相关
var (
	ErrCompanyNotFound  = NewError(CodeCompanyNotFound, "公司不存在")
	ErrBuildingNotFound = NewError(CodeBuildingNotFound, "楼栋不存在")
	ErrFloorNotFound    = NewError(CodeFloorNotFound, "楼层不存在")
	ErrFlatNotFound     = NewError(CodeFlatNotFound, "房间不存在")
	ErrNotCompanyStaff  = NewError(CodeNotCompanyStaff, "您无权操作该公司的数据")
	ErrDuplicateEntry   = NewError(CodeDuplicateEntry, "数据已存在")
)

// 系统相关
var (
	ErrServerError = NewError(CodeServerError, "服务器内部错误")
	ErrDBError     = NewError(CodeDBError, "数据库错误")
)
