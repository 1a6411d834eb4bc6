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
	Reason  string // 细分原因，例如牌桌规则错误码
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
		Reason:  e.Reason,
		Err:     err,
	}
}

// WithReason 返回附带细分原因和消息的副本
func (e *AppError) WithReason(reason, message string) *AppError {
	c := *e
	c.Reason = reason
	if message != "" {
		c.Message = message
	}
	return &c
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

// GetReason 获取细分原因
func GetReason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// ============== 错误码定义 ==============

const (
	CodeSuccess = 0

	// 认证相关 10000-10999
	CodeTokenInvalid = 10003
	CodeTokenExpired = 10004

	// 参数相关 11000-11999
	CodeInvalidParams = 11002
	CodeUnknownAction = 11003

	// 房间相关 20000-20999
	CodeRoomNotFound     = 20001
	CodeRoomFull         = 20002
	CodeGameStarted      = 20003
	CodeGameNotStarted   = 20004
	CodeAlreadyInRoom    = 20005
	CodeNotInRoom        = 20006
	CodeNotRoomHost      = 20007
	CodeNotEnoughPlayers = 20008
	CodeRankTooLow       = 20009
	CodeNoBotName        = 20010
	CodeCannotKickSelf   = 20011
	CodeRoundNotFinished = 20012
	CodeInvalidGameMode  = 20013
	CodeInvalidMatchType = 20014
	CodeInviteNotFound   = 20015
	CodeCannotInviteSelf = 20016
	CodeTargetInRoom     = 20017

	// 牌桌相关 21000-21999
	CodeIllegalAction   = 21001
	CodeInvariantBroken = 21002

	// 系统错误 50000-50999
	CodeServerError = 50001
	CodeDBError     = 50002
)

// ============== 预定义错误 ==============

// 认证相关
var (
	ErrTokenInvalid = NewError(CodeTokenInvalid, "Token 无效")
	ErrTokenExpired = NewError(CodeTokenExpired, "Token 已过期")
)

// 参数相关
var (
	ErrInvalidParams = NewError(CodeInvalidParams, "参数校验失败")
	ErrUnknownAction = NewError(CodeUnknownAction, "未知的操作")
)

// 房间相关
var (
	ErrRoomNotFound     = NewError(CodeRoomNotFound, "房间不存在")
	ErrRoomFull         = NewError(CodeRoomFull, "房间已满")
	ErrGameStarted      = NewError(CodeGameStarted, "对局已开始")
	ErrGameNotStarted   = NewError(CodeGameNotStarted, "对局尚未开始")
	ErrAlreadyInRoom    = NewError(CodeAlreadyInRoom, "已在房间中")
	ErrNotInRoom        = NewError(CodeNotInRoom, "不在房间中")
	ErrNotRoomHost      = NewError(CodeNotRoomHost, "只有房主可以操作")
	ErrNotEnoughPlayers = NewError(CodeNotEnoughPlayers, "人数不足")
	ErrRankTooLow       = NewError(CodeRankTooLow, "段位不足")
	ErrNoBotName        = NewError(CodeNoBotName, "机器人数量已达上限")
	ErrCannotKickSelf   = NewError(CodeCannotKickSelf, "不能踢出自己")
	ErrRoundNotFinished = NewError(CodeRoundNotFinished, "本局尚未结束")
	ErrInvalidGameMode  = NewError(CodeInvalidGameMode, "无效的对局长度")
	ErrInvalidMatchType = NewError(CodeInvalidMatchType, "无效的段位场")
	ErrInviteNotFound   = NewError(CodeInviteNotFound, "邀请不存在或已过期")
	ErrCannotInviteSelf = NewError(CodeCannotInviteSelf, "不能邀请自己")
	ErrTargetInRoom     = NewError(CodeTargetInRoom, "对方已在房间中")
)

// 牌桌相关
var (
	ErrIllegalAction   = NewError(CodeIllegalAction, "不允许的操作")
	ErrInvariantBroken = NewError(CodeInvariantBroken, "牌桌状态异常，本局已中止")
)

// 系统相关
var (
	ErrServerError = NewError(CodeServerError, "服务器内部错误")
	ErrDBError     = NewError(CodeDBError, "数据库错误")
)
