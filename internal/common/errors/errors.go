// Package errors 定义业务错误码和错误处理
package errors

import (
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrRateLimitExceed = New(1007, "请求过于频繁")
	ErrOperationFailed = New(1008, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrTokenRefreshFail = New(2003, "刷新令牌失败")
	ErrPermissionDenied = New(2004, "权限不足")
	ErrAccountDisabled  = New(2005, "账号已禁用")
	ErrPasswordError    = New(2006, "密码错误")
)

// 用户错误码 (3000-3999)
var (
	ErrUserNotFound = New(3000, "用户不存在")
	ErrUserExists   = New(3001, "用户已存在")
	ErrEmailExists  = New(3002, "邮箱已被注册")
	ErrEmailInvalid = New(3003, "无效的邮箱")
	ErrNotHost      = New(3004, "仅房东可操作")
)

// 房源错误码 (4000-4999)
var (
	ErrHotelNotFound    = New(4000, "房源不存在")
	ErrHotelNotApproved = New(4001, "房源未通过审核")
	ErrHotelSuspended   = New(4002, "房源已停用")
	ErrNotHotelOwner    = New(4003, "无权操作该房源")
)

// 预订错误码 (5000-5999)
var (
	ErrBookingNotFound       = New(5000, "预订不存在")
	ErrInvalidDateRange      = New(5001, "入住日期区间无效")
	ErrGuestsExceedCapacity  = New(5002, "入住人数超过房源上限")
	ErrNoRoomsAvailable      = New(5003, "所选日期房源已满")
	ErrInvalidTransition     = New(5004, "预订状态不允许该操作")
	ErrBookingNotOwned       = New(5005, "无权操作该预订")
	ErrCheckInDateNotArrived = New(5006, "未到入住日期")
)

// 优惠券错误码 (6000-6999)
var (
	ErrCouponNotFound   = New(6000, "优惠券不存在")
	ErrCouponExpired    = New(6001, "优惠券不在有效期内")
	ErrCouponExhausted  = New(6002, "优惠券已被领完")
	ErrCouponCodeExists = New(6003, "券码已存在")
	ErrInvalidDiscount  = New(6004, "折扣比例无效")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
