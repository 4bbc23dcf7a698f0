package service

import "errors"

// 业务层错误，由 HTTP 层映射为状态码
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrRegistrationFailed   = errors.New("registration failed: email already exists")
	ErrInternalServer       = errors.New("internal server error")
)

// 校验错误：在任何写入之前返回
var (
	ErrTitleRequired     = errors.New("Title is required")
	ErrInvalidEmail      = errors.New("Please enter a valid email address")
	ErrPasswordTooShort  = errors.New("Password must be at least 8 characters long.")
	ErrNameRequired      = errors.New("Name is required")
	ErrTermsNotAccepted  = errors.New("Please agree to the terms of service to continue.")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ErrNothingToExport 表示画布上没有可导出的内容
var ErrNothingToExport = errors.New("No shapes on the canvas")

// ValidationField 返回校验错误对应的表单字段，非校验错误返回 ""。
func ValidationField(err error) string {
	switch {
	case errors.Is(err, ErrTitleRequired):
		return "title"
	case errors.Is(err, ErrInvalidEmail):
		return "email"
	case errors.Is(err, ErrPasswordTooShort):
		return "password"
	case errors.Is(err, ErrNameRequired):
		return "name"
	case errors.Is(err, ErrTermsNotAccepted):
		return "agree_terms"
	case errors.Is(err, ErrUnsupportedFormat):
		return "format"
	}
	return ""
}
