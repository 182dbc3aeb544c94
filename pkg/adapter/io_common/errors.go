// 指示: miu200521358
// Package io_common はファイル入出力で共有するエラー種別を提供する。
package io_common

import (
	"errors"
	"fmt"
)

// IoErrorKind は入出力エラーの種別を表す。
type IoErrorKind int

const (
	IO_ERROR_EXT_INVALID IoErrorKind = iota + 1
	IO_ERROR_FILE_NOT_FOUND
	IO_ERROR_PARSE_FAILED
	IO_ERROR_FORMAT_NOT_SUPPORTED
	IO_ERROR_SAVE_FAILED
)

// String は種別名を返す。
func (k IoErrorKind) String() string {
	switch k {
	case IO_ERROR_EXT_INVALID:
		return "ext_invalid"
	case IO_ERROR_FILE_NOT_FOUND:
		return "file_not_found"
	case IO_ERROR_PARSE_FAILED:
		return "parse_failed"
	case IO_ERROR_FORMAT_NOT_SUPPORTED:
		return "format_not_supported"
	case IO_ERROR_SAVE_FAILED:
		return "save_failed"
	}
	return fmt.Sprintf("IoErrorKind(%d)", int(k))
}

// IoError は入出力エラーを表す。
type IoError struct {
	Kind    IoErrorKind
	Message string
	Err     error
}

// Error はエラーメッセージを返す。
func (e *IoError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap は原因エラーを返す。
func (e *IoError) Unwrap() error {
	return e.Err
}

func newIoError(kind IoErrorKind, err error, format string, params ...any) error {
	message := format
	if len(params) > 0 {
		message = fmt.Sprintf(format, params...)
	}
	return &IoError{Kind: kind, Message: message, Err: err}
}

// NewIoExtInvalid は拡張子が対象外のエラーを生成する。
func NewIoExtInvalid(path string, err error) error {
	return newIoError(IO_ERROR_EXT_INVALID, err, "拡張子が未対応です: %s", path)
}

// NewIoFileNotFound はファイルが存在しないエラーを生成する。
func NewIoFileNotFound(path string, err error) error {
	return newIoError(IO_ERROR_FILE_NOT_FOUND, err, "ファイルが見つかりません: %s", path)
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, err error, params ...any) error {
	return newIoError(IO_ERROR_PARSE_FAILED, err, format, params...)
}

// NewIoFormatNotSupported は未対応形式エラーを生成する。
func NewIoFormatNotSupported(format string, err error, params ...any) error {
	return newIoError(IO_ERROR_FORMAT_NOT_SUPPORTED, err, format, params...)
}

// NewIoSaveFailed は保存失敗エラーを生成する。
func NewIoSaveFailed(format string, err error, params ...any) error {
	return newIoError(IO_ERROR_SAVE_FAILED, err, format, params...)
}

// IsIoError は err が指定種別の入出力エラーか判定する。
func IsIoError(err error, kind IoErrorKind) bool {
	var target *IoError
	if !errors.As(err, &target) {
		return false
	}
	return target.Kind == kind
}
