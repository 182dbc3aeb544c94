// 指示: miu200521358
// Package merrors はマーカーシステムで使う型付きエラーを提供する。
package merrors

import (
	"errors"
	"fmt"
)

// ConfigError はチェーンデータの設定不備を表す。
type ConfigError struct {
	ChainID int
	Marker  string
	Reason  string
}

// Error はエラーメッセージを返す。
func (e *ConfigError) Error() string {
	switch {
	case e.Marker != "":
		return fmt.Sprintf("マーカー設定が不正です: chain=%d marker=%s: %s", e.ChainID, e.Marker, e.Reason)
	case e.ChainID >= 0:
		return fmt.Sprintf("チェーン設定が不正です: chain=%d: %s", e.ChainID, e.Reason)
	default:
		return fmt.Sprintf("マーカーシステム設定が不正です: %s", e.Reason)
	}
}

// NewConfigError は設定エラーを生成する。
func NewConfigError(chainID int, marker string, format string, params ...any) error {
	return &ConfigError{ChainID: chainID, Marker: marker, Reason: fmt.Sprintf(format, params...)}
}

// IsConfigError は設定エラーか判定する。
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// NameConflictError はシーン上の名前衝突を表す。
type NameConflictError struct {
	Name string
	Kind string
}

// Error はエラーメッセージを返す。
func (e *NameConflictError) Error() string {
	return fmt.Sprintf("%sが既に存在します: %s", e.Kind, e.Name)
}

// NewNameConflictError は名前衝突エラーを生成する。
func NewNameConflictError(kind string, name string) error {
	return &NameConflictError{Name: name, Kind: kind}
}

// IsNameConflictError は名前衝突エラーか判定する。
func IsNameConflictError(err error) bool {
	var target *NameConflictError
	return errors.As(err, &target)
}

// NotFoundError は参照先が見つからないことを表す。
type NotFoundError struct {
	Name string
	Kind string
}

// Error はエラーメッセージを返す。
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%sが見つかりません: %s", e.Kind, e.Name)
}

// NewNotFoundError は参照先なしエラーを生成する。
func NewNotFoundError(kind string, name string) error {
	return &NotFoundError{Name: name, Kind: kind}
}

// IsNotFoundError は参照先なしエラーか判定する。
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
