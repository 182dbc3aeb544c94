// 指示: miu200521358
package io_common

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestIoErrorKinds(t *testing.T) {
	cause := os.ErrNotExist
	cases := []struct {
		name string
		err  error
		kind IoErrorKind
		msg  string
	}{
		{name: "ext", err: NewIoExtInvalid("a.json", nil), kind: IO_ERROR_EXT_INVALID, msg: "拡張子が未対応です: a.json"},
		{name: "not found", err: NewIoFileNotFound("a.yaml", cause), kind: IO_ERROR_FILE_NOT_FOUND, msg: "ファイルが見つかりません: a.yaml: " + cause.Error()},
		{name: "parse", err: NewIoParseFailed("行%dが不正です", nil, 3), kind: IO_ERROR_PARSE_FAILED, msg: "行3が不正です"},
		{name: "format", err: NewIoFormatNotSupported("未対応です", nil), kind: IO_ERROR_FORMAT_NOT_SUPPORTED, msg: "未対応です"},
		{name: "save", err: NewIoSaveFailed("保存に失敗しました", nil), kind: IO_ERROR_SAVE_FAILED, msg: "保存に失敗しました"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if !IsIoError(tc.err, tc.kind) {
				t.Fatalf("kind mismatch: got=%v want=%s", tc.err, tc.kind)
			}
			if tc.err.Error() != tc.msg {
				t.Fatalf("message mismatch: got=%s want=%s", tc.err.Error(), tc.msg)
			}
		})
	}
}

func TestIoErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewIoFileNotFound("a.yaml", os.ErrNotExist))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cause should be reachable: %v", err)
	}
	if !IsIoError(err, IO_ERROR_FILE_NOT_FOUND) {
		t.Fatalf("wrapped io error should be detected")
	}
	if IsIoError(errors.New("plain"), IO_ERROR_PARSE_FAILED) {
		t.Fatalf("plain error should not match")
	}
}
