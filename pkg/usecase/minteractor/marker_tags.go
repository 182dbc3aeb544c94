// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
)

// シーンタグのキー。
const (
	tagMarkerRoot       = "marker_root"
	tagPart             = "part"
	tagSide             = "side"
	tagChainCount       = "chain_count"
	tagParentMarker     = "parent_marker"
	tagParentSystem     = "parent_marker_system"
	tagConnectMode      = "connect_mode"
	tagMarkerSystem     = "marker_system"
	tagChainID          = "chain_id"
	tagMarkerID         = "marker_id"
	tagRotationType     = "rotation_type"
	tagUpType           = "up_type"
	tagIsLeaf           = "is_leaf"
	tagHierCtrl         = "hier_ctrl"
	tagUpCtrl           = "up_ctrl"
	tagPositionLock     = "position_lock"
	tagChainAimAxis     = "aim_axis"
	tagChainUpAxis      = "up_axis"
	tagChainParent      = "parent"
	tagChainLineIDs     = "line_ids"
	tagChainPlaneIDs    = "plane_ids"
	tagChainUpCtrlPos   = "up_ctrl_position"
	positionLockLine    = "line"
	positionLockPlane   = "plane"
	attrAimAxisSelector = "aim_axis"
	attrUpAxisSelector  = "up_axis"
)

// chainTag はチェーン単位のタグキーを返す。
func chainTag(chainID int, key string) string {
	return "chain" + strconv.Itoa(chainID) + "_" + key
}

// boolTag は真偽値をタグ文字列へ変換する。
func boolTag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// parseRange はタグ文字列を範囲へ戻す。
func parseRange(value string) (model.IndexRange, error) {
	start, end, ok := strings.Cut(value, ",")
	if !ok {
		return model.IndexRange{}, fmt.Errorf("範囲の書式が不正です: %q", value)
	}
	s, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return model.IndexRange{}, fmt.Errorf("範囲の始点が不正です: %q: %w", value, err)
	}
	e, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		return model.IndexRange{}, fmt.Errorf("範囲の終点が不正です: %q: %w", value, err)
	}
	return model.IndexRange{Start: s, End: e}, nil
}
