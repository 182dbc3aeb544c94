// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// IndexRange はチェーン内の始点/終点インデックスの組を表す。負数は末尾からの位置。
type IndexRange struct {
	Start int
	End   int
}

// DefaultPlaneRange は平面ロックの既定範囲 (先頭から末尾)。
var DefaultPlaneRange = IndexRange{Start: 0, End: -1}

// Resolve は負数を正規化した範囲を返す。間に1つ以上のマーカーがない場合はエラー。
func (r IndexRange) Resolve(count int) (int, int, error) {
	start, end := r.Start, r.End
	if start < 0 {
		start += count
	}
	if end < 0 {
		end += count
	}
	if start < 0 || end < 0 || start >= count || end >= count {
		return 0, 0, fmt.Errorf("インデックスが範囲外です: (%d, %d) count=%d", r.Start, r.End, count)
	}
	if end-start < 2 {
		return 0, 0, fmt.Errorf("始点と終点の間にマーカーがありません: (%d, %d)", r.Start, r.End)
	}
	return start, end, nil
}

// Contains は正規化済みの範囲の内側 (端点を除く) にあるか判定する。
func Contains(start int, end int, index int) bool {
	return index > start && index < end
}

// MarkerChain は既定の軸と特殊範囲を共有するマーカー列を表す。
type MarkerChain struct {
	ID             int
	AimAxis        mmath.Axis
	UpAxis         mmath.Axis
	UpCtrlPosition *r3.Vec
	LineIDs        *IndexRange
	PlaneIDs       IndexRange
	// Parent は先行チェーンのマーカー名。先頭マーカーの親になる。
	Parent        string
	MarkerIndexes []int
}

// NewMarkerChain はチェーンを生成する。
func NewMarkerChain(id int, aimAxis mmath.Axis, upAxis mmath.Axis) *MarkerChain {
	return &MarkerChain{
		ID:       id,
		AimAxis:  aimAxis,
		UpAxis:   upAxis,
		PlaneIDs: DefaultPlaneRange,
	}
}

// Len はチェーン内のマーカー数を返す。
func (c *MarkerChain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.MarkerIndexes)
}
