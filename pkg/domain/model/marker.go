// 指示: miu200521358
package model

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// MarkerRef は別マーカーシステムのマーカーを名前で参照する。
type MarkerRef struct {
	System string
	Name   string
}

// IsZero は参照が未設定か判定する。
func (r MarkerRef) IsZero() bool {
	return r.Name == ""
}

// Marker はリグの配置/向きを決める1点を表す。
type Marker struct {
	Name     string
	Position r3.Vec
	Rotation RotationPolicy
	Up       UpPolicy

	ChainID     int
	Index       int
	ArenaIndex  int
	ParentIndex int
	// ExternalParent はチェーン親が別システムにある場合の参照。
	ExternalParent MarkerRef

	Offset   string
	Target   string
	HierCtrl string
	UpCtrl   string

	LineLocked  bool
	PlaneLocked bool
	Hidden      bool
}

// NewMarker はマーカーを生成する。
func NewMarker(name string, position r3.Vec) *Marker {
	return &Marker{
		Name:        name,
		Position:    position,
		Rotation:    FreeRotation(),
		Up:          NoUp(),
		ArenaIndex:  -1,
		ParentIndex: -1,
	}
}

// HasParent はシステム内に親マーカーを持つか判定する。
func (m *Marker) HasParent() bool {
	return m != nil && m.ParentIndex >= 0
}

// IsPlaneLocked は直線/平面ロックでオフセット以外の親を持つか判定する。
func (m *Marker) IsPlaneLocked() bool {
	return m != nil && (m.PlaneLocked || m.LineLocked)
}

// HasHierCtrl は階層コントロールを持つか判定する。
func (m *Marker) HasHierCtrl() bool {
	return m != nil && m.HierCtrl != ""
}
