// 指示: miu200521358
package model

import "github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"

const (
	// DefaultMarkerScale はマーカー表示スケールの既定値。
	DefaultMarkerScale = 0.5
	// DefaultUpCtrlOffset はアップコントロール位置未指定時のローカルZ移動量。
	DefaultUpCtrlOffset = 5.0
	// DefaultPoleDistance はポール距離の既定値。
	DefaultPoleDistance = 10.0
)

// RigSettings はグローバルマーカールートに保持する設定を表す。
type RigSettings struct {
	MarkerScale    float64
	RotateOrder    mmath.RotateOrder
	DefaultAimAxis mmath.Axis
	DefaultUpAxis  mmath.Axis
	UpCtrlOffset   float64
	PoleDistance   float64
	// SkeletonParent はベイク時に親マーカーを持たないジョイントの親。
	SkeletonParent string
}

// NewRigSettings は既定値の設定を返す。
func NewRigSettings() RigSettings {
	return RigSettings{
		MarkerScale:    DefaultMarkerScale,
		RotateOrder:    mmath.ROTATE_ORDER_XYZ,
		DefaultAimAxis: mmath.AXIS_X,
		DefaultUpAxis:  mmath.AXIS_Z,
		UpCtrlOffset:   DefaultUpCtrlOffset,
		PoleDistance:   DefaultPoleDistance,
	}
}
