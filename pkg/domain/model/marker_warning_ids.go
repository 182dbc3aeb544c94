// 指示: miu200521358
package model

const (
	// MarkerWarningTagKey は警告ID集合を記録するルートノードのタグキー。
	MarkerWarningTagKey = "MU_RIGMARKER_warnings"

	// MarkerWarningNotMarker は親候補がマーカーではない警告。
	MarkerWarningNotMarker = "MarkerWarningNotMarker"
	// MarkerWarningSameSystem は親候補が同じシステムに属する警告。
	MarkerWarningSameSystem = "MarkerWarningSameSystem"
	// MarkerWarningNonLeafMode は末端でない親に none 以外の接続モードを指定した警告。
	MarkerWarningNonLeafMode = "MarkerWarningNonLeafMode"
	// MarkerWarningAimModeRotation は aim 接続モードが親の回転方針に合わない警告。
	MarkerWarningAimModeRotation = "MarkerWarningAimModeRotation"
	// MarkerWarningParentJointMissing はベイク時に親ジョイントが見つからない警告。
	MarkerWarningParentJointMissing = "MarkerWarningParentJointMissing"
	// MarkerWarningMirrorTargetMissing はミラー先ノードが見つからない警告。
	MarkerWarningMirrorTargetMissing = "MarkerWarningMirrorTargetMissing"
	// MarkerWarningMirrorParentMissing はミラー先の親マーカーが見つからない警告。
	MarkerWarningMirrorParentMissing = "MarkerWarningMirrorParentMissing"
)

// MarkerWarningIDs は警告ID一覧を返す。
func MarkerWarningIDs() []string {
	return []string{
		MarkerWarningNotMarker,
		MarkerWarningSameSystem,
		MarkerWarningNonLeafMode,
		MarkerWarningAimModeRotation,
		MarkerWarningParentJointMissing,
		MarkerWarningMirrorTargetMissing,
		MarkerWarningMirrorParentMissing,
	}
}
