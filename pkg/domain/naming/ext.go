// 指示: miu200521358
package naming

// リグで使う拡張子トークン。
const (
	EXT_MARKER_ROOT      = "MROOT"
	EXT_MARKER           = "MARKER"
	EXT_MARKER_HIER_CTRL = "HCTRL"
	EXT_MARKER_UP_CTRL   = "UPCTRL"
	EXT_RIG_JOINT        = "RIGJNT"

	EXT_MARKER_OFFSET = "MOFF"
	EXT_TARGET        = "TGT"
	EXT_LINE_CNS      = "CNS"
	EXT_REVOLVE       = "REV"
	EXT_UP_OBJECT     = "UP"
	EXT_PLACEMENT     = "PLC"

	EXT_REF_GROUP    = "REFGRP"
	EXT_MARKER_GROUP = "MGRP"
	EXT_HIER_GROUP   = "HGRP"

	EXT_AIM_AXIS   = "AIMAXIS"
	EXT_UP_AXIS    = "UPAXIS"
	EXT_THIRD_SUM  = "TAPMA"
	EXT_THIRD_AXIS = "THIRDAXIS"
)

// GlobalMarkerRoot は全マーカーシステムを束ねるルートノード名。
const GlobalMarkerRoot = "MARKER"

// MarkerRootName は part と side からマーカーシステムのルート名を返す。
func MarkerRootName(part string, side string) (string, error) {
	n, err := New(part, "", -1, side, EXT_MARKER_ROOT)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// Derive はベース名の拡張子を差し替えた名前を返す。規約外の名前は末尾へ付与する。
func Derive(base string, ext string) string {
	name, err := ReplaceExt(base, ext)
	if err != nil {
		return base + separator + ext
	}
	return name
}
