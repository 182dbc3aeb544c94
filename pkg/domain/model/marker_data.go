// 指示: miu200521358
package model

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// MarkerData はマーカー1点の入力データを表す。
// Rotation と UpType は文字列または3要素の数値列を受け付ける。
type MarkerData struct {
	Name     string    `yaml:"name" toml:"name"`
	Position []float64 `yaml:"position,omitempty" toml:"position,omitempty"`
	Rotation any       `yaml:"rotation,omitempty" toml:"rotation,omitempty"`
	UpType   any       `yaml:"up_type,omitempty" toml:"up_type,omitempty"`
}

// ChainData はマーカーチェーン1本の入力データを表す。
type ChainData struct {
	AimAxis        string       `yaml:"aim_axis,omitempty" toml:"aim_axis,omitempty"`
	UpAxis         string       `yaml:"up_axis,omitempty" toml:"up_axis,omitempty"`
	UpCtrlPosition []float64    `yaml:"up_ctrl_position,omitempty" toml:"up_ctrl_position,omitempty"`
	LineIDs        []int        `yaml:"line_ids,omitempty" toml:"line_ids,omitempty"`
	PlaneIDs       []int        `yaml:"plane_ids,omitempty" toml:"plane_ids,omitempty"`
	Parent         string       `yaml:"parent,omitempty" toml:"parent,omitempty"`
	Markers        []MarkerData `yaml:"markers" toml:"markers"`
}

// SystemData はマーカーシステム1つの入力データを表す。
type SystemData struct {
	Part         string      `yaml:"part" toml:"part"`
	Side         string      `yaml:"side" toml:"side"`
	ParentMarker string      `yaml:"parent_marker,omitempty" toml:"parent_marker,omitempty"`
	ConnectMode  string      `yaml:"connect_mode,omitempty" toml:"connect_mode,omitempty"`
	Chains       []ChainData `yaml:"chains" toml:"chains"`
}

// RigData はマーカーデータ文書全体を表す。
type RigData struct {
	Systems []SystemData `yaml:"systems" toml:"systems"`
}

// PositionVec は位置を r3.Vec で返す。未指定は原点。
func (d MarkerData) PositionVec() (r3.Vec, error) {
	return optionalVec(d.Position)
}

// UpCtrlVec はアップコントロール位置を返す。未指定は nil。
func (d ChainData) UpCtrlVec() (*r3.Vec, error) {
	if len(d.UpCtrlPosition) == 0 {
		return nil, nil
	}
	v, err := optionalVec(d.UpCtrlPosition)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// LineRange は直線ロック範囲を返す。未指定は nil。
func (d ChainData) LineRange() (*IndexRange, error) {
	if len(d.LineIDs) == 0 {
		return nil, nil
	}
	if len(d.LineIDs) != 2 {
		return nil, fmt.Errorf("line_ids は2要素である必要があります: %v", d.LineIDs)
	}
	return &IndexRange{Start: d.LineIDs[0], End: d.LineIDs[1]}, nil
}

// PlaneRange は平面ロック範囲を返す。未指定は既定範囲。
func (d ChainData) PlaneRange() (IndexRange, error) {
	if len(d.PlaneIDs) == 0 {
		return DefaultPlaneRange, nil
	}
	if len(d.PlaneIDs) != 2 {
		return DefaultPlaneRange, fmt.Errorf("plane_ids は2要素である必要があります: %v", d.PlaneIDs)
	}
	return IndexRange{Start: d.PlaneIDs[0], End: d.PlaneIDs[1]}, nil
}

// MarkerCount は全チェーンのマーカー数を返す。
func (d SystemData) MarkerCount() int {
	count := 0
	for _, chain := range d.Chains {
		count += len(chain.Markers)
	}
	return count
}

// optionalVec は空なら原点、3要素ならベクトルを返す。
func optionalVec(values []float64) (r3.Vec, error) {
	if len(values) == 0 {
		return r3.Vec{}, nil
	}
	if len(values) != 3 {
		return r3.Vec{}, fmt.Errorf("3要素の数値列が必要です: %v", values)
	}
	return r3.Vec{X: values[0], Y: values[1], Z: values[2]}, nil
}
