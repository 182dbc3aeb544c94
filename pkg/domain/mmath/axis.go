// 指示: miu200521358
package mmath

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis は符号付きのワールド基本軸を表す。
// 値の並びはマーカールートの列挙属性 (x, -x, y, -y, z, -z) と一致する。
type Axis int

const (
	AXIS_X Axis = iota
	AXIS_NEG_X
	AXIS_Y
	AXIS_NEG_Y
	AXIS_Z
	AXIS_NEG_Z
)

// AxisCount は符号付き基本軸の数。
const AxisCount = 6

// axisNames は列挙値ごとの軸名を保持する。
var axisNames = [AxisCount]string{"x", "-x", "y", "-y", "z", "-z"}

// axisVectors は列挙値ごとの単位ベクトルを保持する。
var axisVectors = [AxisCount]r3.Vec{
	{X: 1},
	{X: -1},
	{Y: 1},
	{Y: -1},
	{Z: 1},
	{Z: -1},
}

// thirdAxisTable は (aim + up + aim*up) をキーとした第三軸インデックス表。
// aim と up が同じ文字の場合もこの表で決まる。
var thirdAxisTable = map[int]int{
	0: 1, // (x, x) -> y
	1: 2, // (x, y) -> z
	2: 1, // (x, z) -> y
	3: 0, // (y, y) -> x
	5: 0, // (y, z) -> x
	8: 0, // (z, z) -> x
}

// AxisNames は列挙順の軸名一覧を返す。
func AxisNames() []string {
	names := make([]string, AxisCount)
	copy(names, axisNames[:])
	return names
}

// ParseAxis は軸名から Axis を解析する。
func ParseAxis(name string) (Axis, error) {
	token := strings.ToLower(strings.TrimSpace(name))
	token = strings.TrimPrefix(token, "+")
	for i, axisName := range axisNames {
		if token == axisName {
			return Axis(i), nil
		}
	}
	return AXIS_X, fmt.Errorf("不正な軸名です: %q", name)
}

// IsValid は列挙範囲内か判定する。
func (a Axis) IsValid() bool {
	return a >= 0 && a < AxisCount
}

// String は軸名を返す。
func (a Axis) String() string {
	if !a.IsValid() {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// Vector は軸の単位ベクトルを返す。
func (a Axis) Vector() r3.Vec {
	if !a.IsValid() {
		return r3.Vec{}
	}
	return axisVectors[a]
}

// Index は軸文字のインデックス (x=0, y=1, z=2) を返す。
func (a Axis) Index() int {
	return int(a) / 2
}

// IsNegative は負方向の軸か判定する。
func (a Axis) IsNegative() bool {
	return int(a)%2 == 1
}

// Negated は符号を反転した軸を返す。
func (a Axis) Negated() Axis {
	if a.IsNegative() {
		return a - 1
	}
	return a + 1
}

// Letter は符号を除いた軸文字を返す。
func (a Axis) Letter() string {
	return "xyz"[a.Index() : a.Index()+1]
}

// AxisFromVector はベクトルに一致する基本軸を返す。
func AxisFromVector(v r3.Vec, tolerance float64) (Axis, bool) {
	n := r3.Norm(v)
	if n <= tolerance {
		return AXIS_X, false
	}
	unit := r3.Scale(1/n, v)
	for i, axisVector := range axisVectors {
		if NearEquals(unit, axisVector, tolerance) {
			return Axis(i), true
		}
	}
	return AXIS_X, false
}

// ThirdAxisSelector は aim/up の軸文字インデックスから第三軸表のキーを返す。
func ThirdAxisSelector(aimIndex int, upIndex int) int {
	return aimIndex + upIndex + aimIndex*upIndex
}

// ThirdAxisIndex は aim 軸と up 軸から残りの軸文字インデックスを返す。
func ThirdAxisIndex(aimIndex int, upIndex int) int {
	return thirdAxisTable[ThirdAxisSelector(aimIndex, upIndex)]
}

// ThirdAxisTable は第三軸選択ノードへ設定する (キー, 軸文字インデックス) 表を返す。
func ThirdAxisTable() map[int]int {
	table := make(map[int]int, len(thirdAxisTable))
	for k, v := range thirdAxisTable {
		table[k] = v
	}
	return table
}

// ThirdAxis は aim 軸と up 軸から残りの軸文字を返す。
func ThirdAxis(aim Axis, up Axis) string {
	index := ThirdAxisIndex(aim.Index(), up.Index())
	return "xyz"[index : index+1]
}
