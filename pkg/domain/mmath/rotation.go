// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotateOrder は回転順序を表す。値の並びはジョイントの rotateOrder 属性と一致する。
type RotateOrder int

const (
	ROTATE_ORDER_XYZ RotateOrder = iota
	ROTATE_ORDER_YZX
	ROTATE_ORDER_ZXY
	ROTATE_ORDER_XZY
	ROTATE_ORDER_YXZ
	ROTATE_ORDER_ZYX
)

// rotateOrderNames は回転順序名を保持する。
var rotateOrderNames = []string{"xyz", "yzx", "zxy", "xzy", "yxz", "zyx"}

// mirrorBehaviorQuat はYZ平面ミラー(ビヘイビア)で掛ける X 軸180度回転。
var mirrorBehaviorQuat = mgl64.Quat{W: 0, V: mgl64.Vec3{1, 0, 0}}

// ParseRotateOrder は回転順序名を解析する。
func ParseRotateOrder(name string) (RotateOrder, error) {
	token := strings.ToLower(strings.TrimSpace(name))
	for i, orderName := range rotateOrderNames {
		if token == orderName {
			return RotateOrder(i), nil
		}
	}
	return ROTATE_ORDER_XYZ, fmt.Errorf("不正な回転順序です: %q", name)
}

// String は回転順序名を返す。
func (o RotateOrder) String() string {
	if o < 0 || int(o) >= len(rotateOrderNames) {
		return fmt.Sprintf("RotateOrder(%d)", int(o))
	}
	return rotateOrderNames[o]
}

// EulerToQuat は度数法のオイラー角を回転順序に従ってクォータニオンへ変換する。
// 回転順序の先頭軸が最初に適用される。
func EulerToQuat(degrees r3.Vec, order RotateOrder) mgl64.Quat {
	angles := map[byte]float64{
		'x': mgl64.DegToRad(degrees.X),
		'y': mgl64.DegToRad(degrees.Y),
		'z': mgl64.DegToRad(degrees.Z),
	}
	axes := map[byte]mgl64.Vec3{
		'x': {1, 0, 0},
		'y': {0, 1, 0},
		'z': {0, 0, 1},
	}
	if order < 0 || int(order) >= len(rotateOrderNames) {
		order = ROTATE_ORDER_XYZ
	}
	q := mgl64.QuatIdent()
	for _, letter := range []byte(order.String()) {
		q = mgl64.QuatRotate(angles[letter], axes[letter]).Mul(q)
	}
	return q.Normalize()
}

// QuatToEulerXYZ はクォータニオンを xyz 回転順序の度数法オイラー角へ変換する。
func QuatToEulerXYZ(q mgl64.Quat) r3.Vec {
	m := q.Normalize().Mat4()
	sy := clamp(-m.At(2, 0), -1, 1)
	y := math.Asin(sy)
	var x, z float64
	if math.Abs(math.Cos(y)) > 1e-6 {
		x = math.Atan2(m.At(2, 1), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(0, 0))
	} else {
		x = math.Atan2(-m.At(1, 2), m.At(1, 1))
		z = 0
	}
	return r3.Vec{X: mgl64.RadToDeg(x), Y: mgl64.RadToDeg(y), Z: mgl64.RadToDeg(z)}
}

// QuatNearEquals は2つの回転が許容誤差内で同じか判定する (q と -q は同一視する)。
func QuatNearEquals(a mgl64.Quat, b mgl64.Quat, tolerance float64) bool {
	return math.Abs(math.Abs(a.Normalize().Dot(b.Normalize()))-1) <= tolerance
}

// AimQuat はローカルの aimVector を aimDir へ、upVector を worldUp 側へ向ける回転を返す。
// 方向が退化している場合は false を返す。
func AimQuat(aimDir r3.Vec, worldUp r3.Vec, aimVector r3.Vec, upVector r3.Vec) (mgl64.Quat, bool) {
	worldFrame, ok := orthoFrame(aimDir, worldUp)
	if !ok {
		return mgl64.QuatIdent(), false
	}
	localFrame, ok := orthoFrame(aimVector, upVector)
	if !ok {
		return mgl64.QuatIdent(), false
	}
	return mgl64.Mat4ToQuat(worldFrame.Mul4(localFrame.Transpose())).Normalize(), true
}

// ShortestArcQuat は from から to へ回す最短回転を返す。
func ShortestArcQuat(from r3.Vec, to r3.Vec) mgl64.Quat {
	f, okFrom := SafeUnit(from)
	t, okTo := SafeUnit(to)
	if !okFrom || !okTo {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(ToVec3(f), ToVec3(t)).Normalize()
}

// MirrorBehaviorQuat はYZ平面でジョイントをビヘイビアミラーした場合のワールド回転を返す。
// 鏡映で左手系になった軸を全て反転して右手系を保つため、二度適用すると元に戻る。
func MirrorBehaviorQuat(q mgl64.Quat) mgl64.Quat {
	return mirrorBehaviorQuat.Mul(q).Normalize()
}

// ComposeMatrix は移動/回転/スケールから変換行列を生成する。
func ComposeMatrix(translate r3.Vec, rotate mgl64.Quat, scale r3.Vec) mgl64.Mat4 {
	return mgl64.Translate3D(translate.X, translate.Y, translate.Z).
		Mul4(rotate.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(scale.X, scale.Y, scale.Z))
}

// DecomposeMatrix は変換行列を移動/回転/スケールへ分解する。
func DecomposeMatrix(m mgl64.Mat4) (r3.Vec, mgl64.Quat, r3.Vec) {
	translate := r3.Vec{X: m[12], Y: m[13], Z: m[14]}
	cols := [3]mgl64.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
	scale := r3.Vec{X: cols[0].Len(), Y: cols[1].Len(), Z: cols[2].Len()}
	if m.Mat3().Det() < 0 {
		scale.X = -scale.X
	}
	factors := [3]float64{scale.X, scale.Y, scale.Z}
	rot := mgl64.Ident4()
	for i := 0; i < 3; i++ {
		if math.Abs(factors[i]) <= Epsilon {
			continue
		}
		col := cols[i].Mul(1 / factors[i])
		rot[i*4+0] = col[0]
		rot[i*4+1] = col[1]
		rot[i*4+2] = col[2]
	}
	return translate, mgl64.Mat4ToQuat(rot).Normalize(), scale
}

// orthoFrame は主軸と副軸から正規直交基底(列: 主, 副, 主×副)の行列を生成する。
func orthoFrame(primary r3.Vec, secondary r3.Vec) (mgl64.Mat4, bool) {
	a, ok := SafeUnit(primary)
	if !ok {
		return mgl64.Ident4(), false
	}
	u, ok := SafeUnit(r3.Sub(secondary, r3.Scale(r3.Dot(secondary, a), a)))
	if !ok {
		return mgl64.Ident4(), false
	}
	c := r3.Cross(a, u)
	return mgl64.Mat4{
		a.X, a.Y, a.Z, 0,
		u.X, u.Y, u.Z, 0,
		c.X, c.Y, c.Z, 0,
		0, 0, 0, 1,
	}, true
}

// clamp は値を範囲内へ収める。
func clamp(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
