// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Epsilon は幾何計算で使う既定の許容誤差。
	Epsilon = 1e-8
	// planeUpCtrlDistanceRate は平面アップコントロールを始点終点間距離に対して離す比率。
	planeUpCtrlDistanceRate = 0.3
)

// NearEquals は2ベクトルが許容誤差内で一致するか判定する。
func NearEquals(a r3.Vec, b r3.Vec, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

// Distance は2点間の距離を返す。
func Distance(a r3.Vec, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// SafeUnit は単位ベクトルを返す。ゼロベクトルの場合は false を返す。
func SafeUnit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n <= Epsilon {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// ToVec3 は r3.Vec を mgl64.Vec3 へ変換する。
func ToVec3(v r3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromVec3 は mgl64.Vec3 を r3.Vec へ変換する。
func FromVec3(v mgl64.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// ProjectPoint は点を start-end を通る直線へ射影した位置を返す。
func ProjectPoint(point r3.Vec, start r3.Vec, end r3.Vec) r3.Vec {
	ref := r3.Sub(end, start)
	full := r3.Norm2(ref)
	if full <= Epsilon {
		return start
	}
	t := r3.Dot(ref, r3.Sub(point, start)) / full
	return r3.Add(start, r3.Scale(t, ref))
}

// Centroid は点群の中心を返す。
func Centroid(points []r3.Vec) r3.Vec {
	if len(points) == 0 {
		return r3.Vec{}
	}
	center := r3.Vec{}
	for _, p := range points {
		center = r3.Add(center, p)
	}
	return r3.Scale(1/float64(len(points)), center)
}

// LineWeights は直線上の点に対する始点/終点のブレンドウェイトを返す。
// 射影点から遠い端点ほどウェイトが小さくなる。
func LineWeights(point r3.Vec, start r3.Vec, end r3.Vec) (float64, float64) {
	projected := ProjectPoint(point, start, end)
	distStart := Distance(projected, start)
	distEnd := Distance(projected, end)
	total := distStart + distEnd
	if total <= Epsilon {
		return 0.5, 0.5
	}
	return distEnd / total, distStart / total
}

// PlaneUpCtrlPosition は平面ロック用アップコントロールの配置位置を返す。
// 始点終点の中点から、中心点へ向かう2ベクトルの二等分方向へ
// 始点終点間距離の3割だけ離した位置になる。
func PlaneUpCtrlPosition(start r3.Vec, end r3.Vec, center r3.Vec) r3.Vec {
	va, _ := SafeUnit(r3.Sub(center, start))
	vb, _ := SafeUnit(r3.Sub(center, end))
	length := Distance(start, end) * planeUpCtrlDistanceRate
	mid := r3.Scale(0.5, r3.Add(start, end))
	bisector, ok := SafeUnit(r3.Scale(0.5, r3.Add(va, vb)))
	if !ok {
		return mid
	}
	return r3.Add(mid, r3.Scale(length, bisector))
}

// MirrorPosition はYZ平面で位置を反転する。
func MirrorPosition(v r3.Vec) r3.Vec {
	return r3.Vec{X: -v.X, Y: v.Y, Z: v.Z}
}
