// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"gonum.org/v1/gonum/spatial/r3"
)

// ExportSystemData はシステムの現在の配置をマーカーデータへ書き出す。
// 位置はシーン上のワールド位置を使う。
func ExportSystemData(rc *RigContext, sys *model.MarkerSystem) (model.SystemData, error) {
	scene := rc.Scene
	data := model.SystemData{
		Part:   sys.Part,
		Side:   sys.Side,
		Chains: make([]model.ChainData, 0, len(sys.Chains)),
	}
	if sys.IsConnected() {
		data.ParentMarker = sys.ParentMarker.Name
		data.ConnectMode = ConnectMode(rc, sys).String()
	}

	for _, chain := range sys.Chains {
		chainData := model.ChainData{
			AimAxis: chain.AimAxis.String(),
			UpAxis:  chain.UpAxis.String(),
			Parent:  chain.Parent,
			Markers: make([]model.MarkerData, 0, chain.Len()),
		}
		if chain.LineIDs != nil {
			chainData.LineIDs = []int{chain.LineIDs.Start, chain.LineIDs.End}
		}
		if chain.PlaneIDs != model.DefaultPlaneRange {
			chainData.PlaneIDs = []int{chain.PlaneIDs.Start, chain.PlaneIDs.End}
		}
		if chain.UpCtrlPosition != nil {
			chainData.UpCtrlPosition = vecSlice(*chain.UpCtrlPosition)
		}

		for _, marker := range sys.ChainMarkers(chain.ID) {
			position := marker.Position
			if scene.Exists(marker.Name) {
				position = scene.WorldPosition(marker.Name)
			}
			if marker.Up.Kind == model.UP_CTRL && marker.UpCtrl != "" && scene.Exists(marker.UpCtrl) {
				chainData.UpCtrlPosition = vecSlice(scene.WorldPosition(marker.UpCtrl))
			}
			chainData.Markers = append(chainData.Markers, model.MarkerData{
				Name:     marker.Name,
				Position: vecSlice(position),
				Rotation: rotationValue(marker.Rotation),
				UpType:   upValue(marker.Up),
			})
		}
		data.Chains = append(data.Chains, chainData)
	}
	return data, nil
}

// ExportRigData は登録済みの全システムをマーカーデータ文書へ書き出す。
func ExportRigData(rc *RigContext) (*model.RigData, error) {
	rig := &model.RigData{Systems: make([]model.SystemData, 0, len(rc.order))}
	for _, sys := range rc.Systems() {
		data, err := ExportSystemData(rc, sys)
		if err != nil {
			return nil, err
		}
		rig.Systems = append(rig.Systems, data)
	}
	return rig, nil
}

// MirrorSystemData はマーカーデータを X=0 平面で左右反転する。
// 名前と side を入れ替え、軸は符号を反転する。
func MirrorSystemData(data model.SystemData) model.SystemData {
	out := model.SystemData{
		Part:         data.Part,
		Side:         mirrorSide(data.Side),
		ParentMarker: mirrorName(data.ParentMarker),
		ConnectMode:  data.ConnectMode,
		Chains:       make([]model.ChainData, 0, len(data.Chains)),
	}
	for _, chain := range data.Chains {
		mirrored := model.ChainData{
			AimAxis:  mirrorAxisName(chain.AimAxis),
			UpAxis:   mirrorAxisName(chain.UpAxis),
			LineIDs:  chain.LineIDs,
			PlaneIDs: chain.PlaneIDs,
			Parent:   mirrorName(chain.Parent),
			Markers:  make([]model.MarkerData, 0, len(chain.Markers)),
		}
		if len(chain.UpCtrlPosition) == 3 {
			mirrored.UpCtrlPosition = mirrorSlice(chain.UpCtrlPosition)
		}
		for _, marker := range chain.Markers {
			mirrored.Markers = append(mirrored.Markers, model.MarkerData{
				Name:     mirrorName(marker.Name),
				Position: mirrorSlice(marker.Position),
				Rotation: mirrorRotationValue(marker.Rotation),
				UpType:   mirrorUpValue(marker.UpType),
			})
		}
		out.Chains = append(out.Chains, mirrored)
	}
	return out
}

// rotationValue は回転方針をマーカーデータの値へ変換する。
func rotationValue(p model.RotationPolicy) any {
	switch p.Kind {
	case model.ROTATION_FIXED:
		return vecSlice(p.Euler)
	case model.ROTATION_AIM:
		return "aim"
	case model.ROTATION_PARENT:
		return "parent"
	case model.ROTATION_NODE:
		return p.Node
	default:
		return nil
	}
}

// upValue はアップ方針をマーカーデータの値へ変換する。
func upValue(p model.UpPolicy) any {
	switch p.Kind {
	case model.UP_VECTOR:
		return vecSlice(p.Vector)
	case model.UP_CTRL:
		return "ctrl"
	case model.UP_PLANE:
		return "plane"
	default:
		return nil
	}
}

// mirrorRotationValue は回転値を反転する。固定回転はビヘイビアミラーした角度にする。
func mirrorRotationValue(value any) any {
	policy, err := model.ParseRotationValue(value)
	if err != nil {
		return value
	}
	switch policy.Kind {
	case model.ROTATION_FIXED:
		q := mmath.MirrorBehaviorQuat(mmath.EulerToQuat(policy.Euler, mmath.ROTATE_ORDER_XYZ))
		return vecSlice(mmath.QuatToEulerXYZ(q))
	case model.ROTATION_NODE:
		return naming.FlipName(policy.Node)
	}
	return value
}

// mirrorUpValue はアップ値を反転する。固定ベクトルは X 成分を反転する。
func mirrorUpValue(value any) any {
	policy, err := model.ParseUpValue(value)
	if err != nil || policy.Kind != model.UP_VECTOR {
		return value
	}
	return vecSlice(mmath.MirrorPosition(policy.Vector))
}

// mirrorAxisName は軸名の符号を反転する。空や不正な軸名はそのまま返す。
func mirrorAxisName(name string) string {
	if name == "" {
		return ""
	}
	axis, err := mmath.ParseAxis(name)
	if err != nil {
		return name
	}
	return axis.Negated().String()
}

// mirrorName は名前の左右を入れ替える。
func mirrorName(name string) string {
	if name == "" {
		return ""
	}
	return naming.FlipName(name)
}

// mirrorSide は side トークンを入れ替える。
func mirrorSide(side string) string {
	switch side {
	case naming.SIDE_L:
		return naming.SIDE_R
	case naming.SIDE_R:
		return naming.SIDE_L
	}
	return side
}

// mirrorSlice は3要素の位置を X=0 平面で反転する。
func mirrorSlice(values []float64) []float64 {
	if len(values) != 3 {
		return values
	}
	return vecSlice(mmath.MirrorPosition(r3.Vec{X: values[0], Y: values[1], Z: values[2]}))
}

// vecSlice はベクトルを数値列へ変換する。
func vecSlice(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// MirrorRigData は左右システムのミラー先データを文書へ追加する。
// 同じ part/side のシステムが既にあれば反転データで置き換える。
func MirrorRigData(data *model.RigData) *model.RigData {
	out := &model.RigData{Systems: make([]model.SystemData, 0, len(data.Systems)*2)}
	out.Systems = append(out.Systems, data.Systems...)
	for _, system := range data.Systems {
		if system.Side == naming.SIDE_M || system.Side == naming.SIDE_R {
			continue
		}
		mirrored := MirrorSystemData(system)
		replaced := false
		for i, existing := range out.Systems {
			if existing.Part == mirrored.Part && existing.Side == mirrored.Side {
				out.Systems[i] = mirrored
				replaced = true
				break
			}
		}
		if !replaced {
			out.Systems = append(out.Systems, mirrored)
		}
	}
	return out
}
