// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// attrJointRotateOrder はジョイントの回転順序属性。
const attrJointRotateOrder = "rotateOrder"

// BuildSkeleton はマーカーのターゲット行列からリグジョイントを生成する。
// 戻り値はチェーンごとのジョイント名。parent が空なら設定のスケルトン親を使う。
func BuildSkeleton(rc *RigContext, sys *model.MarkerSystem, parent string) ([][]string, error) {
	scene := rc.Scene
	logger := rc.Logger.With(logging.MarkerSystem(sys.Name))
	if parent == "" {
		parent = rc.Settings.SkeletonParent
	}
	if parent != "" && !scene.Exists(parent) {
		return nil, merrors.NewNotFoundError("スケルトン親", parent)
	}

	for _, marker := range sys.Markers {
		if name := rigJointName(marker); scene.Exists(name) {
			return nil, merrors.NewNameConflictError("リグジョイント", name)
		}
	}
	rotateOrder := skeletonRotateOrder(rc)

	joints := make([][]string, len(sys.Chains))
	created := make([]string, 0, sys.Len())
	cleanup := func() {
		for i := len(created) - 1; i >= 0; i-- {
			if scene.Exists(created[i]) {
				_ = scene.Delete(created[i])
			}
		}
	}

	for _, chain := range sys.Chains {
		for _, marker := range sys.ChainMarkers(chain.ID) {
			jointParent := skeletonParent(rc, sys, marker, parent)
			name, err := scene.CreateNode(moutput.NODE_KIND_JOINT, rigJointName(marker), jointParent)
			if err != nil {
				cleanup()
				return nil, fmt.Errorf("リグジョイントの生成に失敗しました: %s: %w", marker.Name, err)
			}
			created = append(created, name)

			source := marker.Name
			if marker.Target != "" && scene.Exists(marker.Target) {
				source = marker.Target
			}
			if err := bakeJoint(scene, name, scene.WorldMatrix(source), rotateOrder); err != nil {
				cleanup()
				return nil, err
			}
			joints[chain.ID] = append(joints[chain.ID], name)
		}
	}
	logger.With(logging.Count(len(created))).Info("スケルトン生成完了")
	return joints, nil
}

// BuildAllSkeletons は登録済みの全システムのスケルトンを生成する。
// 親システムを先に処理し、システム間の親子をジョイントへ引き継ぐ。
func BuildAllSkeletons(rc *RigContext, parent string) (map[string][][]string, error) {
	out := map[string][][]string{}
	done := map[string]bool{}
	var build func(sys *model.MarkerSystem) error
	build = func(sys *model.MarkerSystem) error {
		if done[sys.Name] {
			return nil
		}
		done[sys.Name] = true
		if parentSys, ok := ParentMarkerSystem(rc, sys); ok {
			if err := build(parentSys); err != nil {
				return err
			}
		}
		joints, err := BuildSkeleton(rc, sys, parent)
		if err != nil {
			return err
		}
		out[sys.Name] = joints
		return nil
	}
	for _, sys := range rc.Systems() {
		if err := build(sys); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// rigJointName はマーカーに対応するリグジョイント名を返す。
func rigJointName(marker *model.Marker) string {
	return naming.Derive(marker.Name, naming.EXT_RIG_JOINT)
}

// skeletonParent はジョイントの親を決める。
// システム内の親、別システムの親マーカーのジョイント、呼び出し側の親の順に探す。
func skeletonParent(rc *RigContext, sys *model.MarkerSystem, marker *model.Marker, fallback string) string {
	if parent := sys.ParentOf(marker); parent != nil {
		return rigJointName(parent)
	}
	external := marker.ExternalParent
	if external.IsZero() {
		if name, ok := rc.Scene.Tag(marker.Name, tagParentMarker); ok && name != "" {
			external = model.MarkerRef{Name: name}
		}
	}
	if external.IsZero() {
		return fallback
	}
	joint := naming.Derive(external.Name, naming.EXT_RIG_JOINT)
	if rc.Scene.Exists(joint) {
		return joint
	}
	rc.warn(model.MarkerWarningParentJointMissing, "親マーカーのジョイントがないため %q の下に生成します: %s", fallback, joint)
	return fallback
}

// skeletonRotateOrder はグローバルルートの回転順序属性を返す。未設定なら設定値。
func skeletonRotateOrder(rc *RigContext) mmath.RotateOrder {
	plug := moutput.Plug(naming.GlobalMarkerRoot, attrRotateOrder)
	if rc.Scene.HasAttr(plug) {
		return mmath.RotateOrder(int(rc.Scene.Attr(plug)))
	}
	return rc.Settings.RotateOrder
}

// bakeJoint はジョイントへワールド行列を設定し、回転をジョイントオリエントへ焼き込む。
func bakeJoint(scene moutput.IScene, joint string, matrix mgl64.Mat4, order mmath.RotateOrder) error {
	if err := scene.SetAttr(moutput.Plug(joint, attrJointRotateOrder), float64(order)); err != nil {
		return err
	}
	if err := scene.SetWorldMatrix(joint, matrix); err != nil {
		return err
	}
	if err := scene.SetScale(joint, r3.Vec{X: 1, Y: 1, Z: 1}); err != nil {
		return err
	}
	return scene.MakeIdentity(joint)
}

// ExportSkeletonData は生成済みジョイントを書き出し文書へ変換する。システムは登録順に並べる。
func ExportSkeletonData(rc *RigContext, joints map[string][][]string) *model.SkeletonData {
	scene := rc.Scene
	out := &model.SkeletonData{Joints: make([]model.JointData, 0)}
	for _, sys := range rc.Systems() {
		for chainID, chainJoints := range joints[sys.Name] {
			markers := sys.ChainMarkers(chainID)
			for markerID, joint := range chainJoints {
				if !scene.Exists(joint) {
					continue
				}
				markerName := ""
				if markerID < len(markers) {
					markerName = markers[markerID].Name
				}
				_, orient, _ := mmath.DecomposeMatrix(scene.LocalMatrix(joint))
				order := mmath.RotateOrder(int(scene.Attr(moutput.Plug(joint, attrJointRotateOrder))))
				out.Joints = append(out.Joints, model.JointData{
					Name:        joint,
					Parent:      scene.Parent(joint),
					System:      sys.Name,
					Marker:      markerName,
					ChainID:     chainID,
					MarkerID:    markerID,
					Position:    vecSlice(scene.WorldPosition(joint)),
					JointOrient: vecSlice(mmath.QuatToEulerXYZ(orient)),
					RotateOrder: order.String(),
				})
			}
		}
	}
	return out
}
