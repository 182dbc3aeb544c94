// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// aimUp はエイム拘束のワールドアップ指定を表す。
type aimUp struct {
	kind   moutput.WorldUpType
	object string
	vector r3.Vec
}

// vectorComponents は X/Y/Z の属性接尾辞。
var vectorComponents = []string{"X", "Y", "Z"}

// solveChain はチェーン内の各マーカーへ位置/回転の拘束を構築する。
func solveChain(rc *RigContext, sys *model.MarkerSystem, chain *model.MarkerChain) error {
	markers := sys.ChainMarkers(chain.ID)

	lineStart, lineEnd := -1, -1
	if chain.LineIDs != nil {
		start, end, err := chain.LineIDs.Resolve(len(markers))
		if err != nil {
			return merrors.NewConfigError(chain.ID, "", "line_ids が不正です: %v", err)
		}
		lineStart, lineEnd = start, end
	}

	var chainUp *upCtrlNodes
	var plane *markerPlane
	for i, marker := range markers {
		posLocked := false
		if lineStart >= 0 && model.Contains(lineStart, lineEnd, i) {
			if _, err := createLineConstraint(rc, sys, marker, markers[lineStart], markers[lineEnd]); err != nil {
				return err
			}
			posLocked = true
		}

		switch marker.Rotation.Kind {
		case model.ROTATION_AIM:
			driven := marker.Name
			if posLocked {
				driven = rc.Scene.Parent(marker.Name)
			}
			next := markers[i+1]

			switch marker.Up.Kind {
			case model.UP_PLANE:
				if plane == nil {
					start, end, err := chain.PlaneIDs.Resolve(len(markers))
					if err != nil {
						return merrors.NewConfigError(chain.ID, marker.Name, "plane_ids が不正です: %v", err)
					}
					if plane, err = createMarkerPlane(rc, sys, chain, markers, start, end); err != nil {
						return err
					}
				}
				if model.Contains(plane.start, plane.end, i) {
					if err := deleteHierCtrl(rc, marker); err != nil {
						return err
					}
					if err := rc.Scene.SetParent(marker.Name, plane.revolve); err != nil {
						return err
					}
					marker.PlaneLocked = true
					if err := rc.Scene.SetTag(marker.Name, tagPositionLock, positionLockPlane); err != nil {
						return err
					}
					if _, err := markerAimConstrain(rc, sys, chain, next.Name, driven, aimUp{kind: moutput.WORLD_UP_NONE}); err != nil {
						return err
					}
					if err := createMarkerPlaneSDK(rc, sys, marker); err != nil {
						return err
					}
				} else {
					up := aimUp{kind: moutput.WORLD_UP_OBJECT, object: plane.upCtrl}
					if _, err := markerAimConstrain(rc, sys, chain, next.Name, driven, up); err != nil {
						return err
					}
				}
				marker.UpCtrl = plane.upCtrl
			case model.UP_CTRL:
				if chainUp == nil {
					nodes, err := createUpCtrl(rc, sys, markers[0], chain.UpCtrlPosition)
					if err != nil {
						return err
					}
					chainUp = nodes
				}
				up := aimUp{kind: moutput.WORLD_UP_OBJECT_ROTATION, object: chainUp.upObject, vector: r3.Vec{X: 1}}
				if _, err := markerAimConstrain(rc, sys, chain, next.Name, driven, up); err != nil {
					return err
				}
				marker.UpCtrl = chainUp.upCtrl
			case model.UP_VECTOR:
				up := aimUp{kind: moutput.WORLD_UP_VECTOR, vector: marker.Up.Vector}
				if _, err := markerAimConstrain(rc, sys, chain, next.Name, driven, up); err != nil {
					return err
				}
			case model.UP_NONE:
				if _, err := markerAimConstrain(rc, sys, chain, next.Name, driven, aimUp{kind: moutput.WORLD_UP_NONE}); err != nil {
					return err
				}
			default:
				return merrors.NewConfigError(chain.ID, marker.Name, "不正なアップ種別です: %v", marker.Up)
			}

			if marker.UpCtrl != "" {
				if err := rc.Scene.SetTag(marker.Name, tagUpCtrl, marker.UpCtrl); err != nil {
					return err
				}
			}
			if posLocked && marker.Up.Kind != model.UP_PLANE {
				if err := createMarkerLineSDK(rc, sys, marker); err != nil {
					return err
				}
			}
			if err := rc.Scene.LockChannels(marker.Name, "r", true); err != nil {
				return err
			}
		case model.ROTATION_FIXED:
			rotation := mmath.EulerToQuat(marker.Rotation.Euler, mmath.ROTATE_ORDER_XYZ)
			if err := rc.Scene.SetWorldRotation(marker.Name, rotation); err != nil {
				return err
			}
		case model.ROTATION_PARENT:
			parent := sys.ParentOf(marker)
			if parent == nil {
				return merrors.NewConfigError(chain.ID, marker.Name, "親マーカーがないため parent 回転にできません")
			}
			if err := orientToNode(rc, marker.Name, parent.Name); err != nil {
				return err
			}
			if !sys.IsLeaf(marker) {
				if err := rc.Scene.LockChannels(marker.Name, "r", true); err != nil {
					return err
				}
			}
		case model.ROTATION_NODE:
			if !rc.Scene.Exists(marker.Rotation.Node) {
				return merrors.NewConfigError(chain.ID, marker.Name, "回転の参照ノードがありません: %s", marker.Rotation.Node)
			}
			if err := orientToNode(rc, marker.Name, marker.Rotation.Node); err != nil {
				return err
			}
			if err := rc.Scene.LockChannels(marker.Name, "r", true); err != nil {
				return err
			}
		case model.ROTATION_FREE:
		default:
			return merrors.NewConfigError(chain.ID, marker.Name, "不正な回転種別です: %v", marker.Rotation)
		}

		if err := rc.Scene.SetTag(marker.Name, tagRotationType, marker.Rotation.Token()); err != nil {
			return err
		}
	}
	return nil
}

// orientToNode は driven の回転を driver へ追従させる。
func orientToNode(rc *RigContext, driven string, driver string) error {
	_, err := rc.Scene.AddConstraint(moutput.ConstraintSpec{
		Type:    moutput.CONSTRAINT_ORIENT,
		Drivers: []string{driver},
		Driven:  driven,
	})
	return err
}

// markerAimConstrain は driven を target へエイムさせる。
// aim/up ベクトルはルートの aim_axis/up_axis 属性からドリブンキーで決まる。
func markerAimConstrain(rc *RigContext, sys *model.MarkerSystem, chain *model.MarkerChain, target string, driven string, up aimUp) (string, error) {
	if err := ensureAxisSelectors(rc, sys, chain); err != nil {
		return "", err
	}
	if _, err := rc.SubRoot(sys.Root, naming.EXT_REF_GROUP); err != nil {
		return "", err
	}

	name, err := rc.Scene.AddConstraint(moutput.ConstraintSpec{
		Type:          moutput.CONSTRAINT_AIM,
		Drivers:       []string{target},
		Driven:        driven,
		AimVector:     r3.Vec{X: 1},
		UpVector:      r3.Vec{Z: 1},
		WorldUpType:   up.kind,
		WorldUpObject: up.object,
		WorldUpVector: up.vector,
	})
	if err != nil {
		return "", fmt.Errorf("エイム拘束の生成に失敗しました: %s -> %s: %w", driven, target, err)
	}

	selectors := []struct {
		attr   string
		vector string
	}{
		{attrAimAxisSelector, moutput.ATTR_AIM_VECTOR},
		{attrUpAxisSelector, moutput.ATTR_UP_VECTOR},
	}
	for _, selector := range selectors {
		for j, component := range vectorComponents {
			keys := make([]moutput.DrivenKey, 0, mmath.AxisCount)
			for i := 0; i < mmath.AxisCount; i++ {
				keys = append(keys, moutput.DrivenKey{
					Driver: float64(i),
					Value:  vectorComponent(mmath.Axis(i).Vector(), j),
				})
			}
			driver := moutput.Plug(sys.Root, selector.attr)
			drivenPlug := moutput.Plug(name, selector.vector+component)
			if err := rc.Scene.AddDrivenKey(driver, drivenPlug, keys); err != nil {
				return "", err
			}
		}
	}
	return name, nil
}

// ensureAxisSelectors はルートの aim_axis/up_axis 属性を初回だけチェーンの軸で生成する。
func ensureAxisSelectors(rc *RigContext, sys *model.MarkerSystem, chain *model.MarkerChain) error {
	if sys.HasAxisSelectors {
		return nil
	}
	sys.AimAxis = chain.AimAxis
	sys.UpAxis = chain.UpAxis
	if err := rc.Scene.SetAttr(moutput.Plug(sys.Root, attrAimAxisSelector), float64(sys.AimAxis)); err != nil {
		return err
	}
	if err := rc.Scene.SetAttr(moutput.Plug(sys.Root, attrUpAxisSelector), float64(sys.UpAxis)); err != nil {
		return err
	}
	sys.HasAxisSelectors = true
	return nil
}

// SetAxisSelectors はルートの aim_axis/up_axis 属性を変更する。
func SetAxisSelectors(rc *RigContext, sys *model.MarkerSystem, aim mmath.Axis, up mmath.Axis) error {
	if !aim.IsValid() || !up.IsValid() {
		return fmt.Errorf("軸が不正です: aim=%d up=%d", aim, up)
	}
	if aim.Letter() == up.Letter() {
		return fmt.Errorf("aim 軸と up 軸が同じ軸です: %s, %s", aim, up)
	}
	if !sys.HasAxisSelectors {
		return nil
	}
	if err := rc.Scene.SetAttr(moutput.Plug(sys.Root, attrAimAxisSelector), float64(aim)); err != nil {
		return err
	}
	if err := rc.Scene.SetAttr(moutput.Plug(sys.Root, attrUpAxisSelector), float64(up)); err != nil {
		return err
	}
	sys.AimAxis = aim
	sys.UpAxis = up
	return nil
}

// vectorComponent はベクトルの成分を添字で返す。
func vectorComponent(v r3.Vec, index int) float64 {
	switch index {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// upCtrlNodes はチェーン共有のアップコントロールを表す。
type upCtrlNodes struct {
	upCtrl   string
	upObject string
}

// upCtrlName はマーカー名から番号を除いたアップコントロール名を返す。
// 既に使われている場合は番号付きの名前にする。
func upCtrlName(rc *RigContext, marker *model.Marker) string {
	parsed, err := naming.Parse(marker.Name)
	if err != nil {
		return naming.Derive(marker.Name, naming.EXT_MARKER_UP_CTRL)
	}
	name := parsed.WithoutNum().WithExt(naming.EXT_MARKER_UP_CTRL).String()
	if rc.Scene.Exists(name) {
		return parsed.WithExt(naming.EXT_MARKER_UP_CTRL).String()
	}
	return name
}

// createUpCtrl はマーカーに追従するアップコントロールと、その方向を向く UP ノードを生成する。
func createUpCtrl(rc *RigContext, sys *model.MarkerSystem, marker *model.Marker, position *r3.Vec) (*upCtrlNodes, error) {
	scene := rc.Scene
	upCtrl := upCtrlName(rc, marker)
	placement := naming.Derive(upCtrl, naming.EXT_PLACEMENT)

	if err := createPlacedCtrl(rc, marker, upCtrl, placement); err != nil {
		return nil, err
	}
	if err := scene.LockChannels(placement, "trsv", true); err != nil {
		return nil, err
	}
	if position != nil {
		if err := scene.SetWorldPosition(upCtrl, *position); err != nil {
			return nil, err
		}
	} else if err := scene.SetLocalPosition(upCtrl, r3.Vec{Z: rc.Settings.UpCtrlOffset}); err != nil {
		return nil, err
	}

	refGroup, err := rc.SubRoot(sys.Root, naming.EXT_REF_GROUP)
	if err != nil {
		return nil, err
	}
	upObject := naming.Derive(upCtrl, naming.EXT_UP_OBJECT)
	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, upObject, refGroup); err != nil {
		return nil, err
	}
	if _, err := scene.AddConstraint(moutput.ConstraintSpec{
		Type:    moutput.CONSTRAINT_POINT,
		Drivers: []string{marker.Name},
		Driven:  upObject,
	}); err != nil {
		return nil, err
	}
	if _, err := scene.AddConstraint(moutput.ConstraintSpec{
		Type:        moutput.CONSTRAINT_AIM,
		Drivers:     []string{upCtrl},
		Driven:      upObject,
		AimVector:   r3.Vec{X: 1},
		UpVector:    r3.Vec{Z: 1},
		WorldUpType: moutput.WORLD_UP_NONE,
	}); err != nil {
		return nil, err
	}
	rc.Logger.Debug("アップコントロール生成: %s", upCtrl)
	return &upCtrlNodes{upCtrl: upCtrl, upObject: upObject}, nil
}

// createPlacedCtrl は PLC グループ付きのコントロールを基準マーカーへ揃えて生成する。
// PLC はマーカーと同じ親の下に置き、階層コントロールへ親子拘束する。
func createPlacedCtrl(rc *RigContext, marker *model.Marker, ctrl string, placement string) error {
	scene := rc.Scene
	parent := scene.Parent(marker.Name)
	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, placement, parent); err != nil {
		return err
	}
	if err := scene.SetWorldMatrix(placement, scene.WorldMatrix(marker.Name)); err != nil {
		return err
	}
	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, ctrl, placement); err != nil {
		return err
	}
	if marker.HasHierCtrl() {
		if _, err := scene.AddConstraint(moutput.ConstraintSpec{
			Type:    moutput.CONSTRAINT_PARENT,
			Drivers: []string{marker.HierCtrl},
			Driven:  placement,
		}); err != nil {
			return err
		}
	}
	return scene.LockChannels(ctrl, "rsv", true)
}
