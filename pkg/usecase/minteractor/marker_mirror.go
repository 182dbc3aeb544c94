// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// mirrorCopyAttrs はミラー時に値をそのまま写す属性。
var mirrorCopyAttrs = []string{attrUpAxisOffset, attrPoleDistance}

// Mirror はシステムの配置を左右反転してミラー先システムへ写す。
// ミラー先が未生成なら反転したマーカーデータから生成する。中央システムは何もしない。
func Mirror(rc *RigContext, sys *model.MarkerSystem, alignHierCtrls bool) (*model.MarkerSystem, error) {
	if sys.IsMiddle() {
		return nil, nil
	}
	logger := rc.Logger.With(logging.MarkerSystem(sys.Name))

	twin, err := mirrorTarget(rc, sys)
	if err != nil {
		return nil, err
	}
	if sys.HasAxisSelectors && twin.HasAxisSelectors {
		if err := SetAxisSelectors(rc, twin, sys.AimAxis.Negated(), sys.UpAxis.Negated()); err != nil {
			return nil, err
		}
	}

	scene := rc.Scene
	for _, name := range mirrorSourceNodes(rc, sys) {
		target := naming.FlipName(name)
		if target == name || !scene.Exists(target) {
			rc.warn(model.MarkerWarningMirrorTargetMissing, "ミラー先が見つかりません: %s", target)
			continue
		}
		if err := scene.SetWorldPosition(target, mmath.MirrorPosition(scene.WorldPosition(name))); err != nil {
			return nil, err
		}
		if scene.IsFree(target, "rx") {
			rotation, err := mirroredRotation(scene, name)
			if err != nil {
				return nil, err
			}
			if err := scene.SetWorldRotation(target, rotation); err != nil {
				return nil, err
			}
		}
		if scene.IsFree(target, "sx") {
			if err := scene.SetScale(target, scene.Scale(name)); err != nil {
				return nil, err
			}
		}
		for _, attr := range mirrorCopyAttrs {
			src, dst := moutput.Plug(name, attr), moutput.Plug(target, attr)
			if scene.HasAttr(src) && scene.HasAttr(dst) {
				if err := scene.SetAttr(dst, scene.Attr(src)); err != nil {
					return nil, err
				}
			}
		}
	}

	if sys.IsConnected() {
		mode := ConnectMode(rc, sys)
		parentName := naming.FlipName(sys.ParentMarker.Name)
		if _, _, ok := rc.FindMarker(parentName); ok {
			if _, err := SetParentMarker(rc, twin, parentName, mode); err != nil {
				return nil, err
			}
		} else {
			rc.warn(model.MarkerWarningMirrorParentMissing, "ミラー先の親マーカーが見つかりません: %s", parentName)
		}
	} else if twin.IsConnected() {
		if _, err := SetParentMarker(rc, twin, "", model.CONNECT_MODE_NONE); err != nil {
			return nil, err
		}
	}

	if alignHierCtrls {
		if err := AlignHierCtrls(rc, twin); err != nil {
			return nil, err
		}
	}
	logger.Info("ミラー完了: %s", twin.Name)
	return twin, nil
}

// MirrorAll は右側以外の全システムを親システムから順にミラーし、最後に全階層コントロールを揃える。
func MirrorAll(rc *RigContext) error {
	done := map[string]bool{}
	var mirror func(sys *model.MarkerSystem) error
	mirror = func(sys *model.MarkerSystem) error {
		if done[sys.Name] {
			return nil
		}
		done[sys.Name] = true
		if parentSys, ok := ParentMarkerSystem(rc, sys); ok {
			if err := mirror(parentSys); err != nil {
				return err
			}
		}
		if sys.Side == naming.SIDE_R || sys.IsMiddle() {
			return nil
		}
		_, err := Mirror(rc, sys, false)
		return err
	}
	for _, sys := range rc.Systems() {
		if err := mirror(sys); err != nil {
			return err
		}
	}
	return AlignAllHierCtrls(rc)
}

// mirrorTarget はミラー先システムを返す。シーンにだけあればタグから復元し、なければ生成する。
func mirrorTarget(rc *RigContext, sys *model.MarkerSystem) (*model.MarkerSystem, error) {
	name := sys.MirrorName()
	if twin, ok := rc.System(name); ok {
		return twin, nil
	}
	if rc.Scene.Exists(name) {
		return LoadMarkerSystem(rc, name)
	}

	data, err := ExportSystemData(rc, sys)
	if err != nil {
		return nil, err
	}
	mirrored := MirrorSystemData(data)
	mirrored.ParentMarker = ""
	mirrored.ConnectMode = ""
	twin, err := CreateMarkerSystem(rc, NewCreateRequest(mirrored, false))
	if err != nil {
		return nil, fmt.Errorf("ミラー先システムの生成に失敗しました: %s: %w", name, err)
	}
	return twin, nil
}

// mirrorSourceNodes はミラー対象のマーカーとアップコントロールを平面ロック後回しの順で返す。
func mirrorSourceNodes(rc *RigContext, sys *model.MarkerSystem) []string {
	names := make([]string, 0, sys.Len())
	seen := map[string]bool{}
	for marker := range sys.IterMarkers(true) {
		if !seen[marker.Name] {
			seen[marker.Name] = true
			names = append(names, marker.Name)
		}
		if marker.UpCtrl != "" && !seen[marker.UpCtrl] && rc.Scene.Exists(marker.UpCtrl) {
			seen[marker.UpCtrl] = true
			names = append(names, marker.UpCtrl)
		}
	}
	return names
}

// mirroredRotation は一時ジョイントをビヘイビアミラーしてミラー後のワールド回転を求める。
func mirroredRotation(scene moutput.IScene, source string) (mgl64.Quat, error) {
	tmp, err := scene.CreateNode(moutput.NODE_KIND_JOINT, "", "")
	if err != nil {
		return mgl64.QuatIdent(), err
	}
	defer func() { _ = scene.Delete(tmp) }()

	if err := scene.SetWorldMatrix(tmp, scene.WorldMatrix(source)); err != nil {
		return mgl64.QuatIdent(), err
	}
	if err := scene.SetScale(tmp, r3.Vec{X: 1, Y: 1, Z: 1}); err != nil {
		return mgl64.QuatIdent(), err
	}
	if err := scene.MakeIdentity(tmp); err != nil {
		return mgl64.QuatIdent(), err
	}
	mirrored := tmp + "Mirror"
	if err := scene.MirrorJoint(tmp, mirrored); err != nil {
		return mgl64.QuatIdent(), err
	}
	defer func() { _ = scene.Delete(mirrored) }()
	return scene.WorldRotation(mirrored), nil
}
