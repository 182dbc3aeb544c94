// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// 移動制限の属性名。
const (
	attrMinTransLimit       = "minTransLimit"
	attrMaxTransLimit       = "maxTransLimit"
	attrMinTransLimitEnable = "minTransLimitEnable"
	attrMaxTransLimitEnable = "maxTransLimitEnable"
)

// axisLetterInputs は符号付き軸の列挙値を軸文字インデックス (X=0, Y=1, Z=2) へ変換する表。
var axisLetterInputs = map[int]float64{0: 0, 1: 0, 2: 1, 3: 1, 4: 2, 5: 2}

// markerPlane は平面ロックのアップコントロールと回転ノードを表す。
type markerPlane struct {
	start   int
	end     int
	upCtrl  string
	revolve string
}

// createMarkerPlane は始点/終点マーカーと中間マーカーの中心から平面を構築する。
func createMarkerPlane(rc *RigContext, sys *model.MarkerSystem, chain *model.MarkerChain, markers []*model.Marker, start int, end int) (*markerPlane, error) {
	scene := rc.Scene
	startMarker := markers[start]
	endMarker := markers[end]

	inner := make([]r3.Vec, 0, end-start-1)
	for _, marker := range markers[start+1 : end] {
		inner = append(inner, scene.WorldPosition(marker.Name))
	}
	position := mmath.PlaneUpCtrlPosition(
		scene.WorldPosition(startMarker.Name),
		scene.WorldPosition(endMarker.Name),
		mmath.Centroid(inner),
	)

	upCtrl := upCtrlName(rc, startMarker)
	placement := naming.Derive(upCtrl, naming.EXT_PLACEMENT)
	if err := createPlacedCtrl(rc, startMarker, upCtrl, placement); err != nil {
		return nil, err
	}
	if err := scene.SetWorldPosition(upCtrl, position); err != nil {
		return nil, err
	}

	revolve := naming.Derive(startMarker.Name, naming.EXT_REVOLVE)
	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, revolve, sys.Group); err != nil {
		return nil, err
	}
	if _, err := scene.AddConstraint(moutput.ConstraintSpec{
		Type:    moutput.CONSTRAINT_POINT,
		Drivers: []string{startMarker.Name, endMarker.Name},
		Driven:  revolve,
	}); err != nil {
		return nil, err
	}
	up := aimUp{kind: moutput.WORLD_UP_OBJECT, object: upCtrl}
	if _, err := markerAimConstrain(rc, sys, chain, endMarker.Name, revolve, up); err != nil {
		return nil, err
	}
	rc.Logger.Debug("平面ロック生成: %s (%d-%d)", revolve, start, end)
	return &markerPlane{start: start, end: end, upCtrl: upCtrl, revolve: revolve}, nil
}

// axisNetworkName はシステムルートから軸変換ノード名を返す。
func axisNetworkName(sys *model.MarkerSystem, ext string) string {
	return naming.Derive(sys.Root, ext)
}

// ensureAxisChoice はルートの軸属性を軸文字インデックスへ変換する選択ノードを返す。
func ensureAxisChoice(rc *RigContext, sys *model.MarkerSystem, ext string, selectorAttr string) (string, error) {
	name := axisNetworkName(sys, ext)
	if rc.Scene.Exists(name) {
		return name, nil
	}
	if err := rc.Scene.CreateChoice(name, sys.Root, moutput.Plug(sys.Root, selectorAttr), axisLetterInputs); err != nil {
		return "", fmt.Errorf("軸選択ノードの生成に失敗しました: %s: %w", name, err)
	}
	return name, nil
}

// ensureThirdAxisNetwork は aim/up 以外の軸文字インデックスを出力するネットワークを返す。
func ensureThirdAxisNetwork(rc *RigContext, sys *model.MarkerSystem) (string, error) {
	thirdAxis := axisNetworkName(sys, naming.EXT_THIRD_AXIS)
	if rc.Scene.Exists(thirdAxis) {
		return thirdAxis, nil
	}
	aimChoice, err := ensureAxisChoice(rc, sys, naming.EXT_AIM_AXIS, attrAimAxisSelector)
	if err != nil {
		return "", err
	}
	upChoice, err := ensureAxisChoice(rc, sys, naming.EXT_UP_AXIS, attrUpAxisSelector)
	if err != nil {
		return "", err
	}

	sum := axisNetworkName(sys, naming.EXT_THIRD_SUM)
	if !rc.Scene.Exists(sum) {
		inputs := map[string]string{
			"aim": moutput.Plug(aimChoice, moutput.ATTR_OUTPUT),
			"up":  moutput.Plug(upChoice, moutput.ATTR_OUTPUT),
		}
		if err := rc.Scene.CreateExpression(sum, sys.Root, "aim + up + aim * up", inputs); err != nil {
			return "", err
		}
	}

	table := map[int]float64{}
	for key, index := range mmath.ThirdAxisTable() {
		table[key] = float64(index)
	}
	if err := rc.Scene.CreateChoice(thirdAxis, sys.Root, moutput.Plug(sum, moutput.ATTR_OUTPUT), table); err != nil {
		return "", err
	}
	return thirdAxis, nil
}

// createMarkerPlaneSDK はマーカーの第三軸方向の移動を0へ制限するドリブンキーを生成する。
func createMarkerPlaneSDK(rc *RigContext, sys *model.MarkerSystem, marker *model.Marker) error {
	thirdAxis, err := ensureThirdAxisNetwork(rc, sys)
	if err != nil {
		return err
	}
	return createLimitSDK(rc, marker, moutput.Plug(thirdAxis, moutput.ATTR_OUTPUT), func(axis int, key int) bool {
		return axis == key
	})
}

// createLimitSDK は移動制限値を0にし、有効フラグを driver の軸文字インデックスで切り替える。
func createLimitSDK(rc *RigContext, marker *model.Marker, driver string, enabled func(axis int, key int) bool) error {
	for _, attr := range []string{attrMinTransLimit, attrMaxTransLimit} {
		for _, component := range vectorComponents {
			if err := rc.Scene.SetAttr(moutput.Plug(marker.Name, attr+component), 0); err != nil {
				return err
			}
		}
	}
	for _, attr := range []string{attrMinTransLimitEnable, attrMaxTransLimitEnable} {
		for axis, component := range vectorComponents {
			keys := make([]moutput.DrivenKey, 0, len(vectorComponents))
			for key := range vectorComponents {
				value := 0.0
				if enabled(axis, key) {
					value = 1
				}
				keys = append(keys, moutput.DrivenKey{Driver: float64(key), Value: value})
			}
			if err := rc.Scene.AddDrivenKey(driver, moutput.Plug(marker.Name, attr+component), keys); err != nil {
				return err
			}
		}
	}
	return nil
}
