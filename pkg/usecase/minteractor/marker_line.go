// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// createLineConstraint はマーカーを始点/終点を結ぶ直線上の CNS ノードへ移す。
// ウェイトは射影点から各端点までの距離で決まる。
func createLineConstraint(rc *RigContext, sys *model.MarkerSystem, marker *model.Marker, startMarker *model.Marker, endMarker *model.Marker) (string, error) {
	scene := rc.Scene
	wStart, wEnd := mmath.LineWeights(
		scene.WorldPosition(marker.Name),
		scene.WorldPosition(startMarker.Name),
		scene.WorldPosition(endMarker.Name),
	)

	cns := naming.Derive(marker.Name, naming.EXT_LINE_CNS)
	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, cns, sys.Group); err != nil {
		return "", err
	}
	if err := scene.SetWorldMatrix(cns, scene.WorldMatrix(marker.Name)); err != nil {
		return "", err
	}
	constraint, err := scene.AddConstraint(moutput.ConstraintSpec{
		Type:    moutput.CONSTRAINT_POINT,
		Drivers: []string{startMarker.Name, endMarker.Name},
		Driven:  cns,
	})
	if err != nil {
		return "", err
	}
	aliases := scene.WeightAliases(constraint)
	if err := scene.SetAttr(moutput.Plug(constraint, aliases[0]), wStart); err != nil {
		return "", err
	}
	if err := scene.SetAttr(moutput.Plug(constraint, aliases[1]), wEnd); err != nil {
		return "", err
	}

	if err := deleteHierCtrl(rc, marker); err != nil {
		return "", err
	}
	if err := scene.SetParent(marker.Name, cns); err != nil {
		return "", err
	}
	if err := scene.SetLocalPosition(marker.Name, r3.Vec{}); err != nil {
		return "", err
	}
	marker.LineLocked = true
	if err := scene.SetTag(marker.Name, tagPositionLock, positionLockLine); err != nil {
		return "", err
	}
	return cns, nil
}

// createMarkerLineSDK は aim 軸以外の移動を0へ制限するドリブンキーを生成する。
func createMarkerLineSDK(rc *RigContext, sys *model.MarkerSystem, marker *model.Marker) error {
	aimChoice, err := ensureAxisChoice(rc, sys, naming.EXT_AIM_AXIS, attrAimAxisSelector)
	if err != nil {
		return err
	}
	return createLimitSDK(rc, marker, moutput.Plug(aimChoice, moutput.ATTR_OUTPUT), func(axis int, key int) bool {
		return axis != key
	})
}
