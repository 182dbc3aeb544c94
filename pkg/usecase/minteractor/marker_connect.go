// 指示: miu200521358
package minteractor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// SetParentMarker はシステムのルートマーカー群を別システムのマーカーへ接続する。
// parentName が空なら接続を解除する。検証に失敗した場合は警告を記録して false を返す。
// シーン操作の途中で失敗した場合は、それまでの変更を取り消してエラーを返す。
func SetParentMarker(rc *RigContext, sys *model.MarkerSystem, parentName string, mode model.ConnectMode) (bool, error) {
	logger := rc.Logger.With(logging.MarkerSystem(sys.Name), logging.Mode(mode))

	var parentSys *model.MarkerSystem
	var parent *model.Marker
	if parentName != "" {
		ps, pm, ok := rc.FindMarker(parentName)
		if !ok {
			rc.warn(model.MarkerWarningNotMarker, "マーカーではないため親に設定できません: %s -> %s", sys.Name, parentName)
			return false, nil
		}
		if ps.Name == sys.Name {
			rc.warn(model.MarkerWarningSameSystem, "同じシステムのマーカーは親に設定できません: %s -> %s", sys.Name, parentName)
			return false, nil
		}
		if mode != model.CONNECT_MODE_NONE && !ps.IsLeaf(pm) {
			rc.warn(model.MarkerWarningNonLeafMode, "末端でない親マーカーには %s 接続できないため none で接続します: %s", mode, parentName)
			mode = model.CONNECT_MODE_NONE
		}
		if mode == model.CONNECT_MODE_AIM && !pm.Rotation.IsParentOrFree() {
			rc.warn(model.MarkerWarningAimModeRotation, "親マーカーの回転種別 %s では aim 接続できないため none で接続します: %s", pm.Rotation, parentName)
			mode = model.CONNECT_MODE_NONE
		}
		parentSys, parent = ps, pm
	}

	if sys.ParentMarker.Name == parentName && (parentName == "" || ConnectMode(rc, sys) == mode) {
		return true, nil
	}

	log := newCompensationLog(rc.Scene)
	if err := applyParentMarker(rc, log, sys, parentSys, parent, mode); err != nil {
		rollbackErr := log.rollback()
		logger.With(logging.Err(err)).Error("親マーカー接続を取り消しました")
		return false, errors.Join(fmt.Errorf("親マーカーの接続に失敗しました: %s -> %s: %w", sys.Name, parentName, err), rollbackErr)
	}
	if parent != nil {
		logger.Info("親マーカー接続: %s", parent.Name)
	} else {
		logger.Info("親マーカー接続解除")
	}
	return true, nil
}

// applyParentMarker は旧接続を外して新しい親へ接続する。変更は log に記録する。
func applyParentMarker(rc *RigContext, log *compensationLog, sys *model.MarkerSystem, parentSys *model.MarkerSystem, parent *model.Marker, mode model.ConnectMode) error {
	if err := log.keepSystem(sys); err != nil {
		return err
	}
	oldSys, oldParent := ParentMarkerOf(rc, sys)
	if err := log.keepSystem(oldSys); err != nil {
		return err
	}
	if err := log.keepSystem(parentSys); err != nil {
		return err
	}

	if !sys.ParentMarker.IsZero() {
		if err := disconnectSystem(rc, log, sys, oldSys, oldParent); err != nil {
			return err
		}
	}
	if parent == nil {
		for _, key := range []string{tagParentMarker, tagParentSystem} {
			if err := log.deleteTag(sys.Root, key); err != nil {
				return err
			}
		}
		if err := log.setTag(sys.Root, tagConnectMode, model.CONNECT_MODE_NONE.String()); err != nil {
			return err
		}
		sys.ParentMarker = model.MarkerRef{}
		sys.ConnectMode = model.CONNECT_MODE_NONE
		return nil
	}

	roots := sys.RootMarkers()
	for i, root := range roots {
		if err := log.setTag(root.Name, tagParentMarker, parent.Name); err != nil {
			return err
		}
		if root.HasHierCtrl() && parent.HasHierCtrl() {
			if err := log.setParent(root.HierCtrl, parent.HierCtrl); err != nil {
				return err
			}
		}
		root.ExternalParent = model.MarkerRef{System: parentSys.Name, Name: parent.Name}
		if i == 0 {
			if err := connectParentBehavior(rc, log, root, parent, mode); err != nil {
				return err
			}
		}
	}

	if err := log.setTag(sys.Root, tagParentMarker, parent.Name); err != nil {
		return err
	}
	if err := log.setTag(sys.Root, tagParentSystem, parentSys.Name); err != nil {
		return err
	}
	if err := log.setTag(sys.Root, tagConnectMode, mode.String()); err != nil {
		return err
	}
	sys.ParentMarker = model.MarkerRef{System: parentSys.Name, Name: parent.Name}
	sys.ConnectMode = mode
	return nil
}

// connectParentBehavior は接続モードに応じて親マーカーを子マーカーへ追従させる。
func connectParentBehavior(rc *RigContext, log *compensationLog, child *model.Marker, parent *model.Marker, mode model.ConnectMode) error {
	switch mode {
	case model.CONNECT_MODE_FOLLOW:
		if err := removeParentConstraints(rc, log, parent.Name, nil, moutput.CONSTRAINT_POINT); err != nil {
			return err
		}
		if _, err := log.addConstraint(moutput.ConstraintSpec{
			Type:    moutput.CONSTRAINT_POINT,
			Drivers: []string{child.Name},
			Driven:  parent.Name,
		}); err != nil {
			return err
		}
		if parent.Rotation.IsParentOrFree() {
			if err := removeParentConstraints(rc, log, parent.Name, nil, moutput.CONSTRAINT_ORIENT, moutput.CONSTRAINT_AIM); err != nil {
				return err
			}
			if _, err := log.addConstraint(moutput.ConstraintSpec{
				Type:    moutput.CONSTRAINT_ORIENT,
				Drivers: []string{child.Name},
				Driven:  parent.Name,
			}); err != nil {
				return err
			}
		}
		if err := log.setAttr(moutput.Plug(parent.Name, moutput.ATTR_LOD_VISIBILITY), 0); err != nil {
			return err
		}
		parent.Hidden = true
	case model.CONNECT_MODE_AIM:
		if err := removeParentConstraints(rc, log, parent.Name, nil, moutput.CONSTRAINT_ORIENT, moutput.CONSTRAINT_AIM); err != nil {
			return err
		}
		if _, err := log.addConstraint(moutput.ConstraintSpec{
			Type:          moutput.CONSTRAINT_AIM,
			Drivers:       []string{child.Name},
			Driven:        parent.Name,
			AimVector:     r3.Vec{X: 1},
			UpVector:      r3.Vec{Z: 1},
			WorldUpType:   moutput.WORLD_UP_OBJECT_ROTATION,
			WorldUpObject: child.Name,
			WorldUpVector: r3.Vec{Z: 1},
		}); err != nil {
			return err
		}
	}
	return nil
}

// disconnectSystem はルートマーカー群の親接続を外し、旧親マーカーを元の回転方針へ戻す。
func disconnectSystem(rc *RigContext, log *compensationLog, sys *model.MarkerSystem, oldSys *model.MarkerSystem, oldParent *model.Marker) error {
	hierGroup := naming.Derive(sys.Root, naming.EXT_HIER_GROUP)
	drivers := make([]string, 0)
	for _, root := range sys.RootMarkers() {
		if root.ExternalParent.IsZero() {
			continue
		}
		if err := log.deleteTag(root.Name, tagParentMarker); err != nil {
			return err
		}
		if root.HasHierCtrl() && rc.Scene.Exists(hierGroup) {
			if err := log.setParent(root.HierCtrl, hierGroup); err != nil {
				return err
			}
		}
		root.ExternalParent = model.MarkerRef{}
		drivers = append(drivers, root.Name)
	}

	parentName := sys.ParentMarker.Name
	if !rc.Scene.Exists(parentName) {
		return nil
	}
	removedRotation := false
	removedPoint := false
	for _, info := range rc.Scene.Constraints(parentName) {
		if !slices.ContainsFunc(info.Drivers, func(d string) bool { return slices.Contains(drivers, d) }) {
			continue
		}
		switch info.Type {
		case moutput.CONSTRAINT_POINT:
			removedPoint = true
		case moutput.CONSTRAINT_ORIENT, moutput.CONSTRAINT_AIM:
			removedRotation = true
		default:
			continue
		}
		if err := log.removeConstraint(info); err != nil {
			return err
		}
	}

	if oldParent == nil {
		return nil
	}
	if removedRotation && oldParent.Rotation.Kind == model.ROTATION_PARENT {
		if grand := oldSys.ParentOf(oldParent); grand != nil {
			if _, err := log.addConstraint(moutput.ConstraintSpec{
				Type:    moutput.CONSTRAINT_ORIENT,
				Drivers: []string{grand.Name},
				Driven:  oldParent.Name,
			}); err != nil {
				return err
			}
		}
	}
	if removedPoint {
		if err := log.setAttr(moutput.Plug(oldParent.Name, moutput.ATTR_LOD_VISIBILITY), 1); err != nil {
			return err
		}
		oldParent.Hidden = false
	}
	return nil
}

// removeParentConstraints は親マーカーの指定種別の拘束を削除する。
// drivers を指定した場合はそのドライバを持つ拘束だけを対象にする。
func removeParentConstraints(rc *RigContext, log *compensationLog, parent string, drivers []string, types ...moutput.ConstraintType) error {
	for _, info := range rc.Scene.Constraints(parent) {
		if !slices.Contains(types, info.Type) {
			continue
		}
		if drivers != nil && !slices.ContainsFunc(info.Drivers, func(d string) bool { return slices.Contains(drivers, d) }) {
			continue
		}
		if err := log.removeConstraint(info); err != nil {
			return err
		}
	}
	return nil
}

// ConnectMode は親マーカーに残る拘束から現在の接続モードを判定する。
func ConnectMode(rc *RigContext, sys *model.MarkerSystem) model.ConnectMode {
	if !sys.IsConnected() || !rc.Scene.Exists(sys.ParentMarker.Name) {
		return model.CONNECT_MODE_NONE
	}
	for _, info := range rc.Scene.Constraints(sys.ParentMarker.Name) {
		owned := slices.ContainsFunc(info.Drivers, func(d string) bool {
			_, ok := sys.MarkerByName(d)
			return ok
		})
		if !owned {
			continue
		}
		switch info.Type {
		case moutput.CONSTRAINT_POINT:
			return model.CONNECT_MODE_FOLLOW
		case moutput.CONSTRAINT_AIM:
			return model.CONNECT_MODE_AIM
		}
	}
	return model.CONNECT_MODE_NONE
}

// ParentMarkerOf は接続先の親システムと親マーカーを返す。未接続や未登録なら nil。
func ParentMarkerOf(rc *RigContext, sys *model.MarkerSystem) (*model.MarkerSystem, *model.Marker) {
	if !sys.IsConnected() {
		return nil, nil
	}
	parentSys, parent, ok := rc.FindMarker(sys.ParentMarker.Name)
	if !ok {
		return nil, nil
	}
	return parentSys, parent
}

// ParentMarkerSystem は接続先の親システムを返す。
func ParentMarkerSystem(rc *RigContext, sys *model.MarkerSystem) (*model.MarkerSystem, bool) {
	parentSys, _ := ParentMarkerOf(rc, sys)
	return parentSys, parentSys != nil
}
