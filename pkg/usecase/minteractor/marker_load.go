// 指示: miu200521358
package minteractor

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// loadedMarker はタグから読み出したマーカーと並び順を表す。
type loadedMarker struct {
	chainID  int
	markerID int
	marker   *model.Marker
}

// LoadMarkerSystem はシーンタグからマーカーシステムを復元して登録する。
func LoadMarkerSystem(rc *RigContext, root string) (*model.MarkerSystem, error) {
	scene := rc.Scene
	if !scene.Exists(root) {
		return nil, merrors.NewNotFoundError("マーカーシステム", root)
	}
	if flag, ok := scene.Tag(root, tagMarkerRoot); !ok || flag != "1" {
		return nil, fmt.Errorf("マーカーシステムのルートではありません: %s", root)
	}

	part, _ := scene.Tag(root, tagPart)
	side, _ := scene.Tag(root, tagSide)
	sys, err := model.NewMarkerSystem(part, side)
	if err != nil {
		return nil, fmt.Errorf("マーカーシステム名が不正です: %s: %w", root, err)
	}
	if sys.Root != root {
		return nil, fmt.Errorf("マーカーシステム名がタグと一致しません: %s != %s", root, sys.Root)
	}

	chainCount, err := intTag(scene, root, tagChainCount)
	if err != nil {
		return nil, err
	}
	for chainID := 0; chainID < chainCount; chainID++ {
		chain, err := loadChain(scene, root, chainID)
		if err != nil {
			return nil, err
		}
		sys.AddChain(chain)
	}

	loaded, err := loadMarkers(scene, root)
	if err != nil {
		return nil, err
	}
	for _, item := range loaded {
		if item.chainID < 0 || item.chainID >= len(sys.Chains) {
			return nil, fmt.Errorf("マーカーのチェーンIDが範囲外です: %s chain=%d", item.marker.Name, item.chainID)
		}
		if _, err := sys.AddMarker(item.chainID, item.marker); err != nil {
			return nil, err
		}
	}
	resolveLoadedParents(scene, sys)

	if parentName, ok := scene.Tag(root, tagParentMarker); ok && parentName != "" {
		parentSystem, _ := scene.Tag(root, tagParentSystem)
		sys.ParentMarker = model.MarkerRef{System: parentSystem, Name: parentName}
	}
	if mode, ok := scene.Tag(root, tagConnectMode); ok {
		if sys.ConnectMode, err = model.ParseConnectMode(mode); err != nil {
			return nil, err
		}
	}
	aimPlug := moutput.Plug(root, attrAimAxisSelector)
	upPlug := moutput.Plug(root, attrUpAxisSelector)
	if scene.HasAttr(aimPlug) && scene.HasAttr(upPlug) {
		sys.AimAxis = mmath.Axis(int(scene.Attr(aimPlug)))
		sys.UpAxis = mmath.Axis(int(scene.Attr(upPlug)))
		sys.HasAxisSelectors = true
	} else if len(sys.Chains) > 0 {
		sys.AimAxis = sys.Chains[0].AimAxis
		sys.UpAxis = sys.Chains[0].UpAxis
	}

	rc.register(sys)
	rc.Logger.With(logging.MarkerSystem(sys.Name), logging.Count(sys.Len())).Info("マーカーシステム読込")
	return sys, nil
}

// LoadMarkerSystems はグローバルルート直下の全マーカーシステムを復元する。
func LoadMarkerSystems(rc *RigContext) ([]*model.MarkerSystem, error) {
	if !rc.Scene.Exists(naming.GlobalMarkerRoot) {
		return []*model.MarkerSystem{}, nil
	}
	systems := make([]*model.MarkerSystem, 0)
	for _, child := range rc.Scene.Children(naming.GlobalMarkerRoot) {
		if flag, ok := rc.Scene.Tag(child, tagMarkerRoot); !ok || flag != "1" {
			continue
		}
		if sys, ok := rc.System(child); ok {
			systems = append(systems, sys)
			continue
		}
		sys, err := LoadMarkerSystem(rc, child)
		if err != nil {
			return nil, err
		}
		systems = append(systems, sys)
	}
	return systems, nil
}

// DeleteMarkerSystem は接続を解除してからシステムのノード群を削除する。
// 子システムの接続も先に解除し、親マーカーの回転と表示を戻す。
func DeleteMarkerSystem(rc *RigContext, sys *model.MarkerSystem) error {
	for _, child := range rc.ChildSystems(sys) {
		if _, err := SetParentMarker(rc, child, "", model.CONNECT_MODE_NONE); err != nil {
			return err
		}
	}
	if sys.IsConnected() {
		if _, err := SetParentMarker(rc, sys, "", model.CONNECT_MODE_NONE); err != nil {
			return err
		}
	}
	if rc.Scene.Exists(sys.Root) {
		if err := rc.Scene.Delete(sys.Root); err != nil {
			return fmt.Errorf("マーカーシステムの削除に失敗しました: %s: %w", sys.Name, err)
		}
	}
	rc.unregister(sys.Name)
	rc.Logger.With(logging.MarkerSystem(sys.Name)).Info("マーカーシステム削除")
	return nil
}

// loadChain はルートタグからチェーン1本の構成を復元する。
func loadChain(scene moutput.IScene, root string, chainID int) (*model.MarkerChain, error) {
	aimName, _ := scene.Tag(root, chainTag(chainID, tagChainAimAxis))
	upName, _ := scene.Tag(root, chainTag(chainID, tagChainUpAxis))
	aim, err := mmath.ParseAxis(aimName)
	if err != nil {
		return nil, fmt.Errorf("チェーン%dの aim 軸が不正です: %w", chainID, err)
	}
	up, err := mmath.ParseAxis(upName)
	if err != nil {
		return nil, fmt.Errorf("チェーン%dの up 軸が不正です: %w", chainID, err)
	}
	chain := model.NewMarkerChain(chainID, aim, up)
	if parent, ok := scene.Tag(root, chainTag(chainID, tagChainParent)); ok {
		chain.Parent = parent
	}
	if value, ok := scene.Tag(root, chainTag(chainID, tagChainLineIDs)); ok {
		r, err := parseRange(value)
		if err != nil {
			return nil, err
		}
		chain.LineIDs = &r
	}
	if value, ok := scene.Tag(root, chainTag(chainID, tagChainPlaneIDs)); ok {
		if chain.PlaneIDs, err = parseRange(value); err != nil {
			return nil, err
		}
	}
	if value, ok := scene.Tag(root, chainTag(chainID, tagChainUpCtrlPos)); ok {
		v, err := model.ParseVector(value)
		if err != nil {
			return nil, err
		}
		chain.UpCtrlPosition = &v
	}
	return chain, nil
}

// loadMarkers はシステムに属するマーカーをタグから集め、チェーン順に並べる。
func loadMarkers(scene moutput.IScene, root string) ([]loadedMarker, error) {
	loaded := make([]loadedMarker, 0)
	for _, name := range scene.Nodes() {
		owner, ok := scene.Tag(name, tagMarkerSystem)
		if !ok || owner != root {
			continue
		}
		chainID, err := intTag(scene, name, tagChainID)
		if err != nil {
			return nil, err
		}
		markerID, err := intTag(scene, name, tagMarkerID)
		if err != nil {
			return nil, err
		}
		marker, err := loadMarker(scene, name)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, loadedMarker{chainID: chainID, markerID: markerID, marker: marker})
	}
	slices.SortFunc(loaded, func(a, b loadedMarker) int {
		if a.chainID != b.chainID {
			return a.chainID - b.chainID
		}
		return a.markerID - b.markerID
	})
	return loaded, nil
}

// loadMarker はマーカー1点の方針と補助ノードをタグから復元する。
func loadMarker(scene moutput.IScene, name string) (*model.Marker, error) {
	marker := model.NewMarker(name, scene.WorldPosition(name))
	var err error
	rotation, _ := scene.Tag(name, tagRotationType)
	if marker.Rotation, err = model.ParseRotationToken(rotation); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	up, _ := scene.Tag(name, tagUpType)
	if marker.Up, err = model.ParseUpToken(up); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if hierCtrl, ok := scene.Tag(name, tagHierCtrl); ok && scene.Exists(hierCtrl) {
		marker.HierCtrl = hierCtrl
	}
	if upCtrl, ok := scene.Tag(name, tagUpCtrl); ok && scene.Exists(upCtrl) {
		marker.UpCtrl = upCtrl
	}
	if offset := naming.Derive(name, naming.EXT_MARKER_OFFSET); scene.Exists(offset) {
		marker.Offset = offset
	}
	if target := naming.Derive(name, naming.EXT_TARGET); scene.Exists(target) {
		marker.Target = target
	}
	switch lock, _ := scene.Tag(name, tagPositionLock); lock {
	case positionLockLine:
		marker.LineLocked = true
	case positionLockPlane:
		marker.PlaneLocked = true
	}
	visibility := moutput.Plug(name, moutput.ATTR_LOD_VISIBILITY)
	marker.Hidden = scene.HasAttr(visibility) && scene.Attr(visibility) < 0.5
	return marker, nil
}

// resolveLoadedParents は parent_marker タグからシステム内/システム外の親を復元する。
func resolveLoadedParents(scene moutput.IScene, sys *model.MarkerSystem) {
	for _, marker := range sys.Markers {
		if marker.Index > 0 {
			chain := sys.Chains[marker.ChainID]
			marker.ParentIndex = chain.MarkerIndexes[marker.Index-1]
			continue
		}
		parentName, ok := scene.Tag(marker.Name, tagParentMarker)
		if !ok || parentName == "" {
			continue
		}
		if parent, ok := sys.MarkerByName(parentName); ok {
			marker.ParentIndex = parent.ArenaIndex
			continue
		}
		owner, _ := scene.Tag(parentName, tagMarkerSystem)
		marker.ExternalParent = model.MarkerRef{System: owner, Name: parentName}
	}
}

// intTag は整数タグを読み出す。
func intTag(scene moutput.IScene, node string, key string) (int, error) {
	value, ok := scene.Tag(node, key)
	if !ok {
		return 0, merrors.NewNotFoundError("タグ", node+"."+key)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("整数タグが不正です: %s.%s=%q: %w", node, key, value, err)
	}
	return n, nil
}
