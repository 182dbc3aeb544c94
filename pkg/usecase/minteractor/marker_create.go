// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strconv"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// CreateRequest はマーカーシステム生成の入力を表す。
type CreateRequest struct {
	Part   string
	Side   string
	Chains []model.ChainData
	// Force は既存の同名システムを削除してから生成する。
	Force bool
}

// NewCreateRequest はマーカーデータからシステム生成入力を組み立てる。
func NewCreateRequest(data model.SystemData, force bool) CreateRequest {
	return CreateRequest{Part: data.Part, Side: data.Side, Chains: data.Chains, Force: force}
}

// CreateMarkerSystem はチェーンデータからマーカーシステムを生成し、拘束ネットワークを構築する。
// チェーンデータの不備はシーンへ触れる前に ConfigError で返す。
func CreateMarkerSystem(rc *RigContext, req CreateRequest) (*model.MarkerSystem, error) {
	sys, err := buildSystemModel(rc, req)
	if err != nil {
		return nil, err
	}
	logger := rc.Logger.With(logging.MarkerSystem(sys.Name))
	logger.Info("マーカーシステム生成開始: chains=%d markers=%d", len(sys.Chains), sys.Len())

	if rc.Scene.Exists(sys.Root) {
		if !req.Force {
			return nil, merrors.NewNameConflictError("マーカーシステム", sys.Root)
		}
		if existing, ok := rc.System(sys.Root); ok {
			if err := DeleteMarkerSystem(rc, existing); err != nil {
				return nil, err
			}
		} else if err := rc.Scene.Delete(sys.Root); err != nil {
			return nil, err
		}
	}
	for _, marker := range sys.Markers {
		if rc.Scene.Exists(marker.Name) {
			return nil, merrors.NewNameConflictError("マーカー", marker.Name)
		}
	}

	if err := buildSystemScene(rc, sys); err != nil {
		if rc.Scene.Exists(sys.Root) {
			_ = rc.Scene.Delete(sys.Root)
		}
		return nil, fmt.Errorf("マーカーシステムの構築に失敗しました: %s: %w", sys.Name, err)
	}
	rc.register(sys)
	logger.Info("マーカーシステム生成完了")
	return sys, nil
}

// normalizeMarkerName はマーカーデータの名前を MARKER 拡張子の名前へ揃える。
// 命名規約に沿わない名前は part/side を補った説明トークンとして扱う。
func normalizeMarkerName(part string, side string, name string) (string, error) {
	if parsed, err := naming.Parse(name); err == nil && parsed.Ext == naming.EXT_MARKER {
		return parsed.String(), nil
	}
	if parsed, err := naming.Parse(name + "_" + naming.EXT_MARKER); err == nil && parsed.Side != "" {
		return parsed.String(), nil
	}
	n, err := naming.New(part, name, -1, side, naming.EXT_MARKER)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// buildSystemModel はチェーンデータを検証してシステムモデルを組み立てる。
func buildSystemModel(rc *RigContext, req CreateRequest) (*model.MarkerSystem, error) {
	sys, err := model.NewMarkerSystem(req.Part, req.Side)
	if err != nil {
		return nil, merrors.NewConfigError(-1, "", "システム名が不正です: %v", err)
	}
	if len(req.Chains) == 0 {
		return nil, merrors.NewConfigError(-1, "", "チェーンがありません: %s", sys.Name)
	}

	seen := map[string]bool{}
	for chainID, data := range req.Chains {
		chain, err := buildChainModel(rc, chainID, data)
		if err != nil {
			return nil, err
		}
		if len(data.Markers) == 0 {
			return nil, merrors.NewConfigError(chainID, "", "マーカーがありません")
		}

		chainParent := -1
		if data.Parent != "" {
			parentName, err := normalizeMarkerName(sys.Part, sys.Side, data.Parent)
			if err != nil {
				return nil, merrors.NewConfigError(chainID, data.Parent, "親マーカー名が不正です: %v", err)
			}
			parent, ok := sys.MarkerByName(parentName)
			if !ok {
				return nil, merrors.NewConfigError(chainID, parentName, "親マーカーが先行チェーンにありません")
			}
			chain.Parent = parentName
			chainParent = parent.ArenaIndex
		}
		sys.AddChain(chain)

		for markerID, markerData := range data.Markers {
			marker, err := buildMarkerModel(sys, chainID, markerData)
			if err != nil {
				return nil, err
			}
			if seen[marker.Name] {
				return nil, merrors.NewConfigError(chainID, marker.Name, "マーカー名が重複しています")
			}
			seen[marker.Name] = true

			if markerID > 0 {
				marker.ParentIndex = sys.Markers[chain.MarkerIndexes[markerID-1]].ArenaIndex
			} else {
				marker.ParentIndex = chainParent
			}
			if _, err := sys.AddMarker(chainID, marker); err != nil {
				return nil, err
			}
		}
		if err := validateChainModel(rc, sys, chain); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

// buildChainModel はチェーンの軸と範囲を解析する。
func buildChainModel(rc *RigContext, chainID int, data model.ChainData) (*model.MarkerChain, error) {
	aim := rc.Settings.DefaultAimAxis
	up := rc.Settings.DefaultUpAxis
	var err error
	if data.AimAxis != "" {
		if aim, err = mmath.ParseAxis(data.AimAxis); err != nil {
			return nil, merrors.NewConfigError(chainID, "", "aim 軸が不正です: %v", err)
		}
	}
	if data.UpAxis != "" {
		if up, err = mmath.ParseAxis(data.UpAxis); err != nil {
			return nil, merrors.NewConfigError(chainID, "", "up 軸が不正です: %v", err)
		}
	}
	if aim.Letter() == up.Letter() {
		return nil, merrors.NewConfigError(chainID, "", "aim 軸と up 軸が同じ軸です: %s, %s", aim, up)
	}

	chain := model.NewMarkerChain(chainID, aim, up)
	if chain.UpCtrlPosition, err = data.UpCtrlVec(); err != nil {
		return nil, merrors.NewConfigError(chainID, "", "up_ctrl_position が不正です: %v", err)
	}
	if chain.LineIDs, err = data.LineRange(); err != nil {
		return nil, merrors.NewConfigError(chainID, "", "%v", err)
	}
	if chain.PlaneIDs, err = data.PlaneRange(); err != nil {
		return nil, merrors.NewConfigError(chainID, "", "%v", err)
	}
	return chain, nil
}

// buildMarkerModel はマーカー1点の名前/位置/方針を解析する。
func buildMarkerModel(sys *model.MarkerSystem, chainID int, data model.MarkerData) (*model.Marker, error) {
	if data.Name == "" {
		return nil, merrors.NewConfigError(chainID, "", "マーカー名が空です")
	}
	name, err := normalizeMarkerName(sys.Part, sys.Side, data.Name)
	if err != nil {
		return nil, merrors.NewConfigError(chainID, data.Name, "マーカー名が不正です: %v", err)
	}
	position, err := data.PositionVec()
	if err != nil {
		return nil, merrors.NewConfigError(chainID, name, "位置が不正です: %v", err)
	}
	marker := model.NewMarker(name, position)
	if marker.Rotation, err = model.ParseRotationValue(data.Rotation); err != nil {
		return nil, merrors.NewConfigError(chainID, name, "%v", err)
	}
	if marker.Up, err = model.ParseUpValue(data.UpType); err != nil {
		return nil, merrors.NewConfigError(chainID, name, "%v", err)
	}
	return marker, nil
}

// validateChainModel はチェーン全体で決まる方針の矛盾を検証する。
// 末尾マーカーの aim は親追従へ置き換える。
func validateChainModel(rc *RigContext, sys *model.MarkerSystem, chain *model.MarkerChain) error {
	markers := sys.ChainMarkers(chain.ID)
	count := len(markers)

	for i, marker := range markers {
		if marker.Rotation.Kind != model.ROTATION_AIM {
			continue
		}
		if count <= 1 {
			return merrors.NewConfigError(chain.ID, marker.Name, "チェーン内のマーカーが1つのためエイムできません")
		}
		if i == count-1 {
			marker.Rotation = model.ParentRotation()
		}
	}

	lineStart, lineEnd := -1, -1
	if chain.LineIDs != nil {
		start, end, err := chain.LineIDs.Resolve(count)
		if err != nil {
			return merrors.NewConfigError(chain.ID, "", "line_ids が不正です: %v", err)
		}
		lineStart, lineEnd = start, end
	}
	planeStart, planeEnd := -1, -1
	for _, marker := range markers {
		if marker.Rotation.Kind == model.ROTATION_AIM && marker.Up.Kind == model.UP_PLANE {
			start, end, err := chain.PlaneIDs.Resolve(count)
			if err != nil {
				return merrors.NewConfigError(chain.ID, marker.Name, "plane_ids が不正です: %v", err)
			}
			planeStart, planeEnd = start, end
			break
		}
	}

	for i, marker := range markers {
		switch marker.Rotation.Kind {
		case model.ROTATION_PARENT:
			if !marker.HasParent() {
				return merrors.NewConfigError(chain.ID, marker.Name, "親マーカーがないため parent 回転にできません")
			}
		case model.ROTATION_NODE:
			if !rc.Scene.Exists(marker.Rotation.Node) {
				return merrors.NewConfigError(chain.ID, marker.Name, "回転の参照ノードがありません: %s", marker.Rotation.Node)
			}
		}
		lineLocked := lineStart >= 0 && model.Contains(lineStart, lineEnd, i)
		planeLocked := planeStart >= 0 && marker.Rotation.Kind == model.ROTATION_AIM &&
			marker.Up.Kind == model.UP_PLANE && model.Contains(planeStart, planeEnd, i)
		if lineLocked && planeLocked {
			return merrors.NewConfigError(chain.ID, marker.Name, "直線ロックと平面ロックは併用できません")
		}
	}
	return nil
}

// buildSystemScene はシステムのノード群と拘束ネットワークをシーンへ生成する。
func buildSystemScene(rc *RigContext, sys *model.MarkerSystem) error {
	global, err := rc.GlobalRoot()
	if err != nil {
		return err
	}
	if _, err := rc.Scene.CreateNode(moutput.NODE_KIND_TRANSFORM, sys.Root, global); err != nil {
		return err
	}
	if err := rc.Scene.LockChannels(sys.Root, "trsv", true); err != nil {
		return err
	}
	if err := writeSystemTags(rc, sys); err != nil {
		return err
	}
	markerGroup, err := rc.SubRoot(sys.Root, naming.EXT_MARKER_GROUP)
	if err != nil {
		return err
	}
	hierGroup, err := rc.SubRoot(sys.Root, naming.EXT_HIER_GROUP)
	if err != nil {
		return err
	}

	for _, marker := range sys.Markers {
		if err := createMarkerNodes(rc, sys, marker, markerGroup, hierGroup); err != nil {
			return err
		}
	}
	for _, marker := range sys.Markers {
		if parent := sys.ParentOf(marker); parent != nil {
			if err := connectParentMarker(rc, marker, parent.Name, parent.HierCtrl); err != nil {
				return err
			}
		}
	}
	for _, chain := range sys.Chains {
		if err := solveChain(rc, sys, chain); err != nil {
			return err
		}
	}
	for _, marker := range sys.Markers {
		if err := rc.Scene.SetTag(marker.Name, tagIsLeaf, boolTag(sys.IsLeaf(marker))); err != nil {
			return err
		}
	}
	return AlignHierCtrls(rc, sys)
}

// writeSystemTags はルートへシステムとチェーンの構成を書き込む。
func writeSystemTags(rc *RigContext, sys *model.MarkerSystem) error {
	tags := map[string]string{
		tagMarkerRoot:  "1",
		tagPart:        sys.Part,
		tagSide:        sys.Side,
		tagChainCount:  strconv.Itoa(len(sys.Chains)),
		tagConnectMode: sys.ConnectMode.String(),
	}
	for _, chain := range sys.Chains {
		tags[chainTag(chain.ID, tagChainAimAxis)] = chain.AimAxis.String()
		tags[chainTag(chain.ID, tagChainUpAxis)] = chain.UpAxis.String()
		if chain.Parent != "" {
			tags[chainTag(chain.ID, tagChainParent)] = chain.Parent
		}
		if chain.LineIDs != nil {
			tags[chainTag(chain.ID, tagChainLineIDs)] = formatRange(*chain.LineIDs)
		}
		tags[chainTag(chain.ID, tagChainPlaneIDs)] = formatRange(chain.PlaneIDs)
		if chain.UpCtrlPosition != nil {
			tags[chainTag(chain.ID, tagChainUpCtrlPos)] = model.FormatVector(*chain.UpCtrlPosition)
		}
	}
	for key, value := range tags {
		if err := rc.Scene.SetTag(sys.Root, key, value); err != nil {
			return err
		}
	}
	return nil
}

// createMarkerNodes はマーカー1点のオフセット/ジョイント/ターゲット/階層コントロールを生成する。
func createMarkerNodes(rc *RigContext, sys *model.MarkerSystem, marker *model.Marker, markerGroup string, hierGroup string) error {
	scene := rc.Scene
	offset := naming.Derive(marker.Name, naming.EXT_MARKER_OFFSET)
	target := naming.Derive(marker.Name, naming.EXT_TARGET)
	hierCtrl := naming.Derive(marker.Name, naming.EXT_MARKER_HIER_CTRL)

	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, offset, markerGroup); err != nil {
		return err
	}
	if err := scene.SetWorldPosition(offset, marker.Position); err != nil {
		return err
	}
	if _, err := scene.CreateNode(moutput.NODE_KIND_JOINT, marker.Name, offset); err != nil {
		return err
	}
	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, target, marker.Name); err != nil {
		return err
	}
	if _, err := scene.CreateNode(moutput.NODE_KIND_TRANSFORM, hierCtrl, hierGroup); err != nil {
		return err
	}
	if err := scene.SetWorldPosition(hierCtrl, marker.Position); err != nil {
		return err
	}
	if _, err := scene.AddConstraint(moutput.ConstraintSpec{
		Type:    moutput.CONSTRAINT_PARENT,
		Drivers: []string{hierCtrl},
		Driven:  offset,
	}); err != nil {
		return err
	}
	if err := scene.LockChannels(offset, "trsv", true); err != nil {
		return err
	}
	if err := scene.LockChannels(marker.Name, "sv", true); err != nil {
		return err
	}

	tags := [][2]string{
		{tagMarkerSystem, sys.Root},
		{tagChainID, strconv.Itoa(marker.ChainID)},
		{tagMarkerID, strconv.Itoa(marker.Index)},
		{tagHierCtrl, hierCtrl},
		{tagRotationType, marker.Rotation.Token()},
		{tagUpType, marker.Up.Token()},
	}
	for _, tag := range tags {
		if err := scene.SetTag(marker.Name, tag[0], tag[1]); err != nil {
			return err
		}
	}
	if err := scene.SetAttr(moutput.Plug(marker.Name, moutput.ATTR_LOD_VISIBILITY), 1); err != nil {
		return err
	}
	if err := scene.SetAttr(moutput.Plug(marker.Name, attrUpAxisOffset), 0); err != nil {
		return err
	}
	if err := scene.SetAttr(moutput.Plug(marker.Name, attrPoleDistance), rc.Settings.PoleDistance); err != nil {
		return err
	}

	marker.Offset = offset
	marker.Target = target
	marker.HierCtrl = hierCtrl
	return nil
}

// connectParentMarker は親マーカータグを付け、階層コントロールを親の下へ移す。
func connectParentMarker(rc *RigContext, marker *model.Marker, parentName string, parentHierCtrl string) error {
	if err := rc.Scene.SetTag(marker.Name, tagParentMarker, parentName); err != nil {
		return err
	}
	if marker.HasHierCtrl() && parentHierCtrl != "" && rc.Scene.Exists(parentHierCtrl) {
		return rc.Scene.SetParent(marker.HierCtrl, parentHierCtrl)
	}
	return nil
}

// formatRange は範囲をタグ文字列へ変換する。
func formatRange(r model.IndexRange) string {
	return strconv.Itoa(r.Start) + "," + strconv.Itoa(r.End)
}
