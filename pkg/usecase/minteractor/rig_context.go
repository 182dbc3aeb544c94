// 指示: miu200521358
package minteractor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// グローバルマーカールートの属性名。
const (
	attrMarkerScale  = "marker_scale"
	attrRotateOrder  = "skel_rotate_order"
	attrDisplayAxis  = "display_axis"
	attrMarkerVis    = "marker_vis"
	attrHierCtrlVis  = "hier_ctrl_vis"
	attrUpAxisOffset = "up_axis_offset"
	attrPoleDistance = "pole_distance"
)

// RigWarning は処理を継続した検証警告を表す。
type RigWarning struct {
	ID      string
	Message string
}

// RigContext はシーンと共有ルートノードを保持する処理文脈を表す。
type RigContext struct {
	Scene    moutput.IScene
	Settings model.RigSettings
	Logger   *logging.Logger

	globalRoot string
	systems    map[string]*model.MarkerSystem
	order      []string
	warnings   []RigWarning
}

// NewRigContext は処理文脈を生成する。ルートノードは必要になった時に生成する。
func NewRigContext(scene moutput.IScene, settings model.RigSettings) *RigContext {
	return &RigContext{
		Scene:    scene,
		Settings: settings,
		Logger:   logging.DefaultLogger(),
		systems:  map[string]*model.MarkerSystem{},
		order:    []string{},
		warnings: []RigWarning{},
	}
}

// GlobalRoot はグローバルマーカールートを返す。未生成なら設定属性付きで生成する。
func (rc *RigContext) GlobalRoot() (string, error) {
	if rc.globalRoot != "" && rc.Scene.Exists(rc.globalRoot) {
		return rc.globalRoot, nil
	}
	root := naming.GlobalMarkerRoot
	if !rc.Scene.Exists(root) {
		if _, err := rc.Scene.CreateNode(moutput.NODE_KIND_TRANSFORM, root, ""); err != nil {
			return "", fmt.Errorf("グローバルマーカールートの生成に失敗しました: %w", err)
		}
		attrs := []struct {
			name  string
			value float64
		}{
			{attrMarkerScale, rc.Settings.MarkerScale},
			{attrRotateOrder, float64(rc.Settings.RotateOrder)},
			{attrDisplayAxis, 0},
			{attrMarkerVis, 1},
			{attrHierCtrlVis, 0},
		}
		for _, attr := range attrs {
			if err := rc.Scene.SetAttr(moutput.Plug(root, attr.name), attr.value); err != nil {
				return "", err
			}
		}
		rc.Logger.Debug("グローバルマーカールート生成: %s", root)
	}
	rc.globalRoot = root
	return root, nil
}

// SubRoot はシステムルート配下の補助グループを返す。未生成なら生成してロックする。
func (rc *RigContext) SubRoot(systemRoot string, ext string) (string, error) {
	name := naming.Derive(systemRoot, ext)
	if rc.Scene.Exists(name) {
		return name, nil
	}
	if _, err := rc.Scene.CreateNode(moutput.NODE_KIND_TRANSFORM, name, systemRoot); err != nil {
		return "", fmt.Errorf("補助グループの生成に失敗しました: %s: %w", name, err)
	}
	if err := rc.Scene.LockChannels(name, "trsv", true); err != nil {
		return "", err
	}
	return name, nil
}

// register はマーカーシステムを登録する。
func (rc *RigContext) register(sys *model.MarkerSystem) {
	if _, ok := rc.systems[sys.Name]; !ok {
		rc.order = append(rc.order, sys.Name)
	}
	rc.systems[sys.Name] = sys
}

// unregister はマーカーシステムの登録を解除する。
func (rc *RigContext) unregister(name string) {
	delete(rc.systems, name)
	rc.order = slices.DeleteFunc(rc.order, func(n string) bool { return n == name })
}

// System は登録済みのマーカーシステムを返す。
func (rc *RigContext) System(name string) (*model.MarkerSystem, bool) {
	sys, ok := rc.systems[name]
	return sys, ok
}

// Systems は登録順のマーカーシステム一覧を返す。
func (rc *RigContext) Systems() []*model.MarkerSystem {
	systems := make([]*model.MarkerSystem, 0, len(rc.order))
	for _, name := range rc.order {
		systems = append(systems, rc.systems[name])
	}
	return systems
}

// FindMarker はマーカー名から所属システムとマーカーを返す。
func (rc *RigContext) FindMarker(name string) (*model.MarkerSystem, *model.Marker, bool) {
	for _, sysName := range rc.order {
		sys := rc.systems[sysName]
		if marker, ok := sys.MarkerByName(name); ok {
			return sys, marker, true
		}
	}
	return nil, nil, false
}

// ChildSystems は指定システムのマーカーへ接続しているシステムを返す。
func (rc *RigContext) ChildSystems(parent *model.MarkerSystem) []*model.MarkerSystem {
	children := make([]*model.MarkerSystem, 0)
	for _, sys := range rc.Systems() {
		if sys.ParentMarker.System == parent.Name && sys.Name != parent.Name {
			children = append(children, sys)
		}
	}
	return children
}

// warn は検証警告を記録してログへ出力する。
func (rc *RigContext) warn(id string, format string, params ...any) {
	message := fmt.Sprintf(format, params...)
	rc.warnings = append(rc.warnings, RigWarning{ID: id, Message: message})
	rc.Logger.With(logging.Warning(id)).Warn("%s", message)

	if rc.globalRoot == "" || !rc.Scene.Exists(rc.globalRoot) {
		return
	}
	ids := []string{}
	if current, ok := rc.Scene.Tag(rc.globalRoot, model.MarkerWarningTagKey); ok && current != "" {
		ids = strings.Split(current, ",")
	}
	if !slices.Contains(ids, id) {
		ids = append(ids, id)
		if err := rc.Scene.SetTag(rc.globalRoot, model.MarkerWarningTagKey, strings.Join(ids, ",")); err != nil {
			rc.Logger.With(logging.Warning(id), logging.Err(err)).Debug("警告IDタグの更新に失敗しました: %s", rc.globalRoot)
		}
	}
}

// Warnings は記録済みの警告を返す。
func (rc *RigContext) Warnings() []RigWarning {
	return slices.Clone(rc.warnings)
}

// WarningIDs は記録済みの警告IDを重複なしで返す。
func (rc *RigContext) WarningIDs() []string {
	ids := make([]string, 0, len(rc.warnings))
	for _, w := range rc.warnings {
		if !slices.Contains(ids, w.ID) {
			ids = append(ids, w.ID)
		}
	}
	return ids
}
