// 指示: miu200521358
package minteractor

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/scene"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

const testTolerance = 1e-6

// newTestContext はメモリ上のシーンを持つ処理文脈を生成する。
func newTestContext(t *testing.T) *RigContext {
	t.Helper()
	return NewRigContext(scene.NewScene(), model.NewRigSettings())
}

// mustCreateSystem はテスト用にマーカーシステムを生成する。
func mustCreateSystem(t *testing.T, rc *RigContext, data model.SystemData) *model.MarkerSystem {
	t.Helper()
	sys, err := CreateMarkerSystem(rc, NewCreateRequest(data, false))
	if err != nil {
		t.Fatalf("create system failed: part=%s side=%s err=%v", data.Part, data.Side, err)
	}
	return sys
}

// mustMarker は名前からマーカーを返す。
func mustMarker(t *testing.T, sys *model.MarkerSystem, name string) *model.Marker {
	t.Helper()
	marker, ok := sys.MarkerByName(name)
	if !ok {
		t.Fatalf("marker not found: system=%s name=%s", sys.Name, name)
	}
	return marker
}

// markerName は part/desc/side からマーカー名を組み立てる。
func markerName(t *testing.T, part string, desc string, side string) string {
	t.Helper()
	n, err := naming.New(part, desc, -1, side, naming.EXT_MARKER)
	if err != nil {
		t.Fatalf("marker name failed: %v", err)
	}
	return n.String()
}

// lineSystemData は中央マーカーを直線ロックする3点チェーンを返す。
func lineSystemData() model.SystemData {
	return model.SystemData{
		Part: "arm",
		Side: naming.SIDE_L,
		Chains: []model.ChainData{{
			AimAxis: "x",
			UpAxis:  "z",
			LineIDs: []int{0, 2},
			Markers: []model.MarkerData{
				{Name: "a", Position: []float64{0, 0, 0}, Rotation: "aim"},
				{Name: "b", Position: []float64{3, 0, 0}, Rotation: "aim"},
				{Name: "c", Position: []float64{10, 0, 0}},
			},
		}},
	}
}

// planeSystemData は中間2点を平面ロックする4点チェーンを返す。
func planeSystemData() model.SystemData {
	return model.SystemData{
		Part: "leg",
		Side: naming.SIDE_L,
		Chains: []model.ChainData{{
			AimAxis:  "x",
			UpAxis:   "z",
			PlaneIDs: []int{0, 3},
			Markers: []model.MarkerData{
				{Name: "p0", Position: []float64{0, 0, 0}, Rotation: "aim", UpType: "plane"},
				{Name: "p1", Position: []float64{3, 0, -1}, Rotation: "aim", UpType: "plane"},
				{Name: "p2", Position: []float64{6, 0, -1}, Rotation: "aim", UpType: "plane"},
				{Name: "p3", Position: []float64{9, 0, 0}, Rotation: "aim", UpType: "plane"},
			},
		}},
	}
}

// spineSystemData は2点の中央チェーンを返す。末尾は親追従になる。
func spineSystemData() model.SystemData {
	return model.SystemData{
		Part: "spine",
		Side: naming.SIDE_M,
		Chains: []model.ChainData{{
			AimAxis: "y",
			UpAxis:  "z",
			Markers: []model.MarkerData{
				{Name: "s0", Position: []float64{0, 0, 0}, Rotation: "aim"},
				{Name: "s1", Position: []float64{0, 10, 0}, Rotation: "aim"},
			},
		}},
	}
}

// armSystemData は末尾に固定回転を持つ左腕チェーンを返す。
func armSystemData() model.SystemData {
	return model.SystemData{
		Part: "arm",
		Side: naming.SIDE_L,
		Chains: []model.ChainData{{
			AimAxis: "x",
			UpAxis:  "z",
			Markers: []model.MarkerData{
				{Name: "a0", Position: []float64{2, 10, 0}, Rotation: "aim"},
				{Name: "a1", Position: []float64{5, 10, -1}, Rotation: "aim"},
				{Name: "a2", Position: []float64{8, 10, 0}, Rotation: []float64{0, 0, 30}},
			},
		}},
	}
}

func TestGlobalRootCreatedWithSettings(t *testing.T) {
	rc := newTestContext(t)
	rc.Settings.MarkerScale = 2
	root, err := rc.GlobalRoot()
	if err != nil {
		t.Fatalf("global root failed: %v", err)
	}
	if root != naming.GlobalMarkerRoot {
		t.Fatalf("global root mismatch: got=%s want=%s", root, naming.GlobalMarkerRoot)
	}
	if got := rc.Scene.Attr(moutput.Plug(root, attrMarkerScale)); got != 2 {
		t.Fatalf("marker scale mismatch: got=%v want=2", got)
	}
	again, err := rc.GlobalRoot()
	if err != nil || again != root {
		t.Fatalf("global root should be reused: got=%s err=%v", again, err)
	}
}

func TestWarnRecordsIDsOnGlobalRoot(t *testing.T) {
	rc := newTestContext(t)
	if _, err := rc.GlobalRoot(); err != nil {
		t.Fatalf("global root failed: %v", err)
	}
	rc.warn(model.MarkerWarningNotMarker, "first")
	rc.warn(model.MarkerWarningNotMarker, "second")
	rc.warn(model.MarkerWarningSameSystem, "third")

	if got := len(rc.Warnings()); got != 3 {
		t.Fatalf("warning count mismatch: got=%d want=3", got)
	}
	want := []string{model.MarkerWarningNotMarker, model.MarkerWarningSameSystem}
	if got := rc.WarningIDs(); !slices.Equal(got, want) {
		t.Fatalf("warning ids mismatch: got=%v want=%v", got, want)
	}
	tag, _ := rc.Scene.Tag(naming.GlobalMarkerRoot, model.MarkerWarningTagKey)
	if tag != model.MarkerWarningNotMarker+","+model.MarkerWarningSameSystem {
		t.Fatalf("warning tag mismatch: got=%s", tag)
	}
}

// tagFaultScene は警告IDタグの書き込みだけ失敗するシーン。
type tagFaultScene struct {
	*scene.Scene
}

// SetTag は警告IDタグの書き込みで失敗する。
func (s *tagFaultScene) SetTag(name string, key string, value string) error {
	if key == model.MarkerWarningTagKey {
		return errors.New("tag store unavailable")
	}
	return s.Scene.SetTag(name, key, value)
}

func TestWarnLogsTagStoreFailure(t *testing.T) {
	var buf bytes.Buffer
	rc := NewRigContext(&tagFaultScene{Scene: scene.NewScene()}, model.NewRigSettings())
	rc.Logger = logging.NewLogger(logging.Options{Level: logging.LOG_LEVEL_DEBUG, Output: &buf})
	if _, err := rc.GlobalRoot(); err != nil {
		t.Fatalf("global root failed: %v", err)
	}

	rc.warn(model.MarkerWarningNotMarker, "first")
	if got := rc.WarningIDs(); !slices.Equal(got, []string{model.MarkerWarningNotMarker}) {
		t.Fatalf("warning ids mismatch: got=%v", got)
	}
	if _, ok := rc.Scene.Tag(naming.GlobalMarkerRoot, model.MarkerWarningTagKey); ok {
		t.Fatalf("warning tag should not be written")
	}
	out := buf.String()
	if !strings.Contains(out, "警告IDタグの更新に失敗しました") || !strings.Contains(out, "tag store unavailable") {
		t.Fatalf("tag failure should be logged: %s", out)
	}
}
