// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/scene"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLoadMarkerSystemsRestoresModel(t *testing.T) {
	rc := newTestContext(t)
	spine := mustCreateSystem(t, rc, spineSystemData())
	arm := mustCreateSystem(t, rc, armSystemData())
	line := mustCreateSystem(t, rc, func() model.SystemData {
		data := lineSystemData()
		data.Part = "tail"
		data.Side = naming.SIDE_M
		return data
	}())
	if _, err := SetParentMarker(rc, arm, spine.Markers[1].Name, model.CONNECT_MODE_FOLLOW); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	loaded := NewRigContext(rc.Scene, model.NewRigSettings())
	systems, err := LoadMarkerSystems(loaded)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(systems) != 3 {
		t.Fatalf("system count mismatch: got=%d want=3", len(systems))
	}

	for _, want := range []*model.MarkerSystem{spine, arm, line} {
		got, ok := loaded.System(want.Name)
		if !ok {
			t.Fatalf("system not loaded: %s", want.Name)
		}
		if got.Part != want.Part || got.Side != want.Side || got.Root != want.Root {
			t.Fatalf("system fields mismatch: got=%+v want=%+v", got, want)
		}
		if len(got.Chains) != len(want.Chains) || got.Len() != want.Len() {
			t.Fatalf("system size mismatch: system=%s got=%d want=%d", want.Name, got.Len(), want.Len())
		}
		if got.AimAxis != want.AimAxis || got.UpAxis != want.UpAxis {
			t.Fatalf("system axes mismatch: system=%s got=%s/%s want=%s/%s", want.Name, got.AimAxis, got.UpAxis, want.AimAxis, want.UpAxis)
		}
		for i, wm := range want.Markers {
			gm := got.Markers[i]
			if gm.Name != wm.Name || gm.ChainID != wm.ChainID || gm.Index != wm.Index || gm.ParentIndex != wm.ParentIndex {
				t.Fatalf("marker mismatch: got=%+v want=%+v", gm, wm)
			}
			if gm.Rotation.Kind != wm.Rotation.Kind || gm.Up.Kind != wm.Up.Kind {
				t.Fatalf("marker policy mismatch: marker=%s got=%v/%v want=%v/%v", wm.Name, gm.Rotation.Kind, gm.Up.Kind, wm.Rotation.Kind, wm.Up.Kind)
			}
			if gm.HierCtrl != wm.HierCtrl || gm.Offset != wm.Offset || gm.Target != wm.Target {
				t.Fatalf("marker nodes mismatch: got=%+v want=%+v", gm, wm)
			}
			if gm.LineLocked != wm.LineLocked || gm.PlaneLocked != wm.PlaneLocked {
				t.Fatalf("marker lock mismatch: marker=%s got=%v want=%v", wm.Name, gm.LineLocked, wm.LineLocked)
			}
			if !mmath.NearEquals(gm.Position, rc.Scene.WorldPosition(wm.Name), testTolerance) {
				t.Fatalf("marker position mismatch: marker=%s got=%v", wm.Name, gm.Position)
			}
		}
	}

	loadedArm, _ := loaded.System(arm.Name)
	if loadedArm.ParentMarker != (model.MarkerRef{System: spine.Name, Name: spine.Markers[1].Name}) {
		t.Fatalf("parent marker mismatch: got=%+v", loadedArm.ParentMarker)
	}
	if got := ConnectMode(loaded, loadedArm); got != model.CONNECT_MODE_FOLLOW {
		t.Fatalf("connect mode mismatch: got=%s", got)
	}
	if ref := loadedArm.Markers[0].ExternalParent; ref.Name != spine.Markers[1].Name || ref.System != spine.Name {
		t.Fatalf("external parent mismatch: got=%+v", ref)
	}
	loadedSpine, _ := loaded.System(spine.Name)
	if !loadedSpine.Markers[1].Hidden || loadedSpine.Markers[0].Hidden {
		t.Fatalf("hidden flag mismatch: s0=%v s1=%v", loadedSpine.Markers[0].Hidden, loadedSpine.Markers[1].Hidden)
	}
	loadedLine, _ := loaded.System(line.Name)
	if loadedLine.Chains[0].LineIDs == nil || *loadedLine.Chains[0].LineIDs != *line.Chains[0].LineIDs {
		t.Fatalf("line ids mismatch: got=%v", loadedLine.Chains[0].LineIDs)
	}

	again, err := LoadMarkerSystems(loaded)
	if err != nil || len(again) != 3 || again[0] != loadedSpine {
		t.Fatalf("loaded systems should be reused: got=%v err=%v", again, err)
	}
}

func TestLoadMarkerSystemErrors(t *testing.T) {
	rc := newTestContext(t)
	arm := mustCreateSystem(t, rc, armSystemData())

	if _, err := LoadMarkerSystem(rc, "leg_L_MROOT"); !merrors.IsNotFoundError(err) {
		t.Fatalf("not found expected: got=%v", err)
	}
	if _, err := LoadMarkerSystem(rc, arm.Markers[0].Name); err == nil {
		t.Fatalf("marker node should not load as system")
	}

	empty := NewRigContext(scene.NewScene(), model.NewRigSettings())
	systems, err := LoadMarkerSystems(empty)
	if err != nil || len(systems) != 0 {
		t.Fatalf("empty scene should load nothing: got=%v err=%v", systems, err)
	}
}

func TestDeleteMarkerSystemDisconnectsChildren(t *testing.T) {
	rc := newTestContext(t)
	spine := mustCreateSystem(t, rc, spineSystemData())
	arm := mustCreateSystem(t, rc, armSystemData())
	if _, err := SetParentMarker(rc, arm, spine.Markers[1].Name, model.CONNECT_MODE_FOLLOW); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	if err := DeleteMarkerSystem(rc, spine); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if rc.Scene.Exists(spine.Root) || rc.Scene.Exists(spine.Markers[1].Name) {
		t.Fatalf("spine nodes should be deleted")
	}
	if _, ok := rc.System(spine.Name); ok {
		t.Fatalf("spine should be unregistered")
	}
	if arm.IsConnected() {
		t.Fatalf("arm should be disconnected: got=%+v", arm.ParentMarker)
	}
	if _, ok := rc.Scene.Tag(arm.Root, tagParentMarker); ok {
		t.Fatalf("arm parent tag should be removed")
	}
	if got := rc.Scene.Parent(arm.Markers[0].HierCtrl); got != naming.Derive(arm.Root, naming.EXT_HIER_GROUP) {
		t.Fatalf("arm hier ctrl parent mismatch: got=%s", got)
	}
	if !mmath.NearEquals(rc.Scene.WorldPosition(arm.Markers[0].Name), r3.Vec{X: 2, Y: 10, Z: 0}, testTolerance) {
		t.Fatalf("arm marker moved: got=%v", rc.Scene.WorldPosition(arm.Markers[0].Name))
	}

	if err := DeleteMarkerSystem(rc, arm); err != nil {
		t.Fatalf("delete arm failed: %v", err)
	}
	if len(rc.Systems()) != 0 {
		t.Fatalf("all systems should be unregistered: got=%d", len(rc.Systems()))
	}
	if !rc.Scene.Exists(naming.GlobalMarkerRoot) {
		t.Fatalf("global root should remain")
	}
}
