// 指示: miu200521358
package minteractor

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestExportSystemData(t *testing.T) {
	rc := newTestContext(t)
	spine := mustCreateSystem(t, rc, spineSystemData())
	arm := mustCreateSystem(t, rc, armSystemData())
	if _, err := SetParentMarker(rc, arm, spine.Markers[1].Name, model.CONNECT_MODE_FOLLOW); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	data, err := ExportSystemData(rc, arm)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if data.Part != "arm" || data.Side != naming.SIDE_L {
		t.Fatalf("system fields mismatch: got=%+v", data)
	}
	if data.ParentMarker != spine.Markers[1].Name || data.ConnectMode != "follow" {
		t.Fatalf("connection mismatch: parent=%s mode=%s", data.ParentMarker, data.ConnectMode)
	}
	if len(data.Chains) != 1 {
		t.Fatalf("chain count mismatch: got=%d", len(data.Chains))
	}
	chain := data.Chains[0]
	if chain.AimAxis != "x" || chain.UpAxis != "z" || chain.LineIDs != nil || chain.PlaneIDs != nil {
		t.Fatalf("chain fields mismatch: got=%+v", chain)
	}
	wantNames := []string{"arm_a0_L_MARKER", "arm_a1_L_MARKER", "arm_a2_L_MARKER"}
	for i, marker := range chain.Markers {
		if marker.Name != wantNames[i] {
			t.Fatalf("marker name mismatch: got=%s want=%s", marker.Name, wantNames[i])
		}
	}
	if chain.Markers[0].Rotation != "aim" {
		t.Fatalf("aim rotation mismatch: got=%v", chain.Markers[0].Rotation)
	}
	if got, ok := chain.Markers[2].Rotation.([]float64); !ok || !slices.Equal(got, []float64{0, 0, 30}) {
		t.Fatalf("fixed rotation mismatch: got=%v", chain.Markers[2].Rotation)
	}
	if chain.Markers[0].UpType != nil {
		t.Fatalf("up type should be empty: got=%v", chain.Markers[0].UpType)
	}

	if err := rc.Scene.SetWorldPosition(arm.Markers[1].HierCtrl, r3.Vec{X: 6, Y: 11, Z: -2}); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	moved, err := ExportSystemData(rc, arm)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	got := moved.Chains[0].Markers[1].Position
	if !mmath.NearEquals(r3.Vec{X: got[0], Y: got[1], Z: got[2]}, r3.Vec{X: 6, Y: 11, Z: -2}, testTolerance) {
		t.Fatalf("exported position should follow scene: got=%v", got)
	}
}

func TestExportRigDataRecreatesSystems(t *testing.T) {
	rc := newTestContext(t)
	mustCreateSystem(t, rc, lineSystemData())
	mustCreateSystem(t, rc, spineSystemData())

	rig, err := ExportRigData(rc)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if got := len(rig.Systems); got != 2 {
		t.Fatalf("system count mismatch: got=%d want=2", got)
	}
	if got := rig.Systems[0].Chains[0].LineIDs; !slices.Equal(got, []int{0, 2}) {
		t.Fatalf("line ids mismatch: got=%v", got)
	}

	other := newTestContext(t)
	for _, data := range rig.Systems {
		mustCreateSystem(t, other, data)
	}
	for _, sys := range rc.Systems() {
		for _, marker := range sys.Markers {
			want := rc.Scene.WorldPosition(marker.Name)
			if got := other.Scene.WorldPosition(marker.Name); !mmath.NearEquals(got, want, testTolerance) {
				t.Fatalf("recreated position mismatch: marker=%s got=%v want=%v", marker.Name, got, want)
			}
		}
	}
}

func TestMirrorSystemData(t *testing.T) {
	data := model.SystemData{
		Part:         "arm",
		Side:         naming.SIDE_L,
		ParentMarker: "spine_s1_L_MARKER",
		ConnectMode:  "follow",
		Chains: []model.ChainData{{
			AimAxis:        "x",
			UpAxis:         "-z",
			UpCtrlPosition: []float64{1, 2, 3},
			Parent:         "arm_a0_L_MARKER",
			Markers: []model.MarkerData{
				{Name: "arm_a0_L_MARKER", Position: []float64{2, 10, 0}, Rotation: "aim", UpType: []float64{1, 0, 0}},
				{Name: "arm_a1_L_MARKER", Position: []float64{5, 10, -1}, Rotation: "arm_a0_L_MARKER"},
			},
		}},
	}

	got := MirrorSystemData(data)
	if got.Side != naming.SIDE_R || got.ParentMarker != "spine_s1_R_MARKER" || got.ConnectMode != "follow" {
		t.Fatalf("system fields mismatch: got=%+v", got)
	}
	chain := got.Chains[0]
	if chain.AimAxis != "-x" || chain.UpAxis != "z" {
		t.Fatalf("axes mismatch: aim=%s up=%s", chain.AimAxis, chain.UpAxis)
	}
	if !slices.Equal(chain.UpCtrlPosition, []float64{-1, 2, 3}) {
		t.Fatalf("up ctrl position mismatch: got=%v", chain.UpCtrlPosition)
	}
	if chain.Parent != "arm_a0_R_MARKER" {
		t.Fatalf("chain parent mismatch: got=%s", chain.Parent)
	}
	if m := chain.Markers[0]; m.Name != "arm_a0_R_MARKER" || !slices.Equal(m.Position, []float64{-2, 10, 0}) || m.Rotation != "aim" {
		t.Fatalf("marker mismatch: got=%+v", m)
	}
	if up, ok := chain.Markers[0].UpType.([]float64); !ok || !slices.Equal(up, []float64{-1, 0, 0}) {
		t.Fatalf("up vector mismatch: got=%v", chain.Markers[0].UpType)
	}
	if chain.Markers[1].Rotation != "arm_a0_R_MARKER" {
		t.Fatalf("node rotation mismatch: got=%v", chain.Markers[1].Rotation)
	}
	if data.Chains[0].Markers[0].Position[0] != 2 {
		t.Fatalf("source data should not be modified")
	}

	back := MirrorSystemData(got)
	if back.Side != data.Side || back.Chains[0].AimAxis != "x" || back.Chains[0].Markers[1].Name != "arm_a1_L_MARKER" {
		t.Fatalf("mirror data round trip mismatch: got=%+v", back)
	}
}

func TestMirrorSystemDataFixedRotation(t *testing.T) {
	euler := r3.Vec{X: 10, Y: 20, Z: 30}
	data := model.SystemData{
		Part: "arm",
		Side: naming.SIDE_L,
		Chains: []model.ChainData{{Markers: []model.MarkerData{
			{Name: "arm_a0_L_MARKER", Rotation: []float64{euler.X, euler.Y, euler.Z}},
		}}},
	}
	got := MirrorSystemData(data).Chains[0].Markers[0].Rotation.([]float64)
	want := mmath.MirrorBehaviorQuat(mmath.EulerToQuat(euler, mmath.ROTATE_ORDER_XYZ))
	gotQuat := mmath.EulerToQuat(r3.Vec{X: got[0], Y: got[1], Z: got[2]}, mmath.ROTATE_ORDER_XYZ)
	if !mmath.QuatNearEquals(gotQuat, want, testTolerance) {
		t.Fatalf("fixed rotation mismatch: got=%v want=%v", gotQuat, want)
	}
	if mmath.QuatNearEquals(gotQuat, mgl64.QuatIdent(), testTolerance) {
		t.Fatalf("fixed rotation should not collapse to identity")
	}
}

func TestMirrorRigData(t *testing.T) {
	data := &model.RigData{Systems: []model.SystemData{
		spineSystemData(),
		armSystemData(),
		{Part: "arm", Side: naming.SIDE_R, Chains: []model.ChainData{{Markers: []model.MarkerData{{Name: "old"}}}}},
		{Part: "leg", Side: naming.SIDE_L, Chains: []model.ChainData{{Markers: []model.MarkerData{{Name: "hip"}}}}},
	}}

	got := MirrorRigData(data)
	if len(got.Systems) != 5 {
		t.Fatalf("system count mismatch: got=%d want=5", len(got.Systems))
	}
	if got.Systems[2].Side != naming.SIDE_R || got.Systems[2].Chains[0].Markers[0].Name == "old" {
		t.Fatalf("existing right system should be replaced: got=%+v", got.Systems[2])
	}
	if last := got.Systems[4]; last.Part != "leg" || last.Side != naming.SIDE_R {
		t.Fatalf("new mirrored system mismatch: got=%+v", last)
	}
	if len(data.Systems) != 4 {
		t.Fatalf("source document should not be modified")
	}
}
