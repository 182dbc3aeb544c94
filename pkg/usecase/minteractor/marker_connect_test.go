// 指示: miu200521358
package minteractor

import (
	"errors"
	"slices"
	"testing"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/scene"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

var errInjected = errors.New("injected failure")

// faultScene は指定回目の拘束生成だけ失敗するシーン。
type faultScene struct {
	*scene.Scene
	calls  int
	failAt int
}

// AddConstraint は failAt 回目の呼び出しで失敗する。
func (s *faultScene) AddConstraint(spec moutput.ConstraintSpec) (string, error) {
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return "", errInjected
	}
	return s.Scene.AddConstraint(spec)
}

// connectFixture は中央の背骨と左腕を生成する。
func connectFixture(t *testing.T, rc *RigContext) (*model.MarkerSystem, *model.MarkerSystem) {
	t.Helper()
	spine := mustCreateSystem(t, rc, spineSystemData())
	arm := mustCreateSystem(t, rc, armSystemData())
	return spine, arm
}

// constraintSummary は拘束の種別とドライバを比較用にまとめる。
func constraintSummary(s moutput.IScene, driven string) []string {
	out := make([]string, 0)
	for _, info := range s.Constraints(driven) {
		out = append(out, string(info.Type)+":"+info.Drivers[0])
	}
	slices.Sort(out)
	return out
}

func TestSetParentMarkerFollowAndDisconnect(t *testing.T) {
	rc := newTestContext(t)
	spine, arm := connectFixture(t, rc)
	s0 := spine.Markers[0]
	s1 := spine.Markers[1]
	a0 := arm.Markers[0]

	ok, err := SetParentMarker(rc, arm, s1.Name, model.CONNECT_MODE_FOLLOW)
	if err != nil || !ok {
		t.Fatalf("connect failed: ok=%t err=%v", ok, err)
	}
	if got := ConnectMode(rc, arm); got != model.CONNECT_MODE_FOLLOW {
		t.Fatalf("connect mode mismatch: got=%s", got)
	}
	if arm.ParentMarker.Name != s1.Name || arm.ParentMarker.System != spine.Name {
		t.Fatalf("parent marker mismatch: got=%+v", arm.ParentMarker)
	}
	if a0.ExternalParent.Name != s1.Name {
		t.Fatalf("root marker external parent mismatch: got=%+v", a0.ExternalParent)
	}
	if got := rc.Scene.Parent(a0.HierCtrl); got != s1.HierCtrl {
		t.Fatalf("hier ctrl parent mismatch: got=%s want=%s", got, s1.HierCtrl)
	}
	if got := rc.Scene.Attr(moutput.Plug(s1.Name, moutput.ATTR_LOD_VISIBILITY)); got != 0 {
		t.Fatalf("parent marker should be hidden: got=%v", got)
	}
	if got := rc.Scene.WorldPosition(s1.Name); !mmath.NearEquals(got, rc.Scene.WorldPosition(a0.Name), testTolerance) {
		t.Fatalf("parent marker should follow child: got=%v", got)
	}
	want := []string{"orientConstraint:" + a0.Name, "pointConstraint:" + a0.Name}
	if got := constraintSummary(rc.Scene, s1.Name); !slices.Equal(got, want) {
		t.Fatalf("follow constraints mismatch: got=%v want=%v", got, want)
	}
	if tag, _ := rc.Scene.Tag(arm.Root, tagParentMarker); tag != s1.Name {
		t.Fatalf("root parent tag mismatch: got=%s", tag)
	}

	ok, err = SetParentMarker(rc, arm, "", model.CONNECT_MODE_NONE)
	if err != nil || !ok {
		t.Fatalf("disconnect failed: ok=%t err=%v", ok, err)
	}
	if arm.IsConnected() || !a0.ExternalParent.IsZero() {
		t.Fatalf("system should be disconnected: parent=%+v external=%+v", arm.ParentMarker, a0.ExternalParent)
	}
	if got := rc.Scene.Attr(moutput.Plug(s1.Name, moutput.ATTR_LOD_VISIBILITY)); got != 1 {
		t.Fatalf("parent marker visibility should be restored: got=%v", got)
	}
	if s1.Hidden {
		t.Fatalf("parent marker hidden flag should be cleared")
	}
	want = []string{"orientConstraint:" + s0.Name}
	if got := constraintSummary(rc.Scene, s1.Name); !slices.Equal(got, want) {
		t.Fatalf("parent orient should be restored: got=%v want=%v", got, want)
	}
	if got := rc.Scene.Parent(a0.HierCtrl); got != naming.Derive(arm.Root, naming.EXT_HIER_GROUP) {
		t.Fatalf("hier ctrl should return to group: got=%s", got)
	}
	if _, ok := rc.Scene.Tag(a0.Name, tagParentMarker); ok {
		t.Fatalf("root marker parent tag should be removed")
	}
	if _, ok := rc.Scene.Tag(arm.Root, tagParentMarker); ok {
		t.Fatalf("root parent tag should be removed")
	}
}

func TestSetParentMarkerAimMode(t *testing.T) {
	rc := newTestContext(t)
	spine, arm := connectFixture(t, rc)
	s1 := spine.Markers[1]
	a0 := arm.Markers[0]

	if _, err := SetParentMarker(rc, arm, s1.Name, model.CONNECT_MODE_AIM); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if got := ConnectMode(rc, arm); got != model.CONNECT_MODE_AIM {
		t.Fatalf("connect mode mismatch: got=%s", got)
	}
	want := []string{"aimConstraint:" + a0.Name}
	if got := constraintSummary(rc.Scene, s1.Name); !slices.Equal(got, want) {
		t.Fatalf("aim constraints mismatch: got=%v want=%v", got, want)
	}
	if got := rc.Scene.Attr(moutput.Plug(s1.Name, moutput.ATTR_LOD_VISIBILITY)); got != 1 {
		t.Fatalf("aim mode should not change visibility: got=%v", got)
	}
}

func TestSetParentMarkerNonLeafDowngradesToNone(t *testing.T) {
	rc := newTestContext(t)
	spine, arm := connectFixture(t, rc)
	s0 := spine.Markers[0]

	ok, err := SetParentMarker(rc, arm, s0.Name, model.CONNECT_MODE_FOLLOW)
	if err != nil || !ok {
		t.Fatalf("connect failed: ok=%t err=%v", ok, err)
	}
	if got := ConnectMode(rc, arm); got != model.CONNECT_MODE_NONE {
		t.Fatalf("non-leaf parent should connect with none: got=%s", got)
	}
	if !slices.Contains(rc.WarningIDs(), model.MarkerWarningNonLeafMode) {
		t.Fatalf("non-leaf warning missing: got=%v", rc.WarningIDs())
	}
	for _, info := range rc.Scene.Constraints(s0.Name) {
		if info.Type == moutput.CONSTRAINT_POINT {
			t.Fatalf("non-leaf parent should not be point constrained")
		}
	}
	if got := rc.Scene.Parent(arm.Markers[0].HierCtrl); got != s0.HierCtrl {
		t.Fatalf("hier ctrl parent mismatch: got=%s want=%s", got, s0.HierCtrl)
	}
}

func TestSetParentMarkerRejectsInvalidParents(t *testing.T) {
	testCases := []struct {
		name      string
		parent    func(arm *model.MarkerSystem) string
		warningID string
	}{
		{name: "not marker", parent: func(*model.MarkerSystem) string { return naming.GlobalMarkerRoot }, warningID: model.MarkerWarningNotMarker},
		{name: "same system", parent: func(arm *model.MarkerSystem) string { return arm.Markers[2].Name }, warningID: model.MarkerWarningSameSystem},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rc := newTestContext(t)
			_, arm := connectFixture(t, rc)
			ok, err := SetParentMarker(rc, arm, tc.parent(arm), model.CONNECT_MODE_FOLLOW)
			if err != nil || ok {
				t.Fatalf("invalid parent should be rejected: ok=%t err=%v", ok, err)
			}
			if !slices.Contains(rc.WarningIDs(), tc.warningID) {
				t.Fatalf("warning mismatch: got=%v want=%s", rc.WarningIDs(), tc.warningID)
			}
			if arm.IsConnected() {
				t.Fatalf("system should stay disconnected")
			}
		})
	}
}

func TestSetParentMarkerReconnectMovesConstraints(t *testing.T) {
	rc := newTestContext(t)
	spine, arm := connectFixture(t, rc)
	s1 := spine.Markers[1]
	leg := mustCreateSystem(t, rc, model.SystemData{
		Part: "leg",
		Side: naming.SIDE_L,
		Chains: []model.ChainData{{Markers: []model.MarkerData{
			{Name: "hip", Position: []float64{1, 0, 0}},
		}}},
	})
	hip := leg.Markers[0]

	if _, err := SetParentMarker(rc, arm, s1.Name, model.CONNECT_MODE_FOLLOW); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if _, err := SetParentMarker(rc, arm, hip.Name, model.CONNECT_MODE_FOLLOW); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if got := constraintSummary(rc.Scene, s1.Name); !slices.Equal(got, []string{"orientConstraint:" + spine.Markers[0].Name}) {
		t.Fatalf("old parent should be restored: got=%v", got)
	}
	if got := rc.Scene.Attr(moutput.Plug(s1.Name, moutput.ATTR_LOD_VISIBILITY)); got != 1 {
		t.Fatalf("old parent visibility mismatch: got=%v", got)
	}
	if got := ConnectMode(rc, arm); got != model.CONNECT_MODE_FOLLOW || arm.ParentMarker.Name != hip.Name {
		t.Fatalf("new connection mismatch: mode=%s parent=%s", got, arm.ParentMarker.Name)
	}
	if children := rc.ChildSystems(leg); len(children) != 1 || children[0] != arm {
		t.Fatalf("child systems mismatch: got=%v", children)
	}
}

func TestSetParentMarkerRollsBackOnFailure(t *testing.T) {
	fs := &faultScene{Scene: scene.NewScene()}
	rc := NewRigContext(fs, model.NewRigSettings())
	spine, arm := connectFixture(t, rc)
	s0 := spine.Markers[0]
	s1 := spine.Markers[1]
	a0 := arm.Markers[0]
	beforePosition := rc.Scene.WorldPosition(s1.Name)
	beforeHierParent := rc.Scene.Parent(a0.HierCtrl)

	// point の次の orient 生成で失敗させる
	fs.failAt = fs.calls + 2
	ok, err := SetParentMarker(rc, arm, s1.Name, model.CONNECT_MODE_FOLLOW)
	if ok || !errors.Is(err, errInjected) {
		t.Fatalf("injected failure expected: ok=%t err=%v", ok, err)
	}
	fs.failAt = 0

	if arm.IsConnected() || !a0.ExternalParent.IsZero() {
		t.Fatalf("model should be rolled back: parent=%+v external=%+v", arm.ParentMarker, a0.ExternalParent)
	}
	if got := constraintSummary(rc.Scene, s1.Name); !slices.Equal(got, []string{"orientConstraint:" + s0.Name}) {
		t.Fatalf("parent constraints should be restored: got=%v", got)
	}
	if got := rc.Scene.Parent(a0.HierCtrl); got != beforeHierParent {
		t.Fatalf("hier ctrl parent should be restored: got=%s want=%s", got, beforeHierParent)
	}
	if _, ok := rc.Scene.Tag(a0.Name, tagParentMarker); ok {
		t.Fatalf("parent tag should be removed")
	}
	if got := rc.Scene.WorldPosition(s1.Name); !mmath.NearEquals(got, beforePosition, testTolerance) {
		t.Fatalf("parent marker position should be restored: got=%v want=%v", got, beforePosition)
	}
	if got := rc.Scene.Attr(moutput.Plug(s1.Name, moutput.ATTR_LOD_VISIBILITY)); got != 1 {
		t.Fatalf("visibility should be untouched: got=%v", got)
	}

	ok, err = SetParentMarker(rc, arm, s1.Name, model.CONNECT_MODE_FOLLOW)
	if err != nil || !ok {
		t.Fatalf("connect after rollback failed: ok=%t err=%v", ok, err)
	}
	if got := rc.Scene.WorldPosition(s1.Name); !mmath.NearEquals(got, r3.Vec{X: 2, Y: 10}, testTolerance) {
		t.Fatalf("parent marker should follow after retry: got=%v", got)
	}
}

// twoRootHandSystemData は独立した2本のチェーンを持つ左手システムを返す。
func twoRootHandSystemData() model.SystemData {
	return model.SystemData{
		Part: "hand",
		Side: naming.SIDE_L,
		Chains: []model.ChainData{
			{Markers: []model.MarkerData{
				{Name: "h0", Position: []float64{9, 10, 0}},
				{Name: "h1", Position: []float64{10, 10, 0}},
			}},
			{Markers: []model.MarkerData{
				{Name: "t0", Position: []float64{9, 10, 1}},
				{Name: "t1", Position: []float64{10, 10, 1}},
			}},
		},
	}
}

func TestSetParentMarkerMigratesAllRootMarkers(t *testing.T) {
	rc := newTestContext(t)
	arm := mustCreateSystem(t, rc, armSystemData())
	hand := mustCreateSystem(t, rc, twoRootHandSystemData())
	a2 := arm.Markers[2]
	roots := hand.RootMarkers()
	if len(roots) != 2 {
		t.Fatalf("root marker count mismatch: got=%d want=2", len(roots))
	}
	beforeConstraints := constraintSummary(rc.Scene, a2.Name)
	beforeVisibility := rc.Scene.Attr(moutput.Plug(a2.Name, moutput.ATTR_LOD_VISIBILITY))

	ok, err := SetParentMarker(rc, hand, a2.Name, model.CONNECT_MODE_FOLLOW)
	if err != nil || !ok {
		t.Fatalf("connect failed: ok=%t err=%v", ok, err)
	}
	for _, root := range roots {
		if root.ExternalParent.Name != a2.Name {
			t.Fatalf("external parent mismatch: marker=%s got=%+v", root.Name, root.ExternalParent)
		}
		if tag, _ := rc.Scene.Tag(root.Name, tagParentMarker); tag != a2.Name {
			t.Fatalf("root marker parent tag mismatch: marker=%s got=%s", root.Name, tag)
		}
	}

	ok, err = SetParentMarker(rc, hand, "", model.CONNECT_MODE_NONE)
	if err != nil || !ok {
		t.Fatalf("disconnect failed: ok=%t err=%v", ok, err)
	}
	for _, root := range roots {
		if !root.ExternalParent.IsZero() {
			t.Fatalf("external parent should be cleared: marker=%s got=%+v", root.Name, root.ExternalParent)
		}
		if _, ok := rc.Scene.Tag(root.Name, tagParentMarker); ok {
			t.Fatalf("root marker parent tag should be removed: marker=%s", root.Name)
		}
	}
	if got := constraintSummary(rc.Scene, a2.Name); !slices.Equal(got, beforeConstraints) {
		t.Fatalf("parent constraints mismatch: got=%v want=%v", got, beforeConstraints)
	}
	if got := rc.Scene.Attr(moutput.Plug(a2.Name, moutput.ATTR_LOD_VISIBILITY)); got != beforeVisibility {
		t.Fatalf("parent visibility mismatch: got=%v want=%v", got, beforeVisibility)
	}

	joints, err := BuildSkeleton(rc, hand, "")
	if err != nil {
		t.Fatalf("build skeleton failed: %v", err)
	}
	if len(joints) != 2 || len(joints[0]) != 2 || len(joints[1]) != 2 {
		t.Fatalf("skeleton chains mismatch: got=%v", joints)
	}
}
