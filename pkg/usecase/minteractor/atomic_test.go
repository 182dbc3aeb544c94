// 指示: miu200521358
package minteractor

import (
	"errors"
	"testing"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAtomicRestoresOnError(t *testing.T) {
	rc := newTestContext(t)
	spine := mustCreateSystem(t, rc, spineSystemData())
	before := len(rc.Scene.Nodes())
	s1 := spine.Markers[1]
	s1Position := rc.Scene.WorldPosition(s1.Name)

	err := Atomic(rc, func() error {
		arm := mustCreateSystem(t, rc, armSystemData())
		if _, err := SetParentMarker(rc, arm, s1.Name, model.CONNECT_MODE_FOLLOW); err != nil {
			return err
		}
		rc.warn(model.MarkerWarningSameSystem, "during atomic")
		return errInjected
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("injected error expected: got=%v", err)
	}

	if got := len(rc.Scene.Nodes()); got != before {
		t.Fatalf("node count mismatch: got=%d want=%d", got, before)
	}
	if rc.Scene.Exists("arm_L_MROOT") {
		t.Fatalf("created system should be rolled back")
	}
	if got := len(rc.Systems()); got != 1 || rc.Systems()[0] != spine {
		t.Fatalf("registered systems mismatch: got=%d", got)
	}
	if len(rc.Warnings()) != 0 {
		t.Fatalf("warnings should be rolled back: got=%v", rc.Warnings())
	}
	if got := rc.Scene.WorldPosition(s1.Name); !mmath.NearEquals(got, s1Position, testTolerance) {
		t.Fatalf("parent marker position mismatch: got=%v want=%v", got, s1Position)
	}
	if got := constraintSummary(rc.Scene, s1.Name); len(got) != 1 || got[0] != "orientConstraint:"+spine.Markers[0].Name {
		t.Fatalf("parent constraints mismatch: got=%v", got)
	}
	if len(rc.ChildSystems(spine)) != 0 {
		t.Fatalf("spine should have no child systems")
	}
}

func TestAtomicRestoresModelChanges(t *testing.T) {
	rc := newTestContext(t)
	spine := mustCreateSystem(t, rc, spineSystemData())
	arm := mustCreateSystem(t, rc, armSystemData())

	err := Atomic(rc, func() error {
		if _, err := SetParentMarker(rc, arm, spine.Markers[1].Name, model.CONNECT_MODE_FOLLOW); err != nil {
			return err
		}
		if err := rc.Scene.SetWorldPosition(arm.Markers[1].HierCtrl, r3.Vec{X: 0, Y: 0, Z: 0}); err != nil {
			return err
		}
		return errInjected
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("injected error expected: got=%v", err)
	}
	if arm.IsConnected() {
		t.Fatalf("arm model should be restored: got=%+v", arm.ParentMarker)
	}
	if got := rc.Scene.WorldPosition(arm.Markers[1].Name); !mmath.NearEquals(got, r3.Vec{X: 5, Y: 10, Z: -1}, testTolerance) {
		t.Fatalf("marker position mismatch: got=%v", got)
	}

	if err := Atomic(rc, func() error {
		_, err := SetParentMarker(rc, arm, spine.Markers[1].Name, model.CONNECT_MODE_FOLLOW)
		return err
	}); err != nil {
		t.Fatalf("atomic success failed: %v", err)
	}
	if !arm.IsConnected() {
		t.Fatalf("successful atomic should keep changes")
	}
}
