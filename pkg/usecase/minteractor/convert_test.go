// 指示: miu200521358
package minteractor

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/scene"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
)

func TestConvertBuildsAndSavesSkeleton(t *testing.T) {
	repo := newMemoryRigRepository()
	tempDir := t.TempDir()
	inPath := filepath.Join(tempDir, "rig.yaml")
	outPath := filepath.Join(tempDir, "out", "rig_skeleton.yaml")
	repo.documents[inPath] = connectedRigData()
	progress := &progressCollector{}

	result, err := newTestUsecase(repo).Convert(ConvertRequest{
		InputPath:        inPath,
		OutputPath:       outPath,
		ProgressReporter: progress,
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if result.OutputPath != outPath {
		t.Fatalf("output path mismatch: got=%s want=%s", result.OutputPath, outPath)
	}
	if got := result.Skeleton.JointCount(); got != 5 {
		t.Fatalf("joint count mismatch: got=%d want=5", got)
	}
	saved, ok := repo.saved[outPath].(*model.SkeletonData)
	if !ok || saved != result.Skeleton {
		t.Fatalf("skeleton should be saved: got=%T", repo.saved[outPath])
	}
	if info, err := os.Stat(filepath.Dir(outPath)); err != nil || !info.IsDir() {
		t.Fatalf("output dir should be created: err=%v", err)
	}

	last := progress.events[len(progress.events)-1]
	if last.Type != PrepareProgressEventTypeSkeletonBuilt || last.JointCount != 5 || last.SystemCount != 2 {
		t.Fatalf("skeleton event mismatch: got=%+v", last)
	}
	if !result.Context.Scene.Exists("arm_a0_L_RIGJNT") {
		t.Fatalf("rig joint should exist in scene")
	}
}

func TestConvertUsesDefaultOutputPath(t *testing.T) {
	original := nowFunc
	nowFunc = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = original })

	repo := newMemoryRigRepository()
	tempDir := t.TempDir()
	inPath := filepath.Join(tempDir, "rig.yaml")
	repo.documents[inPath] = connectedRigData()

	result, err := newTestUsecase(repo).Convert(ConvertRequest{InputPath: inPath})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	want := filepath.Join(tempDir, "rig_20260304050607", "rig_skeleton.yaml")
	if result.OutputPath != want {
		t.Fatalf("default output path mismatch: got=%s want=%s", result.OutputPath, want)
	}
	if _, ok := repo.saved[want]; !ok {
		t.Fatalf("skeleton should be saved to default path")
	}
}

func TestConvertSkipSkeleton(t *testing.T) {
	repo := newMemoryRigRepository()
	result, err := newTestUsecase(repo).Convert(ConvertRequest{RigData: connectedRigData(), SkipSkeleton: true})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if result.Skeleton != nil || len(repo.saved) != 0 {
		t.Fatalf("skeleton should not be built: skeleton=%v saved=%d", result.Skeleton, len(repo.saved))
	}
}

func TestConvertRestoresSceneWhenSkeletonFails(t *testing.T) {
	repo := newMemoryRigRepository()
	sc := scene.NewScene()

	_, err := newTestUsecase(repo).Convert(ConvertRequest{
		RigData:        connectedRigData(),
		OutputPath:     filepath.Join(t.TempDir(), "out.yaml"),
		Scene:          sc,
		SkeletonParent: "skeleton_M_GRP",
	})
	if !merrors.IsNotFoundError(err) {
		t.Fatalf("not found expected: got=%v", err)
	}
	if slices.ContainsFunc(sc.Nodes(), func(name string) bool { return strings.HasSuffix(name, "_RIGJNT") }) {
		t.Fatalf("rig joints should be rolled back")
	}
	if !sc.Exists("spine_M_MROOT") {
		t.Fatalf("prepared markers should remain")
	}
	if len(repo.saved) != 0 {
		t.Fatalf("nothing should be saved")
	}
}

func TestConvertSaveError(t *testing.T) {
	repo := newMemoryRigRepository()
	repo.saveErr = errors.New("disk full")

	_, err := newTestUsecase(repo).Convert(ConvertRequest{
		RigData:    connectedRigData(),
		OutputPath: filepath.Join(t.TempDir(), "out.toml"),
	})
	if !errors.Is(err, repo.saveErr) {
		t.Fatalf("save error expected: got=%v", err)
	}
}

func TestSaveDataValidation(t *testing.T) {
	uc := NewMarkerUsecase(MarkerUsecaseDeps{})
	if err := uc.SaveData(nil, "out.yaml", &model.RigData{}); err == nil {
		t.Fatalf("writer should be required")
	}

	repo := newMemoryRigRepository()
	if err := uc.SaveData(repo, " ", &model.RigData{}); err == nil {
		t.Fatalf("path should be required")
	}
	if err := uc.SaveData(repo, filepath.Join(t.TempDir(), "out.yaml"), nil); err == nil {
		t.Fatalf("data should be required")
	}
}
