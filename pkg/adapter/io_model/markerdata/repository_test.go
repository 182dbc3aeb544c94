// 指示: miu200521358
package markerdata

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/io_common"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"gonum.org/v1/gonum/spatial/r3"
)

const sampleYAML = `systems:
  - part: spine
    side: M
    chains:
      - aim_axis: "y"
        up_axis: z
        markers:
          - name: s0
            position: [0, 0, 0]
            rotation: aim
          - name: s1
            position: [0, 10, 0]
            rotation: aim
  - part: arm
    side: L
    parent_marker: spine_s1_M
    connect_mode: follow
    chains:
      - line_ids: [0, 2]
        markers:
          - name: a0
            position: [2, 10, 0]
            rotation: aim
            up_type: [0, 0, 1]
          - name: a1
            position: [5, 10, 0]
            rotation: aim
          - name: a2
            position: [8, 10, 0]
            rotation: [0, 0, 30]
`

const sampleTOML = `[[systems]]
part = "leg"
side = "R"

[[systems.chains]]
aim_axis = "-x"
up_axis = "z"
plane_ids = [0, -1]

[[systems.chains.markers]]
name = "hip"
position = [-1.0, 9.0, 0.0]
rotation = "aim"
up_type = "plane"

[[systems.chains.markers]]
name = "knee"
position = [-1.0, 5.0, 1.0]
rotation = "aim"
up_type = "plane"

[[systems.chains.markers]]
name = "ankle"
position = [-1.0, 1.0, 0.0]
rotation = [0.0, 0.0, 30.0]
`

func writeFile(t *testing.T, name string, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "rig.yaml", sampleYAML)
	repo := NewMarkerDataRepository()
	events := make([]LoadProgressEvent, 0)
	repo.SetLoadProgressReporter(func(event LoadProgressEvent) {
		events = append(events, event)
	})

	data, err := repo.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(data.Systems) != 2 {
		t.Fatalf("system count mismatch: got=%d want=2", len(data.Systems))
	}
	arm := data.Systems[1]
	if arm.ParentMarker != "spine_s1_M" || arm.ConnectMode != "follow" {
		t.Fatalf("connection mismatch: got=%+v", arm)
	}
	if !slices.Equal(arm.Chains[0].LineIDs, []int{0, 2}) {
		t.Fatalf("line ids mismatch: got=%v", arm.Chains[0].LineIDs)
	}
	if data.Systems[0].Chains[0].AimAxis != "y" {
		t.Fatalf("aim axis mismatch: got=%s", data.Systems[0].Chains[0].AimAxis)
	}

	rotation, err := model.ParseRotationValue(arm.Chains[0].Markers[2].Rotation)
	if err != nil || rotation.Kind != model.ROTATION_FIXED || rotation.Euler != (r3.Vec{X: 0, Y: 0, Z: 30}) {
		t.Fatalf("fixed rotation mismatch: got=%+v err=%v", rotation, err)
	}
	up, err := model.ParseUpValue(arm.Chains[0].Markers[0].UpType)
	if err != nil || up.Kind != model.UP_VECTOR || up.Vector != (r3.Vec{X: 0, Y: 0, Z: 1}) {
		t.Fatalf("up vector mismatch: got=%+v err=%v", up, err)
	}

	wantTypes := []LoadProgressEventType{
		LoadProgressEventTypeFileReadComplete,
		LoadProgressEventTypeDecoded,
		LoadProgressEventTypeCompleted,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("event count mismatch: got=%d want=%d", len(events), len(wantTypes))
	}
	for i, event := range events {
		if event.Type != wantTypes[i] {
			t.Fatalf("event type mismatch: index=%d got=%s want=%s", i, event.Type, wantTypes[i])
		}
	}
	if events[2].SystemCount != 2 || events[2].MarkerCount != 5 {
		t.Fatalf("completed event mismatch: got=%+v", events[2])
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "rig.toml", sampleTOML)
	data, err := NewMarkerDataRepository().Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	chain := data.Systems[0].Chains[0]
	if data.Systems[0].Side != "R" || chain.AimAxis != "-x" || !slices.Equal(chain.PlaneIDs, []int{0, -1}) {
		t.Fatalf("system mismatch: got=%+v", data.Systems[0])
	}
	if len(chain.Markers) != 3 || chain.Markers[1].UpType != "plane" {
		t.Fatalf("markers mismatch: got=%+v", chain.Markers)
	}
	position, err := chain.Markers[1].PositionVec()
	if err != nil || position != (r3.Vec{X: -1, Y: 5, Z: 1}) {
		t.Fatalf("position mismatch: got=%v err=%v", position, err)
	}
	rotation, err := model.ParseRotationValue(chain.Markers[2].Rotation)
	if err != nil || rotation.Kind != model.ROTATION_FIXED {
		t.Fatalf("fixed rotation mismatch: got=%+v err=%v", rotation, err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		path string
		kind io_common.IoErrorKind
	}{
		{name: "拡張子", path: writeFile(t, "rig.json", "{}"), kind: io_common.IO_ERROR_EXT_INVALID},
		{name: "存在しない", path: filepath.Join(dir, "missing.yaml"), kind: io_common.IO_ERROR_FILE_NOT_FOUND},
		{name: "YAML未知キー", path: writeFile(t, "unknown.yaml", "systems:\n  - part: arm\n    color: red\n"), kind: io_common.IO_ERROR_PARSE_FAILED},
		{name: "YAML構文", path: writeFile(t, "broken.yml", "systems: [\n"), kind: io_common.IO_ERROR_PARSE_FAILED},
		{name: "TOML未知キー", path: writeFile(t, "unknown.toml", "[[systems]]\npart = \"arm\"\ncolor = \"red\"\n"), kind: io_common.IO_ERROR_PARSE_FAILED},
		{name: "part未指定", path: writeFile(t, "nopart.yaml", "systems:\n  - side: L\n    chains:\n      - markers: []\n"), kind: io_common.IO_ERROR_PARSE_FAILED},
		{name: "チェーンなし", path: writeFile(t, "nochain.yaml", "systems:\n  - part: arm\n    side: L\n"), kind: io_common.IO_ERROR_PARSE_FAILED},
	}
	repo := NewMarkerDataRepository()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Load(tc.path)
			if !io_common.IsIoError(err, tc.kind) {
				t.Fatalf("error kind mismatch: got=%v want=%s", err, tc.kind)
			}
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	data, err := NewMarkerDataRepository().Load(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("empty document should load: %v", err)
	}
	if len(data.Systems) != 0 {
		t.Fatalf("empty document should have no systems: got=%d", len(data.Systems))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	source := &model.RigData{Systems: []model.SystemData{{
		Part:         "arm",
		Side:         "L",
		ParentMarker: "spine_s1_M_MARKER",
		ConnectMode:  "aim",
		Chains: []model.ChainData{{
			AimAxis:        "x",
			UpAxis:         "-z",
			UpCtrlPosition: []float64{1, 2, 3},
			Markers: []model.MarkerData{
				{Name: "arm_a0_L_MARKER", Position: []float64{2, 10, 0}, Rotation: "aim", UpType: "ctrl"},
				{Name: "arm_a1_L_MARKER", Position: []float64{5.5, 10, -1}, Rotation: []float64{10, 20, 30}},
			},
		}},
	}}}

	for _, name := range []string{"rig.yaml", "rig.yml", "rig.toml"} {
		name := name
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			repo := NewMarkerDataRepository()
			if err := repo.Save(path, source); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			loaded, err := repo.Load(path)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			got := loaded.Systems[0]
			if got.Part != "arm" || got.ParentMarker != "spine_s1_M_MARKER" || got.ConnectMode != "aim" {
				t.Fatalf("system mismatch: got=%+v", got)
			}
			chain := got.Chains[0]
			if chain.UpAxis != "-z" || !slices.Equal(chain.UpCtrlPosition, []float64{1, 2, 3}) {
				t.Fatalf("chain mismatch: got=%+v", chain)
			}
			if chain.LineIDs != nil {
				t.Fatalf("line ids should be omitted: got=%v", chain.LineIDs)
			}
			if !slices.Equal(chain.Markers[1].Position, []float64{5.5, 10, -1}) {
				t.Fatalf("position mismatch: got=%v", chain.Markers[1].Position)
			}
			if chain.Markers[0].Rotation != "aim" || chain.Markers[0].UpType != "ctrl" {
				t.Fatalf("policy tokens mismatch: got=%+v", chain.Markers[0])
			}
			rotation, err := model.ParseRotationValue(chain.Markers[1].Rotation)
			if err != nil || rotation.Euler != (r3.Vec{X: 10, Y: 20, Z: 30}) {
				t.Fatalf("fixed rotation mismatch: got=%+v err=%v", rotation, err)
			}
			if chain.Markers[1].UpType != nil {
				t.Fatalf("empty up type should stay empty: got=%v", chain.Markers[1].UpType)
			}
		})
	}
}

func TestSaveSkeletonData(t *testing.T) {
	skeleton := &model.SkeletonData{Joints: []model.JointData{{
		Name:        "arm_a0_L_RIGJNT",
		System:      "arm_L_MROOT",
		Marker:      "arm_a0_L_MARKER",
		Position:    []float64{2, 10, 0},
		JointOrient: []float64{0, 0, 0},
		RotateOrder: "xyz",
	}}}
	repo := NewMarkerDataRepository()

	yamlPath := filepath.Join(t.TempDir(), "skeleton.yaml")
	if err := repo.Save(yamlPath, skeleton); err != nil {
		t.Fatalf("save yaml failed: %v", err)
	}
	b, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(b), "name: arm_a0_L_RIGJNT") || strings.Contains(string(b), "parent:") {
		t.Fatalf("yaml content mismatch:\n%s", string(b))
	}

	tomlPath := filepath.Join(t.TempDir(), "skeleton.toml")
	if err := repo.Save(tomlPath, skeleton); err != nil {
		t.Fatalf("save toml failed: %v", err)
	}
	b, err = os.ReadFile(tomlPath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(b), "[[joints]]") || !strings.Contains(string(b), `rotate_order = "xyz"`) {
		t.Fatalf("toml content mismatch:\n%s", string(b))
	}
}

func TestSaveErrors(t *testing.T) {
	repo := NewMarkerDataRepository()
	if err := repo.Save(filepath.Join(t.TempDir(), "rig.json"), &model.RigData{}); !io_common.IsIoError(err, io_common.IO_ERROR_EXT_INVALID) {
		t.Fatalf("ext error expected: got=%v", err)
	}
	if err := repo.Save(filepath.Join(t.TempDir(), "rig.yaml"), nil); !io_common.IsIoError(err, io_common.IO_ERROR_SAVE_FAILED) {
		t.Fatalf("save error expected: got=%v", err)
	}
	missingDir := filepath.Join(t.TempDir(), "missing", "rig.yaml")
	if err := repo.Save(missingDir, &model.RigData{}); !io_common.IsIoError(err, io_common.IO_ERROR_SAVE_FAILED) {
		t.Fatalf("write error expected: got=%v", err)
	}
}

func TestFormatOf(t *testing.T) {
	cases := []struct {
		path string
		want Format
		ok   bool
	}{
		{path: "a.yaml", want: FORMAT_YAML, ok: true},
		{path: "a.YML", want: FORMAT_YAML, ok: true},
		{path: "a.toml", want: FORMAT_TOML, ok: true},
		{path: "a.json", ok: false},
	}
	for _, tc := range cases {
		got, ok := FormatOf(tc.path)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("format mismatch: path=%s got=%s/%v want=%s/%v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
	if name := NewMarkerDataRepository().InferName(filepath.Join("dir", "rig.yaml")); name != "rig" {
		t.Fatalf("infer name mismatch: got=%s", name)
	}
}
