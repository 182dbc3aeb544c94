// 指示: miu200521358
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/io_model/markerdata"
)

const sampleRig = `systems:
  - part: spine
    side: M
    chains:
      - aim_axis: "y"
        up_axis: z
        markers:
          - name: s0
            position: [0, 0, 0]
          - name: s1
            position: [0, 10, 0]
  - part: arm
    side: L
    parent_marker: spine_s1_M
    connect_mode: follow
    chains:
      - markers:
          - name: a0
            position: [2, 10, 0]
          - name: a1
            position: [5, 10, 0]
          - name: a2
            position: [8, 10, 0]
            rotation: [0, 0, 30]
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rig.yaml")
	if err := os.WriteFile(path, []byte(sampleRig), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(append([]string{"--no-color", "--lang", "en"}, args...), &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestBuildWritesSkeleton(t *testing.T) {
	input := writeSample(t)
	outputPath := filepath.Join(t.TempDir(), "out", "skeleton.yaml")

	out, _, err := runCLI(t, "build", "--out", outputPath, input)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, want := range []string{
		"loading: " + input,
		"system created: arm_L_MROOT (3 markers)",
		"skeleton built: 5 joints",
		"saved: " + outputPath,
		"rig built: 2 systems",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output should contain %q: got=%s", want, out)
		}
	}
	body, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("skeleton file missing: %v", err)
	}
	if !strings.Contains(string(body), "arm_a2_L_RIGJNT") {
		t.Fatalf("skeleton content mismatch: got=%s", body)
	}
}

func TestBuildWithoutSkeleton(t *testing.T) {
	input := writeSample(t)
	out, _, err := runCLI(t, "build", "--no-skeleton", "--mirror", input)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if strings.Contains(out, "saved:") || strings.Contains(out, "skeleton built") {
		t.Fatalf("skeleton should be skipped: got=%s", out)
	}
	if !strings.Contains(out, "mirrored: 3 systems") || !strings.Contains(out, "rig built: 3 systems") {
		t.Fatalf("mirror output mismatch: got=%s", out)
	}
}

func TestBuildFailureReportsError(t *testing.T) {
	input := writeSample(t)
	_, errOut, err := runCLI(t, "build", "--no-skeleton", filepath.Join(filepath.Dir(input), "none.yaml"))
	if err == nil {
		t.Fatalf("missing input file should fail")
	}
	if !strings.Contains(errOut, "rig build failed") {
		t.Fatalf("failure message mismatch: got=%s", errOut)
	}
}

func TestInspectPrintsSummary(t *testing.T) {
	input := writeSample(t)
	out, _, err := runCLI(t, "inspect", input)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("summary lines mismatch: got=%q", out)
	}
	if !strings.HasPrefix(lines[0], "System") || !strings.HasPrefix(lines[1], "spine_M") {
		t.Fatalf("summary header mismatch: got=%q", out)
	}
	if !strings.Contains(lines[2], "spine_s1_M_MARKER") || !strings.HasSuffix(lines[2], "follow") {
		t.Fatalf("summary connection mismatch: got=%q", lines[2])
	}
}

func TestMirrorDataWritesDefaultPath(t *testing.T) {
	input := writeSample(t)
	out, _, err := runCLI(t, "mirror-data", input)
	if err != nil {
		t.Fatalf("mirror-data failed: %v", err)
	}
	outputPath := filepath.Join(filepath.Dir(input), "rig_mirror.yaml")
	if !strings.Contains(out, "mirrored data saved: "+outputPath+" (3 systems)") {
		t.Fatalf("mirror-data output mismatch: got=%s", out)
	}
	data, err := markerdata.NewMarkerDataRepository().Load(outputPath)
	if err != nil {
		t.Fatalf("mirrored data load failed: %v", err)
	}
	if len(data.Systems) != 3 || data.Systems[2].Side != "R" || data.Systems[2].ParentMarker != "spine_s1_M" {
		t.Fatalf("mirrored systems mismatch: got=%+v", data.Systems)
	}
}

func TestCommandErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "入力なし", args: []string{"build"}, want: "specify the input marker data"},
		{name: "設定ファイルなし", args: []string{"--config", filepath.Join(t.TempDir(), "none.toml"), "inspect", "rig.yaml"}, want: "設定ファイル"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, tc.args...)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error mismatch: got=%v want=%s", err, tc.want)
			}
		})
	}
}

func TestMirrorOutputPath(t *testing.T) {
	got := mirrorOutputPath(filepath.Join("work", "rig.toml"))
	want := filepath.Join("work", "rig_mirror.toml")
	if got != want {
		t.Fatalf("mirror output path mismatch: got=%s want=%s", got, want)
	}
}
