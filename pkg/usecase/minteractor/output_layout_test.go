// 指示: miu200521358
package minteractor

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildDefaultOutputPathAt(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 5, 0, time.UTC)
	got := buildDefaultOutputPathAt(filepath.Join("rigs", "arm.yaml"), now)
	want := filepath.Join("rigs", "arm_20261018093005", "arm_skeleton.yaml")
	if got != want {
		t.Fatalf("default output path mismatch: got=%s want=%s", got, want)
	}
	if got := buildDefaultOutputPathAt(filepath.Join("rigs", ".yaml"), now); got != "" {
		t.Fatalf("empty base should resolve empty path: got=%s", got)
	}
}

func TestResolveOutputPath(t *testing.T) {
	testCases := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{name: "yaml", output: "out.yaml", wantErr: false},
		{name: "yml upper", output: "OUT.YML", wantErr: false},
		{name: "toml", output: "out.toml", wantErr: false},
		{name: "json", output: "out.json", wantErr: true},
		{name: "no ext", output: "out", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveOutputPath("in.yaml", tc.output)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error mismatch: got=%v wantErr=%t", err, tc.wantErr)
			}
			if err == nil && got != tc.output {
				t.Fatalf("resolved path mismatch: got=%s want=%s", got, tc.output)
			}
		})
	}
}

func TestEnsureOutputDirCreatesNestedDir(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "a", "b", "skeleton.yaml")
	if err := ensureOutputDir(outPath); err != nil {
		t.Fatalf("ensure output dir failed: %v", err)
	}
	info, err := os.Stat(filepath.Dir(outPath))
	if err != nil {
		t.Fatalf("output dir not found: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("output path parent should be a directory")
	}
}
