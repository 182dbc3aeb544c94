// 指示: miu200521358
package minteractor

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	defaultSkeletonSuffix = "_skeleton"
	defaultOutputExt      = ".yaml"
	outputDirFileMode     = 0o755
)

var (
	nowFunc = time.Now
	// outputExts は保存できる文書の拡張子。
	outputExts = []string{".yaml", ".yml", ".toml"}
)

// BuildDefaultOutputPath は入力マーカーデータパスから既定のスケルトン出力パスを生成する。
func BuildDefaultOutputPath(inputPath string) string {
	return buildDefaultOutputPathAt(inputPath, nowFunc())
}

// buildDefaultOutputPathAt は指定時刻で既定のスケルトン出力パスを生成する。
func buildDefaultOutputPathAt(inputPath string, now time.Time) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	stamp := now.Format("20060102150405")
	outDir := filepath.Join(dir, fmt.Sprintf("%s_%s", base, stamp))
	return filepath.Join(outDir, base+defaultSkeletonSuffix+defaultOutputExt)
}

// resolveOutputPath は保存先パスを解決し、拡張子を検証する。
func resolveOutputPath(inputPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(inputPath)
	}
	if strings.TrimSpace(resolved) == "" {
		return "", fmt.Errorf("保存先パスが未指定です")
	}
	if !IsOutputExt(resolved) {
		return "", fmt.Errorf("保存先拡張子が %s のいずれでもありません: %s", strings.Join(outputExts, ", "), resolved)
	}
	return resolved, nil
}

// IsOutputExt は保存できる拡張子か判定する。
func IsOutputExt(path string) bool {
	return slices.Contains(outputExts, strings.ToLower(filepath.Ext(path)))
}

// ensureOutputDir は保存先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	outputDir := filepath.Dir(outputPath)
	if outputDir == "" || outputDir == "." {
		return nil
	}
	if err := os.MkdirAll(outputDir, outputDirFileMode); err != nil {
		return fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}
