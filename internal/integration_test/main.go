// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_rigmarker/pkg/adapter/io_model/markerdata"
	"github.com/miu200521358/mu_rigmarker/pkg/adapter/scene"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/minteractor"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"github.com/urfave/cli/v3"
)

const (
	batchOutputDirMode = 0o755
)

// 変換結果の状態。
const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
	statusDryRun    = "dry_run"
)

// batchConfig はバッチ変換の実行設定を表す。
type batchConfig struct {
	InputDir   string
	OutputRoot string
	Mirror     bool
	DryRun     bool
	FailFast   bool
}

// conversionEntry は1文書分の変換入力情報を表す。
type conversionEntry struct {
	Index      int
	SourcePath string
	RigName    string
	CaseDir    string
	OutputPath string
}

// conversionResult は1文書分の変換結果を表す。
type conversionResult struct {
	Entry            conversionEntry
	Status           string
	Duration         time.Duration
	Err              error
	Warnings         int
	PrepareStageInfo string
}

// prepareProgressCollector は PrepareRig の進捗イベントを収集する。
type prepareProgressCollector struct {
	eventCounts map[minteractor.PrepareProgressEventType]int
	systemMax   int
	markerTotal int
	jointTotal  int
}

// main はマーカーデータ文書フォルダの一括リグ生成を実行する。
func main() {
	if err := newBatchCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// newBatchCommand はバッチ実行コマンドを組み立てる。
func newBatchCommand(out io.Writer) *cli.Command {
	defaultInputDir, defaultOutputRoot := resolveDefaultDirs()
	return &cli.Command{
		Name:   "rigmarker_batch",
		Usage:  "マーカーデータ文書フォルダを一括でリグ生成する",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input-dir", Value: defaultInputDir, Usage: "マーカーデータ文書フォルダ"},
			&cli.StringFlag{Name: "output-root", Value: defaultOutputRoot, Usage: "変換結果の出力ルートディレクトリ"},
			&cli.BoolFlag{Name: "mirror", Value: true, Usage: "左右システムのミラー先を生成する"},
			&cli.BoolFlag{Name: "dry-run", Usage: "実変換せず、入力解決と出力先計画のみ表示する"},
			&cli.BoolFlag{Name: "fail-fast", Usage: "失敗時に即時終了する"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config, err := newBatchConfig(cmd)
			if err != nil {
				return fmt.Errorf("設定解析に失敗しました: %w", err)
			}
			entries, err := buildConversionEntries(config.OutputRoot, config.InputDir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return errors.New("変換対象のマーカーデータ文書がありません")
			}
			results := executeBatchConversion(out, config, entries)
			printBatchSummary(out, results)
			for _, result := range results {
				if result.Status == statusFailed {
					return fmt.Errorf("変換に失敗した文書があります: %s", result.Entry.SourcePath)
				}
			}
			return nil
		},
	}
}

// newBatchConfig はコマンド引数から実行設定を構築する。
func newBatchConfig(cmd *cli.Command) (batchConfig, error) {
	inputDir := strings.TrimSpace(cmd.String("input-dir"))
	if inputDir == "" {
		return batchConfig{}, errors.New("input-dir が空です")
	}
	outputRoot := strings.TrimSpace(cmd.String("output-root"))
	if outputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	return batchConfig{
		InputDir:   filepath.Clean(inputDir),
		OutputRoot: filepath.Clean(outputRoot),
		Mirror:     cmd.Bool("mirror"),
		DryRun:     cmd.Bool("dry-run"),
		FailFast:   cmd.Bool("fail-fast"),
	}, nil
}

// resolveDefaultDirs はスクリプト配置ディレクトリ基準の既定入力先と出力先を返す。
func resolveDefaultDirs() (string, string) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "testdata", "output"
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "testdata"), filepath.Join(currentDir, "output")
}

// buildConversionEntries は入力フォルダ内の読み込み可能な文書から変換対象エントリを生成する。
func buildConversionEntries(outputRoot string, inputDir string) ([]conversionEntry, error) {
	dirEntries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("入力フォルダの読み込みに失敗しました: %w", err)
	}
	repository := markerdata.NewMarkerDataRepository()
	paths := make([]string, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		path := filepath.Join(inputDir, dirEntry.Name())
		if dirEntry.IsDir() || !repository.CanLoad(path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	entries := make([]conversionEntry, 0, len(paths))
	for i, path := range paths {
		rigName := sanitizePathComponent(repository.InferName(path))
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", i+1, rigName))
		entries = append(entries, conversionEntry{
			Index:      i + 1,
			SourcePath: path,
			RigName:    rigName,
			CaseDir:    caseDir,
			OutputPath: filepath.Join(caseDir, rigName+"_skeleton.yaml"),
		})
	}
	return entries, nil
}

// executeBatchConversion は全文書の変換処理を順次実行する。
func executeBatchConversion(out io.Writer, config batchConfig, entries []conversionEntry) []conversionResult {
	results := make([]conversionResult, 0, len(entries))
	repository := markerdata.NewMarkerDataRepository()
	usecase := minteractor.NewMarkerUsecase(minteractor.MarkerUsecaseDeps{
		DataReader: repository,
		DataWriter: repository,
		NewScene: func() moutput.IScene {
			return scene.NewScene()
		},
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Fprintf(out, "[%d/%d] 変換開始: rig=%s\n", entry.Index, total, entry.RigName)
		result := convertRigEntry(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case statusSucceeded:
			fmt.Fprintf(out, "[%d/%d] 変換成功: rig=%s output=%s warnings=%d elapsed=%s\n",
				entry.Index, total, entry.RigName, entry.OutputPath, result.Warnings, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.PrepareStageInfo) != "" {
				fmt.Fprintf(out, "[%d/%d] PrepareRig進捗: %s\n", entry.Index, total, result.PrepareStageInfo)
			}
		case statusDryRun:
			fmt.Fprintf(out, "[%d/%d] DRY-RUN: rig=%s input=%s output=%s\n", entry.Index, total, entry.RigName, entry.SourcePath, entry.OutputPath)
		default:
			fmt.Fprintf(out, "[%d/%d] 変換失敗: rig=%s reason=%v\n", entry.Index, total, entry.RigName, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// convertRigEntry は1文書分の変換を実行する。
func convertRigEntry(usecase *minteractor.MarkerUsecase, config batchConfig, entry conversionEntry) conversionResult {
	result := conversionResult{
		Entry:  entry,
		Status: statusFailed,
	}
	if config.DryRun {
		result.Status = statusDryRun
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	progressCollector := newPrepareProgressCollector()
	converted, err := usecase.Convert(minteractor.ConvertRequest{
		InputPath:        entry.SourcePath,
		OutputPath:       entry.OutputPath,
		Mirror:           config.Mirror,
		ProgressReporter: progressCollector,
	})
	if err != nil {
		result.Err = fmt.Errorf("Convertに失敗しました: %w", err)
		return result
	}
	if converted == nil || converted.Skeleton == nil {
		result.Err = errors.New("Convert結果が空です")
		return result
	}

	result.Status = statusSucceeded
	result.Duration = time.Since(startedAt)
	result.Warnings = len(converted.Warnings)
	result.PrepareStageInfo = progressCollector.Summary()
	return result
}

// printBatchSummary は変換結果の集計を表示する。
func printBatchSummary(out io.Writer, results []conversionResult) {
	counts := map[string]int{}
	for _, result := range results {
		counts[result.Status]++
	}
	fmt.Fprintf(out,
		"バッチ変換サマリ: total=%d succeeded=%d failed=%d dry_run=%d\n",
		len(results),
		counts[statusSucceeded],
		counts[statusFailed],
		counts[statusDryRun],
	)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "rig"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "rig"
	}
	return replaced
}

// newPrepareProgressCollector は PrepareRig 進捗収集器を生成する。
func newPrepareProgressCollector() *prepareProgressCollector {
	return &prepareProgressCollector{
		eventCounts: map[minteractor.PrepareProgressEventType]int{},
	}
}

// ReportPrepareProgress は PrepareRig の進捗イベントを収集する。
func (collector *prepareProgressCollector) ReportPrepareProgress(event minteractor.PrepareProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.PrepareProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	collector.systemMax = max(collector.systemMax, event.SystemCount)
	if event.Type == minteractor.PrepareProgressEventTypeSystemCreated {
		collector.markerTotal += event.MarkerCount
	}
	collector.jointTotal += event.JointCount
}

// Summary は収集した PrepareRig 進捗の要約文字列を返す。
func (collector *prepareProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d systems=%d markers=%d joints=%d stages=%s",
		len(collector.eventCounts),
		collector.systemMax,
		collector.markerTotal,
		collector.jointTotal,
		strings.Join(types, ","),
	)
}
