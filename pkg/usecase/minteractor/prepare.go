// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// SystemSummary は生成済みマーカーシステムの概要を表す。
type SystemSummary struct {
	Name         string
	Side         string
	ChainCount   int
	MarkerCount  int
	LeafCount    int
	ParentMarker string
	ConnectMode  model.ConnectMode
}

// PrepareRig はマーカーデータを読み込み、シーンへマーカーシステム群を生成する。
// スケルトンの生成と保存は行わない。失敗した場合はシーンを生成前の状態へ戻す。
func (uc *MarkerUsecase) PrepareRig(request ConvertRequest) (*ConvertResult, error) {
	if strings.TrimSpace(request.InputPath) == "" && request.RigData == nil {
		return nil, fmt.Errorf("入力マーカーデータパスが未指定です")
	}
	reportPrepareProgress(request.ProgressReporter, PrepareProgressEvent{
		Type: PrepareProgressEventTypeInputValidated,
	})

	outputPath := ""
	if !request.SkipSkeleton {
		resolved, err := resolveOutputPath(request.InputPath, request.OutputPath)
		if err != nil {
			return nil, err
		}
		outputPath = resolved
	}
	reportPrepareProgress(request.ProgressReporter, PrepareProgressEvent{
		Type: PrepareProgressEventTypeOutputPathResolved,
	})

	rigData, err := uc.resolveRigData(request.Reader, request.InputPath, request.RigData)
	if err != nil {
		return nil, err
	}
	markerCount := 0
	for _, system := range rigData.Systems {
		markerCount += system.MarkerCount()
	}
	reportPrepareProgress(request.ProgressReporter, PrepareProgressEvent{
		Type:        PrepareProgressEventTypeRigDataValidated,
		SystemCount: len(rigData.Systems),
		MarkerCount: markerCount,
	})

	scene, err := uc.resolveScene(request.Scene)
	if err != nil {
		return nil, err
	}
	settings := model.NewRigSettings()
	if request.Settings != nil {
		settings = *request.Settings
	}
	if strings.TrimSpace(request.SkeletonParent) != "" {
		settings.SkeletonParent = strings.TrimSpace(request.SkeletonParent)
	}
	rc := NewRigContext(scene, settings)

	err = Atomic(rc, func() error {
		systems := make([]*model.MarkerSystem, 0, len(rigData.Systems))
		for _, data := range rigData.Systems {
			sys, err := CreateMarkerSystem(rc, NewCreateRequest(data, false))
			if err != nil {
				return err
			}
			systems = append(systems, sys)
			reportPrepareProgress(request.ProgressReporter, PrepareProgressEvent{
				Type:        PrepareProgressEventTypeSystemCreated,
				SystemName:  sys.Name,
				MarkerCount: sys.Len(),
			})
		}

		for i, data := range rigData.Systems {
			if strings.TrimSpace(data.ParentMarker) == "" {
				continue
			}
			mode, err := model.ParseConnectMode(data.ConnectMode)
			if err != nil {
				return merrors.NewConfigError(-1, data.ParentMarker, "%s: %v", systems[i].Name, err)
			}
			if _, err := SetParentMarker(rc, systems[i], resolveParentMarkerName(rc, data.ParentMarker), mode); err != nil {
				return err
			}
		}
		reportPrepareProgress(request.ProgressReporter, PrepareProgressEvent{
			Type:        PrepareProgressEventTypeSystemsConnected,
			SystemCount: len(systems),
		})

		if request.Mirror {
			if err := MirrorAll(rc); err != nil {
				return err
			}
			reportPrepareProgress(request.ProgressReporter, PrepareProgressEvent{
				Type:        PrepareProgressEventTypeMirrored,
				SystemCount: len(rc.Systems()),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ConvertResult{
		Context:    rc,
		Systems:    rc.Systems(),
		OutputPath: outputPath,
		Warnings:   rc.Warnings(),
	}, nil
}

// Summarize は登録済みシステムの概要を登録順に返す。
func Summarize(rc *RigContext) []SystemSummary {
	summaries := make([]SystemSummary, 0, len(rc.order))
	for _, sys := range rc.Systems() {
		leafs := 0
		for _, marker := range sys.Markers {
			if sys.IsLeaf(marker) {
				leafs++
			}
		}
		summaries = append(summaries, SystemSummary{
			Name:         sys.Name,
			Side:         sys.Side,
			ChainCount:   len(sys.Chains),
			MarkerCount:  sys.Len(),
			LeafCount:    leafs,
			ParentMarker: sys.ParentMarker.Name,
			ConnectMode:  ConnectMode(rc, sys),
		})
	}
	return summaries
}

// resolveParentMarkerName はデータ上の親マーカー名をシーン上のマーカー名へ解決する。
// 登録済みのマーカー名でなければ MARKER 拡張子を補った名前を試す。
func resolveParentMarkerName(rc *RigContext, name string) string {
	name = strings.TrimSpace(name)
	if _, _, ok := rc.FindMarker(name); ok {
		return name
	}
	for _, sys := range rc.Systems() {
		normalized, err := normalizeMarkerName(sys.Part, sys.Side, name)
		if err != nil {
			continue
		}
		if _, ok := sys.MarkerByName(normalized); ok {
			return normalized
		}
	}
	return name
}

// resolveRigData は生成対象のマーカーデータを解決し、検証する。
func (uc *MarkerUsecase) resolveRigData(rep moutput.IRigDataReader, inputPath string, rigData *model.RigData) (*model.RigData, error) {
	resolved := rigData
	if resolved == nil {
		loaded, err := uc.LoadRigData(rep, inputPath)
		if err != nil {
			return nil, err
		}
		resolved = loaded
	}
	if resolved == nil {
		return nil, fmt.Errorf("マーカーデータ読み込み結果が空です")
	}
	if len(resolved.Systems) == 0 {
		return nil, fmt.Errorf("マーカーシステムが定義されていません")
	}
	return resolved, nil
}

// resolveScene は処理対象のシーンを解決する。
func (uc *MarkerUsecase) resolveScene(scene moutput.IScene) (moutput.IScene, error) {
	if scene != nil {
		return scene, nil
	}
	if uc.newScene == nil {
		return nil, fmt.Errorf("シーンが設定されていません")
	}
	return uc.newScene(), nil
}

// reportPrepareProgress はリグ準備処理の進捗を通知する。
func reportPrepareProgress(reporter IPrepareProgressReporter, event PrepareProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportPrepareProgress(event)
}
