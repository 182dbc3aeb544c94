// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// PrepareProgressEventType はリグ準備処理の進捗イベント種別を表す。
type PrepareProgressEventType string

const (
	// PrepareProgressEventTypeInputValidated は入力検証完了イベントを表す。
	PrepareProgressEventTypeInputValidated PrepareProgressEventType = "input_validated"
	// PrepareProgressEventTypeOutputPathResolved は出力パス解決完了イベントを表す。
	PrepareProgressEventTypeOutputPathResolved PrepareProgressEventType = "output_path_resolved"
	// PrepareProgressEventTypeRigDataValidated はマーカーデータ検証完了イベントを表す。
	PrepareProgressEventTypeRigDataValidated PrepareProgressEventType = "rig_data_validated"
	// PrepareProgressEventTypeSystemCreated はマーカーシステム生成イベントを表す。
	PrepareProgressEventTypeSystemCreated PrepareProgressEventType = "system_created"
	// PrepareProgressEventTypeSystemsConnected はシステム間接続完了イベントを表す。
	PrepareProgressEventTypeSystemsConnected PrepareProgressEventType = "systems_connected"
	// PrepareProgressEventTypeMirrored はミラー完了イベントを表す。
	PrepareProgressEventTypeMirrored PrepareProgressEventType = "mirrored"
	// PrepareProgressEventTypeSkeletonBuilt はスケルトン生成完了イベントを表す。
	PrepareProgressEventTypeSkeletonBuilt PrepareProgressEventType = "skeleton_built"
)

// PrepareProgressEvent はリグ準備処理の進捗イベントを表す。
type PrepareProgressEvent struct {
	Type        PrepareProgressEventType
	SystemName  string
	SystemCount int
	MarkerCount int
	JointCount  int
}

// IPrepareProgressReporter はリグ準備処理の進捗通知契約を表す。
type IPrepareProgressReporter interface {
	// ReportPrepareProgress はリグ準備処理進捗を通知する。
	ReportPrepareProgress(event PrepareProgressEvent)
}

// ConvertRequest はマーカーデータからのリグ生成要求を表す。
type ConvertRequest struct {
	InputPath  string
	OutputPath string
	RigData    *model.RigData
	Scene      moutput.IScene
	Settings   *model.RigSettings
	// Mirror は左右システムのミラー先を生成/更新する。
	Mirror bool
	// SkipSkeleton はスケルトンの生成と保存を行わない。
	SkipSkeleton     bool
	SkeletonParent   string
	Reader           moutput.IRigDataReader
	Writer           moutput.IRigDataWriter
	ProgressReporter IPrepareProgressReporter
}

// ConvertResult はリグ生成結果を表す。
type ConvertResult struct {
	Context    *RigContext
	Systems    []*model.MarkerSystem
	Skeleton   *model.SkeletonData
	OutputPath string
	Warnings   []RigWarning
}
