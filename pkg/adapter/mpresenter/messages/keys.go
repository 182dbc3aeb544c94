// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーと翻訳カタログを提供する。
package messages

// メッセージキー一覧。キーは日本語の表示文をそのまま使う。
const (
	HelpAppUsage        = "マーカーデータからリグジョイントを生成する"
	HelpBuildUsage      = "マーカーデータからマーカーシステムとスケルトンを生成する"
	HelpInspectUsage    = "マーカーデータのシステム構成を表示する"
	HelpMirrorDataUsage = "マーカーデータの左右システムを反転して書き出す"
	HelpFlagConfig      = "設定ファイルパス (TOML)"
	HelpFlagOut         = "出力ファイルパス (.yaml/.yml/.toml)"
	HelpFlagMirror      = "左右システムのミラー先を生成する"
	HelpFlagNoSkeleton  = "スケルトンを生成しない"
	HelpFlagParent      = "スケルトンのルートジョイントの親ノード"
	HelpFlagVerbose     = "詳細ログを出力する"
	HelpFlagNoColor     = "色付き出力を無効にする"
	HelpFlagLang        = "表示言語 (ja/en)"

	LabelSystem      = "システム"
	LabelSide        = "左右"
	LabelChains      = "チェーン"
	LabelMarkers     = "マーカー"
	LabelLeafs       = "末端"
	LabelParent      = "親マーカー"
	LabelConnectMode = "接続モード"

	MessageInputRequired  = "入力マーカーデータを指定してください"
	MessageLoadStart      = "読み込み開始: %s"
	MessageSystemCreated  = "システム生成: %s (マーカー %d)"
	MessageConnected      = "システム接続完了: %d システム"
	MessageMirrored       = "ミラー完了: %d システム"
	MessageSkeletonBuilt  = "スケルトン生成完了: %d ジョイント"
	MessageSaveComplete   = "保存完了: %s"
	MessageBuildComplete  = "リグ生成完了: %d システム"
	MessageBuildFailed    = "リグ生成失敗"
	MessageWarningSummary = "警告 %d 件"
	MessageMirrorDataDone = "ミラーデータ保存完了: %s (%d システム)"

	WarningNotMarker           = "親候補がマーカーではありません"
	WarningSameSystem          = "親候補が同じシステムに属しています"
	WarningNonLeafMode         = "末端でない親マーカーのため接続モードを none にしました"
	WarningAimModeRotation     = "親マーカーの回転方針が aim 接続に合いません"
	WarningParentJointMissing  = "親マーカーのジョイントが見つかりません"
	WarningMirrorTargetMissing = "ミラー先ノードが見つかりません"
	WarningMirrorParentMissing = "ミラー先の親マーカーが見つかりません"
)
