// 指示: miu200521358
// Package markerdata はマーカーデータ文書を YAML/TOML で読み書きする。
package markerdata

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/miu200521358/mu_rigmarker/pkg/adapter/io_common"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"gopkg.in/yaml.v3"
)

// Format は文書の書式を表す。
type Format string

const (
	FORMAT_YAML Format = "yaml"
	FORMAT_TOML Format = "toml"
)

const (
	yamlIndent       = 2
	documentFileMode = 0o644
)

// LoadProgressEventType はマーカーデータ読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeDecoded は文書解析完了イベントを表す。
	LoadProgressEventTypeDecoded LoadProgressEventType = "decoded"
	// LoadProgressEventTypeCompleted は読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はマーカーデータ読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type          LoadProgressEventType
	FileSizeBytes int
	SystemCount   int
	MarkerCount   int
}

// MarkerDataRepository はマーカーデータ文書とスケルトン文書の読み書きを表す。
type MarkerDataRepository struct {
	loadProgressReporter func(LoadProgressEvent)
	logger               *logging.Logger
}

// NewMarkerDataRepository は MarkerDataRepository を生成する。
func NewMarkerDataRepository() *MarkerDataRepository {
	return &MarkerDataRepository{logger: logging.DefaultLogger()}
}

// SetLoadProgressReporter は読込進捗受信コールバックを設定する。
func (r *MarkerDataRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// FormatOf は拡張子から書式を判定する。
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FORMAT_YAML, true
	case ".toml":
		return FORMAT_TOML, true
	}
	return "", false
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *MarkerDataRepository) CanLoad(path string) bool {
	_, ok := FormatOf(path)
	return ok
}

// InferName はパスから表示名を推定する。
func (r *MarkerDataRepository) InferName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load はマーカーデータ文書を読み込む。未知のキーはエラーにする。
func (r *MarkerDataRepository) Load(path string) (*model.RigData, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	r.logger.With(logging.Path(path)).Info("マーカーデータ読込開始")

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("マーカーデータの読み取りに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: len(b),
	})

	data, err := Decode(b, format)
	if err != nil {
		return nil, err
	}
	markerCount := 0
	for _, system := range data.Systems {
		markerCount += system.MarkerCount()
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:        LoadProgressEventTypeDecoded,
		SystemCount: len(data.Systems),
		MarkerCount: markerCount,
	})

	if err := validate(data); err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:        LoadProgressEventTypeCompleted,
		SystemCount: len(data.Systems),
		MarkerCount: markerCount,
	})
	r.logger.With(logging.Path(path), logging.Count(len(data.Systems))).Info("マーカーデータ読込完了")
	return data, nil
}

// Decode はバイト列をマーカーデータ文書へ解析する。
func Decode(b []byte, format Format) (*model.RigData, error) {
	data := &model.RigData{}
	switch format {
	case FORMAT_YAML:
		decoder := yaml.NewDecoder(bytes.NewReader(b))
		decoder.KnownFields(true)
		if err := decoder.Decode(data); err != nil && !errors.Is(err, io.EOF) {
			return nil, io_common.NewIoParseFailed("YAMLの解析に失敗しました", err)
		}
	case FORMAT_TOML:
		meta, err := toml.Decode(string(b), data)
		if err != nil {
			return nil, io_common.NewIoParseFailed("TOMLの解析に失敗しました", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, io_common.NewIoParseFailed("TOMLに未知のキーがあります: %s", nil, undecoded[0].String())
		}
	default:
		return nil, io_common.NewIoFormatNotSupported("書式が未対応です: %s", nil, format)
	}
	return data, nil
}

// validate は文書の構造を検証する。値の意味はシステム生成時に検証する。
func validate(data *model.RigData) error {
	for i, system := range data.Systems {
		if strings.TrimSpace(system.Part) == "" {
			return io_common.NewIoParseFailed("systems[%d] の part が未指定です", nil, i)
		}
		if len(system.Chains) == 0 {
			return io_common.NewIoParseFailed("systems[%d] (%s) にチェーンがありません", nil, i, system.Part)
		}
	}
	return nil
}

// Save は文書を拡張子に応じた書式で保存する。
func (r *MarkerDataRepository) Save(path string, data any) error {
	format, ok := FormatOf(path)
	if !ok {
		return io_common.NewIoExtInvalid(path, nil)
	}
	if data == nil {
		return io_common.NewIoSaveFailed("保存対象データが未設定です", nil)
	}
	b, err := Encode(data, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, documentFileMode); err != nil {
		return io_common.NewIoSaveFailed("文書の書き込みに失敗しました: %s", err, path)
	}
	r.logger.With(logging.Path(path)).Info("文書保存完了")
	return nil
}

// Encode は文書を指定書式のバイト列へ変換する。
func Encode(data any, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FORMAT_YAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(yamlIndent)
		if err := encoder.Encode(data); err != nil {
			return nil, io_common.NewIoSaveFailed("YAMLの生成に失敗しました", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, io_common.NewIoSaveFailed("YAMLの生成に失敗しました", err)
		}
	case FORMAT_TOML:
		if err := toml.NewEncoder(&buf).Encode(data); err != nil {
			return nil, io_common.NewIoSaveFailed("TOMLの生成に失敗しました", err)
		}
	default:
		return nil, io_common.NewIoFormatNotSupported("書式が未対応です: %s", nil, format)
	}
	return buf.Bytes(), nil
}

// reportLoadProgress は読込進捗を通知する。
func (r *MarkerDataRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// String は書式名を返す。
func (f Format) String() string {
	return string(f)
}
