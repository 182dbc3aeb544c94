// 指示: miu200521358
// Package io_config はリグ生成設定を TOML と環境変数から読み込む。
package io_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
)

// 環境変数名。
const (
	EnvMarkerScale    = "MU_RIGMARKER_MARKER_SCALE"
	EnvDefaultAimAxis = "MU_RIGMARKER_DEFAULT_AIM_AXIS"
	EnvDefaultUpAxis  = "MU_RIGMARKER_DEFAULT_UP_AXIS"
	EnvRotateOrder    = "MU_RIGMARKER_ROTATE_ORDER"
	EnvSkeletonParent = "MU_RIGMARKER_SKELETON_PARENT"
	EnvLogLevel       = "MU_RIGMARKER_LOG_LEVEL"
	EnvLogJSON        = "MU_RIGMARKER_LOG_JSON"
)

// RigConfig は設定ファイル全体を表す。
type RigConfig struct {
	Marker   MarkerConfig   `toml:"marker"`
	Skeleton SkeletonConfig `toml:"skeleton"`
	Log      LogConfig      `toml:"log"`
}

// MarkerConfig はマーカー生成の設定を表す。
type MarkerConfig struct {
	Scale          float64 `toml:"scale"`
	DefaultAimAxis string  `toml:"default_aim_axis"`
	DefaultUpAxis  string  `toml:"default_up_axis"`
	UpCtrlOffset   float64 `toml:"up_ctrl_offset"`
	PoleDistance   float64 `toml:"pole_distance"`
}

// SkeletonConfig はスケルトン生成の設定を表す。
type SkeletonConfig struct {
	RotateOrder string `toml:"rotate_order"`
	Parent      string `toml:"parent"`
}

// LogConfig はログ出力の設定を表す。
type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Default は既定設定を返す。
func Default() *RigConfig {
	settings := model.NewRigSettings()
	return &RigConfig{
		Marker: MarkerConfig{
			Scale:          settings.MarkerScale,
			DefaultAimAxis: settings.DefaultAimAxis.String(),
			DefaultUpAxis:  settings.DefaultUpAxis.String(),
			UpCtrlOffset:   settings.UpCtrlOffset,
			PoleDistance:   settings.PoleDistance,
		},
		Skeleton: SkeletonConfig{
			RotateOrder: settings.RotateOrder.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load は設定を読み込む。path が空なら既定値に環境変数を重ねる。
func Load(path string) (*RigConfig, error) {
	if strings.TrimSpace(path) == "" {
		cfg := Default()
		if err := cfg.applyEnvironment(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath は指定パスの TOML を既定値へ重ねて読み込む。未知のキーはエラーにする。
func LoadFromPath(path string) (*RigConfig, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("設定ファイルに未知のキーがあります: %s", undecoded[0].String())
	}
	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment は MU_RIGMARKER_ で始まる環境変数で設定を上書きする。
func (c *RigConfig) applyEnvironment() error {
	if v := os.Getenv(EnvMarkerScale); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s が数値ではありません: %q", EnvMarkerScale, v)
		}
		c.Marker.Scale = scale
	}
	if v := os.Getenv(EnvDefaultAimAxis); v != "" {
		c.Marker.DefaultAimAxis = v
	}
	if v := os.Getenv(EnvDefaultUpAxis); v != "" {
		c.Marker.DefaultUpAxis = v
	}
	if v := os.Getenv(EnvRotateOrder); v != "" {
		c.Skeleton.RotateOrder = v
	}
	if v := os.Getenv(EnvSkeletonParent); v != "" {
		c.Skeleton.Parent = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		c.Log.JSON = parseBool(v)
	}
	return nil
}

// parseBool は真偽値の文字列を解釈する。
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Settings はリグ設定へ変換する。軸と回転順序はここで検証する。
func (c *RigConfig) Settings() (model.RigSettings, error) {
	settings := model.NewRigSettings()
	if c.Marker.Scale <= 0 {
		return settings, fmt.Errorf("marker.scale は正の値である必要があります: %v", c.Marker.Scale)
	}
	aim, err := mmath.ParseAxis(c.Marker.DefaultAimAxis)
	if err != nil {
		return settings, fmt.Errorf("marker.default_aim_axis が不正です: %w", err)
	}
	up, err := mmath.ParseAxis(c.Marker.DefaultUpAxis)
	if err != nil {
		return settings, fmt.Errorf("marker.default_up_axis が不正です: %w", err)
	}
	if aim.Letter() == up.Letter() {
		return settings, fmt.Errorf("marker.default_aim_axis と default_up_axis が同じ軸です: %s, %s", aim, up)
	}
	order, err := mmath.ParseRotateOrder(c.Skeleton.RotateOrder)
	if err != nil {
		return settings, fmt.Errorf("skeleton.rotate_order が不正です: %w", err)
	}

	settings.MarkerScale = c.Marker.Scale
	settings.DefaultAimAxis = aim
	settings.DefaultUpAxis = up
	settings.UpCtrlOffset = c.Marker.UpCtrlOffset
	settings.PoleDistance = c.Marker.PoleDistance
	settings.RotateOrder = order
	settings.SkeletonParent = strings.TrimSpace(c.Skeleton.Parent)
	return settings, nil
}

// LoggerOptions はログ設定をロガー生成オプションへ変換する。
func (c *RigConfig) LoggerOptions() (logging.Options, error) {
	opts := logging.DefaultOptions()
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return opts, err
	}
	opts.Level = level
	opts.JSON = c.Log.JSON
	return opts, nil
}
