// 指示: miu200521358
package model

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// RotationKind はマーカー回転方針の種別を表す。
type RotationKind int

const (
	// ROTATION_FREE は回転を拘束しない。
	ROTATION_FREE RotationKind = iota
	// ROTATION_FIXED はワールド回転を一度だけ設定する。
	ROTATION_FIXED
	// ROTATION_AIM は後続マーカーへエイムする。
	ROTATION_AIM
	// ROTATION_PARENT は親マーカーの向きに追従する。
	ROTATION_PARENT
	// ROTATION_NODE は指定ノードの向きに追従する。
	ROTATION_NODE
)

// RotationPolicy はマーカーの回転方針を表す。種別ごとに必要な値だけを持つ。
type RotationPolicy struct {
	Kind  RotationKind
	Euler r3.Vec
	Node  string
}

// FreeRotation は拘束なしの回転方針を返す。
func FreeRotation() RotationPolicy {
	return RotationPolicy{Kind: ROTATION_FREE}
}

// FixedRotation はワールド回転固定の方針を返す。
func FixedRotation(euler r3.Vec) RotationPolicy {
	return RotationPolicy{Kind: ROTATION_FIXED, Euler: euler}
}

// AimRotation はエイム方針を返す。
func AimRotation() RotationPolicy {
	return RotationPolicy{Kind: ROTATION_AIM}
}

// ParentRotation は親追従方針を返す。
func ParentRotation() RotationPolicy {
	return RotationPolicy{Kind: ROTATION_PARENT}
}

// NodeRotation は指定ノード追従方針を返す。
func NodeRotation(node string) RotationPolicy {
	return RotationPolicy{Kind: ROTATION_NODE, Node: node}
}

// IsParentOrFree は親追従または拘束なしか判定する。
func (p RotationPolicy) IsParentOrFree() bool {
	return p.Kind == ROTATION_PARENT || p.Kind == ROTATION_FREE
}

// Token はシーンタグへ書き込む文字列表現を返す。
func (p RotationPolicy) Token() string {
	switch p.Kind {
	case ROTATION_FIXED:
		return "fixed:" + FormatVector(p.Euler)
	case ROTATION_AIM:
		return "aim"
	case ROTATION_PARENT:
		return "parent"
	case ROTATION_NODE:
		return "node:" + p.Node
	default:
		return ""
	}
}

// String は表示用の文字列を返す。
func (p RotationPolicy) String() string {
	if p.Kind == ROTATION_FREE {
		return "none"
	}
	return p.Token()
}

// ParseRotationToken はシーンタグの文字列表現から回転方針を復元する。
func ParseRotationToken(token string) (RotationPolicy, error) {
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		return FreeRotation(), nil
	case token == "aim":
		return AimRotation(), nil
	case token == "parent":
		return ParentRotation(), nil
	case strings.HasPrefix(token, "node:"):
		name := strings.TrimPrefix(token, "node:")
		if name == "" {
			return FreeRotation(), fmt.Errorf("回転ノード名が空です: %q", token)
		}
		return NodeRotation(name), nil
	case strings.HasPrefix(token, "fixed:"):
		v, err := ParseVector(strings.TrimPrefix(token, "fixed:"))
		if err != nil {
			return FreeRotation(), err
		}
		return FixedRotation(v), nil
	}
	return FreeRotation(), fmt.Errorf("不正な回転種別です: %q", token)
}

// ParseRotationValue はマーカーデータの rotation 値を解析する。
// nil は拘束なし、3要素の数値列は固定回転、それ以外の文字列はノード追従として扱う。
func ParseRotationValue(value any) (RotationPolicy, error) {
	if value == nil {
		return FreeRotation(), nil
	}
	if v, ok, err := vectorValue(value); ok {
		if err != nil {
			return FreeRotation(), err
		}
		return FixedRotation(v), nil
	}
	s, ok := value.(string)
	if !ok {
		return FreeRotation(), fmt.Errorf("不正な回転値です: %v", value)
	}
	switch strings.TrimSpace(s) {
	case "", "none":
		return FreeRotation(), nil
	case "aim":
		return AimRotation(), nil
	case "parent":
		return ParentRotation(), nil
	}
	return NodeRotation(strings.TrimSpace(s)), nil
}

// UpKind はエイム時のアップベクトル取得元を表す。
type UpKind int

const (
	// UP_NONE は親空間で補間する。
	UP_NONE UpKind = iota
	// UP_VECTOR は固定ベクトルを使う。
	UP_VECTOR
	// UP_CTRL はチェーン共有のアップコントロールを使う。
	UP_CTRL
	// UP_PLANE は平面アップコントロールを使う。
	UP_PLANE
)

// UpPolicy はアップベクトルの取得方針を表す。
type UpPolicy struct {
	Kind   UpKind
	Vector r3.Vec
}

// NoUp は補間方針を返す。
func NoUp() UpPolicy {
	return UpPolicy{Kind: UP_NONE}
}

// VectorUp は固定ベクトル方針を返す。
func VectorUp(v r3.Vec) UpPolicy {
	return UpPolicy{Kind: UP_VECTOR, Vector: v}
}

// CtrlUp は共有アップコントロール方針を返す。
func CtrlUp() UpPolicy {
	return UpPolicy{Kind: UP_CTRL}
}

// PlaneUp は平面方針を返す。
func PlaneUp() UpPolicy {
	return UpPolicy{Kind: UP_PLANE}
}

// Token はシーンタグへ書き込む文字列表現を返す。
func (p UpPolicy) Token() string {
	switch p.Kind {
	case UP_VECTOR:
		return "vector:" + FormatVector(p.Vector)
	case UP_CTRL:
		return "ctrl"
	case UP_PLANE:
		return "plane"
	default:
		return ""
	}
}

// String は表示用の文字列を返す。
func (p UpPolicy) String() string {
	if p.Kind == UP_NONE {
		return "none"
	}
	return p.Token()
}

// ParseUpToken はシーンタグの文字列表現からアップ方針を復元する。
func ParseUpToken(token string) (UpPolicy, error) {
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		return NoUp(), nil
	case token == "ctrl":
		return CtrlUp(), nil
	case token == "plane":
		return PlaneUp(), nil
	case strings.HasPrefix(token, "vector:"):
		v, err := ParseVector(strings.TrimPrefix(token, "vector:"))
		if err != nil {
			return NoUp(), err
		}
		return VectorUp(v), nil
	}
	return NoUp(), fmt.Errorf("不正なアップ種別です: %q", token)
}

// ParseUpValue はマーカーデータの up_type 値を解析する。
func ParseUpValue(value any) (UpPolicy, error) {
	if value == nil {
		return NoUp(), nil
	}
	if v, ok, err := vectorValue(value); ok {
		if err != nil {
			return NoUp(), err
		}
		return VectorUp(v), nil
	}
	s, ok := value.(string)
	if !ok {
		return NoUp(), fmt.Errorf("不正なアップ種別です: %v", value)
	}
	switch strings.TrimSpace(s) {
	case "", "none":
		return NoUp(), nil
	case "ctrl":
		return CtrlUp(), nil
	case "plane":
		return PlaneUp(), nil
	}
	return NoUp(), fmt.Errorf("不正なアップ種別です: %q", s)
}

// ConnectMode は親マーカー接続時の親側の振る舞いを表す。
type ConnectMode int

const (
	// CONNECT_MODE_NONE は親マーカーに触れない。
	CONNECT_MODE_NONE ConnectMode = iota
	// CONNECT_MODE_FOLLOW は親マーカーが子マーカーへ追従する。
	CONNECT_MODE_FOLLOW
	// CONNECT_MODE_AIM は親マーカーが子マーカーへエイムする。
	CONNECT_MODE_AIM
)

// connectModeNames は接続モード名一覧。
var connectModeNames = []string{"none", "follow", "aim"}

// String は接続モード名を返す。
func (m ConnectMode) String() string {
	if m < 0 || int(m) >= len(connectModeNames) {
		return fmt.Sprintf("ConnectMode(%d)", int(m))
	}
	return connectModeNames[m]
}

// ParseConnectMode は接続モード名を解析する。空文字は none とする。
func ParseConnectMode(name string) (ConnectMode, error) {
	token := strings.ToLower(strings.TrimSpace(name))
	if token == "" {
		return CONNECT_MODE_NONE, nil
	}
	for i, modeName := range connectModeNames {
		if token == modeName {
			return ConnectMode(i), nil
		}
	}
	return CONNECT_MODE_NONE, fmt.Errorf("不正な接続モードです: %q", name)
}

// vectorValue は数値列を3次元ベクトルとして解釈する。数値列でない場合は ok=false。
func vectorValue(value any) (r3.Vec, bool, error) {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case []float64:
		for _, f := range v {
			items = append(items, f)
		}
	case []int:
		for _, n := range v {
			items = append(items, n)
		}
	case r3.Vec:
		return v, true, nil
	default:
		return r3.Vec{}, false, nil
	}
	if len(items) != 3 {
		return r3.Vec{}, true, fmt.Errorf("3要素の数値列が必要です: %v", value)
	}
	out := [3]float64{}
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return r3.Vec{}, true, fmt.Errorf("数値ではない要素があります: %v", value)
		}
		out[i] = f
	}
	return r3.Vec{X: out[0], Y: out[1], Z: out[2]}, true, nil
}

// toFloat はYAML/TOMLの数値表現を float64 へ揃える。
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// FormatVector はベクトルをカンマ区切りで書式化する。タグ値にも使う。
func FormatVector(v r3.Vec) string {
	return strings.Join([]string{
		strconv.FormatFloat(v.X, 'g', -1, 64),
		strconv.FormatFloat(v.Y, 'g', -1, 64),
		strconv.FormatFloat(v.Z, 'g', -1, 64),
	}, ",")
}

// ParseVector はカンマ区切りのベクトルを解析する。
func ParseVector(token string) (r3.Vec, error) {
	parts := strings.Split(token, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("3要素のベクトルが必要です: %q", token)
	}
	out := [3]float64{}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("ベクトル要素が不正です: %q: %w", token, err)
		}
		out[i] = f
	}
	return r3.Vec{X: out[0], Y: out[1], Z: out[2]}, nil
}
