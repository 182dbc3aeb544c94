// 指示: miu200521358
package moutput

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeKind はシーンノードの種別を表す。
type NodeKind string

const (
	NODE_KIND_TRANSFORM  NodeKind = "transform"
	NODE_KIND_JOINT      NodeKind = "joint"
	NODE_KIND_CONSTRAINT NodeKind = "constraint"
	NODE_KIND_CHOICE     NodeKind = "choice"
	NODE_KIND_EXPRESSION NodeKind = "expression"
)

// ConstraintType は拘束の種別を表す。
type ConstraintType string

const (
	CONSTRAINT_POINT  ConstraintType = "pointConstraint"
	CONSTRAINT_ORIENT ConstraintType = "orientConstraint"
	CONSTRAINT_AIM    ConstraintType = "aimConstraint"
	CONSTRAINT_PARENT ConstraintType = "parentConstraint"
)

// WorldUpType はエイム拘束のワールドアップ取得方法を表す。
type WorldUpType string

const (
	WORLD_UP_NONE            WorldUpType = "none"
	WORLD_UP_VECTOR          WorldUpType = "vector"
	WORLD_UP_OBJECT          WorldUpType = "object"
	WORLD_UP_OBJECT_ROTATION WorldUpType = "objectrotation"
)

// 拘束ノードの属性名。
const (
	ATTR_AIM_VECTOR      = "aimVector"
	ATTR_UP_VECTOR       = "upVector"
	ATTR_WORLD_UP_VECTOR = "worldUpVector"
	ATTR_OUTPUT          = "output"
	ATTR_LOD_VISIBILITY  = "lodVisibility"
)

// ConstraintSpec は拘束の生成内容を表す。
type ConstraintSpec struct {
	Type          ConstraintType
	Drivers       []string
	Driven        string
	AimVector     r3.Vec
	UpVector      r3.Vec
	WorldUpType   WorldUpType
	WorldUpVector r3.Vec
	WorldUpObject string
}

// ConstraintInfo は生成済み拘束の内容を表す。
type ConstraintInfo struct {
	Name string
	ConstraintSpec
}

// DrivenKey はドリブンキー1点を表す。
type DrivenKey struct {
	Driver float64
	Value  float64
}

// Plug はノード名と属性名から属性参照文字列を返す。
func Plug(node string, attr string) string {
	return node + "." + attr
}

// SplitPlug は属性参照文字列をノード名と属性名へ分解する。
func SplitPlug(plug string) (string, string) {
	node, attr, _ := strings.Cut(plug, ".")
	return node, attr
}

// INodeGraph はノードの生成と親子関係の契約を表す。
type INodeGraph interface {
	// Exists はノードが存在するか判定する。
	Exists(name string) bool
	// CreateNode はノードを生成する。parent が空ならワールド直下。
	CreateNode(kind NodeKind, name string, parent string) (string, error)
	// Delete はノードを子孫と関連拘束ごと削除する。
	Delete(name string) error
	// SetParent はワールド変換を保ったまま親を変更する。
	SetParent(name string, parent string) error
	Parent(name string) string
	Children(name string) []string
	Kind(name string) NodeKind
	// Nodes は生成順のノード名一覧を返す。
	Nodes() []string
}

// ITransformer は変換の取得/設定契約を表す。
type ITransformer interface {
	WorldPosition(name string) r3.Vec
	SetWorldPosition(name string, position r3.Vec) error
	LocalPosition(name string) r3.Vec
	SetLocalPosition(name string, position r3.Vec) error
	WorldRotation(name string) mgl64.Quat
	SetWorldRotation(name string, rotation mgl64.Quat) error
	WorldMatrix(name string) mgl64.Mat4
	SetWorldMatrix(name string, matrix mgl64.Mat4) error
	LocalMatrix(name string) mgl64.Mat4
	SetLocalMatrix(name string, matrix mgl64.Mat4) error
	Scale(name string) r3.Vec
	SetScale(name string, scale r3.Vec) error
	// MakeIdentity は回転とスケールをジョイントオリエントへ焼き込む。
	MakeIdentity(name string) error
	// MirrorJoint はYZ平面でビヘイビアミラーしたジョイントを mirrorName で生成する。
	MirrorJoint(name string, mirrorName string) error
}

// IConstrainer は拘束の生成/削除契約を表す。
type IConstrainer interface {
	AddConstraint(spec ConstraintSpec) (string, error)
	RemoveConstraint(name string) error
	// Constraints は driven を駆動する拘束を生成順で返す。
	Constraints(driven string) []ConstraintInfo
	ConstraintInfo(name string) (ConstraintInfo, bool)
	// WeightAliases はドライバ順のウェイト属性名を返す。
	WeightAliases(constraint string) []string
}

// IAttributeStore は数値属性とチャンネルロックの契約を表す。
type IAttributeStore interface {
	HasAttr(plug string) bool
	Attr(plug string) float64
	SetAttr(plug string, value float64) error
	// LockChannels は "t", "r", "s" または "tx" などのチャンネルをロックする。
	LockChannels(name string, channels string, locked bool) error
	// IsFree はチャンネルがロックも拘束もされていないか判定する。
	IsFree(name string, channel string) bool
}

// ITagStore は文字列メタデータの契約を表す。
type ITagStore interface {
	SetTag(name string, key string, value string) error
	Tag(name string, key string) (string, bool)
	DeleteTag(name string, key string) error
}

// IUtilityNetwork は属性駆動ネットワークの契約を表す。
type IUtilityNetwork interface {
	// CreateChoice は selector の値で inputs を選ぶ選択ノードを生成する。
	CreateChoice(name string, parent string, selector string, inputs map[int]float64) error
	// CreateExpression は inputs の属性を変数として式を評価するノードを生成する。
	CreateExpression(name string, parent string, expression string, inputs map[string]string) error
	// AddDrivenKey は driver の値で driven を補間するキーを追加する。
	AddDrivenKey(driver string, driven string, keys []DrivenKey) error
}

// IScene はマーカーシステムが使うホストシーンの契約を表す。
type IScene interface {
	INodeGraph
	ITransformer
	IConstrainer
	IAttributeStore
	ITagStore
	IUtilityNetwork
}

// ISceneSnapshotter はシーン全体の退避/復元ができるシーンの契約を表す。
type ISceneSnapshotter interface {
	Snapshot() (any, error)
	Restore(snapshot any) error
}

// IRigDataReader はマーカーデータ文書の読み込み契約を表す。
type IRigDataReader interface {
	CanLoad(path string) bool
	Load(path string) (*model.RigData, error)
}

// IRigDataWriter はマーカーデータ文書と書き出し結果の保存契約を表す。
type IRigDataWriter interface {
	Save(path string, data any) error
}
