// 指示: miu200521358
// Package scene はマーカーシステム用のメモリ上のシーングラフを提供する。
package scene

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/Knetic/govaluate.v3"
)

const (
	// defaultMaxPasses は評価を安定させるまでの最大反復回数。
	defaultMaxPasses = 32
	// changeTolerance は評価結果の変化とみなす最小量。
	changeTolerance = 1e-9
)

var (
	_ moutput.IScene            = (*Scene)(nil)
	_ moutput.ISceneSnapshotter = (*Scene)(nil)
)

// Node はシーン上の1ノードを表す。
type Node struct {
	Name        string
	Kind        moutput.NodeKind
	Parent      string
	Children    []string
	Translate   r3.Vec
	Rotate      mgl64.Quat
	JointOrient mgl64.Quat
	ScaleValue  r3.Vec
	Attrs       map[string]float64
	Tags        map[string]string
	Locks       map[string]bool
	Constraint  *ConstraintNode
	Choice      *ChoiceNode
	Expression  *ExpressionNode
}

// ConstraintNode は拘束ノードの内容を表す。ベクトル類は属性に保持する。
type ConstraintNode struct {
	Type          moutput.ConstraintType
	Drivers       []string
	Driven        string
	WorldUpType   moutput.WorldUpType
	WorldUpObject string
	Weights       []string
}

// ChoiceNode は選択ノードの内容を表す。
type ChoiceNode struct {
	Selector string
	Inputs   map[int]float64
}

// ExpressionNode は式ノードの内容を表す。
type ExpressionNode struct {
	Source string
	Inputs map[string]string
}

// DrivenCurve はドリブンキー曲線を表す。
type DrivenCurve struct {
	Driver string
	Driven string
	Keys   []moutput.DrivenKey
}

// State はシーンの全状態を表す。退避/復元の単位になる。
type State struct {
	Nodes   map[string]*Node
	Order   []string
	Curves  []DrivenCurve
	Counter int
}

// Scene はメモリ上のシーングラフを表す。
type Scene struct {
	state      *State
	compiled   map[string]*govaluate.EvaluableExpression
	dirty      bool
	evaluating bool
	maxPasses  int
}

// NewScene は空のシーンを生成する。
func NewScene() *Scene {
	return &Scene{
		state:     newState(),
		compiled:  map[string]*govaluate.EvaluableExpression{},
		maxPasses: defaultMaxPasses,
	}
}

// newState は空の状態を生成する。
func newState() *State {
	return &State{Nodes: map[string]*Node{}, Order: []string{}, Curves: []DrivenCurve{}}
}

// newNode は既定値のノードを生成する。
func newNode(kind moutput.NodeKind, name string, parent string) *Node {
	return &Node{
		Name:        name,
		Kind:        kind,
		Parent:      parent,
		Children:    []string{},
		Rotate:      mgl64.QuatIdent(),
		JointOrient: mgl64.QuatIdent(),
		ScaleValue:  r3.Vec{X: 1, Y: 1, Z: 1},
		Attrs:       map[string]float64{},
		Tags:        map[string]string{},
		Locks:       map[string]bool{},
	}
}

// node はノードを返す。
func (s *Scene) node(name string) (*Node, bool) {
	n, ok := s.state.Nodes[name]
	return n, ok
}

// mustNode は存在しないノードでエラーを返す。
func (s *Scene) mustNode(name string) (*Node, error) {
	n, ok := s.node(name)
	if !ok {
		return nil, merrors.NewNotFoundError("ノード", name)
	}
	return n, nil
}

// Exists はノードが存在するか判定する。
func (s *Scene) Exists(name string) bool {
	_, ok := s.node(name)
	return ok
}

// CreateNode はノードを生成する。name が空なら種別から自動命名する。
func (s *Scene) CreateNode(kind moutput.NodeKind, name string, parent string) (string, error) {
	if name == "" {
		name = s.uniqueName(string(kind) + "1")
	}
	if s.Exists(name) {
		return "", merrors.NewNameConflictError("ノード", name)
	}
	if parent != "" && !s.Exists(parent) {
		return "", merrors.NewNotFoundError("親ノード", parent)
	}
	s.state.Nodes[name] = newNode(kind, name, parent)
	s.state.Order = append(s.state.Order, name)
	if parent != "" {
		p := s.state.Nodes[parent]
		p.Children = append(p.Children, name)
	}
	s.dirty = true
	return name, nil
}

// uniqueName は末尾の番号を増やして未使用の名前を返す。
func (s *Scene) uniqueName(base string) string {
	if !s.Exists(base) {
		return base
	}
	stem := base
	for len(stem) > 0 && stem[len(stem)-1] >= '0' && stem[len(stem)-1] <= '9' {
		stem = stem[:len(stem)-1]
	}
	for {
		s.state.Counter++
		name := fmt.Sprintf("%s%d", stem, s.state.Counter+1)
		if !s.Exists(name) {
			return name
		}
	}
}

// Delete はノードを子孫ごと削除し、関連する拘束と曲線も取り除く。
func (s *Scene) Delete(name string) error {
	if _, err := s.mustNode(name); err != nil {
		return err
	}
	removed := map[string]bool{}
	s.collectSubtree(name, removed)

	// 削除ノードを参照する拘束も削除する
	for _, other := range s.state.Order {
		if removed[other] {
			continue
		}
		n := s.state.Nodes[other]
		if n.Constraint == nil {
			continue
		}
		refs := append(slices.Clone(n.Constraint.Drivers), n.Constraint.WorldUpObject)
		for _, ref := range refs {
			if ref != "" && removed[ref] {
				s.collectSubtree(other, removed)
				break
			}
		}
	}

	if parent := s.state.Nodes[name].Parent; parent != "" && !removed[parent] {
		p := s.state.Nodes[parent]
		p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == name })
	}
	for other := range removed {
		n := s.state.Nodes[other]
		if n.Parent != "" && !removed[n.Parent] {
			p := s.state.Nodes[n.Parent]
			p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == other })
		}
	}
	for other := range removed {
		delete(s.state.Nodes, other)
		delete(s.compiled, other)
	}
	s.state.Order = slices.DeleteFunc(s.state.Order, func(n string) bool { return removed[n] })
	s.state.Curves = slices.DeleteFunc(s.state.Curves, func(c DrivenCurve) bool {
		driver, _ := moutput.SplitPlug(c.Driver)
		driven, _ := moutput.SplitPlug(c.Driven)
		return removed[driver] || removed[driven]
	})
	s.dirty = true
	return nil
}

// collectSubtree はノードと子孫を集める。
func (s *Scene) collectSubtree(name string, out map[string]bool) {
	if out[name] {
		return
	}
	out[name] = true
	n, ok := s.node(name)
	if !ok {
		return
	}
	for _, child := range n.Children {
		s.collectSubtree(child, out)
	}
}

// SetParent はワールド変換を保ったまま親を変更する。parent が空ならワールド直下。
func (s *Scene) SetParent(name string, parent string) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	if parent != "" {
		if _, err := s.mustNode(parent); err != nil {
			return err
		}
		if parent == name || s.isDescendant(parent, name) {
			return fmt.Errorf("子孫ノードへは親子付けできません: %s -> %s", name, parent)
		}
	}
	if n.Parent == parent {
		return nil
	}
	s.evaluate()
	world := s.worldMatrix(name)

	if n.Parent != "" {
		p := s.state.Nodes[n.Parent]
		p.Children = slices.DeleteFunc(p.Children, func(c string) bool { return c == name })
	}
	n.Parent = parent
	if parent != "" {
		p := s.state.Nodes[parent]
		p.Children = append(p.Children, name)
	}
	s.applyWorldMatrix(n, world)
	s.dirty = true
	return nil
}

// isDescendant は name が ancestor の子孫か判定する。
func (s *Scene) isDescendant(name string, ancestor string) bool {
	n, ok := s.node(name)
	for ok && n.Parent != "" {
		if n.Parent == ancestor {
			return true
		}
		n, ok = s.node(n.Parent)
	}
	return false
}

// Parent は親ノード名を返す。
func (s *Scene) Parent(name string) string {
	if n, ok := s.node(name); ok {
		return n.Parent
	}
	return ""
}

// Children は子ノード名を返す。
func (s *Scene) Children(name string) []string {
	if n, ok := s.node(name); ok {
		return slices.Clone(n.Children)
	}
	return nil
}

// Kind はノード種別を返す。
func (s *Scene) Kind(name string) moutput.NodeKind {
	if n, ok := s.node(name); ok {
		return n.Kind
	}
	return ""
}

// Nodes は生成順のノード名一覧を返す。
func (s *Scene) Nodes() []string {
	return slices.Clone(s.state.Order)
}

// SetTag は文字列メタデータを設定する。
func (s *Scene) SetTag(name string, key string, value string) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	n.Tags[key] = value
	return nil
}

// Tag は文字列メタデータを返す。
func (s *Scene) Tag(name string, key string) (string, bool) {
	n, ok := s.node(name)
	if !ok {
		return "", false
	}
	value, ok := n.Tags[key]
	return value, ok
}

// DeleteTag は文字列メタデータを削除する。
func (s *Scene) DeleteTag(name string, key string) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	delete(n.Tags, key)
	return nil
}

// HasAttr は数値属性が存在するか判定する。
func (s *Scene) HasAttr(plug string) bool {
	name, attr := moutput.SplitPlug(plug)
	n, ok := s.node(name)
	if !ok {
		return false
	}
	_, ok = n.Attrs[attr]
	return ok
}

// Attr は数値属性を返す。未設定は0。
func (s *Scene) Attr(plug string) float64 {
	s.evaluate()
	return s.attr(plug)
}

// attr は評価せずに数値属性を返す。
func (s *Scene) attr(plug string) float64 {
	name, attr := moutput.SplitPlug(plug)
	n, ok := s.node(name)
	if !ok {
		return 0
	}
	return n.Attrs[attr]
}

// SetAttr は数値属性を設定する。未定義なら追加する。
func (s *Scene) SetAttr(plug string, value float64) error {
	name, attr := moutput.SplitPlug(plug)
	if attr == "" {
		return fmt.Errorf("属性名が空です: %s", plug)
	}
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	n.Attrs[attr] = value
	s.dirty = true
	return nil
}

// LockChannels はチャンネルのロック状態を変更する。
func (s *Scene) LockChannels(name string, channels string, locked bool) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	for _, channel := range expandChannels(channels) {
		if locked {
			n.Locks[channel] = true
		} else {
			delete(n.Locks, channel)
		}
	}
	return nil
}

// IsFree はチャンネルがロックも拘束もされていないか判定する。
func (s *Scene) IsFree(name string, channel string) bool {
	n, ok := s.node(name)
	if !ok || n.Locks[channel] {
		return false
	}
	for _, info := range s.Constraints(name) {
		if drivesChannel(info.Type, channel) {
			return false
		}
	}
	return true
}

// expandChannels は "trs" や "tx" をチャンネル名一覧へ展開する。
func expandChannels(channels string) []string {
	if len(channels) == 2 && (channels[1] == 'x' || channels[1] == 'y' || channels[1] == 'z') {
		return []string{channels}
	}
	out := make([]string, 0, len(channels)*3)
	for _, c := range channels {
		if c == 'v' {
			out = append(out, "v")
			continue
		}
		for _, axis := range "xyz" {
			out = append(out, string(c)+string(axis))
		}
	}
	return out
}

// drivesChannel は拘束種別がチャンネルを駆動するか判定する。
func drivesChannel(constraintType moutput.ConstraintType, channel string) bool {
	if channel == "" {
		return false
	}
	switch constraintType {
	case moutput.CONSTRAINT_POINT:
		return channel[0] == 't'
	case moutput.CONSTRAINT_ORIENT, moutput.CONSTRAINT_AIM:
		return channel[0] == 'r'
	case moutput.CONSTRAINT_PARENT:
		return channel[0] == 't' || channel[0] == 'r'
	}
	return false
}
