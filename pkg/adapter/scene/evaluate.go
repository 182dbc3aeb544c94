// 指示: miu200521358
package scene

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_rigmarker/pkg/shared/base/logging"
	"github.com/tiendc/go-deepcopy"
	"gopkg.in/Knetic/govaluate.v3"
)

// 移動制限の属性名。
const (
	attrMinTransLimit       = "minTransLimit"
	attrMaxTransLimit       = "maxTransLimit"
	attrMinTransLimitEnable = "minTransLimitEnable"
	attrMaxTransLimitEnable = "maxTransLimitEnable"
)

// evaluate は変更があればネットワーク/拘束/移動制限を安定するまで評価する。
func (s *Scene) evaluate() {
	if !s.dirty || s.evaluating {
		return
	}
	s.evaluating = true
	defer func() { s.evaluating = false }()

	stable := false
	for pass := 0; pass < s.maxPasses; pass++ {
		changed := s.evaluateNetworks()
		for _, name := range s.state.Order {
			n := s.state.Nodes[name]
			if n.Constraint != nil && s.evaluateConstraint(n) {
				changed = true
			}
		}
		for _, name := range s.state.Order {
			if applyLimits(s.state.Nodes[name]) {
				changed = true
			}
		}
		if !changed {
			stable = true
			break
		}
	}
	if !stable {
		logging.DefaultLogger().Debug("シーン評価が収束しませんでした: passes=%d", s.maxPasses)
	}
	s.dirty = false
}

// applyLimits は有効な移動制限でローカル移動を丸め、変わったか返す。
func applyLimits(n *Node) bool {
	if len(n.Attrs) == 0 {
		return false
	}
	values := [3]*float64{&n.Translate.X, &n.Translate.Y, &n.Translate.Z}
	changed := false
	for i, axis := range []string{"X", "Y", "Z"} {
		value := *values[i]
		if n.Attrs[attrMinTransLimitEnable+axis] >= 0.5 {
			value = math.Max(value, n.Attrs[attrMinTransLimit+axis])
		}
		if n.Attrs[attrMaxTransLimitEnable+axis] >= 0.5 {
			value = math.Min(value, n.Attrs[attrMaxTransLimit+axis])
		}
		if math.Abs(value-*values[i]) > changeTolerance {
			changed = true
		}
		*values[i] = value
	}
	return changed
}

// Snapshot はシーン全体の複製を返す。
func (s *Scene) Snapshot() (any, error) {
	s.evaluate()
	var copied State
	if err := deepcopy.Copy(&copied, s.state); err != nil {
		return nil, fmt.Errorf("シーンの退避に失敗しました: %w", err)
	}
	return &copied, nil
}

// Restore は Snapshot の内容へシーンを戻す。同じ退避から何度でも復元できる。
func (s *Scene) Restore(snapshot any) error {
	state, ok := snapshot.(*State)
	if !ok || state == nil {
		return fmt.Errorf("シーンの退避データではありません: %T", snapshot)
	}
	var copied State
	if err := deepcopy.Copy(&copied, state); err != nil {
		return fmt.Errorf("シーンの復元に失敗しました: %w", err)
	}
	if copied.Nodes == nil {
		copied.Nodes = map[string]*Node{}
	}
	s.state = &copied
	s.compiled = map[string]*govaluate.EvaluableExpression{}
	s.dirty = true
	return nil
}

// Len はノード数を返す。
func (s *Scene) Len() int {
	return len(s.state.Order)
}
