// 指示: miu200521358
package scene

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gopkg.in/Knetic/govaluate.v3"
)

// CreateChoice は selector の値で inputs を選ぶ選択ノードを生成する。
func (s *Scene) CreateChoice(name string, parent string, selector string, inputs map[int]float64) error {
	if err := s.checkPlug(selector); err != nil {
		return err
	}
	if _, err := s.CreateNode(moutput.NODE_KIND_CHOICE, name, parent); err != nil {
		return err
	}
	n := s.state.Nodes[name]
	n.Choice = &ChoiceNode{Selector: selector, Inputs: maps.Clone(inputs)}
	n.Attrs[moutput.ATTR_OUTPUT] = 0
	return nil
}

// CreateExpression は inputs の属性を変数として式を評価するノードを生成する。
func (s *Scene) CreateExpression(name string, parent string, expression string, inputs map[string]string) error {
	compiled, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return fmt.Errorf("式の解析に失敗しました: %s: %w", expression, err)
	}
	for _, variable := range compiled.Vars() {
		plug, ok := inputs[variable]
		if !ok {
			return fmt.Errorf("式の変数に入力がありません: %s", variable)
		}
		if err := s.checkPlug(plug); err != nil {
			return err
		}
	}
	if _, err := s.CreateNode(moutput.NODE_KIND_EXPRESSION, name, parent); err != nil {
		return err
	}
	n := s.state.Nodes[name]
	n.Expression = &ExpressionNode{Source: expression, Inputs: maps.Clone(inputs)}
	n.Attrs[moutput.ATTR_OUTPUT] = 0
	s.compiled[name] = compiled
	return nil
}

// AddDrivenKey は driver の値で driven を補間するキーを追加する。
// 同じ driven の曲線が既にあればキーを統合する。
func (s *Scene) AddDrivenKey(driver string, driven string, keys []moutput.DrivenKey) error {
	if err := s.checkPlug(driver); err != nil {
		return err
	}
	if err := s.checkPlug(driven); err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("ドリブンキーがありません: %s", driven)
	}
	idx := slices.IndexFunc(s.state.Curves, func(c DrivenCurve) bool { return c.Driven == driven })
	if idx < 0 || s.state.Curves[idx].Driver != driver {
		curve := DrivenCurve{Driver: driver, Driven: driven}
		if idx < 0 {
			s.state.Curves = append(s.state.Curves, curve)
			idx = len(s.state.Curves) - 1
		} else {
			s.state.Curves[idx] = curve
		}
	}
	curve := &s.state.Curves[idx]
	for _, key := range keys {
		replaced := false
		for i := range curve.Keys {
			if curve.Keys[i].Driver == key.Driver {
				curve.Keys[i].Value = key.Value
				replaced = true
				break
			}
		}
		if !replaced {
			curve.Keys = append(curve.Keys, key)
		}
	}
	slices.SortFunc(curve.Keys, func(a, b moutput.DrivenKey) int {
		switch {
		case a.Driver < b.Driver:
			return -1
		case a.Driver > b.Driver:
			return 1
		}
		return 0
	})
	s.dirty = true
	return nil
}

// checkPlug は属性参照のノードが存在するか確認する。
func (s *Scene) checkPlug(plug string) error {
	name, attr := moutput.SplitPlug(plug)
	if attr == "" {
		return fmt.Errorf("属性名が空です: %s", plug)
	}
	_, err := s.mustNode(name)
	return err
}

// evaluateNetworks は選択/式ノードとドリブンキーを評価し、値が変わったか返す。
func (s *Scene) evaluateNetworks() bool {
	changed := false
	for _, name := range s.state.Order {
		n := s.state.Nodes[name]
		switch {
		case n.Choice != nil:
			selected := n.Choice.Inputs[int(math.Round(s.attr(n.Choice.Selector)))]
			changed = setOutput(n, selected) || changed
		case n.Expression != nil:
			changed = setOutput(n, s.evaluateExpression(n)) || changed
		}
	}
	for _, curve := range s.state.Curves {
		name, attr := moutput.SplitPlug(curve.Driven)
		n, ok := s.node(name)
		if !ok {
			continue
		}
		value := interpolateKeys(curve.Keys, s.attr(curve.Driver))
		if before, ok := n.Attrs[attr]; !ok || math.Abs(before-value) > changeTolerance {
			n.Attrs[attr] = value
			changed = true
		}
	}
	return changed
}

// evaluateExpression は式ノードを評価する。評価できない場合は0。
func (s *Scene) evaluateExpression(n *Node) float64 {
	compiled, ok := s.compiled[n.Name]
	if !ok {
		var err error
		compiled, err = govaluate.NewEvaluableExpression(n.Expression.Source)
		if err != nil {
			return 0
		}
		s.compiled[n.Name] = compiled
	}
	params := make(map[string]interface{}, len(n.Expression.Inputs))
	for variable, plug := range n.Expression.Inputs {
		params[variable] = s.attr(plug)
	}
	result, err := compiled.Evaluate(params)
	if err != nil {
		return 0
	}
	switch v := result.(type) {
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// setOutput は出力属性を更新し、変わったか返す。
func setOutput(n *Node, value float64) bool {
	if math.Abs(n.Attrs[moutput.ATTR_OUTPUT]-value) <= changeTolerance {
		return false
	}
	n.Attrs[moutput.ATTR_OUTPUT] = value
	return true
}

// interpolateKeys はキー間を線形補間する。範囲外は端の値。
func interpolateKeys(keys []moutput.DrivenKey, driver float64) float64 {
	if len(keys) == 0 {
		return 0
	}
	if driver <= keys[0].Driver {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if driver >= last.Driver {
		return last.Value
	}
	for i := 1; i < len(keys); i++ {
		if driver <= keys[i].Driver {
			prev := keys[i-1]
			ratio := (driver - prev.Driver) / (keys[i].Driver - prev.Driver)
			return prev.Value + (keys[i].Value-prev.Value)*ratio
		}
	}
	return last.Value
}
