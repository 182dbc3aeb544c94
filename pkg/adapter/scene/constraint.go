// 指示: miu200521358
package scene

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// AddConstraint は拘束ノードを driven の子として生成する。
func (s *Scene) AddConstraint(spec moutput.ConstraintSpec) (string, error) {
	if _, err := s.mustNode(spec.Driven); err != nil {
		return "", err
	}
	if len(spec.Drivers) == 0 {
		return "", fmt.Errorf("拘束のドライバがありません: %s", spec.Driven)
	}
	for _, driver := range spec.Drivers {
		if _, err := s.mustNode(driver); err != nil {
			return "", err
		}
		if driver == spec.Driven {
			return "", fmt.Errorf("自身を拘束できません: %s", driver)
		}
	}
	switch spec.Type {
	case moutput.CONSTRAINT_POINT, moutput.CONSTRAINT_ORIENT, moutput.CONSTRAINT_PARENT:
	case moutput.CONSTRAINT_AIM:
		if spec.WorldUpType == "" {
			spec.WorldUpType = moutput.WORLD_UP_VECTOR
		}
		if spec.WorldUpType == moutput.WORLD_UP_OBJECT || spec.WorldUpType == moutput.WORLD_UP_OBJECT_ROTATION {
			if _, err := s.mustNode(spec.WorldUpObject); err != nil {
				return "", err
			}
		}
	default:
		return "", fmt.Errorf("不明な拘束種別です: %s", spec.Type)
	}

	name, err := s.CreateNode(moutput.NODE_KIND_CONSTRAINT, s.uniqueName(spec.Driven+"_"+string(spec.Type)+"1"), spec.Driven)
	if err != nil {
		return "", err
	}
	n := s.state.Nodes[name]
	n.Constraint = &ConstraintNode{
		Type:    spec.Type,
		Drivers: slices.Clone(spec.Drivers),
		Driven:  spec.Driven,
	}
	for i, driver := range spec.Drivers {
		alias := fmt.Sprintf("%sW%d", driver, i)
		n.Constraint.Weights = append(n.Constraint.Weights, alias)
		n.Attrs[alias] = 1
	}
	if spec.Type == moutput.CONSTRAINT_AIM {
		n.Constraint.WorldUpType = spec.WorldUpType
		n.Constraint.WorldUpObject = spec.WorldUpObject
		setVectorAttrs(n, moutput.ATTR_AIM_VECTOR, orDefault(spec.AimVector, r3.Vec{X: 1}))
		setVectorAttrs(n, moutput.ATTR_UP_VECTOR, orDefault(spec.UpVector, r3.Vec{Y: 1}))
		setVectorAttrs(n, moutput.ATTR_WORLD_UP_VECTOR, orDefault(spec.WorldUpVector, r3.Vec{Y: 1}))
	}
	s.dirty = true
	return name, nil
}

// RemoveConstraint は拘束ノードを削除する。駆動されていた値はそのまま残る。
func (s *Scene) RemoveConstraint(name string) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	if n.Constraint == nil {
		return fmt.Errorf("拘束ノードではありません: %s", name)
	}
	s.evaluate()
	return s.Delete(name)
}

// Constraints は driven を駆動する拘束を生成順で返す。
func (s *Scene) Constraints(driven string) []moutput.ConstraintInfo {
	infos := make([]moutput.ConstraintInfo, 0)
	for _, name := range s.state.Order {
		n := s.state.Nodes[name]
		if n.Constraint == nil || n.Constraint.Driven != driven {
			continue
		}
		infos = append(infos, constraintInfo(n))
	}
	return infos
}

// ConstraintInfo は拘束ノードの内容を返す。
func (s *Scene) ConstraintInfo(name string) (moutput.ConstraintInfo, bool) {
	n, ok := s.node(name)
	if !ok || n.Constraint == nil {
		return moutput.ConstraintInfo{}, false
	}
	return constraintInfo(n), true
}

// WeightAliases はドライバ順のウェイト属性名を返す。
func (s *Scene) WeightAliases(constraint string) []string {
	n, ok := s.node(constraint)
	if !ok || n.Constraint == nil {
		return nil
	}
	return slices.Clone(n.Constraint.Weights)
}

// constraintInfo は拘束ノードから公開用の内容を組み立てる。
func constraintInfo(n *Node) moutput.ConstraintInfo {
	c := n.Constraint
	info := moutput.ConstraintInfo{
		Name: n.Name,
		ConstraintSpec: moutput.ConstraintSpec{
			Type:          c.Type,
			Drivers:       slices.Clone(c.Drivers),
			Driven:        c.Driven,
			WorldUpType:   c.WorldUpType,
			WorldUpObject: c.WorldUpObject,
		},
	}
	if c.Type == moutput.CONSTRAINT_AIM {
		info.AimVector = vectorAttrs(n, moutput.ATTR_AIM_VECTOR)
		info.UpVector = vectorAttrs(n, moutput.ATTR_UP_VECTOR)
		info.WorldUpVector = vectorAttrs(n, moutput.ATTR_WORLD_UP_VECTOR)
	}
	return info
}

// setVectorAttrs は X/Y/Z の3属性へベクトルを設定する。
func setVectorAttrs(n *Node, attr string, v r3.Vec) {
	n.Attrs[attr+"X"] = v.X
	n.Attrs[attr+"Y"] = v.Y
	n.Attrs[attr+"Z"] = v.Z
}

// vectorAttrs は X/Y/Z の3属性をベクトルとして返す。
func vectorAttrs(n *Node, attr string) r3.Vec {
	return r3.Vec{X: n.Attrs[attr+"X"], Y: n.Attrs[attr+"Y"], Z: n.Attrs[attr+"Z"]}
}

// orDefault はゼロベクトルなら既定値を返す。
func orDefault(v r3.Vec, fallback r3.Vec) r3.Vec {
	if r3.Norm2(v) == 0 {
		return fallback
	}
	return v
}

// constraintWeights は正規化したウェイトを返す。合計が0なら false。
func constraintWeights(n *Node) ([]float64, bool) {
	weights := make([]float64, len(n.Constraint.Weights))
	total := 0.0
	for i, alias := range n.Constraint.Weights {
		weights[i] = math.Max(n.Attrs[alias], 0)
		total += weights[i]
	}
	if total <= mmath.Epsilon {
		return nil, false
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights, true
}

// blendPosition はドライバのワールド位置を加重平均する。
func (s *Scene) blendPosition(drivers []string, weights []float64) r3.Vec {
	out := r3.Vec{}
	for i, driver := range drivers {
		out = r3.Add(out, r3.Scale(weights[i], s.worldPosition(driver)))
	}
	return out
}

// blendRotation はドライバのワールド回転を加重補間する。
func (s *Scene) blendRotation(drivers []string, weights []float64) mgl64.Quat {
	out := s.worldRotation(drivers[0])
	accumulated := weights[0]
	for i := 1; i < len(drivers); i++ {
		accumulated += weights[i]
		if accumulated <= mmath.Epsilon {
			continue
		}
		out = mgl64.QuatSlerp(out, s.worldRotation(drivers[i]), weights[i]/accumulated)
	}
	return out.Normalize()
}

// evaluateConstraint は拘束1つを評価し、値が変わったか返す。
func (s *Scene) evaluateConstraint(n *Node) bool {
	c := n.Constraint
	driven, ok := s.node(c.Driven)
	if !ok {
		return false
	}
	weights, ok := constraintWeights(n)
	if !ok {
		return false
	}
	beforeT, beforeR := driven.Translate, driven.Rotate

	switch c.Type {
	case moutput.CONSTRAINT_POINT:
		s.setWorldPosition(driven, s.blendPosition(c.Drivers, weights))
	case moutput.CONSTRAINT_ORIENT:
		s.setWorldRotation(driven, s.blendRotation(c.Drivers, weights))
	case moutput.CONSTRAINT_PARENT:
		s.setWorldPosition(driven, s.blendPosition(c.Drivers, weights))
		s.setWorldRotation(driven, s.blendRotation(c.Drivers, weights))
	case moutput.CONSTRAINT_AIM:
		s.setWorldRotation(driven, s.aimRotation(n, driven, s.blendPosition(c.Drivers, weights)))
	}
	applyLimits(driven)

	return !mmath.NearEquals(beforeT, driven.Translate, changeTolerance) ||
		!mmath.QuatNearEquals(beforeR, driven.Rotate, changeTolerance)
}

// aimRotation はエイム拘束が求めるワールド回転を返す。
func (s *Scene) aimRotation(n *Node, driven *Node, target r3.Vec) mgl64.Quat {
	c := n.Constraint
	origin := s.worldPosition(driven.Name)
	aimDir := r3.Sub(target, origin)
	aimVector := vectorAttrs(n, moutput.ATTR_AIM_VECTOR)
	upVector := vectorAttrs(n, moutput.ATTR_UP_VECTOR)
	rest := s.parentRotation(driven).Mul(driven.JointOrient)

	var worldUp r3.Vec
	switch c.WorldUpType {
	case moutput.WORLD_UP_VECTOR:
		worldUp = vectorAttrs(n, moutput.ATTR_WORLD_UP_VECTOR)
	case moutput.WORLD_UP_OBJECT:
		worldUp = r3.Sub(s.worldPosition(c.WorldUpObject), origin)
	case moutput.WORLD_UP_OBJECT_ROTATION:
		worldUp = mmath.FromVec3(s.worldRotation(c.WorldUpObject).Rotate(mmath.ToVec3(vectorAttrs(n, moutput.ATTR_WORLD_UP_VECTOR))))
	default:
		current := mmath.FromVec3(rest.Rotate(mmath.ToVec3(aimVector)))
		return mmath.ShortestArcQuat(current, aimDir).Mul(rest).Normalize()
	}

	if q, ok := mmath.AimQuat(aimDir, worldUp, aimVector, upVector); ok {
		return q
	}
	if _, ok := mmath.SafeUnit(aimDir); !ok {
		return s.worldRotation(driven.Name)
	}
	current := mmath.FromVec3(rest.Rotate(mmath.ToVec3(aimVector)))
	return mmath.ShortestArcQuat(current, aimDir).Mul(rest).Normalize()
}
