// 指示: miu200521358
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// localMatrix は T・JO・R・S のローカル行列を返す。
func localMatrix(n *Node) mgl64.Mat4 {
	return mmath.ComposeMatrix(n.Translate, n.JointOrient.Mul(n.Rotate), n.ScaleValue)
}

// worldMatrix は評価せずにワールド行列を返す。
func (s *Scene) worldMatrix(name string) mgl64.Mat4 {
	n, ok := s.node(name)
	if !ok {
		return mgl64.Ident4()
	}
	local := localMatrix(n)
	if n.Parent == "" {
		return local
	}
	return s.worldMatrix(n.Parent).Mul4(local)
}

// worldRotation は評価せずにワールド回転を返す。
func (s *Scene) worldRotation(name string) mgl64.Quat {
	n, ok := s.node(name)
	if !ok {
		return mgl64.QuatIdent()
	}
	local := n.JointOrient.Mul(n.Rotate)
	if n.Parent == "" {
		return local.Normalize()
	}
	return s.worldRotation(n.Parent).Mul(local).Normalize()
}

// worldPosition は評価せずにワールド位置を返す。
func (s *Scene) worldPosition(name string) r3.Vec {
	m := s.worldMatrix(name)
	return r3.Vec{X: m[12], Y: m[13], Z: m[14]}
}

// parentMatrix は親のワールド行列を返す。
func (s *Scene) parentMatrix(n *Node) mgl64.Mat4 {
	if n.Parent == "" {
		return mgl64.Ident4()
	}
	return s.worldMatrix(n.Parent)
}

// parentRotation は親のワールド回転を返す。
func (s *Scene) parentRotation(n *Node) mgl64.Quat {
	if n.Parent == "" {
		return mgl64.QuatIdent()
	}
	return s.worldRotation(n.Parent)
}

// setWorldPosition は評価せずにワールド位置からローカル移動を設定する。
func (s *Scene) setWorldPosition(n *Node, position r3.Vec) {
	inv := s.parentMatrix(n).Inv()
	local := inv.Mul4x1(mgl64.Vec4{position.X, position.Y, position.Z, 1})
	n.Translate = r3.Vec{X: local[0], Y: local[1], Z: local[2]}
}

// setWorldRotation は評価せずにワールド回転からローカル回転を設定する。
func (s *Scene) setWorldRotation(n *Node, rotation mgl64.Quat) {
	parent := s.parentRotation(n)
	n.Rotate = n.JointOrient.Inverse().Mul(parent.Inverse()).Mul(rotation).Normalize()
}

// applyWorldMatrix は評価せずにワールド行列からローカル変換を設定する。
func (s *Scene) applyWorldMatrix(n *Node, world mgl64.Mat4) {
	s.applyLocalMatrix(n, s.parentMatrix(n).Inv().Mul4(world))
}

// applyLocalMatrix はローカル行列を分解して各チャンネルへ設定する。
func (s *Scene) applyLocalMatrix(n *Node, local mgl64.Mat4) {
	translate, rotate, scale := mmath.DecomposeMatrix(local)
	n.Translate = translate
	n.Rotate = n.JointOrient.Inverse().Mul(rotate).Normalize()
	n.ScaleValue = scale
}

// WorldPosition はワールド位置を返す。
func (s *Scene) WorldPosition(name string) r3.Vec {
	s.evaluate()
	return s.worldPosition(name)
}

// SetWorldPosition はワールド位置を設定する。
func (s *Scene) SetWorldPosition(name string, position r3.Vec) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	s.evaluate()
	s.setWorldPosition(n, position)
	s.dirty = true
	return nil
}

// LocalPosition はローカル移動を返す。
func (s *Scene) LocalPosition(name string) r3.Vec {
	s.evaluate()
	if n, ok := s.node(name); ok {
		return n.Translate
	}
	return r3.Vec{}
}

// SetLocalPosition はローカル移動を設定する。
func (s *Scene) SetLocalPosition(name string, position r3.Vec) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	n.Translate = position
	s.dirty = true
	return nil
}

// WorldRotation はワールド回転を返す。
func (s *Scene) WorldRotation(name string) mgl64.Quat {
	s.evaluate()
	return s.worldRotation(name)
}

// SetWorldRotation はワールド回転を設定する。
func (s *Scene) SetWorldRotation(name string, rotation mgl64.Quat) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	s.evaluate()
	s.setWorldRotation(n, rotation)
	s.dirty = true
	return nil
}

// WorldMatrix はワールド行列を返す。
func (s *Scene) WorldMatrix(name string) mgl64.Mat4 {
	s.evaluate()
	return s.worldMatrix(name)
}

// SetWorldMatrix はワールド行列を設定する。
func (s *Scene) SetWorldMatrix(name string, matrix mgl64.Mat4) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	s.evaluate()
	s.applyWorldMatrix(n, matrix)
	s.dirty = true
	return nil
}

// LocalMatrix はローカル行列を返す。
func (s *Scene) LocalMatrix(name string) mgl64.Mat4 {
	s.evaluate()
	if n, ok := s.node(name); ok {
		return localMatrix(n)
	}
	return mgl64.Ident4()
}

// SetLocalMatrix はローカル行列を設定する。
func (s *Scene) SetLocalMatrix(name string, matrix mgl64.Mat4) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	s.applyLocalMatrix(n, matrix)
	s.dirty = true
	return nil
}

// Scale はローカルスケールを返す。
func (s *Scene) Scale(name string) r3.Vec {
	if n, ok := s.node(name); ok {
		return n.ScaleValue
	}
	return r3.Vec{X: 1, Y: 1, Z: 1}
}

// SetScale はローカルスケールを設定する。
func (s *Scene) SetScale(name string, scale r3.Vec) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	n.ScaleValue = scale
	s.dirty = true
	return nil
}

// MakeIdentity はジョイントの回転をジョイントオリエントへ焼き込み、スケールを1へ戻す。
func (s *Scene) MakeIdentity(name string) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	if n.Kind != moutput.NODE_KIND_JOINT {
		return fmt.Errorf("ジョイント以外はフリーズできません: %s", name)
	}
	n.JointOrient = n.JointOrient.Mul(n.Rotate).Normalize()
	n.Rotate = mgl64.QuatIdent()
	n.ScaleValue = r3.Vec{X: 1, Y: 1, Z: 1}
	s.dirty = true
	return nil
}

// MirrorJoint はYZ平面でビヘイビアミラーしたジョイントを同じ親の下へ生成する。
func (s *Scene) MirrorJoint(name string, mirrorName string) error {
	n, err := s.mustNode(name)
	if err != nil {
		return err
	}
	if n.Kind != moutput.NODE_KIND_JOINT {
		return fmt.Errorf("ジョイント以外はミラーできません: %s", name)
	}
	s.evaluate()
	position := mmath.MirrorPosition(s.worldPosition(name))
	rotation := mmath.MirrorBehaviorQuat(s.worldRotation(name))

	if _, err := s.CreateNode(moutput.NODE_KIND_JOINT, mirrorName, n.Parent); err != nil {
		return err
	}
	mirrored := s.state.Nodes[mirrorName]
	s.setWorldPosition(mirrored, position)
	s.setWorldRotation(mirrored, rotation)
	mirrored.JointOrient = mirrored.Rotate
	mirrored.Rotate = mgl64.QuatIdent()
	s.dirty = true
	return nil
}
