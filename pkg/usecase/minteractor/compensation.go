// 指示: miu200521358
package minteractor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// compensation は記録済みの逆操作1件を表す。
type compensation struct {
	name  string
	apply func() error
}

// compensationLog はシーン変更の逆操作を記録し、失敗時に逆順で適用する。
type compensationLog struct {
	scene   moutput.IScene
	entries []compensation
	systems []systemSnapshot
}

// systemSnapshot はマーカーシステムの変更前の複製を表す。
type systemSnapshot struct {
	target *model.MarkerSystem
	clone  *model.MarkerSystem
}

// newCompensationLog は逆操作ログを生成する。
func newCompensationLog(scene moutput.IScene) *compensationLog {
	return &compensationLog{scene: scene}
}

// push は逆操作を追加する。
func (l *compensationLog) push(name string, apply func() error) {
	l.entries = append(l.entries, compensation{name: name, apply: apply})
}

// keepSystem はシステムの現在の状態を複製して保持する。同じシステムは1度だけ保持する。
func (l *compensationLog) keepSystem(sys *model.MarkerSystem) error {
	if sys == nil {
		return nil
	}
	if slices.ContainsFunc(l.systems, func(s systemSnapshot) bool { return s.target == sys }) {
		return nil
	}
	clone, err := sys.Clone()
	if err != nil {
		return err
	}
	l.systems = append(l.systems, systemSnapshot{target: sys, clone: clone})
	return nil
}

// rollback は逆操作を新しい順に適用し、システムを複製時点へ戻す。
func (l *compensationLog) rollback() error {
	var errs []error
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		if err := entry.apply(); err != nil {
			errs = append(errs, fmt.Errorf("%s の取り消しに失敗しました: %w", entry.name, err))
		}
	}
	for _, snapshot := range l.systems {
		snapshot.target.RestoreFrom(snapshot.clone)
	}
	l.entries = nil
	return errors.Join(errs...)
}

// setTag はタグを設定し、元の値へ戻す逆操作を記録する。
func (l *compensationLog) setTag(node string, key string, value string) error {
	before, existed := l.scene.Tag(node, key)
	if err := l.scene.SetTag(node, key, value); err != nil {
		return err
	}
	l.push("タグ設定 "+node+"."+key, func() error {
		if !existed {
			return l.scene.DeleteTag(node, key)
		}
		return l.scene.SetTag(node, key, before)
	})
	return nil
}

// deleteTag はタグを削除し、元の値へ戻す逆操作を記録する。
func (l *compensationLog) deleteTag(node string, key string) error {
	before, existed := l.scene.Tag(node, key)
	if !existed {
		return nil
	}
	if err := l.scene.DeleteTag(node, key); err != nil {
		return err
	}
	l.push("タグ削除 "+node+"."+key, func() error {
		return l.scene.SetTag(node, key, before)
	})
	return nil
}

// setParent は親を変更し、元の親へ戻す逆操作を記録する。
func (l *compensationLog) setParent(node string, parent string) error {
	before := l.scene.Parent(node)
	if before == parent {
		return nil
	}
	if err := l.scene.SetParent(node, parent); err != nil {
		return err
	}
	l.push("親変更 "+node, func() error {
		return l.scene.SetParent(node, before)
	})
	return nil
}

// setAttr は数値属性を設定し、元の値へ戻す逆操作を記録する。
func (l *compensationLog) setAttr(plug string, value float64) error {
	before := l.scene.Attr(plug)
	if err := l.scene.SetAttr(plug, value); err != nil {
		return err
	}
	l.push("属性設定 "+plug, func() error {
		return l.scene.SetAttr(plug, before)
	})
	return nil
}

// addConstraint は拘束を生成し、削除して被拘束ノードの変換を戻す逆操作を記録する。
func (l *compensationLog) addConstraint(spec moutput.ConstraintSpec) (string, error) {
	before := l.scene.LocalMatrix(spec.Driven)
	name, err := l.scene.AddConstraint(spec)
	if err != nil {
		return "", err
	}
	l.push("拘束生成 "+name, func() error {
		if l.scene.Exists(name) {
			if err := l.scene.RemoveConstraint(name); err != nil {
				return err
			}
		}
		return l.scene.SetLocalMatrix(spec.Driven, before)
	})
	return name, nil
}

// removeConstraint は拘束を削除し、同じ内容で再生成する逆操作を記録する。
func (l *compensationLog) removeConstraint(info moutput.ConstraintInfo) error {
	aliases := l.scene.WeightAliases(info.Name)
	weights := make([]float64, len(aliases))
	for i, alias := range aliases {
		weights[i] = l.scene.Attr(moutput.Plug(info.Name, alias))
	}
	if err := l.scene.RemoveConstraint(info.Name); err != nil {
		return err
	}
	spec := info.ConstraintSpec
	l.push("拘束削除 "+info.Name, func() error {
		name, err := l.scene.AddConstraint(spec)
		if err != nil {
			return err
		}
		for i, alias := range l.scene.WeightAliases(name) {
			if i >= len(weights) {
				break
			}
			if err := l.scene.SetAttr(moutput.Plug(name, alias), weights[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}
