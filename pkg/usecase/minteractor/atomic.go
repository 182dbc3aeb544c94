// 指示: miu200521358
package minteractor

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// Atomic は fn を1つの取り消し単位として実行する。
// fn が失敗した場合はシーンと登録済みシステムを実行前の状態へ戻す。
// シーンがスナップショットに対応しない場合は fn をそのまま実行する。
func Atomic(rc *RigContext, fn func() error) error {
	snapshotter, ok := rc.Scene.(moutput.ISceneSnapshotter)
	if !ok {
		return fn()
	}
	snapshot, err := snapshotter.Snapshot()
	if err != nil {
		return fmt.Errorf("シーンのスナップショット取得に失敗しました: %w", err)
	}
	saved := make([]systemSnapshot, 0, len(rc.systems))
	for _, sys := range rc.Systems() {
		clone, err := sys.Clone()
		if err != nil {
			return err
		}
		saved = append(saved, systemSnapshot{target: sys, clone: clone})
	}
	systems := maps.Clone(rc.systems)
	order := slices.Clone(rc.order)
	warnings := len(rc.warnings)
	globalRoot := rc.globalRoot

	fnErr := fn()
	if fnErr == nil {
		return nil
	}

	restoreErr := snapshotter.Restore(snapshot)
	for _, s := range saved {
		s.target.RestoreFrom(s.clone)
	}
	rc.systems = systems
	rc.order = order
	rc.globalRoot = globalRoot
	rc.warnings = rc.warnings[:warnings]
	if restoreErr != nil {
		return errors.Join(fnErr, fmt.Errorf("シーンの復元に失敗しました: %w", restoreErr))
	}
	return fnErr
}
