// 指示: miu200521358
package minteractor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// AlignHierCtrls は階層コントロールを対応するマーカーの位置/向きへ揃える。
// マーカーとアップコントロールのワールド行列は揃える前の値へ戻す。
func AlignHierCtrls(rc *RigContext, sys *model.MarkerSystem) error {
	scene := rc.Scene
	names := make([]string, 0, sys.Len())
	matrices := map[string]mgl64.Mat4{}
	for marker := range sys.IterMarkers(true) {
		if _, ok := matrices[marker.Name]; !ok {
			names = append(names, marker.Name)
			matrices[marker.Name] = scene.WorldMatrix(marker.Name)
		}
		if marker.UpCtrl != "" && scene.Exists(marker.UpCtrl) {
			if _, ok := matrices[marker.UpCtrl]; !ok {
				names = append(names, marker.UpCtrl)
				matrices[marker.UpCtrl] = scene.WorldMatrix(marker.UpCtrl)
			}
		}
	}

	for marker := range sys.IterMarkers(false) {
		if !marker.HasHierCtrl() || !scene.Exists(marker.HierCtrl) {
			continue
		}
		if err := scene.SetWorldMatrix(marker.HierCtrl, matrices[marker.Name]); err != nil {
			return err
		}
		if err := scene.SetScale(marker.HierCtrl, r3.Vec{X: 1, Y: 1, Z: 1}); err != nil {
			return err
		}
	}

	for _, name := range names {
		if err := scene.SetWorldMatrix(name, matrices[name]); err != nil {
			return err
		}
	}
	return nil
}

// AlignAllHierCtrls は登録済みの全システムの階層コントロールを揃える。
func AlignAllHierCtrls(rc *RigContext) error {
	for _, sys := range rc.Systems() {
		if err := AlignHierCtrls(rc, sys); err != nil {
			return err
		}
	}
	return nil
}

// deleteHierCtrl はマーカーの階層コントロールとオフセットを削除し、マーカーを MGRP 直下へ移す。
// 子の階層コントロールは削除するコントロールの親へ付け替える。
func deleteHierCtrl(rc *RigContext, marker *model.Marker) error {
	if !marker.HasHierCtrl() {
		return nil
	}
	scene := rc.Scene
	hierCtrl := marker.HierCtrl
	parent := scene.Parent(hierCtrl)
	for _, child := range scene.Children(hierCtrl) {
		if scene.Kind(child) == moutput.NODE_KIND_CONSTRAINT {
			continue
		}
		if err := scene.SetParent(child, parent); err != nil {
			return err
		}
	}

	offset := scene.Parent(marker.Name)
	if err := scene.SetParent(marker.Name, scene.Parent(offset)); err != nil {
		return err
	}
	if err := scene.Delete(hierCtrl); err != nil {
		return err
	}
	if offset == marker.Offset && scene.Exists(offset) {
		if err := scene.Delete(offset); err != nil {
			return err
		}
		marker.Offset = ""
	}
	if err := scene.DeleteTag(marker.Name, tagHierCtrl); err != nil {
		return err
	}
	marker.HierCtrl = ""
	return nil
}
