// 指示: miu200521358
package model

import (
	"fmt"
	"iter"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/mmath"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/model/merrors"
	"github.com/miu200521358/mu_rigmarker/pkg/domain/naming"
	"github.com/tiendc/go-deepcopy"
)

// MarkerSystem は1つのルート配下のマーカーチェーン群を表す。
// マーカーはアリーナに保持し、親子はインデックスで参照する。
type MarkerSystem struct {
	Name  string
	Part  string
	Side  string
	Root  string
	Group string

	Chains  []*MarkerChain
	Markers []*Marker

	ParentMarker MarkerRef
	ConnectMode  ConnectMode

	AimAxis mmath.Axis
	UpAxis  mmath.Axis
	// HasAxisSelectors はルートに aim_axis/up_axis 属性が作られたか。
	HasAxisSelectors bool
}

// NewMarkerSystem はマーカーシステムを生成する。
func NewMarkerSystem(part string, side string) (*MarkerSystem, error) {
	root, err := naming.MarkerRootName(part, side)
	if err != nil {
		return nil, err
	}
	parsed, _ := naming.Parse(root)
	return &MarkerSystem{
		Name:    root,
		Part:    parsed.Part,
		Side:    parsed.Side,
		Root:    root,
		Group:   naming.Derive(root, naming.EXT_MARKER_GROUP),
		AimAxis: mmath.AXIS_X,
		UpAxis:  mmath.AXIS_Z,
	}, nil
}

// AddChain はチェーンを追加する。
func (ms *MarkerSystem) AddChain(chain *MarkerChain) {
	chain.ID = len(ms.Chains)
	ms.Chains = append(ms.Chains, chain)
}

// AddMarker はチェーン末尾へマーカーを追加し、アリーナインデックスを返す。
func (ms *MarkerSystem) AddMarker(chainID int, marker *Marker) (int, error) {
	if chainID < 0 || chainID >= len(ms.Chains) {
		return -1, merrors.NewNotFoundError("チェーン", fmt.Sprintf("%s[%d]", ms.Name, chainID))
	}
	chain := ms.Chains[chainID]
	marker.ChainID = chainID
	marker.Index = len(chain.MarkerIndexes)
	marker.ArenaIndex = len(ms.Markers)
	ms.Markers = append(ms.Markers, marker)
	chain.MarkerIndexes = append(chain.MarkerIndexes, marker.ArenaIndex)
	return marker.ArenaIndex, nil
}

// Len はマーカー数を返す。
func (ms *MarkerSystem) Len() int {
	return len(ms.Markers)
}

// GetMarker はチェーンIDとチェーン内IDからマーカーを返す。
func (ms *MarkerSystem) GetMarker(chainID int, markerID int) (*Marker, error) {
	if chainID < 0 || chainID >= len(ms.Chains) {
		return nil, merrors.NewNotFoundError("マーカー", fmt.Sprintf("%s (%d, %d)", ms.Name, chainID, markerID))
	}
	chain := ms.Chains[chainID]
	if markerID < 0 || markerID >= len(chain.MarkerIndexes) {
		return nil, merrors.NewNotFoundError("マーカー", fmt.Sprintf("%s (%d, %d)", ms.Name, chainID, markerID))
	}
	return ms.Markers[chain.MarkerIndexes[markerID]], nil
}

// GetMarkerIDs はマーカー名からチェーンIDとチェーン内IDを返す。見つからない場合は (-1, -1)。
func (ms *MarkerSystem) GetMarkerIDs(name string) (int, int) {
	marker, ok := ms.MarkerByName(name)
	if !ok {
		return -1, -1
	}
	return marker.ChainID, marker.Index
}

// MarkerByName は名前からマーカーを返す。
func (ms *MarkerSystem) MarkerByName(name string) (*Marker, bool) {
	for _, marker := range ms.Markers {
		if marker.Name == name {
			return marker, true
		}
	}
	return nil, false
}

// ChainMarkers はチェーン内のマーカーを順に返す。
func (ms *MarkerSystem) ChainMarkers(chainID int) []*Marker {
	if chainID < 0 || chainID >= len(ms.Chains) {
		return nil
	}
	chain := ms.Chains[chainID]
	markers := make([]*Marker, 0, len(chain.MarkerIndexes))
	for _, index := range chain.MarkerIndexes {
		markers = append(markers, ms.Markers[index])
	}
	return markers
}

// ParentOf はシステム内の親マーカーを返す。
func (ms *MarkerSystem) ParentOf(marker *Marker) *Marker {
	if !marker.HasParent() || marker.ParentIndex >= len(ms.Markers) {
		return nil
	}
	return ms.Markers[marker.ParentIndex]
}

// ChildrenOf はシステム内の子マーカーを返す。
func (ms *MarkerSystem) ChildrenOf(marker *Marker) []*Marker {
	children := make([]*Marker, 0)
	for _, m := range ms.Markers {
		if m.ParentIndex == marker.ArenaIndex {
			children = append(children, m)
		}
	}
	return children
}

// IsLeaf はシステム内に子マーカーを持たないか判定する。常に親参照から導出する。
func (ms *MarkerSystem) IsLeaf(marker *Marker) bool {
	for _, m := range ms.Markers {
		if m.ParentIndex == marker.ArenaIndex {
			return false
		}
	}
	return true
}

// RootMarkers はシステム内で親を持たないチェーン先頭マーカーを返す。
// 別システムへの親接続はこのマーカー群に対してだけ行う。
func (ms *MarkerSystem) RootMarkers() []*Marker {
	roots := make([]*Marker, 0)
	for _, chain := range ms.Chains {
		if len(chain.MarkerIndexes) == 0 {
			continue
		}
		marker := ms.Markers[chain.MarkerIndexes[0]]
		if marker.HasParent() {
			continue
		}
		roots = append(roots, marker)
	}
	return roots
}

// IterMarkers はチェーン順にマーカーを列挙する。
// planeMarkerLast が true の場合、直線/平面ロックのマーカーを最後にまとめる。
func (ms *MarkerSystem) IterMarkers(planeMarkerLast bool) iter.Seq[*Marker] {
	return func(yield func(*Marker) bool) {
		deferred := make([]*Marker, 0)
		for _, chain := range ms.Chains {
			for _, index := range chain.MarkerIndexes {
				marker := ms.Markers[index]
				if planeMarkerLast && marker.IsPlaneLocked() {
					deferred = append(deferred, marker)
					continue
				}
				if !yield(marker) {
					return
				}
			}
		}
		for _, marker := range deferred {
			if !yield(marker) {
				return
			}
		}
	}
}

// IsMiddle は中央システムか判定する。
func (ms *MarkerSystem) IsMiddle() bool {
	return ms.Side == naming.SIDE_M
}

// MirrorName は左右反転したシステムのルート名を返す。
func (ms *MarkerSystem) MirrorName() string {
	return naming.FlipName(ms.Root)
}

// IsConnected は親マーカーへ接続済みか判定する。
func (ms *MarkerSystem) IsConnected() bool {
	return !ms.ParentMarker.IsZero()
}

// Clone はシステムの深いコピーを返す。
func (ms *MarkerSystem) Clone() (*MarkerSystem, error) {
	var out MarkerSystem
	if err := deepcopy.Copy(&out, ms); err != nil {
		return nil, fmt.Errorf("マーカーシステムの複製に失敗しました: %w", err)
	}
	return &out, nil
}

// RestoreFrom は複製した状態を書き戻す。既存のマーカー/チェーンのポインタは維持する。
func (ms *MarkerSystem) RestoreFrom(snapshot *MarkerSystem) {
	if snapshot == nil {
		return
	}
	markers := ms.Markers
	chains := ms.Chains
	*ms = *snapshot
	if len(markers) == len(snapshot.Markers) {
		for i, marker := range markers {
			*marker = *snapshot.Markers[i]
		}
		ms.Markers = markers
	}
	if len(chains) == len(snapshot.Chains) {
		for i, chain := range chains {
			*chain = *snapshot.Chains[i]
		}
		ms.Chains = chains
	}
}
