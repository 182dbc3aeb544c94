// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"

// MarkerUsecaseDeps はマーカーリグユースケースの依存を表す。
type MarkerUsecaseDeps struct {
	DataReader moutput.IRigDataReader
	DataWriter moutput.IRigDataWriter
	// NewScene は要求にシーンがない場合の生成関数。
	NewScene func() moutput.IScene
}

// MarkerUsecase はマーカーデータからリグとスケルトンを生成する処理をまとめたユースケースを表す。
type MarkerUsecase struct {
	dataReader moutput.IRigDataReader
	dataWriter moutput.IRigDataWriter
	newScene   func() moutput.IScene
}

// NewMarkerUsecase はマーカーリグユースケースを生成する。
func NewMarkerUsecase(deps MarkerUsecaseDeps) *MarkerUsecase {
	return &MarkerUsecase{
		dataReader: deps.DataReader,
		dataWriter: deps.DataWriter,
		newScene:   deps.NewScene,
	}
}
