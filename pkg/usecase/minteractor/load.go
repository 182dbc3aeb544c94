// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_rigmarker/pkg/domain/model"
	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// LoadRigData はマーカーデータ文書を読み込む。
func (uc *MarkerUsecase) LoadRigData(rep moutput.IRigDataReader, path string) (*model.RigData, error) {
	repo := rep
	if repo == nil {
		repo = uc.dataReader
	}
	if repo == nil {
		return nil, fmt.Errorf("マーカーデータ読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("マーカーデータパスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("読み込めないマーカーデータ形式です: %s", path)
	}
	data, err := repo.Load(path)
	if err != nil {
		return nil, fmt.Errorf("マーカーデータの読み込みに失敗しました: %w", err)
	}
	return data, nil
}
