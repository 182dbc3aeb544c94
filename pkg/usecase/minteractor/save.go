// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_rigmarker/pkg/usecase/port/moutput"
)

// SaveData はマーカーデータ文書またはスケルトン文書を保存する。
func (uc *MarkerUsecase) SaveData(rep moutput.IRigDataWriter, path string, data any) error {
	writer := rep
	if writer == nil {
		writer = uc.dataWriter
	}
	if writer == nil {
		return fmt.Errorf("保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if data == nil {
		return fmt.Errorf("保存対象データが未設定です")
	}
	if err := ensureOutputDir(path); err != nil {
		return err
	}
	return writer.Save(path, data)
}
