// 指示: miu200521358
package minteractor

// Convert はマーカーデータからリグを生成し、スケルトンを書き出して保存する。
func (uc *MarkerUsecase) Convert(request ConvertRequest) (*ConvertResult, error) {
	result, err := uc.PrepareRig(request)
	if err != nil {
		return nil, err
	}
	if request.SkipSkeleton {
		return result, nil
	}

	rc := result.Context
	var joints map[string][][]string
	err = Atomic(rc, func() error {
		built, err := BuildAllSkeletons(rc, "")
		if err != nil {
			return err
		}
		joints = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Skeleton = ExportSkeletonData(rc, joints)
	reportPrepareProgress(request.ProgressReporter, PrepareProgressEvent{
		Type:        PrepareProgressEventTypeSkeletonBuilt,
		SystemCount: len(result.Systems),
		JointCount:  result.Skeleton.JointCount(),
	})

	if err := uc.SaveData(request.Writer, result.OutputPath, result.Skeleton); err != nil {
		return nil, err
	}
	result.Warnings = rc.Warnings()
	return result, nil
}
