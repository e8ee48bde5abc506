package curation

import (
	apperrors "focustube-ml/pkg/errors"
)

// NewValidationError 输入不合法，不会触发任何模型调用
func NewValidationError(detail string) *apperrors.AppError {
	return apperrors.ErrInvalidParam.WithDetail(detail)
}

// NewModelInferenceError 包装 embedding 失败；已是 AppError 的保持原样（如熔断返回的 503）
func NewModelInferenceError(err error) *apperrors.AppError {
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}
	return apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "embedding inference failed")
}

func IsValidationError(err error) bool {
	return apperrors.IsCode(err, apperrors.CodeInvalidParam)
}

func IsModelInferenceError(err error) bool {
	return apperrors.IsCode(err, apperrors.CodeEmbeddingFailed) ||
		apperrors.IsCode(err, apperrors.CodeServiceUnavailable)
}
