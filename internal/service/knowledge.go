package service

import (
	"context"
	"fmt"
	"io"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/pkg/logger"

	"go.uber.org/zap"
)

type KnowledgeServiceI interface {
	ListFiles(ctx context.Context, search string) []model.KnowledgeFile
	UploadFile(ctx context.Context, role model.Role, filename string, content io.Reader) (*model.KnowledgeFile, error)
	DeleteFile(ctx context.Context, role model.Role, id string, confirmed bool) error
	DownloadFile(ctx context.Context, id string) (*portal.Download, error)
}

type KnowledgeService struct {
	api KnowledgeAPI
}

func NewKnowledgeService(api KnowledgeAPI) *KnowledgeService {
	return &KnowledgeService{api: api}
}

func (s *KnowledgeService) ListFiles(ctx context.Context, search string) []model.KnowledgeFile {
	files, err := s.api.ListFiles(ctx)
	if err != nil {
		logger.Component("knowledge").Warn("failed to load files", zap.Error(err))
		return []model.KnowledgeFile{}
	}

	out := make([]model.KnowledgeFile, 0, len(files))
	for _, f := range files {
		if matches(search, f.Name) {
			out = append(out, f)
		}
	}
	return out
}

func (s *KnowledgeService) UploadFile(ctx context.Context, role model.Role, filename string, content io.Reader) (*model.KnowledgeFile, error) {
	if !role.CanEditKnowledge() {
		return nil, ErrForbidden
	}
	if filename == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidValue)
	}

	file, err := s.api.UploadFile(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	return file, nil
}

func (s *KnowledgeService) DeleteFile(ctx context.Context, role model.Role, id string, confirmed bool) error {
	if !role.CanEditKnowledge() {
		return ErrForbidden
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.api.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DownloadFile opens the file for streaming; the caller closes the body.
func (s *KnowledgeService) DownloadFile(ctx context.Context, id string) (*portal.Download, error) {
	d, err := s.api.DownloadFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return d, nil
}
