package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quizlab_backend/internal/config"
	"quizlab_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider abstracts where archived evaluation reports land.
type StorageProvider interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
}

type LocalStorageProvider struct {
	BasePath string
}

func (p *LocalStorageProvider) Put(_ context.Context, objectName string, data []byte, _ string) error {
	fullPath := filepath.Join(p.BasePath, objectName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	return os.WriteFile(fullPath, data, 0o644)
}

type MinioStorageProvider struct {
	Client *minio.Client
	Bucket string
}

func (p *MinioStorageProvider) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := p.Client.PutObject(ctx, p.Bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// StorageService archives finalized evaluation reports as JSON objects.
// A nil service means archival is disabled.
type StorageService struct {
	provider StorageProvider
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "local":
		return &StorageService{provider: &LocalStorageProvider{BasePath: cfg.LocalPath}}, nil
	case "minio":
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
			Secure: cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init minio client: %w", err)
		}
		return &StorageService{provider: &MinioStorageProvider{Client: client, Bucket: cfg.MinioBucket}}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

func (s *StorageService) ArchiveEvaluation(ctx context.Context, attemptID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal evaluation report: %w", err)
	}
	objectName := fmt.Sprintf("evaluations/%s.json", attemptID)
	if err := s.provider.Put(ctx, objectName, data, "application/json"); err != nil {
		return err
	}
	logger.Log.Debug("evaluation report archived", zap.String("object", objectName))
	return nil
}
