package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider is where finished exports end up: a local results
// directory during piloting, an object-store bucket in production.
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	GetURL(filename string) string
}

type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return filepath.Join(p.Config.LocalPath, filename)
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("%s/%s/%s", p.Config.MinioEndpoint, p.Config.MinioBucket, filename)
}

// NewStorageProvider selects the provider from configuration.
func NewStorageProvider(cfg *config.Config) (StorageProvider, error) {
	switch cfg.Storage.Type {
	case util.StorageMinio:
		client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
			Secure: cfg.Storage.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init minio client: %w", err)
		}
		return &MinioStorageProvider{Config: &cfg.Storage, Client: client}, nil
	case util.StorageLocal, "":
		return &LocalStorageProvider{Config: &cfg.Storage}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// uploadBytes is a small helper used by the export paths.
func uploadBytes(ctx context.Context, p StorageProvider, filename string, data []byte, contentType string) (string, error) {
	return p.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), contentType)
}
