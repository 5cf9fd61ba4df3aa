package storage

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/coursedeck/submission-service/internal/config"
)

// MinIOProvider stores artifacts as objects keyed
// {courseId}/{groupId}/{filename} in a single bucket.
type MinIOProvider struct {
	client *minio.Client
	bucket string
	region string
	logger zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinIOProvider(cfg config.MinIOConfig, logger zerolog.Logger) (*MinIOProvider, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	provider := &MinIOProvider{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}

	// Best-effort bootstrap: do not take the whole service down when MinIO is
	// still starting; the bucket check retries on demand.
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := provider.ensureBucket(ctx); err != nil {
		logger.Error().Err(err).
			Str("endpoint", cfg.Endpoint).
			Str("bucket", cfg.Bucket).
			Msg("MinIO not ready during startup; will retry on demand")
	} else {
		logger.Info().
			Str("endpoint", cfg.Endpoint).
			Str("bucket", cfg.Bucket).
			Bool("ssl", cfg.UseSSL).
			Msg("Connected to MinIO")
	}

	return provider, nil
}

func (p *MinIOProvider) ensureBucket(ctx context.Context) error {
	p.ensureMu.Lock()
	defer p.ensureMu.Unlock()
	if p.bucketEnsured {
		return nil
	}

	backoff := 500 * time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("minio not ready: %w", err)
		}

		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			time.Sleep(backoff)
			continue
		}

		if !exists {
			if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
				time.Sleep(backoff)
				continue
			}
			p.logger.Info().Str("bucket", p.bucket).Msg("Created new bucket")
		}

		p.bucketEnsured = true
		return nil
	}
}

func (p *MinIOProvider) Save(ctx context.Context, courseID int64, groupID, name string, content io.Reader, size int64) error {
	if err := p.ensureBucket(ctx); err != nil {
		return err
	}

	key := p.objectKey(courseID, groupID, name)
	info, err := p.client.PutObject(ctx, p.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("failed to upload artifact: %w", err)
	}

	p.logger.Debug().
		Str("key", key).
		Str("etag", info.ETag).
		Int64("size", size).
		Msg("Artifact uploaded to MinIO")

	return nil
}

func (p *MinIOProvider) Open(ctx context.Context, courseID int64, groupID, name string) (io.ReadCloser, int64, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return nil, 0, err
	}

	key := p.objectKey(courseID, groupID, name)
	stat, err := p.client.StatObject(ctx, p.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to stat artifact: %w", err)
	}

	object, err := p.client.GetObject(ctx, p.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get artifact: %w", err)
	}

	return object, stat.Size, nil
}

func (p *MinIOProvider) ListCourse(ctx context.Context, courseID int64) ([]Object, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return nil, err
	}

	prefix := strconv.FormatInt(courseID, 10) + "/"
	var objects []Object
	for info := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list artifacts: %w", info.Err)
		}

		rel := strings.TrimPrefix(info.Key, prefix)
		parts := strings.SplitN(rel, "/", 2)
		if len(parts) != 2 {
			continue
		}

		objects = append(objects, Object{
			GroupID: parts[0],
			Name:    parts[1],
			Size:    info.Size,
		})
	}

	return objects, nil
}

func (p *MinIOProvider) RemoveGroup(ctx context.Context, courseID int64, groupID string) error {
	prefix := strconv.FormatInt(courseID, 10) + "/" + groupID + "/"
	return p.removePrefix(ctx, prefix)
}

func (p *MinIOProvider) RemoveCourse(ctx context.Context, courseID int64) error {
	prefix := strconv.FormatInt(courseID, 10) + "/"
	return p.removePrefix(ctx, prefix)
}

func (p *MinIOProvider) removePrefix(ctx context.Context, prefix string) error {
	if err := p.ensureBucket(ctx); err != nil {
		return err
	}

	for info := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return fmt.Errorf("failed to list artifacts for removal: %w", info.Err)
		}
		if err := p.client.RemoveObject(ctx, p.bucket, info.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove artifact %s: %w", info.Key, err)
		}
	}

	return nil
}

func (p *MinIOProvider) objectKey(courseID int64, groupID, name string) string {
	return strconv.FormatInt(courseID, 10) + "/" + groupID + "/" + name
}
