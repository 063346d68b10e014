/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinioConfig holds connection settings for an S3-compatible endpoint.
type MinioConfig struct {
	Endpoint        string // host:port, no scheme
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// MinioLister implements Lister with the MinIO client.
type MinioLister struct {
	client *minio.Client
	logger zerolog.Logger
}

// NewMinioLister creates a MinIO-backed lister.
func NewMinioLister(cfg MinioConfig, logger zerolog.Logger) (*MinioLister, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioLister{client: client, logger: logger}, nil
}

// List walks every object under prefix recursively.
func (l *MinioLister) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	if err := validateTarget(bucket, prefix); err != nil {
		return nil, err
	}

	var objects []Object
	for info := range l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			l.logger.Error().Err(info.Err).
				Str("bucket", bucket).
				Str("prefix", prefix).
				Msg("minio list failed")
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, info.Err)
		}
		objects = append(objects, Object{
			Bucket:       bucket,
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}

	l.logger.Debug().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Int("objects", len(objects)).
		Msg("minio listing complete")

	return objects, nil
}
