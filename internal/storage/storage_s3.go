/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/friendsincode/cromwell_cli/internal/cloud"
)

// S3Config holds the S3 client overrides.
type S3Config struct {
	Endpoint     string // For S3-compatible services reachable through the AWS SDK
	UsePathStyle bool
}

// S3Lister implements Lister using the AWS SDK.
type S3Lister struct {
	client s3.ListObjectsV2APIClient
	logger zerolog.Logger
}

// NewS3Lister creates an S3 lister from an already resolved aws.Config.
func NewS3Lister(awsCfg aws.Config, cfg S3Config, logger zerolog.Logger) *S3Lister {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3ListerWithClient(client, logger)
}

// NewS3ListerWithClient wraps an existing ListObjectsV2 client.
func NewS3ListerWithClient(client s3.ListObjectsV2APIClient, logger zerolog.Logger) *S3Lister {
	return &S3Lister{client: client, logger: logger}
}

// List pages through ListObjectsV2 for every key under prefix.
func (l *S3Lister) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	if err := validateTarget(bucket, prefix); err != nil {
		return nil, err
	}

	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var objects []Object
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			cloud.LogError(l.logger.Error(), err).
				Str("bucket", bucket).
				Str("prefix", prefix).
				Msg("s3 list failed")
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		pages++
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Bucket:       bucket,
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	l.logger.Debug().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Int("pages", pages).
		Int("objects", len(objects)).
		Msg("s3 listing complete")

	return objects, nil
}
