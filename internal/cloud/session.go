/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cloud builds the per-process AWS configuration shared by the
// storage and identity clients.
package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// Options selects the credential profile and optional overrides.
type Options struct {
	Profile         string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// LoadAWSConfig resolves an aws.Config for the named shared-config profile.
// Static keys take precedence over the profile's credentials when both are set.
func LoadAWSConfig(ctx context.Context, opts Options, logger zerolog.Logger) (aws.Config, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error

	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		logger.Debug().Msg("using static credentials from configuration")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config for profile %q: %w", opts.Profile, err)
	}

	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	logger.Debug().
		Str("profile", opts.Profile).
		Str("region", cfg.Region).
		Msg("aws session initialized")

	return cfg, nil
}

// APIErrorFields extracts the service error code and message when err wraps a
// smithy API error. ok is false for transport and client-side errors.
func APIErrorFields(err error) (code, message string, ok bool) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), apiErr.ErrorMessage(), true
	}
	return "", "", false
}

// LogError attaches AWS error details to an error event.
func LogError(event *zerolog.Event, err error) *zerolog.Event {
	event = event.Err(err)
	if code, msg, ok := APIErrorFields(err); ok {
		event = event.Str("aws_error_code", code).Str("aws_error_message", msg)
	}
	return event
}
