/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"

	"github.com/friendsincode/cromwell_cli/internal/cloud"
)

// CallerIdentityAPI is the STS subset used here.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Caller describes the principal behind the active credentials.
type Caller struct {
	Account string
	ARN     string
	UserID  string
}

// Client wraps STS.
type Client struct {
	api    CallerIdentityAPI
	logger zerolog.Logger
}

// NewClient builds an STS client from a resolved aws.Config.
func NewClient(cfg aws.Config, logger zerolog.Logger) *Client {
	return NewClientWithAPI(sts.NewFromConfig(cfg), logger)
}

// NewClientWithAPI wraps an existing STS implementation.
func NewClientWithAPI(api CallerIdentityAPI, logger zerolog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// CallerIdentity returns the caller's account, ARN and user id.
func (c *Client) CallerIdentity(ctx context.Context) (Caller, error) {
	out, err := c.api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		cloud.LogError(c.logger.Error(), err).Msg("get caller identity failed")
		return Caller{}, fmt.Errorf("get caller identity: %w", err)
	}

	caller := Caller{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}
	c.logger.Debug().Str("arn", caller.ARN).Msg("caller identity resolved")
	return caller, nil
}

// Account returns just the account number.
func (c *Client) Account(ctx context.Context) (string, error) {
	caller, err := c.CallerIdentity(ctx)
	if err != nil {
		return "", err
	}
	return caller.Account, nil
}
