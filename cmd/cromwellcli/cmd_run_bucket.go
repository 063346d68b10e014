/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/cromwell_cli/internal/batch"
	"github.com/friendsincode/cromwell_cli/internal/cloud"
	"github.com/friendsincode/cromwell_cli/internal/config"
	"github.com/friendsincode/cromwell_cli/internal/cromwell"
	"github.com/friendsincode/cromwell_cli/internal/manifest"
	"github.com/friendsincode/cromwell_cli/internal/scanner"
	"github.com/friendsincode/cromwell_cli/internal/storage"
	"github.com/friendsincode/cromwell_cli/internal/telemetry"
)

type runBucketOptions struct {
	host     string
	source   string
	bucket   string
	prefix   string
	template string
	maxFiles int
}

// listerFactory is swapped out in tests.
var listerFactory = newLister

func newRunBucketCmd(a *app) *cobra.Command {
	opts := &runBucketOptions{}

	cmd := &cobra.Command{
		Use:   "run_bucket",
		Short: "Run the workflow once per indexed BAM file in a bucket",
		Long: `Lists every object under --prefix in --bucket, keeps the .bam objects that
have exactly one matching .bai index, and submits --source once per BAM with
an inputs document rendered from the mustache template.

Nothing is submitted when more BAM files are found than the configured limit.

Examples:
  cromwellcli run_bucket --host cromwell.example.org --source parliament2.wdl \
    --bucket genomes --prefix runs/2024-03/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBucket(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "DNS name or IP of Cromwell host (required)")
	cmd.Flags().StringVar(&opts.source, "source", "", "WDL input file (required)")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "Bucket of BAM files to process (required)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Prefix of objects within bucket (required)")
	cmd.Flags().StringVar(&opts.template, "template", "", "Inputs mustache template (default from config)")
	cmd.Flags().IntVar(&opts.maxFiles, "max-files", 0, "Maximum number of BAM files to submit (default from config)")
	for _, name := range []string{"host", "source", "bucket", "prefix"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) runBucket(cmd *cobra.Command, opts *runBucketOptions) error {
	ctx := cmd.Context()

	if opts.template != "" {
		a.cfg.TemplatePath = opts.template
	}
	if opts.maxFiles > 0 {
		a.cfg.MaxFiles = opts.maxFiles
	}

	lister, err := listerFactory(cmd, a)
	if err != nil {
		return err
	}

	client, err := a.cromwellClient(opts.host)
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics()
	runner := &batch.Runner{
		Scanner:   scanner.New(lister, a.logger),
		Renderer:  manifest.FileRenderer{Path: a.cfg.TemplatePath},
		Submitter: client,
		MaxFiles:  a.cfg.MaxFiles,
		Out:       a.out,
		Logger:    a.logger,
		Metrics:   metrics,
	}

	res, runErr := runner.Run(ctx, batch.Request{
		Bucket: opts.bucket,
		Prefix: opts.prefix,
		Source: opts.source,
	})

	if err := metrics.Push(ctx, a.cfg.PushgatewayURL, "cromwellcli", map[string]string{"bucket": opts.bucket}); err != nil {
		a.logger.Warn().Err(err).Msg("metrics push failed")
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Debug().Str("batch_id", res.BatchID).Int("submitted", res.Submitted).Msg("run_bucket finished")
	return nil
}

// newLister picks the object storage client for the configured backend.
func newLister(cmd *cobra.Command, a *app) (storage.Lister, error) {
	switch a.cfg.StorageBackend {
	case config.StorageMinio:
		return storage.NewMinioLister(storage.MinioConfig{
			Endpoint:        a.cfg.S3Endpoint,
			AccessKeyID:     a.cfg.S3AccessKeyID,
			SecretAccessKey: a.cfg.S3SecretAccessKey,
			Region:          a.cfg.Region,
			UseSSL:          a.cfg.S3UseSSL,
		}, a.logger)
	default:
		awsCfg, err := cloud.LoadAWSConfig(cmd.Context(), cloud.Options{
			Profile:         a.cfg.Profile,
			Region:          a.cfg.Region,
			AccessKeyID:     a.cfg.S3AccessKeyID,
			SecretAccessKey: a.cfg.S3SecretAccessKey,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Lister(awsCfg, storage.S3Config{
			Endpoint:     a.cfg.S3Endpoint,
			UsePathStyle: a.cfg.S3UsePathStyle,
		}, a.logger), nil
	}
}

func (a *app) cromwellClient(host string) (*cromwell.Client, error) {
	client, err := cromwell.NewClient(host, cromwell.Options{
		Timeout:            a.cfg.HTTPTimeout,
		InsecureSkipVerify: a.cfg.InsecureSkipVerify,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create cromwell client: %w", err)
	}
	return client, nil
}
