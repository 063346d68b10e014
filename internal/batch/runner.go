/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package batch submits one workflow per indexed BAM object found in a bucket.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/friendsincode/cromwell_cli/internal/cromwell"
	"github.com/friendsincode/cromwell_cli/internal/storage"
	"github.com/friendsincode/cromwell_cli/internal/telemetry"
)

// ErrTooManyObjects is returned before any submission when the scan selects
// more objects than the configured maximum.
var ErrTooManyObjects = errors.New("object count exceeds limit")

// Scanner selects the objects to submit.
type Scanner interface {
	Scan(ctx context.Context, bucket, prefix string) ([]storage.Object, error)
}

// Renderer builds the inputs document for one object.
type Renderer interface {
	Render(obj storage.Object) (string, error)
}

// Submitter sends one workflow to the server.
type Submitter interface {
	Submit(ctx context.Context, sourcePath, inputs string) (*cromwell.Response, error)
}

// Request identifies the bucket prefix and workflow source for a run.
type Request struct {
	Bucket string
	Prefix string
	Source string
}

// Result summarizes a completed run.
type Result struct {
	BatchID   string
	Selected  int
	Submitted int
	// Rejected counts submissions the server answered with an error status.
	Rejected int
	// WorkflowIDs lists the ids of accepted workflows in submission order.
	WorkflowIDs []string
}

// Runner wires scan, render and submit together.
type Runner struct {
	Scanner   Scanner
	Renderer  Renderer
	Submitter Submitter
	MaxFiles  int
	Out       io.Writer
	Logger    zerolog.Logger
	Metrics   *telemetry.Metrics
}

// Run scans req's prefix, enforces the object limit, then renders and
// submits each selected object in listing order. The first error stops the
// run; earlier submissions are left in place.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{BatchID: uuid.NewString()}
	logger := r.Logger.With().Str("batch_id", res.BatchID).Logger()

	ctx, span := telemetry.StartSpan(ctx, "batch.run",
		attribute.String("batch.id", res.BatchID),
		attribute.String("storage.bucket", req.Bucket),
		attribute.String("storage.prefix", req.Prefix),
	)
	defer span.End()

	objects, err := r.Scanner.Scan(ctx, req.Bucket, req.Prefix)
	if err != nil {
		telemetry.RecordError(span, err)
		return res, err
	}
	res.Selected = len(objects)
	defer func() { r.Metrics.ObserveBatch(res.Selected, time.Since(start)) }()

	if len(objects) > r.MaxFiles {
		logger.Error().
			Int("count", len(objects)).
			Int("limit", r.MaxFiles).
			Msgf("Number of objects in %s/%s (%d) exceeds limit of %d", req.Bucket, req.Prefix, len(objects), r.MaxFiles)
		err := fmt.Errorf("%w: %d objects in %s/%s, limit %d", ErrTooManyObjects, len(objects), req.Bucket, req.Prefix, r.MaxFiles)
		telemetry.RecordError(span, err)
		return res, err
	}

	for _, obj := range objects {
		if err := r.submitOne(ctx, logger, req, obj, res); err != nil {
			telemetry.RecordError(span, err)
			return res, err
		}
	}

	logger.Info().
		Int("selected", res.Selected).
		Int("submitted", res.Submitted).
		Int("rejected", res.Rejected).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")

	return res, nil
}

func (r *Runner) submitOne(ctx context.Context, logger zerolog.Logger, req Request, obj storage.Object, res *Result) error {
	logger = logger.With().Str("object", obj.URI(storage.SchemeS3)).Logger()
	logger.Debug().Msg("rendering inputs")

	inputs, err := r.Renderer.Render(obj)
	if err != nil {
		return err
	}

	resp, err := r.Submitter.Submit(ctx, req.Source, inputs)
	if err != nil {
		r.Metrics.ObserveSubmission(telemetry.OutcomeError)
		return fmt.Errorf("submit %s: %w", obj.Key, err)
	}
	res.Submitted++

	if resp.OK() {
		r.Metrics.ObserveSubmission(telemetry.OutcomeAccepted)
		if status, err := resp.DecodeStatus(); err == nil && status.ID != "" {
			res.WorkflowIDs = append(res.WorkflowIDs, status.ID)
			logger.Info().Str("workflow_id", status.ID).Str("status", status.Status).Msg("workflow submitted")
		}
	} else {
		res.Rejected++
		r.Metrics.ObserveSubmission(telemetry.OutcomeRejected)
		logger.Warn().Int("status", resp.StatusCode).Msg("submission rejected")
	}

	return cromwell.Print(r.Out, resp)
}
