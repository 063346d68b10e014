/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scanner selects BAM objects that have exactly one BAI index beside them.
package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/cromwell_cli/internal/storage"
)

const (
	PrimarySuffix = ".bam"
	IndexSuffix   = ".bai"
)

// IndexKey derives the index key by replacing the first ".bam" in key with ".bai".
func IndexKey(key string) string {
	return strings.Replace(key, PrimarySuffix, IndexSuffix, 1)
}

// SelectIndexed returns the primary objects in objects that have exactly one
// matching index object, preserving listing order.
func SelectIndexed(objects []storage.Object) []storage.Object {
	counts := make(map[string]int, len(objects))
	for _, obj := range objects {
		counts[obj.Key]++
	}

	var selected []storage.Object
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, PrimarySuffix) {
			continue
		}
		if counts[IndexKey(obj.Key)] == 1 {
			selected = append(selected, obj)
		}
	}
	return selected
}

// Scanner lists a bucket prefix and selects indexed primary objects.
type Scanner struct {
	lister storage.Lister
	logger zerolog.Logger
}

// New creates a scanner over lister.
func New(lister storage.Lister, logger zerolog.Logger) *Scanner {
	return &Scanner{lister: lister, logger: logger}
}

// Scan returns the qualifying primary objects under bucket/prefix.
func (s *Scanner) Scan(ctx context.Context, bucket, prefix string) ([]storage.Object, error) {
	objects, err := s.lister.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan %s/%s: %w", bucket, prefix, err)
	}

	selected := SelectIndexed(objects)

	if s.logger.GetLevel() <= zerolog.TraceLevel {
		picked := make(map[string]bool, len(selected))
		for _, obj := range selected {
			picked[obj.Key] = true
		}
		for _, obj := range objects {
			if strings.HasSuffix(obj.Key, PrimarySuffix) {
				s.logger.Trace().
					Str("index_key", IndexKey(obj.Key)).
					Bool("selected", picked[obj.Key]).
					Msg("index test")
			}
		}
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Int("objects", len(objects)).
		Msg("bucket listed")
	s.logger.Info().
		Str("bucket", bucket).
		Int("selected", len(selected)).
		Msgf("%d BAM objects with BAI index in %s", len(selected), bucket)

	return selected, nil
}
