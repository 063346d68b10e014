/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SchemeS3 is the URI scheme used for object locations handed to the workflow server.
const SchemeS3 = "s3"

var (
	ErrEmptyBucket = errors.New("bucket must not be empty")
	ErrEmptyPrefix = errors.New("prefix must not be empty")
)

// Object is a read-only listing entry.
type Object struct {
	Bucket       string
	Key          string
	Size         int64
	LastModified time.Time
}

// URI returns the object's location as scheme://bucket/key.
func (o Object) URI(scheme string) string {
	return URI(scheme, o.Bucket, o.Key)
}

// Lister abstracts bucket listing. Implementations return objects in the
// order the storage service reports them.
type Lister interface {
	List(ctx context.Context, bucket, prefix string) ([]Object, error)
}

// URI builds scheme://bucket/key.
func URI(scheme, bucket, key string) string {
	return fmt.Sprintf("%s://%s/%s", scheme, bucket, key)
}

func validateTarget(bucket, prefix string) error {
	if bucket == "" {
		return ErrEmptyBucket
	}
	if prefix == "" {
		return ErrEmptyPrefix
	}
	return nil
}
