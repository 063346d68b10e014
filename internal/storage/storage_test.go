package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// fakeListClient serves pre-built ListObjectsV2 pages keyed by continuation token.
type fakeListClient struct {
	pages  map[string]*s3.ListObjectsV2Output
	inputs []*s3.ListObjectsV2Input
	err    error
}

func (f *fakeListClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[aws.ToString(params.ContinuationToken)]
	if !ok {
		return nil, fmt.Errorf("unexpected continuation token %q", aws.ToString(params.ContinuationToken))
	}
	return page, nil
}

func s3Objects(keys ...string) []s3types.Object {
	out := make([]s3types.Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, s3types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(k)))})
	}
	return out
}

func TestS3ListerFollowsPages(t *testing.T) {
	client := &fakeListClient{pages: map[string]*s3.ListObjectsV2Output{
		"": {
			Contents:              s3Objects("runs/a.bam", "runs/a.bai"),
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("page-2"),
		},
		"page-2": {
			Contents:    s3Objects("runs/b.bam"),
			IsTruncated: aws.Bool(false),
		},
	}}

	lister := NewS3ListerWithClient(client, zerolog.Nop())
	objects, err := lister.List(context.Background(), "genomes", "runs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"runs/a.bam", "runs/a.bai", "runs/b.bam"}
	if len(objects) != len(want) {
		t.Fatalf("expected %d objects, got %d", len(want), len(objects))
	}
	for i, obj := range objects {
		if obj.Key != want[i] {
			t.Fatalf("object %d: expected %q, got %q", i, want[i], obj.Key)
		}
		if obj.Bucket != "genomes" {
			t.Fatalf("object %d: unexpected bucket %q", i, obj.Bucket)
		}
	}

	if len(client.inputs) != 2 {
		t.Fatalf("expected 2 list calls, got %d", len(client.inputs))
	}
	if aws.ToString(client.inputs[0].Prefix) != "runs/" || aws.ToString(client.inputs[0].Bucket) != "genomes" {
		t.Fatalf("unexpected list input: %+v", client.inputs[0])
	}
}

func TestS3ListerPropagatesErrors(t *testing.T) {
	client := &fakeListClient{err: errors.New("access denied")}
	lister := NewS3ListerWithClient(client, zerolog.Nop())

	if _, err := lister.List(context.Background(), "genomes", "runs/"); err == nil {
		t.Fatal("expected list error")
	}
}

func TestListRejectsEmptyTarget(t *testing.T) {
	lister := NewS3ListerWithClient(&fakeListClient{}, zerolog.Nop())

	if _, err := lister.List(context.Background(), "", "runs/"); !errors.Is(err, ErrEmptyBucket) {
		t.Fatalf("expected ErrEmptyBucket, got %v", err)
	}
	if _, err := lister.List(context.Background(), "genomes", ""); !errors.Is(err, ErrEmptyPrefix) {
		t.Fatalf("expected ErrEmptyPrefix, got %v", err)
	}
}

func TestURI(t *testing.T) {
	obj := Object{Bucket: "genomes", Key: "runs/a.bam"}
	if got := obj.URI(SchemeS3); got != "s3://genomes/runs/a.bam" {
		t.Fatalf("unexpected uri %q", got)
	}
}

const listBucketResult = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>genomes</Name>
  <Prefix>runs/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>runs/a.bam</Key>
    <LastModified>2024-01-01T00:00:00.000Z</LastModified>
    <ETag>"abc"</ETag>
    <Size>10</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
  <Contents>
    <Key>runs/a.bai</Key>
    <LastModified>2024-01-01T00:00:00.000Z</LastModified>
    <ETag>"def"</ETag>
    <Size>2</Size>
    <StorageClass>STANDARD</StorageClass>
  </Contents>
</ListBucketResult>`

func TestMinioListerListsObjects(t *testing.T) {
	var gotPath, gotPrefix string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPrefix = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(listBucketResult))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}

	lister, err := NewMinioLister(MinioConfig{
		Endpoint:        u.Host,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		Region:          "us-east-1",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new minio lister: %v", err)
	}

	objects, err := lister.List(context.Background(), "genomes", "runs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 2 || objects[0].Key != "runs/a.bam" || objects[1].Key != "runs/a.bai" {
		t.Fatalf("unexpected objects: %+v", objects)
	}
	if !strings.HasPrefix(gotPath, "/genomes") {
		t.Fatalf("expected path-style request, got %q", gotPath)
	}
	if gotPrefix != "runs/" {
		t.Fatalf("unexpected prefix %q", gotPrefix)
	}
}

func TestNewMinioListerRequiresEndpoint(t *testing.T) {
	if _, err := NewMinioLister(MinioConfig{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error without endpoint")
	}
}
