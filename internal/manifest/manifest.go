/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package manifest renders per-object workflow input documents from a
// mustache template.
package manifest

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/cbroglie/mustache"

	"github.com/friendsincode/cromwell_cli/internal/scanner"
	"github.com/friendsincode/cromwell_cli/internal/storage"
)

// Renderer holds a parsed inputs template.
type Renderer struct {
	tmpl   *mustache.Template
	scheme string
}

// Load reads and parses the template at path.
func Load(templatePath string) (*Renderer, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs template: %w", err)
	}
	return Parse(string(data))
}

// Parse builds a renderer from template text.
func Parse(text string) (*Renderer, error) {
	tmpl, err := mustache.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("parse inputs template: %w", err)
	}
	return &Renderer{tmpl: tmpl, scheme: storage.SchemeS3}, nil
}

// Vars returns the template variables for obj.
func Vars(scheme string, obj storage.Object) map[string]string {
	baiKey := indexPath(obj.Key)
	return map[string]string{
		"bam_s3":  obj.URI(scheme),
		"bai_s3":  storage.URI(scheme, obj.Bucket, baiKey),
		"bucket":  obj.Bucket,
		"bam_key": obj.Key,
		"bai_key": baiKey,
		"sample":  strings.TrimSuffix(path.Base(obj.Key), scanner.PrimarySuffix),
	}
}

// Render produces the inputs document for obj.
func (r *Renderer) Render(obj storage.Object) (string, error) {
	out, err := r.tmpl.Render(Vars(r.scheme, obj))
	if err != nil {
		return "", fmt.Errorf("render inputs for %s: %w", obj.Key, err)
	}
	return out, nil
}

// indexPath swaps a trailing primary suffix for the index suffix.
func indexPath(key string) string {
	if strings.HasSuffix(key, scanner.PrimarySuffix) {
		return strings.TrimSuffix(key, scanner.PrimarySuffix) + scanner.IndexSuffix
	}
	return key
}

// FileRenderer reads its template from disk on every render.
type FileRenderer struct {
	Path string
}

// Render loads the template at r.Path and renders obj.
func (r FileRenderer) Render(obj storage.Object) (string, error) {
	tr, err := Load(r.Path)
	if err != nil {
		return "", err
	}
	return tr.Render(obj)
}
