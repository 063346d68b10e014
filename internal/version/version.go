/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version holds build metadata shared by the command-line tools.
package version

import "fmt"

// Version is set at build time via ldflags:
//
//	-X github.com/friendsincode/cromwell_cli/internal/version.Version=X.Y.Z
var Version = "0.1.0"

// Commit is the git revision, also set via ldflags.
var Commit = ""

// String formats the version for --version output.
func String() string {
	if Commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
