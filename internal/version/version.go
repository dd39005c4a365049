// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries the build identity of the corpcms binary and
// exposes it to the version flag and the health endpoint.
package version

import "fmt"

// Info is populated through ldflags at release build time. A plain
// `go build` leaves the zero values the cmd package seeds it with.
type Info struct {
	Version   string // semantic version from the release tag, "dev" otherwise
	GitCommit string // short commit hash
	BuildTime string // RFC3339 build timestamp
}

// String formats the build identity the way the version flag prints it.
func (i *Info) String() string {
	return fmt.Sprintf("corpcms %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}
